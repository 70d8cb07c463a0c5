// Package settings persists the preferences of the energy settings library.
//
// The only preference today is whether the user asked not to see the
// problematic-manufacturer warning again. It lives in a single record encoded
// in protobuf wire format, the same bytes the Android DataStore wrote, and is
// brought to the current schema by a chain of migrations the first time a
// Store is read in a process.
package settings

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// CurrentVersion is the schema version all records are migrated to.
// Increase it (and add a step to versionMigration) whenever a field is added,
// so the field gets a real default instead of the protobuf zero value.
const CurrentVersion int32 = 1

// FileName is the name of the persisted record, relative to the datastore dir.
const FileName = "energy_settings.pb"

// Field numbers of the persisted record.
const (
	fieldVersion                  protowire.Number = 1
	fieldManufacturerWarningShown protowire.Number = 2
)

// Record is the persisted settings record.
type Record struct {
	// Version is the schema version. A record that was never persisted is at 0.
	Version int32

	// ManufacturerWarningShown is true when the user chose "don't show again"
	// on the problematic-manufacturer warning.
	ManufacturerWarningShown bool
}

// Marshal encodes r in protobuf wire format. Zero-valued fields are omitted,
// so an unmigrated default record encodes to no bytes at all.
func Marshal(r Record) []byte {
	var b []byte
	if r.Version != 0 {
		b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(r.Version)))
	}
	if r.ManufacturerWarningShown {
		b = protowire.AppendTag(b, fieldManufacturerWarningShown, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	return b
}

// Unmarshal decodes a record written by Marshal. Unknown fields are skipped.
// Malformed input yields an error wrapping ErrCorrupted.
func Unmarshal(b []byte) (Record, error) {
	var r Record
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Record{}, fmt.Errorf("%w: %w", ErrCorrupted, protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case fieldVersion, fieldManufacturerWarningShown:
			if typ != protowire.VarintType {
				return Record{}, fmt.Errorf("%w: field %d has wire type %d", ErrCorrupted, num, typ)
			}
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Record{}, fmt.Errorf("%w: %w", ErrCorrupted, protowire.ParseError(n))
			}
			b = b[n:]
			if num == fieldVersion {
				r.Version = int32(v)
			} else {
				r.ManufacturerWarningShown = protowire.DecodeBool(v)
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Record{}, fmt.Errorf("%w: %w", ErrCorrupted, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return r, nil
}
