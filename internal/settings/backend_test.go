package settings

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileBackend_EmptyPath(t *testing.T) {
	if _, err := NewFileBackend(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestFileBackend_Path(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(DataStorePath(dir))
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	want := filepath.Join(dir, "files", "datastore", FileName)
	if b.Path() != want {
		t.Errorf("Path = %q, want %q", b.Path(), want)
	}
}

func TestFileBackend_WriteReplacesAtomically(t *testing.T) {
	path := DataStorePath(t.TempDir())
	b, err := NewFileBackend(path)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	ctx := context.Background()

	if _, err := b.Read(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read before write: err = %v, want ErrNotFound", err)
	}

	for _, data := range [][]byte{{0x08, 0x01}, {0x08, 0x01, 0x10, 0x01}} {
		if err := b.Write(ctx, data); err != nil {
			t.Fatalf("Write: %v", err)
		}
		got, err := b.Read(ctx)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("Read = %x, want %x", got, data)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != FileName {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("settings dir holds %v, want only %s", names, FileName)
	}
}

func TestFileBackend_CanceledWriteKeepsFile(t *testing.T) {
	path := DataStorePath(t.TempDir())
	b, err := NewFileBackend(path)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	if err := b.Write(context.Background(), []byte{0x08, 0x01}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Write(ctx, []byte{0x08, 0x02}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Write: err = %v, want context.Canceled", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, []byte{0x08, 0x01}) {
		t.Errorf("file = %x after canceled write", got)
	}
}
