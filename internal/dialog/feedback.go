package dialog

import (
	"fmt"

	"github.com/cyface-de/energy-settings/internal/device"
)

// FeedbackEmail is a pre-filled email draft with app and device details.
type FeedbackEmail struct {
	Recipients   []string `json:"recipients"`
	Subject      string   `json:"subject"`
	Body         string   `json:"body"`
	MimeType     string   `json:"mime_type"`
	ChooserTitle string   `json:"chooser_title"`
}

// feedbackMimeType is the type the Android send intent is created with.
const feedbackMimeType = "plain/text"

// NewFeedbackEmail builds the feedback template. extraText is the heading of
// the area where the user writes the message, e.g. "Your message".
func NewFeedbackEmail(loc Localizer, dev device.Context, appVersion, extraText, recipient string) FeedbackEmail {
	subject := fmt.Sprintf("%s %s (%s-%d)",
		loc.String(AppName), loc.String(FeedbackEmailSubject), appVersion, dev.SDKInt)

	info := fmt.Sprintf("%s: %s\n%s: %s\n%s: %s",
		loc.String(FeedbackVersionText), appVersion,
		loc.String(FeedbackDeviceText), dev.Description(),
		loc.String(FeedbackAndroidText), dev.Android())

	return FeedbackEmail{
		Recipients:   []string{recipient},
		Subject:      subject,
		Body:         fmt.Sprintf("%s\n---\n%s:\n\n\n", info, extraText),
		MimeType:     feedbackMimeType,
		ChooserTitle: loc.String(FeedbackChooseEmailApp),
	}
}
