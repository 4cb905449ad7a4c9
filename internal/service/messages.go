package service

import "strings"

// Messages contains the user-facing strings the service emits
type Messages struct {
	Error         string // Invocation failure (supports {{error}})
	ShareFailed   string // Share publish failure (supports {{error}})
	SharedTitle   string
	SharedBody    string
	AlreadyShared string
	ShareExpired  string
	ShareBusy     string
	ShareNotOwner string
	ShareLabel    string
	ShareEmoji    string
}

// DefaultMessages contains default user-facing strings
var DefaultMessages = Messages{
	Error:         "❌ An error occurred while generating the summary: {{error}}",
	ShareFailed:   "❌ Failed to share summary: {{error}}",
	SharedTitle:   "✅ Summary Shared!",
	SharedBody:    "Your summary has been posted to the channel.",
	AlreadyShared: "✅ This summary has already been shared to the channel.",
	ShareExpired:  "⌛ This share button has expired. Run /summarise again to get a new summary.",
	ShareBusy:     "⏳ This summary is already being shared, please wait...",
	ShareNotOwner: "Only the person who requested this summary can share it.",
	ShareLabel:    "Share to Channel",
	ShareEmoji:    "📤",
}

// FormatError formats an invocation failure
func (m Messages) FormatError(err error) string {
	return strings.ReplaceAll(m.Error, "{{error}}", err.Error())
}

// FormatShareFailed formats a share publish failure
func (m Messages) FormatShareFailed(err error) string {
	return strings.ReplaceAll(m.ShareFailed, "{{error}}", err.Error())
}
