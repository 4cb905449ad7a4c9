package domain

// SummaryColor is the embed/card accent used for summaries and confirmations
const SummaryColor = 0x00ff00

// Summary is the rendered result of one invocation. Immutable once built.
type Summary struct {
	Title  string
	Body   string
	Footer string
	Color  int
}

// ShareButton is the activation control attached to a private summary
type ShareButton struct {
	ID       string
	Label    string
	Emoji    string
	Disabled bool
}

// Reply is what the core hands to the platform for delivery.
// Exactly one of Content or Summary is expected to be set.
type Reply struct {
	Content string
	Summary *Summary
	Share   *ShareButton
}

// TextReply creates a plain text reply
func TextReply(content string) *Reply {
	return &Reply{Content: content}
}

// SummaryReply creates a reply carrying a summary card
func SummaryReply(s *Summary, share *ShareButton) *Reply {
	return &Reply{Summary: s, Share: share}
}

// IsText reports whether the reply is plain text
func (r *Reply) IsText() bool {
	return r.Summary == nil
}
