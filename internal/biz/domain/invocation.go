package domain

import "time"

// Outcome is how an invocation ended
type Outcome string

const (
	OutcomeSummary    Outcome = "summary"
	OutcomeNoMessages Outcome = "no_messages"
	OutcomeBotsOnly   Outcome = "bots_only"
	OutcomeError      Outcome = "error"
)

// DeliveryMode selects how a finished summary reaches the channel
type DeliveryMode string

const (
	DeliveryPrivate DeliveryMode = "private" // Ephemeral with a share control
	DeliveryPublic  DeliveryMode = "public"  // Posted directly, no control
)

// Invocation is the audit record of one summarise call.
// It never carries the transcript or the summary text.
type Invocation struct {
	ID           int64
	Platform     string
	ChannelID    string
	UserID       string
	Requested    int
	Effective    int
	UserMessages int
	BotMessages  int
	Outcome      Outcome
	Error        string
	Delivery     DeliveryMode
	CreatedAt    time.Time
	SharedAt     time.Time
}

// IsShared reports whether the summary was later shared
func (i *Invocation) IsShared() bool {
	return !i.SharedAt.IsZero()
}
