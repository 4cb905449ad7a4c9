package domain

import "time"

// ShareState is the lifecycle state of a share control
type ShareState string

const (
	ShareArmed   ShareState = "armed"
	ShareFiring  ShareState = "firing" // Publish in flight
	ShareFired   ShareState = "fired"
	ShareExpired ShareState = "expired"
)

// ShareControl wraps a private summary that its requester may publish once
type ShareControl struct {
	ID        string
	OwnerID   string
	ChannelID string
	Summary   Summary
	AuditID   int64
	State     ShareState
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired checks whether the control is past its deadline at now
func (c *ShareControl) IsExpired(now time.Time) bool {
	return c.State == ShareExpired || !now.Before(c.ExpiresAt)
}

// IsTerminal reports whether the control can never fire again
func (c *ShareControl) IsTerminal() bool {
	return c.State == ShareFired || c.State == ShareExpired
}
