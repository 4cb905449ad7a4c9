package domain

import "fmt"

// Identity is a user or channel as seen by the chat platform (value object)
type Identity struct {
	ID   string
	Name string // Stable display name
}

// FormatDisplay formats for display
func (i Identity) FormatDisplay() string {
	if i.Name == "" {
		return i.ID
	}
	return fmt.Sprintf("%s (id: %s)", i.Name, i.ID)
}

// DisplayName returns the name, falling back to the ID
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}
