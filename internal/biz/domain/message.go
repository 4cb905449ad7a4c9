package domain

import "time"

// Message represents a channel message as delivered by the chat platform
type Message struct {
	ID         string
	ChannelID  string
	Content    string
	AuthorID   string
	AuthorName string
	IsBot      bool // Sent by an automated author (bot, app or webhook)
	CreateTime time.Time
}

// FormatLine formats the message as a transcript line ("author: text")
func (m *Message) FormatLine() string {
	return m.AuthorName + ": " + m.Content
}
