package domain

import "strings"

// Transcript is the filtered, chronological view of retrieved messages
type Transcript struct {
	Lines    []string // "author: text", oldest first
	BotCount int      // Automated messages that were dropped
}

// BuildTranscript builds a transcript from messages delivered newest-first.
// Automated authors are excluded and the remaining lines are reversed into
// chronological order.
func BuildTranscript(newestFirst []Message) Transcript {
	t := Transcript{}
	for i := len(newestFirst) - 1; i >= 0; i-- {
		m := newestFirst[i]
		if m.IsBot {
			t.BotCount++
			continue
		}
		t.Lines = append(t.Lines, m.FormatLine())
	}
	return t
}

// Len returns the number of non-automated messages
func (t Transcript) Len() int {
	return len(t.Lines)
}

// Total returns the number of retrieved messages
func (t Transcript) Total() int {
	return len(t.Lines) + t.BotCount
}

// IsEmpty reports whether no non-automated message was retrieved
func (t Transcript) IsEmpty() bool {
	return len(t.Lines) == 0
}

// Text joins the lines with newlines
func (t Transcript) Text() string {
	return strings.Join(t.Lines, "\n")
}
