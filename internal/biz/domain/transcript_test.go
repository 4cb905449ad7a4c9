package domain

import (
	"fmt"
	"testing"
)

func TestBuildTranscript_Chronological(t *testing.T) {
	// Platform delivers newest first: C, B, A
	msgs := []Message{
		{ID: "3", AuthorName: "C", Content: "third"},
		{ID: "2", AuthorName: "B", Content: "second"},
		{ID: "1", AuthorName: "A", Content: "first"},
	}

	tr := BuildTranscript(msgs)

	want := "A: first\nB: second\nC: third"
	if tr.Text() != want {
		t.Errorf("Expected %q, got %q", want, tr.Text())
	}
	if tr.BotCount != 0 {
		t.Errorf("Expected 0 bot messages, got %d", tr.BotCount)
	}
}

func TestBuildTranscript_ExcludesBots(t *testing.T) {
	var msgs []Message
	for i := 0; i < 10; i++ {
		msgs = append(msgs, Message{
			ID:         fmt.Sprint(i),
			AuthorName: fmt.Sprintf("user%d", i),
			Content:    "hi",
			IsBot:      i%3 == 0, // 0, 3, 6, 9
		})
	}

	tr := BuildTranscript(msgs)

	if tr.Len() != 6 {
		t.Errorf("Expected 6 lines, got %d", tr.Len())
	}
	if tr.BotCount != 4 {
		t.Errorf("Expected 4 bot messages, got %d", tr.BotCount)
	}
	if tr.Total() != 10 {
		t.Errorf("Expected total 10, got %d", tr.Total())
	}
	if tr.Lines[0] != "user8: hi" {
		t.Errorf("Expected oldest non-bot line first, got %q", tr.Lines[0])
	}
}

func TestBuildTranscript_EmptyIffNoUserMessages(t *testing.T) {
	if tr := BuildTranscript(nil); !tr.IsEmpty() || tr.Total() != 0 {
		t.Errorf("Expected empty transcript for no messages, got %+v", tr)
	}

	bots := []Message{{IsBot: true}, {IsBot: true}, {IsBot: true}}
	tr := BuildTranscript(bots)
	if !tr.IsEmpty() {
		t.Error("Expected empty transcript for bot-only messages")
	}
	if tr.BotCount != 3 {
		t.Errorf("Expected 3 bot messages, got %d", tr.BotCount)
	}

	tr = BuildTranscript([]Message{{AuthorName: "A", Content: "x"}, {IsBot: true}})
	if tr.IsEmpty() {
		t.Error("Expected non-empty transcript when a user message exists")
	}
}
