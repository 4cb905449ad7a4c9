package data

import (
	"encoding/json"
	"testing"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
	"github.com/DevRickLin/channel-summariser/internal/infra/feishu"
)

func TestConvertFeishuHistory(t *testing.T) {
	msgs := []*feishu.HistoryMessage{
		{MsgID: "3", Content: "newest", CreateTime: "1700000002000", Sender: &feishu.Sender{SenderID: "ou_a", SenderType: "user"}},
		{MsgID: "2", Content: "card", Sender: &feishu.Sender{SenderID: "cli_bot", SenderType: "app"}},
		{MsgID: "x", Content: "gone", Deleted: true, Sender: &feishu.Sender{SenderID: "ou_a", SenderType: "user"}},
		{MsgID: "1", Content: "oldest", Sender: &feishu.Sender{SenderID: "ou_b", SenderType: "user"}},
	}
	members := map[string]string{"ou_a": "Alice"}

	got := ConvertFeishuHistory("oc_1", msgs, members)
	if len(got) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(got))
	}
	if got[0].ID != "3" || got[2].ID != "1" {
		t.Errorf("Expected order preserved, got %s..%s", got[0].ID, got[2].ID)
	}
	if got[0].AuthorName != "Alice" {
		t.Errorf("Expected resolved name Alice, got %s", got[0].AuthorName)
	}
	if got[2].AuthorName != "ou_b" {
		t.Errorf("Expected ID fallback, got %s", got[2].AuthorName)
	}
	if !got[1].IsBot || got[0].IsBot {
		t.Error("Expected only the app sender to be a bot")
	}
	if got[0].CreateTime.UnixMilli() != 1700000002000 {
		t.Errorf("Unexpected create time: %v", got[0].CreateTime)
	}
}

func TestParseFeishuCommand(t *testing.T) {
	tests := []struct {
		text      string
		wantOK    bool
		wantCount int // -1 means nil
	}{
		{"/summarise", true, -1},
		{"/summarise 20", true, 20},
		{"/SUMMARISE 500", true, 500},
		{"@SummaryBot /summarise 5", true, 5},
		{"/summarise lots", true, -1},
		{"/summarise -3", true, -3},
		{"please /summarise", false, -1},
		{"", false, -1},
		{"/summary 10", false, -1},
	}

	for _, tt := range tests {
		count, ok := ParseFeishuCommand(tt.text)
		if ok != tt.wantOK {
			t.Errorf("ParseFeishuCommand(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			continue
		}
		if tt.wantCount == -1 {
			if count != nil {
				t.Errorf("ParseFeishuCommand(%q) count = %d, want nil", tt.text, *count)
			}
			continue
		}
		if count == nil || *count != tt.wantCount {
			t.Errorf("ParseFeishuCommand(%q) count = %v, want %d", tt.text, count, tt.wantCount)
		}
	}
}

func TestConvertFeishuHistory_DropsCommands(t *testing.T) {
	// Newest first: the triggering command, then an earlier one, then chat
	msgs := []*feishu.HistoryMessage{
		{MsgID: "5", Content: "/summarise 3", Sender: &feishu.Sender{SenderID: "ou_a", SenderType: "user"}},
		{MsgID: "4", Content: "lunch at noon?", Sender: &feishu.Sender{SenderID: "ou_b", SenderType: "user"}},
		{MsgID: "3", Content: "@SummaryBot /summarise", Sender: &feishu.Sender{SenderID: "ou_b", SenderType: "user"}},
		{MsgID: "2", Content: "sure", Sender: &feishu.Sender{SenderID: "ou_a", SenderType: "user"}},
		{MsgID: "1", Content: "deploy done", Sender: &feishu.Sender{SenderID: "ou_c", SenderType: "user"}},
	}

	got := ConvertFeishuHistory("oc_1", msgs, nil)
	if len(got) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(got))
	}
	for _, m := range got {
		if _, ok := ParseFeishuCommand(m.Content); ok {
			t.Errorf("Command message %s leaked into history", m.ID)
		}
	}
	if got[0].ID != "4" || got[2].ID != "1" {
		t.Errorf("Expected 4..1, got %s..%s", got[0].ID, got[2].ID)
	}
}

func TestBuildFeishuCard(t *testing.T) {
	reply := domain.SummaryReply(&domain.Summary{
		Title:  "📝 Chat Summary (3 messages)",
		Body:   "Lunch was discussed.",
		Footer: "Powered by Google Gemini • Summarised by Alice",
		Color:  domain.SummaryColor,
	}, &domain.ShareButton{ID: "abc", Label: "Share to Channel", Emoji: "📤"})

	card, err := BuildFeishuCard(reply)
	if err != nil {
		t.Fatalf("BuildFeishuCard failed: %v", err)
	}

	var parsed struct {
		Header struct {
			Title struct {
				Content string `json:"content"`
			} `json:"title"`
			Template string `json:"template"`
		} `json:"header"`
		Elements []struct {
			Tag     string `json:"tag"`
			Content string `json:"content"`
			Actions []struct {
				Text struct {
					Content string `json:"content"`
				} `json:"text"`
				Disabled bool              `json:"disabled"`
				Value    map[string]string `json:"value"`
			} `json:"actions"`
		} `json:"elements"`
	}
	if err := json.Unmarshal([]byte(card), &parsed); err != nil {
		t.Fatalf("Card is not valid JSON: %v", err)
	}
	if parsed.Header.Title.Content != "📝 Chat Summary (3 messages)" || parsed.Header.Template != "green" {
		t.Errorf("Unexpected header: %+v", parsed.Header)
	}
	if len(parsed.Elements) != 3 {
		t.Fatalf("Expected body, note and action elements, got %d", len(parsed.Elements))
	}
	if parsed.Elements[0].Content != "Lunch was discussed." {
		t.Errorf("Unexpected body: %q", parsed.Elements[0].Content)
	}
	action := parsed.Elements[2].Actions[0]
	if action.Text.Content != "📤 Share to Channel" {
		t.Errorf("Unexpected button label: %q", action.Text.Content)
	}
	if action.Value["action"] != FeishuShareAction || action.Value["share_id"] != "abc" {
		t.Errorf("Unexpected button value: %v", action.Value)
	}
	if action.Disabled {
		t.Error("Expected enabled button")
	}
}

func TestBuildFeishuCard_TextReply(t *testing.T) {
	if _, err := BuildFeishuCard(domain.TextReply("hi")); err == nil {
		t.Error("Expected error for text reply")
	}
}
