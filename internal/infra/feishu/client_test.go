package feishu

import "testing"

func TestParseTextContent(t *testing.T) {
	got := ParseTextContent(`{"text":"@_user_1 /summarise 20"}`, map[string]string{"@_user_1": "SummaryBot"})
	if got != "@SummaryBot /summarise 20" {
		t.Errorf("Expected mention replaced, got %q", got)
	}

	if got := ParseTextContent("not json", nil); got != "" {
		t.Errorf("Expected empty for invalid JSON, got %q", got)
	}
}

func TestParsePostContent(t *testing.T) {
	content := `{"title":"Weekly","content":[[{"tag":"text","text":"ship it "},{"tag":"at","user_id":"@_user_1"}],[{"tag":"img","image_key":"k"}]]}`
	got := ParsePostContent(content, map[string]string{"@_user_1": "Bob"})
	want := "Weekly\nship it @Bob"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestParseCardActionJSON(t *testing.T) {
	raw := []byte(`{
		"operator": {"open_id": "ou_123", "user_id": "u1"},
		"token": "t",
		"action": {"tag": "button", "value": {"action": "share", "share_id": "abc"}},
		"context": {"open_message_id": "om_1", "open_chat_id": "oc_1"}
	}`)

	action, err := ParseCardActionJSON(raw)
	if err != nil {
		t.Fatalf("ParseCardActionJSON failed: %v", err)
	}
	if action.OperatorID != "ou_123" {
		t.Errorf("Expected operator ou_123, got %s", action.OperatorID)
	}
	if action.MessageID != "om_1" || action.ChatID != "oc_1" {
		t.Errorf("Unexpected context: %+v", action)
	}
	if action.Value["action"] != "share" || action.Value["share_id"] != "abc" {
		t.Errorf("Unexpected value: %v", action.Value)
	}
}

func TestParseCardActionJSON_NoOperator(t *testing.T) {
	if _, err := ParseCardActionJSON([]byte(`{"action":{"value":{}}}`)); err == nil {
		t.Error("Expected error without operator")
	}
}

func TestSenderIsBot(t *testing.T) {
	tests := []struct {
		sender *Sender
		want   bool
	}{
		{nil, false},
		{&Sender{SenderType: "user"}, false},
		{&Sender{SenderType: "app"}, true},
		{&Sender{SenderType: "bot"}, true},
	}
	for _, tt := range tests {
		if got := tt.sender.IsBot(); got != tt.want {
			t.Errorf("IsBot(%+v) = %v, want %v", tt.sender, got, tt.want)
		}
	}
}
