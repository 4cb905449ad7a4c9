package server

import (
	"testing"
	"time"
)

func TestFeishuServer_Dedup(t *testing.T) {
	s := NewFeishuServer(nil, nil)

	if s.isMessageSeen("om_1") {
		t.Error("Expected unseen message")
	}
	s.markMessageSeen("om_1")
	if !s.isMessageSeen("om_1") {
		t.Error("Expected seen message")
	}

	s.seenMsgs["om_old"] = time.Now().Add(-10 * time.Minute)
	s.markMessageSeen("om_2")
	if s.isMessageSeen("om_old") {
		t.Error("Expected stale record to be cleaned up")
	}
}
