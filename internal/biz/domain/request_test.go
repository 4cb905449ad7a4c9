package domain

import "testing"

func TestClampCount(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: -5, want: 1},
		{in: 0, want: 1},
		{in: 1, want: 1},
		{in: 10, want: 10},
		{in: 100, want: 100},
		{in: 101, want: 100},
		{in: 500, want: 100},
	}

	for _, tt := range tests {
		if got := ClampCount(tt.in); got != tt.want {
			t.Errorf("ClampCount(%d): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestNewInvocationRequest_DefaultCount(t *testing.T) {
	req := NewInvocationRequest(nil, Identity{ID: "u1"}, Identity{ID: "c1"})
	if req.RequestedCount != DefaultMessageCount {
		t.Errorf("Expected default count %d, got %d", DefaultMessageCount, req.RequestedCount)
	}
	if req.EffectiveCount() != DefaultMessageCount {
		t.Errorf("Expected effective count %d, got %d", DefaultMessageCount, req.EffectiveCount())
	}
}

func TestNewInvocationRequest_ClampsSilently(t *testing.T) {
	n := 500
	req := NewInvocationRequest(&n, Identity{ID: "u1"}, Identity{ID: "c1"})
	if req.RequestedCount != 500 {
		t.Errorf("Expected requested count to be kept as 500, got %d", req.RequestedCount)
	}
	if req.EffectiveCount() != MaxMessageCount {
		t.Errorf("Expected effective count %d, got %d", MaxMessageCount, req.EffectiveCount())
	}
}

func TestIdentityDisplayName(t *testing.T) {
	if got := (Identity{ID: "42", Name: "Alice"}).DisplayName(); got != "Alice" {
		t.Errorf("Expected Alice, got %s", got)
	}
	if got := (Identity{ID: "42"}).DisplayName(); got != "42" {
		t.Errorf("Expected fallback to ID, got %s", got)
	}
}
