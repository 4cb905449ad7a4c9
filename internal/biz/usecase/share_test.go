package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
)

func testSummary() domain.Summary {
	return domain.Summary{Title: "📝 Chat Summary (2 messages)", Body: "body", Color: domain.SummaryColor}
}

func TestShare_FiresOnce(t *testing.T) {
	uc := NewShareUsecase(time.Minute)
	defer uc.Stop()

	control := uc.Arm(testSummary(), "u1", "c1", 7, nil)
	if control.State != domain.ShareArmed {
		t.Fatalf("Expected armed, got %s", control.State)
	}

	claimed, err := uc.Claim(control.ID, "u1")
	if err != nil {
		t.Fatalf("Unexpected claim error: %v", err)
	}
	if claimed.ChannelID != "c1" || claimed.AuditID != 7 {
		t.Errorf("Unexpected claimed control: %+v", claimed)
	}

	// Concurrent second click while publishing
	if _, err := uc.Claim(control.ID, "u1"); !errors.Is(err, ErrShareBusy) {
		t.Errorf("Expected ErrShareBusy, got %v", err)
	}

	if err := uc.Complete(control.ID); err != nil {
		t.Fatalf("Unexpected complete error: %v", err)
	}

	if _, err := uc.Claim(control.ID, "u1"); !errors.Is(err, ErrShareUsed) {
		t.Errorf("Expected ErrShareUsed after firing, got %v", err)
	}

	got, ok := uc.Get(control.ID)
	if !ok || got.State != domain.ShareFired {
		t.Errorf("Expected fired control, got %+v (found=%v)", got, ok)
	}
}

func TestShare_ReleaseRearms(t *testing.T) {
	uc := NewShareUsecase(time.Minute)
	defer uc.Stop()

	control := uc.Arm(testSummary(), "u1", "c1", 0, nil)
	if _, err := uc.Claim(control.ID, "u1"); err != nil {
		t.Fatalf("Unexpected claim error: %v", err)
	}

	uc.Release(control.ID)

	if _, err := uc.Claim(control.ID, "u1"); err != nil {
		t.Errorf("Expected claim to succeed after release, got %v", err)
	}
}

func TestShare_RejectsOtherUser(t *testing.T) {
	uc := NewShareUsecase(time.Minute)
	defer uc.Stop()

	control := uc.Arm(testSummary(), "u1", "c1", 0, nil)
	if _, err := uc.Claim(control.ID, "u2"); !errors.Is(err, ErrShareNotOwner) {
		t.Errorf("Expected ErrShareNotOwner, got %v", err)
	}
}

func TestShare_Unknown(t *testing.T) {
	uc := NewShareUsecase(time.Minute)
	if _, err := uc.Claim("nope", "u1"); !errors.Is(err, ErrShareUnknown) {
		t.Errorf("Expected ErrShareUnknown, got %v", err)
	}
	if err := uc.Complete("nope"); !errors.Is(err, ErrShareUnknown) {
		t.Errorf("Expected ErrShareUnknown from Complete, got %v", err)
	}
}

func TestShare_ExpiresByDeadline(t *testing.T) {
	uc := NewShareUsecase(time.Minute)
	defer uc.Stop()

	now := time.Now()
	uc.now = func() time.Time { return now }
	control := uc.Arm(testSummary(), "u1", "c1", 0, nil)

	uc.now = func() time.Time { return now.Add(5 * time.Minute) }
	if _, err := uc.Claim(control.ID, "u1"); !errors.Is(err, ErrShareExpired) {
		t.Errorf("Expected ErrShareExpired, got %v", err)
	}
	if _, err := uc.Claim(control.ID, "u1"); !errors.Is(err, ErrShareExpired) {
		t.Errorf("Expected control to stay expired, got %v", err)
	}
}

func TestShare_ExpiryCallback(t *testing.T) {
	uc := NewShareUsecase(20 * time.Millisecond)
	uc.retain = time.Minute
	defer uc.Stop()

	expired := make(chan struct{}, 1)
	control := uc.Arm(testSummary(), "u1", "c1", 0, func() { expired <- struct{}{} })

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected expiry callback to run")
	}

	got, ok := uc.Get(control.ID)
	if !ok || got.State != domain.ShareExpired {
		t.Errorf("Expected expired state, got %+v (found=%v)", got, ok)
	}
	if _, err := uc.Claim(control.ID, "u1"); !errors.Is(err, ErrShareExpired) {
		t.Errorf("Expected ErrShareExpired, got %v", err)
	}
}

func TestShare_NoExpiryCallbackAfterFire(t *testing.T) {
	uc := NewShareUsecase(20 * time.Millisecond)
	defer uc.Stop()

	called := make(chan struct{}, 1)
	control := uc.Arm(testSummary(), "u1", "c1", 0, func() { called <- struct{}{} })

	if _, err := uc.Claim(control.ID, "u1"); err != nil {
		t.Fatalf("Unexpected claim error: %v", err)
	}
	if err := uc.Complete(control.ID); err != nil {
		t.Fatalf("Unexpected complete error: %v", err)
	}

	select {
	case <-called:
		t.Error("Expiry callback must not run after the control fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestShare_ReleaseAfterDeadlineExpires(t *testing.T) {
	uc := NewShareUsecase(time.Minute)
	uc.retain = time.Minute
	defer uc.Stop()

	now := time.Now()
	uc.now = func() time.Time { return now }

	calls := 0
	control := uc.Arm(testSummary(), "u1", "c1", 0, func() { calls++ })
	if _, err := uc.Claim(control.ID, "u1"); err != nil {
		t.Fatalf("Unexpected claim error: %v", err)
	}

	// The publish fails after the control's lifetime ran out
	uc.now = func() time.Time { return now.Add(2 * time.Minute) }
	uc.Release(control.ID)

	got, ok := uc.Get(control.ID)
	if !ok || got.State != domain.ShareExpired {
		t.Errorf("Expected expired state, got %+v (found=%v)", got, ok)
	}
	if calls != 1 {
		t.Errorf("Expected expiry callback once, got %d", calls)
	}
	if _, err := uc.Claim(control.ID, "u1"); !errors.Is(err, ErrShareExpired) {
		t.Errorf("Expected ErrShareExpired, got %v", err)
	}

	uc.Release(control.ID)
	if calls != 1 {
		t.Errorf("Expected no further callbacks, got %d", calls)
	}
}
