package usecase

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
)

// DefaultShareTimeout is how long a share control stays usable
const DefaultShareTimeout = 5 * time.Minute

var (
	ErrShareUnknown  = errors.New("share control not found")
	ErrShareExpired  = errors.New("share control expired")
	ErrShareUsed     = errors.New("summary already shared")
	ErrShareBusy     = errors.New("share already in progress")
	ErrShareNotOwner = errors.New("share control belongs to another user")
)

// ShareUsecase keeps the share controls attached to private summaries and
// enforces the armed -> fired transition at most once per control
type ShareUsecase struct {
	mu       sync.Mutex
	controls map[string]*shareEntry
	timeout  time.Duration
	retain   time.Duration // How long terminal controls are remembered
	now      func() time.Time
}

type shareEntry struct {
	control  domain.ShareControl
	timer    *time.Timer
	onExpire func()
}

// NewShareUsecase creates a new share usecase
func NewShareUsecase(timeout time.Duration) *ShareUsecase {
	if timeout <= 0 {
		timeout = DefaultShareTimeout
	}
	return &ShareUsecase{
		controls: make(map[string]*shareEntry),
		timeout:  timeout,
		retain:   timeout,
		now:      time.Now,
	}
}

// Timeout returns the lifetime of a control
func (uc *ShareUsecase) Timeout() time.Duration {
	return uc.timeout
}

// Arm registers a new control for a private summary.
// onExpire runs once if the control times out without firing (may be nil).
func (uc *ShareUsecase) Arm(summary domain.Summary, ownerID, channelID string, auditID int64, onExpire func()) domain.ShareControl {
	now := uc.now()
	control := domain.ShareControl{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ChannelID: channelID,
		Summary:   summary,
		AuditID:   auditID,
		State:     domain.ShareArmed,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.timeout),
	}

	entry := &shareEntry{control: control, onExpire: onExpire}

	uc.mu.Lock()
	uc.controls[control.ID] = entry
	entry.timer = time.AfterFunc(uc.timeout, func() { uc.expire(control.ID) })
	uc.mu.Unlock()

	fmt.Printf("[ShareUC] Armed %s for user %s in channel %s (expires %s)\n",
		control.ID, ownerID, channelID, control.ExpiresAt.Format(time.RFC3339))
	return control
}

// Claim moves an armed control to firing for userID.
// The caller must follow up with Complete or Release.
func (uc *ShareUsecase) Claim(id, userID string) (domain.ShareControl, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	entry, ok := uc.controls[id]
	if !ok {
		return domain.ShareControl{}, ErrShareUnknown
	}
	c := &entry.control

	if c.OwnerID != "" && userID != c.OwnerID {
		return domain.ShareControl{}, ErrShareNotOwner
	}

	switch c.State {
	case domain.ShareFired:
		return domain.ShareControl{}, ErrShareUsed
	case domain.ShareFiring:
		return domain.ShareControl{}, ErrShareBusy
	case domain.ShareExpired:
		return domain.ShareControl{}, ErrShareExpired
	}

	if c.IsExpired(uc.now()) {
		c.State = domain.ShareExpired
		return domain.ShareControl{}, ErrShareExpired
	}

	c.State = domain.ShareFiring
	return *c, nil
}

// Complete marks a claimed control as fired. It can never fire again.
func (uc *ShareUsecase) Complete(id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	entry, ok := uc.controls[id]
	if !ok {
		return ErrShareUnknown
	}
	if entry.control.State != domain.ShareFiring {
		return fmt.Errorf("complete share %s in state %s", id, entry.control.State)
	}

	entry.control.State = domain.ShareFired
	if entry.timer != nil {
		entry.timer.Stop()
	}
	uc.forgetLater(id)

	fmt.Printf("[ShareUC] Fired %s\n", id)
	return nil
}

// Release returns a claimed control to armed after a failed publish.
// If the deadline passed while the publish was in flight the control expires instead.
func (uc *ShareUsecase) Release(id string) {
	uc.mu.Lock()
	entry, ok := uc.controls[id]
	if !ok || entry.control.State != domain.ShareFiring {
		uc.mu.Unlock()
		return
	}
	if !entry.control.IsExpired(uc.now()) {
		entry.control.State = domain.ShareArmed
		uc.mu.Unlock()
		fmt.Printf("[ShareUC] Released %s after failed publish\n", id)
		return
	}
	onExpire := uc.expireLocked(id, entry)
	uc.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
}

// Get returns a snapshot of a control
func (uc *ShareUsecase) Get(id string) (domain.ShareControl, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	entry, ok := uc.controls[id]
	if !ok {
		return domain.ShareControl{}, false
	}
	return entry.control, true
}

// Stop cancels all pending expiry timers
func (uc *ShareUsecase) Stop() {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	for _, entry := range uc.controls {
		if entry.timer != nil {
			entry.timer.Stop()
		}
	}
}

// expire runs when a control's timer fires
func (uc *ShareUsecase) expire(id string) {
	uc.mu.Lock()
	entry, ok := uc.controls[id]
	if !ok || entry.control.State != domain.ShareArmed {
		// Fired already, or a publish is in flight; Claim re-checks the deadline
		uc.mu.Unlock()
		return
	}
	onExpire := uc.expireLocked(id, entry)
	uc.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
}

// expireLocked marks a control expired and returns its hook. Caller holds uc.mu.
func (uc *ShareUsecase) expireLocked(id string, entry *shareEntry) func() {
	entry.control.State = domain.ShareExpired
	if entry.timer != nil {
		entry.timer.Stop()
	}
	uc.forgetLater(id)
	fmt.Printf("[ShareUC] Expired %s\n", id)
	return entry.onExpire
}

// forgetLater drops a terminal control once the retention window passes so
// late clicks still get a precise answer. Caller holds uc.mu.
func (uc *ShareUsecase) forgetLater(id string) {
	time.AfterFunc(uc.retain, func() {
		uc.mu.Lock()
		defer uc.mu.Unlock()
		if entry, ok := uc.controls[id]; ok && entry.control.IsTerminal() {
			delete(uc.controls, id)
		}
	})
}
