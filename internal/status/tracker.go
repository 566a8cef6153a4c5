// internal/status/tracker.go
package status

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Tracker folds cycle outcomes into a Snapshot.
// Observe is called from the runner; Snapshot may be read from anywhere.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker starts in HealthUnknown.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}

// Observe records one cycle outcome and reports whether the snapshot changed.
// err == nil is a recovery: error code and seconds-in-error reset.
func (t *Tracker) Observe(err error, at time.Time) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	changed := false

	if err == nil {
		// Recovery / OK
		if t.snap.Health != HealthOK {
			t.snap.Health = HealthOK
			changed = true
		}
		if t.snap.LastErrorCode != 0 {
			t.snap.LastErrorCode = 0
			changed = true
		}
		if t.snap.SecondsInError != 0 {
			t.snap.SecondsInError = 0
			changed = true
		}
		t.snap.LastSuccess = at
		return t.snap, changed
	}

	health := HealthError
	if errors.Is(err, context.DeadlineExceeded) {
		health = HealthStale
	}
	if t.snap.Health != health {
		t.snap.Health = health
		changed = true
	}

	code := ErrorCode(err)
	if t.snap.LastErrorCode != code {
		t.snap.LastErrorCode = code
		changed = true
	}

	// NOTE: seconds_in_error increments on Tick only.
	return t.snap, changed
}

// Idle marks a healthy device as not observed. Error states are kept so
// the error counter keeps running.
func (t *Tracker) Idle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snap.Health != HealthOK && t.snap.Health != HealthUnknown {
		return false
	}
	t.snap.Health = HealthDisabled
	return true
}

// Tick advances seconds-in-error while not OK. Called at 1 Hz.
func (t *Tracker) Tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snap.Health == HealthError || t.snap.Health == HealthStale {
		if t.snap.SecondsInError < SecondsInErrorMax {
			t.snap.SecondsInError++
			return true
		}
	}
	return false
}

// ErrorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns 1 (generic error).
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coderA interface{ Code() uint16 }
	type coderB interface{ ErrorCode() uint16 }

	var a coderA
	if errors.As(err, &a) {
		return a.Code()
	}
	var b coderB
	if errors.As(err, &b) {
		return b.ErrorCode()
	}

	return 1
}
