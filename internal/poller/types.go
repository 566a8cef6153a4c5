// internal/poller/types.go
package poller

import (
	"errors"
	"time"
)

var (
	// ErrUnknownItem is returned for names not in the catalogue.
	ErrUnknownItem = errors.New("poller: unknown item")

	// ErrGroupDisabled is returned when writing to an item of a disabled group.
	ErrGroupDisabled = errors.New("poller: item group disabled")
)

// SweepMode selects what a cycle fetches.
type SweepMode uint8

const (
	SweepFull     SweepMode = iota // every catalogue item
	SweepNarrowed                  // only Sweep.Indices
)

func (m SweepMode) String() string {
	if m == SweepNarrowed {
		return "narrowed"
	}
	return "full"
}

// Sweep is the scope of one poll cycle.
type Sweep struct {
	Mode    SweepMode
	Indices []int // catalogue indices, used by SweepNarrowed only
}

// Full returns a full-catalogue sweep.
func Full() Sweep { return Sweep{Mode: SweepFull} }

// Narrowed returns a sweep over the given catalogue indices.
func Narrowed(indices []int) Sweep {
	return Sweep{Mode: SweepNarrowed, Indices: indices}
}

// SweepFor picks the scope of the next cycle: full on the first cycle or
// when nothing is observed, narrowed to the observed indices otherwise.
func SweepFor(observed []int, first bool) Sweep {
	if first || len(observed) == 0 {
		return Full()
	}
	return Narrowed(observed)
}

// CycleResult is what one poll cycle did.
type CycleResult struct {
	At    time.Time
	Sweep Sweep

	Fetched int // items read without error
	Skipped int // items gated out by a disabled group

	// Changed lists catalogue indices whose state changed, in fetch order,
	// followed by items changed by Write since the previous cycle.
	Changed []int

	// ItemErrors holds per-item decode failures keyed by item name.
	ItemErrors map[string]error

	Err error // non-nil means a transport failure cut the cycle short
}
