// internal/status/snapshot.go
package status

import "time"

// Snapshot is the device-level health exported to consumers.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16

	LastSuccess time.Time // zero until the first clean cycle
}
