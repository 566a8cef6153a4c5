// internal/status/health.go
package status

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a healthy device.
const HealthOK uint16 = 1

// HealthError represents a device error state.
const HealthError uint16 = 2

// HealthStale represents a device whose last cycle was cut short by a
// deadline; values are kept but may be old.
const HealthStale uint16 = 3

// HealthDisabled represents a device nobody is observing.
const HealthDisabled uint16 = 4

// SecondsInErrorMax caps the error duration counter.
const SecondsInErrorMax = 65535

// HealthName returns a label for a health code.
func HealthName(h uint16) string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	case HealthStale:
		return "stale"
	case HealthDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}
