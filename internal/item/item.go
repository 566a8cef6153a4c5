// internal/item/item.go
package item

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// Scaling converts raw register values to engineering units:
// engineering = raw / Divider. Min, Max and Step bound writes.
type Scaling struct {
	Min     float64
	Max     float64
	Step    float64
	Divider float64
}

// AuxRegisters are the extra registers a derived item is computed from.
// X2 is read only when X yields no value.
type AuxRegisters struct {
	X  uint16
	X2 uint16
	Y  uint16

	// Divider applies to the X and Y raw values. Zero means 10.
	Divider float64
}

// AxisDivider returns the divider for the auxiliary coordinates.
func (a AuxRegisters) AxisDivider() float64 {
	if a.Divider == 0 {
		return 10
	}
	return a.Divider
}

// Raw is an optional raw register value.
type Raw struct {
	Value int
	OK    bool
}

// Some wraps a present raw value.
func Some(v int) Raw { return Raw{Value: v, OK: true} }

// Components is the state of a derived item: raw primary, x and y values
// pending computation by the consumer.
type Components struct {
	Primary Raw
	X       Raw
	Y       Raw
}

// Complete reports whether all three components hold a value.
func (c Components) Complete() bool { return c.Primary.OK && c.X.OK && c.Y.OK }

// Def is one row of a static item definition table.
type Def struct {
	Address uint16
	Name    string
	Format  Format
	Kind    Kind
	Group   Group
	Scaling *Scaling
	Enum    *EnumTable
	Aux     *AuxRegisters
}

// Item is one addressable quantity of the device.
//
// State holds float64 for numeric formats, string (the enum key) for
// FormatStatus and Components for derived items. nil means no valid reading.
type Item struct {
	Address uint16
	Name    string
	Format  Format
	Kind    Kind
	Group   Group
	Scaling *Scaling
	Enum    *EnumTable
	Aux     *AuxRegisters

	mu      sync.RWMutex
	state   any
	invalid bool
}

// New builds an item from its definition and checks the format/kind invariants.
func New(d Def) (*Item, error) {
	it := &Item{
		Address: d.Address,
		Name:    d.Name,
		Format:  d.Format,
		Kind:    d.Kind,
		Group:   d.Group,
		Scaling: d.Scaling,
		Enum:    d.Enum,
		Aux:     d.Aux,
	}
	if err := it.Validate(); err != nil {
		return nil, err
	}
	return it, nil
}

// Build constructs every item of a definition table.
// Names must be unique; all errors are reported together.
func Build(defs []Def) ([]*Item, error) {
	items := make([]*Item, 0, len(defs))
	seen := make(map[string]struct{}, len(defs))

	var errs []error
	for _, d := range defs {
		if _, dup := seen[d.Name]; dup {
			errs = append(errs, fmt.Errorf("item %q: duplicate name", d.Name))
			continue
		}
		seen[d.Name] = struct{}{}

		it, err := New(d)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		items = append(items, it)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

// Validate checks that exactly one of Scaling or Enum is populated,
// matching the format, and that derived items carry auxiliary registers.
func (it *Item) Validate() error {
	if it.Name == "" {
		return fmt.Errorf("item at address %d: name required", it.Address)
	}
	if _, ok := kindNames[it.Kind]; !ok {
		return fmt.Errorf("item %q: invalid kind %d", it.Name, it.Kind)
	}
	if it.Scaling != nil && it.Enum != nil {
		return fmt.Errorf("item %q: both scaling and enum table set", it.Name)
	}

	if it.Format.Enumerated() {
		if it.Enum == nil {
			return fmt.Errorf("item %q: status format requires an enum table", it.Name)
		}
		if it.Kind == KindNumber || it.Kind == KindNumberRO {
			return fmt.Errorf("item %q: status format on numeric kind %s", it.Name, it.Kind)
		}
	} else {
		if it.Scaling == nil {
			return fmt.Errorf("item %q: %s format requires scaling", it.Name, it.Format)
		}
		if it.Scaling.Divider <= 0 {
			return fmt.Errorf("item %q: divider must be > 0", it.Name)
		}
		if it.Scaling.Max < it.Scaling.Min {
			return fmt.Errorf("item %q: max %v below min %v", it.Name, it.Scaling.Max, it.Scaling.Min)
		}
		if it.Kind == KindSelect {
			return fmt.Errorf("item %q: select kind requires status format", it.Name)
		}
	}

	if it.Kind.Derived() != (it.Aux != nil) {
		if it.Aux == nil {
			return fmt.Errorf("item %q: derived item requires auxiliary registers", it.Name)
		}
		return fmt.Errorf("item %q: auxiliary registers on non-derived kind %s", it.Name, it.Kind)
	}

	return nil
}

// ---- conversions ----

// Decode converts a raw register value into the item's engineering value.
func (it *Item) Decode(raw int) (any, error) {
	if it.Format.Enumerated() {
		if it.Enum == nil {
			return nil, &DecodeError{Item: it.Name, Raw: raw, Reason: "no enum table"}
		}
		key, ok := it.Enum.Key(raw)
		if !ok {
			return nil, &DecodeError{Item: it.Name, Raw: raw, Reason: "code not in enum table"}
		}
		return key, nil
	}

	if it.Scaling == nil || it.Scaling.Divider <= 0 {
		return nil, &DecodeError{Item: it.Name, Raw: raw, Reason: "no scaling"}
	}
	return float64(raw) / it.Scaling.Divider, nil
}

// Encode is the inverse of Decode. Numeric values outside [Min, Max] are rejected.
func (it *Item) Encode(v any) (int, error) {
	if it.Format.Enumerated() {
		key, ok := v.(string)
		if !ok {
			return 0, &EncodeError{Item: it.Name, Value: v, Reason: "enum value must be a key"}
		}
		if it.Enum == nil {
			return 0, &EncodeError{Item: it.Name, Value: v, Reason: "no enum table"}
		}
		code, ok := it.Enum.Code(key)
		if !ok {
			return 0, &EncodeError{Item: it.Name, Value: v, Reason: "unknown key"}
		}
		return code, nil
	}

	f, ok := toFloat(v)
	if !ok {
		return 0, &EncodeError{Item: it.Name, Value: v, Reason: "not a number"}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &EncodeError{Item: it.Name, Value: v, Reason: "not finite"}
	}
	if it.Scaling == nil || it.Scaling.Divider <= 0 {
		return 0, &EncodeError{Item: it.Name, Value: v, Reason: "no scaling"}
	}
	s := it.Scaling
	if s.Max > s.Min && (f < s.Min || f > s.Max) {
		return 0, &EncodeError{
			Item:   it.Name,
			Value:  v,
			Reason: fmt.Sprintf("outside range [%v, %v]", s.Min, s.Max),
		}
	}

	return int(math.Round(f * s.Divider)), nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int16:
		return float64(n), true
	case uint16:
		return float64(n), true
	default:
		return 0, false
	}
}

// ---- state ----

// Snapshot returns the current state and invalid flag together.
func (it *Item) Snapshot() (any, bool) {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.state, it.invalid
}

// State returns the last stored value; nil means no valid reading.
func (it *Item) State() any {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.state
}

// Invalid reports whether the last raw read was a device sentinel.
func (it *Item) Invalid() bool {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.invalid
}

// Store replaces state and invalid flag and reports whether either changed.
func (it *Item) Store(state any, invalid bool) bool {
	it.mu.Lock()
	defer it.mu.Unlock()

	changed := it.state != state || it.invalid != invalid
	it.state = state
	it.invalid = invalid
	return changed
}
