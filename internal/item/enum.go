// internal/item/enum.go
package item

import "fmt"

// EnumEntry binds one raw device code to a symbolic key.
type EnumEntry struct {
	Code int
	Key  string
}

// EnumTable is an ordered, bidirectional code <-> key mapping.
// Lookups of undefined codes or keys fail; there is no default entry.
type EnumTable struct {
	entries []EnumEntry
	byCode  map[int]string
	byKey   map[string]int
}

// NewEnumTable builds a table. Codes and keys must be unique.
func NewEnumTable(entries ...EnumEntry) (*EnumTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("enum table: no entries")
	}

	t := &EnumTable{
		entries: make([]EnumEntry, 0, len(entries)),
		byCode:  make(map[int]string, len(entries)),
		byKey:   make(map[string]int, len(entries)),
	}

	for _, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("enum table: empty key for code %d", e.Code)
		}
		if prev, ok := t.byCode[e.Code]; ok {
			return nil, fmt.Errorf("enum table: code %d used by %q and %q", e.Code, prev, e.Key)
		}
		if prev, ok := t.byKey[e.Key]; ok {
			return nil, fmt.Errorf("enum table: key %q used by codes %d and %d", e.Key, prev, e.Code)
		}
		t.byCode[e.Code] = e.Key
		t.byKey[e.Key] = e.Code
		t.entries = append(t.entries, e)
	}

	return t, nil
}

// MustEnumTable is NewEnumTable for static definition tables.
func MustEnumTable(entries ...EnumEntry) *EnumTable {
	t, err := NewEnumTable(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// Key returns the symbolic key of a raw code.
func (t *EnumTable) Key(code int) (string, bool) {
	k, ok := t.byCode[code]
	return k, ok
}

// Code returns the raw code of a symbolic key.
func (t *EnumTable) Code(key string) (int, bool) {
	c, ok := t.byKey[key]
	return c, ok
}

// Keys returns the keys in definition order (the select options).
func (t *EnumTable) Keys() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Key
	}
	return out
}

// Entries returns a copy of the table in definition order.
func (t *EnumTable) Entries() []EnumEntry {
	out := make([]EnumEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
