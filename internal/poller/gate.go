// internal/poller/gate.go
package poller

import "github.com/tamzrod/wbb-modbus/internal/item"

// GroupGate resolves whether a group is enabled.
// Groups without an entry are always enabled.
type GroupGate map[item.Group]bool

// NewGroupGate copies flags so later changes by the caller are not observed
// mid-cycle.
func NewGroupGate(flags map[item.Group]bool) GroupGate {
	g := make(GroupGate, len(flags))
	for k, v := range flags {
		g[k] = v
	}
	return g
}

func (g GroupGate) Enabled(grp item.Group) bool {
	on, ok := g[grp]
	return !ok || on
}
