// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/tamzrod/wbb-modbus/internal/channel"
	"github.com/tamzrod/wbb-modbus/internal/item"
)

// Config is the runtime config the poller needs.
type Config struct {
	Interval     time.Duration
	CycleTimeout time.Duration

	// Groups gates optional groups (heating circuits 2..5).
	Groups map[item.Group]bool
}

// Poller owns the polling cadence of one device and decides, per cycle,
// which items to fetch and how.
type Poller struct {
	cfg      Config
	items    []*item.Item
	byName   map[string]int
	fetchers []fetcher
	ch       *channel.Channel
	subs     *Subscriptions
	log      *log.Logger

	mu      sync.RWMutex
	groups  GroupGate
	written map[int]struct{} // indices changed by Write, not yet published
}

// New creates a poller over a built catalogue.
// A nil logger uses log.Default().
func New(cfg Config, items []*item.Item, tr channel.Transport, logger *log.Logger) (*Poller, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.CycleTimeout <= 0 {
		return nil, errors.New("poller: cycle timeout must be > 0")
	}
	if len(items) == 0 {
		return nil, errors.New("poller: at least one item required")
	}
	if tr == nil {
		return nil, errors.New("poller: transport required")
	}
	if logger == nil {
		logger = log.Default()
	}

	p := &Poller{
		cfg:      cfg,
		items:    items,
		byName:   make(map[string]int, len(items)),
		fetchers: make([]fetcher, len(items)),
		ch:       channel.New(tr, logger),
		subs:     NewSubscriptions(),
		log:      logger,
		groups:   NewGroupGate(cfg.Groups),
	}
	for i, it := range items {
		if _, dup := p.byName[it.Name]; dup {
			return nil, fmt.Errorf("poller: duplicate item %q", it.Name)
		}
		p.byName[it.Name] = i
		p.fetchers[i] = fetcherFor(it.Kind)
	}
	return p, nil
}

// Items returns the catalogue in index order.
func (p *Poller) Items() []*item.Item { return p.items }

// Index returns the catalogue index of a named item.
func (p *Poller) Index(name string) (int, bool) {
	i, ok := p.byName[name]
	return i, ok
}

// Subscriptions returns the listener registry driving Run.
func (p *Poller) Subscriptions() *Subscriptions { return p.subs }

// SetGroups replaces the group flags. It takes effect on the next cycle.
func (p *Poller) SetGroups(flags map[item.Group]bool) {
	g := NewGroupGate(flags)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.groups = g
}

func (p *Poller) gate() GroupGate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.groups
}

// PollOnce performs exactly one poll cycle over sw.
// The cycle runs under CycleTimeout. A transport failure stops the cycle;
// items fetched before it keep their new state.
func (p *Poller) PollOnce(ctx context.Context, sw Sweep) CycleResult {
	res := CycleResult{
		At:    time.Now(),
		Sweep: sw,
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.CycleTimeout)
	defer cancel()

	gate := p.gate()

	for _, idx := range p.scope(sw) {
		it := p.items[idx]
		if !gate.Enabled(it.Group) {
			res.Skipped++
			continue
		}

		changed, err := p.fetchers[idx].fetch(ctx, p.ch, it)
		if err != nil {
			if errors.Is(err, channel.ErrTransport) {
				p.log.Printf("warning: connection to the heat pump failed (item=%s): %v", it.Name, err)
				res.Err = err
				break
			}
			p.log.Printf("item fetch failed (item=%s): %v", it.Name, err)
			if res.ItemErrors == nil {
				res.ItemErrors = make(map[string]error)
			}
			res.ItemErrors[it.Name] = err
			continue
		}

		res.Fetched++
		if changed {
			res.Changed = append(res.Changed, idx)
		}
	}

	res.Changed = p.publishWritten(res.Changed)
	return res
}

// publishWritten appends the indices changed by Write since the last cycle.
func (p *Poller) publishWritten(changed []int) []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	for idx := range p.written {
		if !slices.Contains(changed, idx) {
			changed = append(changed, idx)
		}
	}
	clear(p.written)
	return changed
}

// scope resolves a sweep to catalogue indices. Out-of-range indices are
// dropped and duplicates removed.
func (p *Poller) scope(sw Sweep) []int {
	if sw.Mode == SweepFull {
		all := make([]int, len(p.items))
		for i := range all {
			all[i] = i
		}
		return all
	}

	out := make([]int, 0, len(sw.Indices))
	for _, idx := range sw.Indices {
		if idx >= 0 && idx < len(p.items) {
			out = append(out, idx)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Write encodes value for the named item and writes it to the device.
// On success the item state is updated without waiting for the next cycle
// and the item is reported in the next CycleResult.Changed.
func (p *Poller) Write(ctx context.Context, name string, value any) error {
	idx, ok := p.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	it := p.items[idx]

	if !it.Kind.Writable() {
		return &channel.InvalidOperationError{Item: it.Name, Reason: "kind " + it.Kind.String() + " is read-only"}
	}
	if !p.gate().Enabled(it.Group) {
		return fmt.Errorf("%w: item %q in %s", ErrGroupDisabled, it.Name, it.Group)
	}

	raw, err := it.Encode(value)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.CycleTimeout)
	defer cancel()

	if err := p.ch.Write(ctx, it, raw); err != nil {
		return err
	}

	if v, err := it.Decode(raw); err == nil && it.Store(v, false) {
		p.mu.Lock()
		if p.written == nil {
			p.written = make(map[int]struct{})
		}
		p.written[idx] = struct{}{}
		p.mu.Unlock()
	}
	return nil
}

// Available probes one item: false when its group is disabled or the device
// answers with a sentinel. Used to decide which items are worth exposing.
func (p *Poller) Available(ctx context.Context, name string) (bool, error) {
	idx, ok := p.byName[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	it := p.items[idx]

	if !p.gate().Enabled(it.Group) {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.CycleTimeout)
	defer cancel()

	_, invalid, err := p.ch.Read(ctx, it)
	if err != nil {
		return false, err
	}
	return !invalid, nil
}
