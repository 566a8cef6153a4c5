// internal/poller/fetch.go
package poller

import (
	"context"

	"github.com/tamzrod/wbb-modbus/internal/channel"
	"github.com/tamzrod/wbb-modbus/internal/item"
)

// fetcher reads one item and stores its new state.
// A *channel.TransportError aborts the cycle; any other error is per item.
type fetcher interface {
	fetch(ctx context.Context, ch *channel.Channel, it *item.Item) (changed bool, err error)
}

// fetcherFor is resolved once per item when the poller is built.
func fetcherFor(k item.Kind) fetcher {
	if k.Derived() {
		return derivedFetcher{}
	}
	return directFetcher{}
}

// directFetcher serves sensors, numbers and selects: one read, decode, store.
type directFetcher struct{}

func (directFetcher) fetch(ctx context.Context, ch *channel.Channel, it *item.Item) (bool, error) {
	return ch.Fetch(ctx, it)
}

// derivedFetcher reads the primary register and the x and y coordinates and
// stores the raw triple. x falls back to X2 when X yields no value.
type derivedFetcher struct{}

func (derivedFetcher) fetch(ctx context.Context, ch *channel.Channel, it *item.Item) (bool, error) {
	var c item.Components

	raw, invalid, err := ch.Read(ctx, it)
	if err != nil {
		return false, err
	}
	if !invalid {
		c.Primary = item.Some(raw)
	}

	c.X, err = ch.ReadAux(ctx, it.Aux.X)
	if err != nil {
		return false, err
	}
	if !c.X.OK && it.Aux.X2 != 0 {
		c.X, err = ch.ReadAux(ctx, it.Aux.X2)
		if err != nil {
			return false, err
		}
	}

	c.Y, err = ch.ReadAux(ctx, it.Aux.Y)
	if err != nil {
		return false, err
	}

	return it.Store(c, false), nil
}
