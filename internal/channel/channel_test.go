// internal/channel/channel_test.go
package channel

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/wbb-modbus/internal/item"
)

// fakeTransport serves registers from maps and fails the first
// failReads/failWrites calls.
type fakeTransport struct {
	input   map[uint16]uint16
	holding map[uint16]uint16

	failReads    int
	failWrites   int
	reconnectErr error

	reads      int
	writes     int
	reconnects int
}

var errLink = errors.New("link down")

func (f *fakeTransport) ReadInputRegister(addr uint16) (uint16, error) {
	f.reads++
	if f.failReads > 0 {
		f.failReads--
		return 0, errLink
	}
	return f.input[addr], nil
}

func (f *fakeTransport) ReadHoldingRegister(addr uint16) (uint16, error) {
	f.reads++
	if f.failReads > 0 {
		f.failReads--
		return 0, errLink
	}
	return f.holding[addr], nil
}

func (f *fakeTransport) WriteRegister(addr, value uint16) error {
	f.writes++
	if f.failWrites > 0 {
		f.failWrites--
		return errLink
	}
	if f.holding == nil {
		f.holding = map[uint16]uint16{}
	}
	f.holding[addr] = value
	return nil
}

func (f *fakeTransport) Reconnect() error {
	f.reconnects++
	return f.reconnectErr
}

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func mustItem(t *testing.T, d item.Def) *item.Item {
	t.Helper()
	it, err := item.New(d)
	require.NoError(t, err)
	return it
}

var (
	tempScaling    = &item.Scaling{Min: -60, Max: 100, Step: 0.1, Divider: 10}
	percentScaling = &item.Scaling{Min: 0, Max: 100, Step: 1, Divider: 1}
	modes          = item.MustEnumTable(item.EnumEntry{Code: 0, Key: "off"}, item.EnumEntry{Code: 1, Key: "on"})
)

func tempSensor(t *testing.T) *item.Item {
	return mustItem(t, item.Def{Address: 30001, Name: "outdoor", Format: item.FormatTemperature, Kind: item.KindSensor, Group: item.GroupSystem, Scaling: tempScaling})
}

func modeSelect(t *testing.T) *item.Item {
	return mustItem(t, item.Def{Address: 40001, Name: "mode", Format: item.FormatStatus, Kind: item.KindSelect, Group: item.GroupSystem, Enum: modes})
}

func TestRead_SignedTemperature(t *testing.T) {
	tr := &fakeTransport{input: map[uint16]uint16{30001: uint16(0xFFDD)}} // -35
	ch := New(tr, quiet())

	raw, invalid, err := ch.Read(context.Background(), tempSensor(t))
	require.NoError(t, err)
	assert.False(t, invalid)
	assert.Equal(t, -35, raw)
}

func TestRead_Sentinels(t *testing.T) {
	pct := mustItem(t, item.Def{Address: 30010, Name: "pct", Format: item.FormatPercentage, Kind: item.KindSensor, Scaling: percentScaling})

	cases := []struct {
		name string
		it   *item.Item
		v    uint16
	}{
		{"no sensor", tempSensor(t), 0x8000},
		{"broken sensor", tempSensor(t), 0x8001},
		{"percentage", pct, 0xFFFF},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := &fakeTransport{input: map[uint16]uint16{tc.it.Address: tc.v}}
			_, invalid, err := New(tr, quiet()).Read(context.Background(), tc.it)
			require.NoError(t, err)
			assert.True(t, invalid)
		})
	}
}

func TestRead_HoldingTable(t *testing.T) {
	tr := &fakeTransport{
		input:   map[uint16]uint16{40001: 0},
		holding: map[uint16]uint16{40001: 1},
	}
	raw, _, err := New(tr, quiet()).Read(context.Background(), modeSelect(t))
	require.NoError(t, err)
	assert.Equal(t, 1, raw)
}

func TestRead_RetriesOnceAfterReconnect(t *testing.T) {
	tr := &fakeTransport{input: map[uint16]uint16{30001: 215}, failReads: 1}

	raw, _, err := New(tr, quiet()).Read(context.Background(), tempSensor(t))
	require.NoError(t, err)
	assert.Equal(t, 215, raw)
	assert.Equal(t, 1, tr.reconnects)
	assert.Equal(t, 2, tr.reads)
}

func TestRead_TransportErrorAfterRetry(t *testing.T) {
	tr := &fakeTransport{failReads: 2}

	_, _, err := New(tr, quiet()).Read(context.Background(), tempSensor(t))
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "read", te.Op)
	assert.Equal(t, uint16(30001), te.Address)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, errLink)
	assert.Equal(t, 1, tr.reconnects)
}

func TestRead_ReconnectFailure(t *testing.T) {
	dial := errors.New("dial refused")
	tr := &fakeTransport{failReads: 1, reconnectErr: dial}

	_, _, err := New(tr, quiet()).Read(context.Background(), tempSensor(t))
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, dial)
	assert.Equal(t, 1, tr.reads)
}

func TestRead_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &fakeTransport{}
	_, _, err := New(tr, quiet()).Read(ctx, tempSensor(t))
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, tr.reads)
}

func TestWrite_ReadOnlyRejectedBeforeIO(t *testing.T) {
	tr := &fakeTransport{}

	err := New(tr, quiet()).Write(context.Background(), tempSensor(t), 10)
	var ie *InvalidOperationError
	require.ErrorAs(t, err, &ie)
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.Zero(t, tr.writes)
	assert.Zero(t, tr.reconnects)
}

func TestWrite_RetryAndStore(t *testing.T) {
	tr := &fakeTransport{failWrites: 1}

	err := New(tr, quiet()).Write(context.Background(), modeSelect(t), 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), tr.holding[40001])
	assert.Equal(t, 2, tr.writes)
	assert.Equal(t, 1, tr.reconnects)
}

func TestWrite_NegativeRawTwoComplement(t *testing.T) {
	it := mustItem(t, item.Def{Address: 40100, Name: "offset", Format: item.FormatTemperature, Kind: item.KindNumber, Scaling: tempScaling})
	tr := &fakeTransport{}

	require.NoError(t, New(tr, quiet()).Write(context.Background(), it, -35))
	assert.Equal(t, uint16(0xFFDD), tr.holding[40100])

	err := New(tr, quiet()).Write(context.Background(), it, 70000)
	assert.ErrorIs(t, err, item.ErrEncode)
}

func TestFetch(t *testing.T) {
	tr := &fakeTransport{input: map[uint16]uint16{30001: 215}}
	ch := New(tr, quiet())
	it := tempSensor(t)

	changed, err := ch.Fetch(context.Background(), it)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 21.5, it.State())

	tr.input[30001] = 0x8000
	changed, err = ch.Fetch(context.Background(), it)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, it.State())
	assert.True(t, it.Invalid())
}

func TestFetch_DecodeErrorLeavesState(t *testing.T) {
	it := modeSelect(t)
	it.Store("on", false)

	tr := &fakeTransport{holding: map[uint16]uint16{40001: 9}}
	changed, err := New(tr, quiet()).Fetch(context.Background(), it)
	assert.ErrorIs(t, err, item.ErrDecode)
	assert.False(t, changed)
	assert.Equal(t, "on", it.State())
}

func TestReadAux(t *testing.T) {
	tr := &fakeTransport{input: map[uint16]uint16{30002: 200, 30001: 0x8000}}
	ch := New(tr, quiet())

	r, err := ch.ReadAux(context.Background(), 30002)
	require.NoError(t, err)
	assert.Equal(t, item.Some(200), r)

	r, err = ch.ReadAux(context.Background(), 30001)
	require.NoError(t, err)
	assert.False(t, r.OK)
}
