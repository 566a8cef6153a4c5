// internal/api/api_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/wbb-modbus/internal/item"
	"github.com/tamzrod/wbb-modbus/internal/poller"
	"github.com/tamzrod/wbb-modbus/internal/status"
)

type fakeClient struct {
	mu      sync.Mutex
	input   map[uint16]uint16
	holding map[uint16]uint16
	down    bool
}

func (f *fakeClient) ReadInputRegister(addr uint16) (uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return 0, errors.New("connection refused")
	}
	return f.input[addr], nil
}

func (f *fakeClient) ReadHoldingRegister(addr uint16) (uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return 0, errors.New("connection refused")
	}
	return f.holding[addr], nil
}

func (f *fakeClient) WriteRegister(addr, value uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errors.New("connection refused")
	}
	f.holding[addr] = value
	return nil
}

func (f *fakeClient) Reconnect() error { return nil }

func (f *fakeClient) register(addr uint16) uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.holding[addr]
}

func setup(t *testing.T) (*httptest.Server, *fakeClient, *poller.Poller, *status.Tracker) {
	t.Helper()

	modes := item.MustEnumTable(
		item.EnumEntry{Code: 0, Key: "automatic"},
		item.EnumEntry{Code: 1, Key: "heating"},
	)
	items, err := item.Build([]item.Def{
		{Address: 30001, Name: "outdoor_temperature", Format: item.FormatTemperature, Kind: item.KindSensor, Group: item.GroupSystem,
			Scaling: &item.Scaling{Min: -60, Max: 100, Step: 0.1, Divider: 10}},
		{Address: 40001, Name: "system_mode", Format: item.FormatStatus, Kind: item.KindSelect, Group: item.GroupSystem, Enum: modes},
		{Address: 41201, Name: "hk2_comfort_temperature", Format: item.FormatTemperature, Kind: item.KindNumber, Group: item.GroupHeatingCircuit2,
			Scaling: &item.Scaling{Min: 5, Max: 30, Step: 0.5, Divider: 10}},
		{Address: 41101, Name: "hk1_comfort_temperature", Format: item.FormatTemperature, Kind: item.KindNumber, Group: item.GroupHeatingCircuit1,
			Scaling: &item.Scaling{Min: 5, Max: 30, Step: 0.5, Divider: 10}},
	})
	require.NoError(t, err)

	f := &fakeClient{
		input:   map[uint16]uint16{30001: 0xFFDD},
		holding: map[uint16]uint16{40001: 1, 41101: 210},
	}
	logger := log.New(io.Discard, "", 0)
	p, err := poller.New(poller.Config{
		Interval:     time.Second,
		CycleTimeout: time.Second,
		Groups:       map[item.Group]bool{item.GroupHeatingCircuit2: false},
	}, items, f, logger)
	require.NoError(t, err)

	tr := status.NewTracker()
	srv := httptest.NewServer(New(p, nil, tr, logger).Handler())
	t.Cleanup(srv.Close)
	return srv, f, p, tr
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestListItems(t *testing.T) {
	srv, _, p, _ := setup(t)
	p.PollOnce(context.Background(), poller.Full())

	resp, err := http.Get(srv.URL + "/api/items")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []itemView
	decode(t, resp, &got)
	require.Len(t, got, 4)

	assert.Equal(t, "outdoor_temperature", got[0].Name)
	assert.Equal(t, -3.5, got[0].Value)
	assert.Equal(t, "°C", got[0].Unit)
	assert.False(t, got[0].Writable)

	assert.Equal(t, "heating", got[1].Value)
	assert.Equal(t, []string{"automatic", "heating"}, got[1].Options)

	// disabled circuit never populates
	assert.Nil(t, got[2].Value)
	require.NotNil(t, got[3].Min)
	assert.Equal(t, 5.0, *got[3].Min)
}

func TestGetItem(t *testing.T) {
	srv, _, _, _ := setup(t)

	resp, err := http.Get(srv.URL + "/api/items/system_mode")
	require.NoError(t, err)
	var v itemView
	decode(t, resp, &v)
	assert.Equal(t, "select", v.Kind)
	assert.Nil(t, v.Value)

	resp, err = http.Get(srv.URL + "/api/items/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestWriteItem(t *testing.T) {
	srv, f, _, _ := setup(t)

	resp := post(t, srv.URL+"/api/items/hk1_comfort_temperature", `{"value": 22.5}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v itemView
	decode(t, resp, &v)
	assert.Equal(t, 22.5, v.Value)
	assert.Equal(t, uint16(225), f.register(41101))

	resp = post(t, srv.URL+"/api/items/system_mode", `{"value": "automatic"}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, uint16(0), f.register(40001))
}

func TestWriteItem_Errors(t *testing.T) {
	srv, f, _, _ := setup(t)

	cases := []struct {
		name string
		path string
		body string
		code int
	}{
		{"bad body", "system_mode", `not json`, http.StatusBadRequest},
		{"missing value", "system_mode", `{}`, http.StatusBadRequest},
		{"unknown item", "nope", `{"value": 1}`, http.StatusNotFound},
		{"read only", "outdoor_temperature", `{"value": 1}`, http.StatusMethodNotAllowed},
		{"disabled group", "hk2_comfort_temperature", `{"value": 21}`, http.StatusConflict},
		{"unknown key", "system_mode", `{"value": "party"}`, http.StatusBadRequest},
		{"out of range", "hk1_comfort_temperature", `{"value": 80}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/api/items/"+tc.path, tc.body)
			resp.Body.Close()
			assert.Equal(t, tc.code, resp.StatusCode)
		})
	}

	f.mu.Lock()
	f.down = true
	f.mu.Unlock()

	resp := post(t, srv.URL+"/api/items/system_mode", `{"value": "heating"}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestAvailable(t *testing.T) {
	srv, _, _, _ := setup(t)

	resp, err := http.Get(srv.URL + "/api/items/outdoor_temperature/available")
	require.NoError(t, err)
	var got map[string]bool
	decode(t, resp, &got)
	assert.True(t, got["available"])

	resp, err = http.Get(srv.URL + "/api/items/hk2_comfort_temperature/available")
	require.NoError(t, err)
	decode(t, resp, &got)
	assert.False(t, got["available"])
}

func TestStatus(t *testing.T) {
	srv, _, _, tr := setup(t)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tr.Observe(nil, at)

	resp, err := http.Get(srv.URL + "/api/status")
	require.NoError(t, err)

	var v statusView
	decode(t, resp, &v)
	assert.Equal(t, "ok", v.Health)
	require.NotNil(t, v.LastSuccess)
	assert.True(t, at.Equal(*v.LastSuccess))
}
