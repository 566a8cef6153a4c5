// internal/metrics/exporter.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/wbb-modbus/internal/curve"
	"github.com/tamzrod/wbb-modbus/internal/item"
	"github.com/tamzrod/wbb-modbus/internal/poller"
	"github.com/tamzrod/wbb-modbus/internal/readout"
	"github.com/tamzrod/wbb-modbus/internal/status"
)

const namespace = "wbb"

// Exporter publishes the latest item values and device health on its own
// registry. Historical values are not kept.
type Exporter struct {
	device string
	curve  *curve.Map
	reg    *prometheus.Registry

	value   *prometheus.GaugeVec
	state   *prometheus.GaugeVec
	invalid *prometheus.GaugeVec

	health         *prometheus.GaugeVec
	lastErrorCode  *prometheus.GaugeVec
	secondsInError *prometheus.GaugeVec

	cycles     *prometheus.CounterVec
	itemErrors *prometheus.CounterVec
}

// New creates an exporter for one device label. m may be nil.
func New(device string, m *curve.Map) *Exporter {
	e := &Exporter{
		device: device,
		curve:  m,
		reg:    prometheus.NewRegistry(),

		value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "item_value",
			Help:      "Latest decoded value of a numeric item.",
		}, []string{"device", "item", "group", "unit"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "item_state",
			Help:      "1 for the current key of an enumerated item, 0 for the others.",
		}, []string{"device", "item", "group", "state"}),
		invalid: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "item_invalid",
			Help:      "1 when the device reported a sentinel for the item.",
		}, []string{"device", "item"}),

		health: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_health",
			Help:      "Device health code (0 unknown, 1 ok, 2 error, 3 stale, 4 disabled).",
		}, []string{"device"}),
		lastErrorCode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_last_error_code",
			Help:      "Last error code, 0 when healthy.",
		}, []string{"device"}),
		secondsInError: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_seconds_in_error",
			Help:      "Seconds the device has been in error.",
		}, []string{"device"}),

		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "Poll cycles by sweep mode and result.",
		}, []string{"device", "sweep", "result"}),
		itemErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_errors_total",
			Help:      "Per-item decode failures.",
		}, []string{"device", "item"}),
	}

	e.reg.MustRegister(
		e.value, e.state, e.invalid,
		e.health, e.lastErrorCode, e.secondsInError,
		e.cycles, e.itemErrors,
	)
	return e
}

// Registry exposes the registry for tests and extra collectors.
func (e *Exporter) Registry() *prometheus.Registry { return e.reg }

// Handler serves the registry.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.reg, promhttp.HandlerOpts{})
}

// ObserveCycle counts the cycle and refreshes the items it changed.
func (e *Exporter) ObserveCycle(res poller.CycleResult, items []*item.Item) {
	result := "ok"
	if res.Err != nil {
		result = "error"
	}
	e.cycles.WithLabelValues(e.device, res.Sweep.Mode.String(), result).Inc()

	for name := range res.ItemErrors {
		e.itemErrors.WithLabelValues(e.device, name).Inc()
	}

	for _, idx := range res.Changed {
		if idx >= 0 && idx < len(items) {
			e.Update(items[idx])
		}
	}
}

// Update publishes the current value of one item.
func (e *Exporter) Update(it *item.Item) {
	group := it.Group.String()

	invalid := 0.0
	if it.Invalid() {
		invalid = 1
	}
	e.invalid.WithLabelValues(e.device, it.Name).Set(invalid)

	switch v := readout.Value(it, e.curve).(type) {
	case float64:
		e.value.WithLabelValues(e.device, it.Name, group, it.Format.Unit()).Set(v)
	case string:
		if it.Enum == nil {
			return
		}
		for _, key := range it.Enum.Keys() {
			on := 0.0
			if key == v {
				on = 1
			}
			e.state.WithLabelValues(e.device, it.Name, group, key).Set(on)
		}
	default:
		// no data: drop the stale sample
		e.value.DeleteLabelValues(e.device, it.Name, group, it.Format.Unit())
		if it.Enum != nil {
			for _, key := range it.Enum.Keys() {
				e.state.DeleteLabelValues(e.device, it.Name, group, key)
			}
		}
	}
}

// SetStatus publishes the device health snapshot.
func (e *Exporter) SetStatus(s status.Snapshot) {
	e.health.WithLabelValues(e.device).Set(float64(s.Health))
	e.lastErrorCode.WithLabelValues(e.device).Set(float64(s.LastErrorCode))
	e.secondsInError.WithLabelValues(e.device).Set(float64(s.SecondsInError))
}
