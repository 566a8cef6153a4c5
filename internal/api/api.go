// internal/api/api.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/tamzrod/wbb-modbus/internal/channel"
	"github.com/tamzrod/wbb-modbus/internal/curve"
	"github.com/tamzrod/wbb-modbus/internal/item"
	"github.com/tamzrod/wbb-modbus/internal/poller"
	"github.com/tamzrod/wbb-modbus/internal/readout"
	"github.com/tamzrod/wbb-modbus/internal/status"
)

// Backend is the part of the poller the API drives.
type Backend interface {
	Items() []*item.Item
	Index(name string) (int, bool)
	Write(ctx context.Context, name string, value any) error
	Available(ctx context.Context, name string) (bool, error)
}

// Server exposes item values, writes and device health as JSON.
type Server struct {
	backend Backend
	curve   *curve.Map
	health  *status.Tracker
	log     *log.Logger
}

// New builds the server. m and health may be nil.
func New(b Backend, m *curve.Map, health *status.Tracker, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{backend: b, curve: m, health: health, log: logger}
}

// Handler returns the routed mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/items", s.listItems)
	mux.HandleFunc("GET /api/items/{name}", s.getItem)
	mux.HandleFunc("POST /api/items/{name}", s.writeItem)
	mux.HandleFunc("GET /api/items/{name}/available", s.available)
	mux.HandleFunc("GET /api/status", s.getStatus)
	return mux
}

// ---- views ----

type itemView struct {
	Name       string   `json:"name"`
	Address    uint16   `json:"address"`
	Group      string   `json:"group"`
	Kind       string   `json:"kind"`
	Format     string   `json:"format"`
	Unit       string   `json:"unit,omitempty"`
	StateClass string   `json:"state_class,omitempty"`
	Writable   bool     `json:"writable"`
	Value      any      `json:"value"`
	Invalid    bool     `json:"invalid"`
	Options    []string `json:"options,omitempty"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
	Step       *float64 `json:"step,omitempty"`
}

func (s *Server) view(it *item.Item) itemView {
	v := itemView{
		Name:       it.Name,
		Address:    it.Address,
		Group:      it.Group.String(),
		Kind:       it.Kind.String(),
		Format:     it.Format.String(),
		Unit:       it.Format.Unit(),
		StateClass: it.Format.StateClass(),
		Writable:   it.Kind.Writable(),
		Value:      readout.Value(it, s.curve),
		Invalid:    it.Invalid(),
	}
	if it.Enum != nil {
		v.Options = it.Enum.Keys()
	}
	if it.Kind.Writable() && it.Scaling != nil {
		sc := *it.Scaling
		v.Min, v.Max, v.Step = &sc.Min, &sc.Max, &sc.Step
	}
	return v
}

type statusView struct {
	Health         string     `json:"health"`
	LastErrorCode  uint16     `json:"last_error_code"`
	SecondsInError uint16     `json:"seconds_in_error"`
	LastSuccess    *time.Time `json:"last_success,omitempty"`
}

type writeRequest struct {
	Value any `json:"value"`
}

type errorView struct {
	Error string `json:"error"`
}

// ---- handlers ----

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	items := s.backend.Items()
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		out = append(out, s.view(it))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	it, ok := s.lookup(r.PathValue("name"))
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorView{Error: "unknown item"})
		return
	}
	s.writeJSON(w, http.StatusOK, s.view(it))
}

func (s *Server) writeItem(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req writeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096))
	if err := dec.Decode(&req); err != nil || req.Value == nil {
		s.writeJSON(w, http.StatusBadRequest, errorView{Error: "body must be {\"value\": ...}"})
		return
	}

	if err := s.backend.Write(r.Context(), name, req.Value); err != nil {
		code := statusFor(err)
		if code >= http.StatusInternalServerError {
			s.log.Printf("api: write failed (item=%s): %v", name, err)
		}
		s.writeJSON(w, code, errorView{Error: err.Error()})
		return
	}

	it, _ := s.lookup(name)
	s.writeJSON(w, http.StatusOK, s.view(it))
}

func (s *Server) available(w http.ResponseWriter, r *http.Request) {
	ok, err := s.backend.Available(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeJSON(w, statusFor(err), errorView{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"available": ok})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		s.writeJSON(w, http.StatusOK, statusView{Health: status.HealthName(status.HealthUnknown)})
		return
	}

	snap := s.health.Snapshot()
	v := statusView{
		Health:         status.HealthName(snap.Health),
		LastErrorCode:  snap.LastErrorCode,
		SecondsInError: snap.SecondsInError,
	}
	if !snap.LastSuccess.IsZero() {
		v.LastSuccess = &snap.LastSuccess
	}
	s.writeJSON(w, http.StatusOK, v)
}

// ---- helpers ----

func (s *Server) lookup(name string) (*item.Item, bool) {
	idx, ok := s.backend.Index(name)
	if !ok {
		return nil, false
	}
	return s.backend.Items()[idx], true
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("api: encode response: %v", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, poller.ErrUnknownItem):
		return http.StatusNotFound
	case errors.Is(err, channel.ErrInvalidOperation):
		return http.StatusMethodNotAllowed
	case errors.Is(err, poller.ErrGroupDisabled):
		return http.StatusConflict
	case errors.Is(err, item.ErrEncode):
		return http.StatusBadRequest
	case errors.Is(err, channel.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
