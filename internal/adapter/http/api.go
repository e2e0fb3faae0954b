package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
)

const maxConfigBody = 1 << 16

// WaveService evaluates the wave and manages its live config.
// pipeline.Sampler implements it.
type WaveService interface {
	SnapshotAt(ctx context.Context, t time.Time) domain.Snapshot
	Config() domain.WaveConfig
	UpdateConfig(ctx context.Context, settings domain.WaveSettings) (domain.WaveConfig, error)
}

type api struct {
	svc    WaveService
	logger *slog.Logger
}

func (a *api) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/readings", a.handleReadings)
	mux.HandleFunc("GET /api/v1/readings/{sensor}", a.handleReading)
	mux.HandleFunc("GET /api/v1/evaluate", a.handleEvaluate)
	mux.HandleFunc("GET /api/v1/config", a.handleGetConfig)
	mux.HandleFunc("PUT /api/v1/config", a.handlePutConfig)
	mux.HandleFunc("GET /api/v1/convert", a.handleConvert)
}

func (a *api) handleReadings(w http.ResponseWriter, r *http.Request) {
	snap := a.svc.SnapshotAt(r.Context(), domain.Now())
	writeJSON(w, http.StatusOK, snap.Readings())
}

func (a *api) handleReading(w http.ResponseWriter, r *http.Request) {
	snap := a.svc.SnapshotAt(r.Context(), domain.Now())
	reading, err := snap.Reading(r.PathValue("sensor"))
	if errors.Is(err, domain.ErrUnknownSensor) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// handleEvaluate returns the full snapshot at ?at=RFC3339, or now when unset.
func (a *api) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	at := domain.Now()
	if v := r.URL.Query().Get("at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid at: %w", err))
			return
		}
		at = t
	}
	writeJSON(w, http.StatusOK, a.svc.SnapshotAt(r.Context(), at))
}

func (a *api) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.svc.Config().Settings())
}

// handlePutConfig applies a partial update: fields absent from the body keep
// their current value.
func (a *api) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	settings := a.svc.Config().Settings()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxConfigBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode config: %w", err))
		return
	}

	cfg, err := a.svc.UpdateConfig(r.Context(), settings)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidConfig) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg.Settings())
}

type conversion struct {
	Input  string  `json:"input"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Symbol string  `json:"symbol"`
}

func (a *api) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in, err := domain.ParseTemperature(q.Get("value"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	target, err := domain.ParseUnit(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	out := domain.Convert(in, target)
	writeJSON(w, http.StatusOK, conversion{
		Input:  in.String(),
		Value:  out.Value,
		Unit:   string(out.Unit),
		Symbol: domain.UnitSymbol(out.Unit),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // headers already sent
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
