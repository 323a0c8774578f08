package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/ekagra-app/ekagra/internal/server/sse"
	"github.com/ekagra-app/ekagra/pkg/models"
)

type startTimerRequest struct {
	Type     string  `json:"type"`
	Duration int     `json:"duration"`
	Task     *string `json:"task,omitempty"`
}

func (s *Service) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	var req startTimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	owner := ownerFromContext(r.Context())
	timer, err := s.engine.StartSession(r.Context(), owner, models.TimerKind(req.Type), req.Duration, req.Task)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	s.events.Broadcast(owner, sse.Event{Type: "timer:started", Timer: timer})
	writeSuccess(w, http.StatusCreated, map[string]interface{}{"timer": timer})
}

func (s *Service) handleEndTimer(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())
	timer, err := s.engine.EndSession(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	s.events.Broadcast(owner, sse.Event{Type: "timer:ended", Timer: timer})
	writeSuccess(w, http.StatusOK, map[string]interface{}{"timer": timer})
}

func (s *Service) handleTimerHistory(w http.ResponseWriter, r *http.Request) {
	filter := models.HistoryFilter{}
	if kind := r.URL.Query().Get("type"); kind != "" {
		k := models.TimerKind(kind)
		if !k.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid timer type")
			return
		}
		filter.Kind = &k
	}

	var err error
	filter.Start, err = parseTimeParam(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	filter.End, err = parseTimeParam(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}

	timers, err := s.engine.QueryHistory(r.Context(), ownerFromContext(r.Context()), filter)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"timers": timers})
}

func (s *Service) handleTimerStats(w http.ResponseWriter, r *http.Request) {
	start, err := parseTimeParam(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	end, err := parseTimeParam(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}

	stats, err := s.engine.ComputeStats(r.Context(), ownerFromContext(r.Context()), start, end)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

// parseTimeParam accepts RFC3339 timestamps or bare dates.
func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
