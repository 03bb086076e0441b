package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-cozytouch/internal/hass"
)

const defaultWSPath = "/ws"

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware(false))
			r.Route("/entities", func(r chi.Router) {
				r.Get("/", s.handleListEntities)
				r.Get("/{id}", s.handleGetEntity)
			})
		})
	})

	wsPath := s.wsCfg.Path
	if wsPath == "" {
		wsPath = defaultWSPath
	}
	r.With(s.authMiddleware(true)).Get(wsPath, s.handleWebSocket)

	return r
}

// handleHealth reports bridge health. Returns 503 when MQTT is down or the
// last snapshot update failed.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	body := map[string]any{
		"version":  s.version,
		"entities": len(s.entities.Entities()),
	}

	if s.mqtt != nil {
		connected := s.mqtt.IsConnected()
		body["mqtt_connected"] = connected
		if !connected {
			status = "degraded"
		}
	}

	if s.coordinator != nil {
		ok := s.coordinator.LastUpdateSuccess()
		coord := map[string]any{"last_update_success": ok}
		if updated := s.coordinator.LastUpdated(); !updated.IsZero() {
			coord["last_updated"] = updated.UTC().Format(time.RFC3339)
		}
		if err := s.coordinator.LastError(); err != nil {
			coord["last_error"] = err.Error()
		}
		body["coordinator"] = coord
		if !ok {
			status = "degraded"
		}
	}

	body["status"] = status
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, body)
}

// handleListEntities returns every registered entity's state.
func (s *Server) handleListEntities(w http.ResponseWriter, _ *http.Request) {
	entities := s.entities.Entities()
	writeJSON(w, http.StatusOK, map[string]any{
		"entities": entities,
		"count":    len(entities),
	})
}

// handleGetEntity returns one entity's state.
func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	state, err := s.entities.Entity(id)
	if err != nil {
		if errors.Is(err, hass.ErrEntityNotFound) {
			writeNotFound(w, "entity not found")
			return
		}
		s.logger.Error("reading entity", "unique_id", id, "error", err)
		writeInternalError(w, "failed to read entity")
		return
	}

	writeJSON(w, http.StatusOK, state)
}
