package server

import (
	"context"
	"net/http"
	"runtime"
	"time"
)

// Version is reported by /healthz.
const Version = "0.1.0"

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Store     string `json:"store"`
	Backend   string `json:"backend"`
}

// handleHealth reports whether the store answers. The backend is not
// probed; its URL is listed for operators.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	resp := healthResponse{
		Status:    "healthy",
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Store:     "ok",
		Backend:   s.config.BackendURL,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		resp.Status = "unhealthy"
		resp.Store = "unavailable"
		respondError(w, reqID, http.StatusServiceUnavailable, "store unavailable", resp)
		return
	}
	respondOK(w, reqID, resp)
}
