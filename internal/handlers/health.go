package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/response"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds with service health information.
type HealthHandler struct {
	Store Pinger
}

// Handle implements GET /healthcheck.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Store != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.Store.Ping(pingCtx); err != nil {
			response.Error(ctx, w, apierrors.Unavailable("database unavailable", err))
			return
		}
	}

	response.OK(ctx, w, "OK", map[string]string{"status": "ok"})
}
