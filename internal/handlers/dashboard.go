package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/response"
	"github.com/vidtube/backend/internal/services"
)

// DashboardHandler exposes the channel owner's statistics.
type DashboardHandler struct {
	Dashboard *services.DashboardService
}

// Stats handles GET /dashboard/stats.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.Dashboard.Stats(ctx, actorID(r))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Channel stats fetched successfully", stats)
}

// Videos handles GET /dashboard/videos.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videos, err := h.Dashboard.Videos(ctx, actorID(r))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Channel videos fetched successfully", videos)
}
