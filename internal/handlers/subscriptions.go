package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/response"
	"github.com/vidtube/backend/internal/services"
)

// SubscriptionHandler exposes channel subscriptions.
type SubscriptionHandler struct {
	Subscriptions *services.SubscriptionService
}

type subscriptionState struct {
	IsSubscribed bool `json:"isSubscribed"`
}

// Toggle handles POST /subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subscribed, err := h.Subscriptions.Toggle(ctx, actorID(r), chi.URLParam(r, "channelId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	message := "Unsubscribed successfully"
	if subscribed {
		message = "Subscribed successfully"
	}
	response.OK(ctx, w, message, subscriptionState{IsSubscribed: subscribed})
}

// Subscribers handles GET /subscriptions/c/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subscribers, err := h.Subscriptions.Subscribers(ctx, actorID(r), chi.URLParam(r, "channelId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Subscribers fetched successfully", subscribers)
}

// Channels handles GET /subscriptions/u/{subscriberId}.
func (h SubscriptionHandler) Channels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channels, err := h.Subscriptions.Channels(ctx, actorID(r), chi.URLParam(r, "subscriberId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.OK(ctx, w, "Subscribed channels fetched successfully", channels)
}
