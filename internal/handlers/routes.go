package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/response"
	"github.com/vidtube/backend/internal/services"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Services *services.Services
	Tokens   middleware.TokenVerifier
	Accounts middleware.UserLoader
	Limiter  middleware.RateLimiter
	Metrics  *middleware.Metrics
	Health   Pinger
	Logger   *slog.Logger

	Uploads        config.UploadConfig
	SecureCookies  bool
	CORSOrigin     string
	RequestTimeout time.Duration
}

// NewRouter wires every endpoint under /api/v1.
func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	svc := deps.Services
	cookies := sessionCookies{secure: deps.SecureCookies}
	authHandler := AuthHandler{Users: svc.Users, Uploads: deps.Uploads, Cookies: cookies}
	accounts := AccountHandler{Users: svc.Users, Uploads: deps.Uploads}
	videos := VideoHandler{Videos: svc.Videos, Uploads: deps.Uploads}
	tweets := TweetHandler{Tweets: svc.Tweets}
	comments := CommentHandler{Comments: svc.Comments}
	likes := LikeHandler{Likes: svc.Likes}
	playlists := PlaylistHandler{Playlists: svc.Playlists}
	subscriptions := SubscriptionHandler{Subscriptions: svc.Subscriptions}
	dashboard := DashboardHandler{Dashboard: svc.Dashboard}
	health := HealthHandler{Store: deps.Health}

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if deps.RequestTimeout > 0 {
		r.Use(chimw.Timeout(deps.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(r.Context(), w, apierrors.NotFound("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(r.Context(), w, &apierrors.Error{Status: http.StatusMethodNotAllowed, Message: "method not allowed"})
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", health.Handle)

		r.Route("/users", func(r chi.Router) {
			r.With(middleware.RateLimit(deps.Limiter, "register")).Post("/register", authHandler.Register)
			r.With(middleware.RateLimit(deps.Limiter, "login")).Post("/login", authHandler.Login)
			r.With(middleware.RateLimit(deps.Limiter, "refresh")).Post("/refresh-token", authHandler.Refresh)
			r.With(middleware.RateLimit(deps.Limiter, "reactivate")).Put("/reactivate", authHandler.Reactivate)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(deps.Tokens, deps.Accounts))
				r.Post("/logout", authHandler.Logout)
				r.Put("/deactivate", authHandler.Deactivate)
				r.Get("/current", accounts.Current)
				r.Put("/update", accounts.Update)
				r.Put("/change-password", accounts.ChangePassword)
				r.Patch("/avatar", accounts.Avatar)
				r.Patch("/cover-image", accounts.CoverImage)
				r.Get("/c/{username}", accounts.Channel)
				r.Get("/history", accounts.History)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(deps.Tokens, deps.Accounts))

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", videos.List)
				r.Post("/", videos.Publish)
				r.Get("/{videoId}", videos.Get)
				r.Patch("/{videoId}", videos.Update)
				r.Delete("/{videoId}", videos.Delete)
				r.Patch("/{videoId}/toggle-publish", videos.TogglePublish)
			})

			r.Route("/tweets", func(r chi.Router) {
				r.Post("/", tweets.Create)
				r.Get("/user/{userId}", tweets.ListByUser)
				r.Patch("/{tweetId}", tweets.Update)
				r.Delete("/{tweetId}", tweets.Delete)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Get("/video/{videoId}", comments.List)
				r.Post("/video/{videoId}", comments.Create)
				r.Patch("/{commentId}", comments.Update)
				r.Delete("/{commentId}", comments.Delete)
			})

			r.Route("/likes", func(r chi.Router) {
				r.Post("/toggle/{subject}/{subjectId}", likes.Toggle)
				r.Get("/videos", likes.LikedVideos)
			})

			r.Route("/playlists", func(r chi.Router) {
				r.Post("/", playlists.Create)
				r.Get("/user/{userId}", playlists.ListByUser)
				r.Get("/{playlistId}", playlists.Get)
				r.Patch("/{playlistId}", playlists.Update)
				r.Delete("/{playlistId}", playlists.Delete)
				r.Patch("/{playlistId}/add/{videoId}", playlists.AddVideo)
				r.Patch("/{playlistId}/remove/{videoId}", playlists.RemoveVideo)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/c/{channelId}", subscriptions.Toggle)
				r.Get("/c/{channelId}", subscriptions.Subscribers)
				r.Get("/u/{subscriberId}", subscriptions.Channels)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", dashboard.Stats)
				r.Get("/videos", dashboard.Videos)
			})
		})
	})

	return r
}
