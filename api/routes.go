package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MayankGitHub86/solvehub-sub000/internal/achievements"
	"github.com/MayankGitHub86/solvehub-sub000/internal/auth"
	"github.com/MayankGitHub86/solvehub-sub000/internal/config"
	"github.com/MayankGitHub86/solvehub-sub000/internal/notify"
	"github.com/MayankGitHub86/solvehub-sub000/internal/reputation"
	"github.com/MayankGitHub86/solvehub-sub000/internal/socket"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository"
)

// Services are the components the router dispatches to. They are built once
// in main and shared with the background workers.
type Services struct {
	Store      repository.Store
	DB         Pinger
	Reputation *reputation.Service
	Badges     *achievements.Evaluator
	Notifier   Notifier
	Hub        *socket.Hub
	Streams    *notify.Streams
	Presence   Presence
	Tokens     *auth.Tokens
}

func SetupRoutes(cfg *config.Config, version, buildTime string, svc Services) (*mux.Router, error) {
	validator, err := socket.NewFrameValidator()
	if err != nil {
		return nil, fmt.Errorf("socket frame validator: %w", err)
	}

	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	limiter := NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	limited := func(h http.HandlerFunc) http.Handler { return limiter.Middleware(h) }

	// Create handlers
	systemHandler := NewSystemHandler(svc.DB, svc.Presence)
	authHandler := NewAuthHandler(svc.Store, svc.Tokens)
	voteHandler := NewVoteHandler(svc.Reputation)
	contentHandler := NewContentHandler(svc.Store, svc.Reputation, svc.Notifier, svc.Hub)
	notificationHandler := NewNotificationHandler(svc.Store)
	badgeHandler := NewBadgeHandler(svc.Store, svc.Store, svc.Badges)
	liveHandler := NewLiveHandler(svc.Tokens, svc.Hub, socket.NewUpgrader(cfg.Realtime.AllowedOrigins), validator, svc.Streams, svc.Presence)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/ws", liveHandler.Socket).Methods("GET")
	r.HandleFunc("/events", liveHandler.Events).Methods("GET")
	r.Handle("/v1/auth/signup", limited(authHandler.Signup)).Methods("POST")
	r.Handle("/v1/auth/signin", limited(authHandler.Signin)).Methods("POST")

	r.HandleFunc("/v1/badges", badgeHandler.Catalog).Methods("GET")
	r.HandleFunc("/v1/leaderboard", badgeHandler.Leaderboard).Methods("GET")
	r.HandleFunc("/v1/users/{id:[0-9]+}/badges", badgeHandler.UserBadges).Methods("GET")
	r.HandleFunc("/v1/users/{id:[0-9]+}/badges/progress", badgeHandler.Progress).Methods("GET")
	r.HandleFunc("/v1/presence/online", liveHandler.OnlineCount).Methods("GET")
	r.HandleFunc("/v1/presence/{id:[0-9]+}", liveHandler.IsOnline).Methods("GET")
	r.HandleFunc("/v1/questions/{id:[0-9]+}", contentHandler.GetQuestion).Methods("GET")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddleware(svc.Tokens))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")
	apiV1.HandleFunc("/me", authHandler.Me).Methods("GET")

	// Votes are not rate limited: toggling is part of normal use.
	apiV1.HandleFunc("/votes", voteHandler.Cast).Methods("POST")
	apiV1.HandleFunc("/answers/{id:[0-9]+}/accept", voteHandler.Accept).Methods("POST")

	// Content endpoints
	apiV1.Handle("/questions", limited(contentHandler.CreateQuestion)).Methods("POST")
	apiV1.Handle("/questions/{id:[0-9]+}/answers", limited(contentHandler.CreateAnswer)).Methods("POST")
	apiV1.HandleFunc("/questions/{id:[0-9]+}/save", contentHandler.SaveQuestion).Methods("POST")
	apiV1.Handle("/comments", limited(contentHandler.CreateComment)).Methods("POST")
	apiV1.Handle("/messages", limited(contentHandler.SendMessage)).Methods("POST")

	// Notification endpoints
	apiV1.HandleFunc("/notifications", notificationHandler.List).Methods("GET")
	apiV1.HandleFunc("/notifications/unread-count", notificationHandler.UnreadCount).Methods("GET")
	apiV1.HandleFunc("/notifications/read-all", notificationHandler.MarkAllRead).Methods("POST")
	apiV1.HandleFunc("/notifications/{id:[0-9]+}/read", notificationHandler.MarkRead).Methods("POST")
	apiV1.HandleFunc("/notifications/{id:[0-9]+}", notificationHandler.Delete).Methods("DELETE")

	return r, nil
}
