package http

import (
	"net/http"

	"ultimate-trivia/internal/app"
	"ultimate-trivia/internal/logging"

	"github.com/gorilla/mux"
)

// RouterDeps carries the handlers' collaborators.
type RouterDeps struct {
	Service       *app.QuizService
	Leaderboards  *app.LeaderboardService
	WebhookSecret string
	Log           logging.Logger
}

// NewRouter wires the full HTTP surface: the quiz websocket, the upvote
// webhook, and the read-only REST endpoints.
func NewRouter(deps RouterDeps) http.Handler {
	ws := NewWSHandler(deps.Service, deps.Log)
	webhook := NewWebhookHandler(deps.Service, deps.WebhookSecret, deps.Log)
	rest := newRESTHandler(deps.Service, deps.Leaderboards, deps.Log)

	r := mux.NewRouter()
	r.Use(LoggingMiddleware(deps.Log))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/ws", ws.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/dblwebhook", webhook.HandleUpvote).Methods(http.MethodPost)

	r.HandleFunc("/profiles/{id}", rest.GetProfile).Methods(http.MethodGet)
	r.HandleFunc("/profiles/{id}/notifications", rest.ToggleNotifications).Methods(http.MethodPost)
	r.HandleFunc("/leaderboards/overall", rest.OverallLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/leaderboards/{tier}", rest.TierLeaderboard).Methods(http.MethodGet)

	return r
}
