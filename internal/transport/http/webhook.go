package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ultimate-trivia/internal/app"
	"ultimate-trivia/internal/logging"
)

// webhookTimeout bounds the hand-off into the core after the HTTP
// response has already been sent.
const webhookTimeout = 10 * time.Second

// WebhookHandler receives vote callbacks from the bot listing site.
type WebhookHandler struct {
	service *app.QuizService
	secret  string
	log     logging.Logger
}

func NewWebhookHandler(service *app.QuizService, secret string, log logging.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, secret: secret, log: log}
}

// upvotePayload tolerates the listing site sending the user id as either
// a JSON string or a bare number.
type upvotePayload struct {
	User json.RawMessage `json:"user"`
}

func (p upvotePayload) userID() string {
	raw := strings.TrimSpace(string(p.User))
	if raw == "" || raw == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(p.User, &s); err == nil {
		return s
	}
	var n int64
	if err := json.Unmarshal(p.User, &n); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return ""
}

func (h *WebhookHandler) HandleUpvote(w http.ResponseWriter, r *http.Request) {
	if subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), []byte(h.secret)) != 1 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var payload upvotePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	userID := payload.userID()
	if userID == "" {
		http.Error(w, "missing user", http.StatusBadRequest)
		return
	}

	// Ack immediately; the listing site retries on anything but a 200.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
		defer cancel()
		if _, err := h.service.ProcessUpvote(ctx, userID); err != nil {
			h.log.Error(ctx, "upvote processing failed", "user", userID, "error", err)
		}
	}()

	w.WriteHeader(http.StatusOK)
}
