package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"ultimate-trivia/internal/app"
	"ultimate-trivia/internal/domain"
	"ultimate-trivia/internal/logging"

	"github.com/gorilla/mux"
)

// restHandler serves the read-mostly views the bot frontends render.
type restHandler struct {
	service      *app.QuizService
	leaderboards *app.LeaderboardService
	log          logging.Logger
}

func newRESTHandler(service *app.QuizService, leaderboards *app.LeaderboardService, log logging.Logger) *restHandler {
	return &restHandler{service: service, leaderboards: leaderboards, log: log}
}

type profileResponse struct {
	Profile     *domain.UserProfile `json:"profile"`
	Accuracy    float64             `json:"accuracy"`
	TierRank    int                 `json:"tierRank,omitempty"`
	OverallRank int                 `json:"overallRank,omitempty"`
}

func (h *restHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	profile, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := profileResponse{Profile: profile, Accuracy: profile.Accuracy()}
	if rank, ok, err := h.leaderboards.UserRank(r.Context(), profile.Tier, userID); err == nil && ok {
		resp.TierRank = rank
	}
	if rank, ok, err := h.leaderboards.OverallRank(r.Context(), userID); err == nil && ok {
		resp.OverallRank = rank
	}
	h.writeJSON(w, r, resp)
}

func (h *restHandler) ToggleNotifications(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	enabled, err := h.service.ToggleNotifications(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, map[string]bool{"notificationsEnabled": enabled})
}

func (h *restHandler) TierLeaderboard(w http.ResponseWriter, r *http.Request) {
	tier := domain.Tier(mux.Vars(r)["tier"])
	entries, err := h.leaderboards.TierLeaderboard(r.Context(), tier)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, map[string]any{"tier": tier, "entries": entries})
}

func (h *restHandler) OverallLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboards.OverallLeaderboard(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, map[string]any{"entries": entries})
}

func (h *restHandler) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn(r.Context(), "response encode failed", "error", err)
	}
}

func (h *restHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnknownTier), errors.Is(err, domain.ErrProfileNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	http.Error(w, err.Error(), status)
}
