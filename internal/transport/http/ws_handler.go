package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"ultimate-trivia/internal/app"
	"ultimate-trivia/internal/domain"
	"ultimate-trivia/internal/logging"

	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.QuizService
	log      logging.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log logging.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Label string `json:"label"`
}

type powerupPayload struct {
	Powerup string `json:"powerup"`
}

type powerupAck struct {
	Powerup   string `json:"powerup"`
	Remaining int    `json:"remaining"`
}

type optionView struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// questionView is the client-facing projection of a question. The correct
// flag stays server-side.
type questionView struct {
	Index            int          `json:"index"`
	Prompt           string       `json:"prompt"`
	Options          []optionView `json:"options"`
	Difficulty       string       `json:"difficulty"`
	TimeLimitSeconds int          `json:"timeLimitSeconds"`
}

type timeoutView struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request, starts a quiz session for the user, and
// relays session events until the quiz completes or the peer hangs up.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	session, err := h.startSession(r, userID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer func() {
		if session.Finished() {
			if _, err := h.service.Complete(r.Context(), session); err != nil {
				h.log.Warn(r.Context(), "session flush failed", "user", userID, "error", err)
			}
			return
		}
		// A dropped connection forfeits the rest of the quiz.
		h.service.Abandon(session)
	}()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn(r.Context(), "ws write error", "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-session.Events():
				if !ok {
					return
				}
				msg, final := h.translate(r, session, ev)
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
				if final {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	session.Start()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if done := h.dispatch(r, session, send, inbound); done {
			break
		}
	}

	// Let the event pump deliver the completion summary before tearing
	// down; an abrupt disconnect skips straight to cleanup.
	if session.Finished() {
		select {
		case <-eventsDone:
		case <-time.After(5 * time.Second):
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func (h *WSHandler) startSession(r *http.Request, userID string) (*app.Session, error) {
	q := r.URL.Query()
	if q.Get("type") == "daily" {
		return h.service.StartDailyQuiz(r.Context(), userID)
	}

	amount, _ := strconv.Atoi(q.Get("amount"))
	limitSeconds, _ := strconv.Atoi(q.Get("timeLimit"))
	return h.service.StartQuiz(r.Context(), userID, app.QuizOptions{
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
		Amount:     amount,
		TimeLimit:  time.Duration(limitSeconds) * time.Second,
	})
}

// dispatch handles one inbound message. It reports true once the session
// is finished and the read loop should stop.
func (h *WSHandler) dispatch(r *http.Request, session *app.Session, send chan<- outboundMessage[any], inbound inboundMessage) bool {
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid select payload")
			return false
		}
		if err := session.Select(payload.Label); err != nil {
			send <- errorMessage(err.Error())
		}
		return false
	case "submit":
		outcome, err := session.Submit()
		if err != nil {
			send <- errorMessage(err.Error())
			return errors.Is(err, domain.ErrSessionFinished)
		}
		return outcome.Finished
	case "powerup":
		var payload powerupPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid powerup payload")
			return false
		}
		p, err := domain.ParsePowerup(payload.Powerup)
		if err != nil {
			send <- errorMessage(err.Error())
			return false
		}
		remaining, err := h.service.UsePowerup(r.Context(), session, p)
		if err != nil {
			send <- errorMessage(err.Error())
			return false
		}
		send <- outboundMessage[any]{Type: "powerup", Payload: powerupAck{Powerup: p.String(), Remaining: remaining}}
		return false
	default:
		send <- errorMessage("unsupported message type")
		return false
	}
}

// translate maps a session event to its outbound message. final is true
// for the completion message, which ends the event pump.
func (h *WSHandler) translate(r *http.Request, session *app.Session, ev app.SessionEvent) (outboundMessage[any], bool) {
	switch ev.Type {
	case app.EventQuestion:
		return outboundMessage[any]{Type: "question", Payload: newQuestionView(ev, session.TimeLimit)}, false
	case app.EventAnswered:
		return outboundMessage[any]{Type: "answerResult", Payload: ev.Outcome}, false
	case app.EventSecondChance:
		return outboundMessage[any]{Type: "secondChance", Payload: ev.Outcome}, false
	case app.EventTimeout:
		return outboundMessage[any]{Type: "timeout", Payload: timeoutView{Index: ev.QuestionIndex}}, false
	case app.EventCompleted:
		summary, err := h.service.Complete(r.Context(), session)
		if err != nil {
			h.log.Error(r.Context(), "session flush failed", "user", session.UserID, "error", err)
			return errorMessage("failed to record results"), true
		}
		return outboundMessage[any]{Type: "summary", Payload: summary}, true
	default:
		return errorMessage("unknown session event"), false
	}
}

func newQuestionView(ev app.SessionEvent, limit time.Duration) questionView {
	options := make([]optionView, 0, len(ev.Question.Options))
	for _, opt := range ev.Question.Options {
		options = append(options, optionView{Label: opt.Label, Text: opt.Text})
	}
	return questionView{
		Index:            ev.QuestionIndex,
		Prompt:           ev.Question.Prompt,
		Options:          options,
		Difficulty:       string(ev.Question.Difficulty),
		TimeLimitSeconds: int(limit / time.Second),
	}
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
