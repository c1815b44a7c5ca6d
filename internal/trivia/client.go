// Package trivia wraps the external question API: rate-limited fetch,
// payload decode, and normalization into domain questions.
package trivia

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ultimate-trivia/internal/domain"
	"ultimate-trivia/internal/logging"
)

// DefaultBaseURL is the public question API endpoint.
const DefaultBaseURL = "https://opentdb.com/api.php"

// DefaultCooldown is the minimum gap between outbound API calls.
const DefaultCooldown = 5 * time.Second

// DefaultMaxRetries bounds the 429 retry loop.
const DefaultMaxRetries = 3

var optionLabels = []string{"A", "B", "C", "D"}

// Request describes one question fetch.
type Request struct {
	Category   string // category name or CategoryRandom
	Difficulty string // easy|medium|hard or "random"
	Amount     int
}

// Client is the question source adapter. Safe for concurrent use; all
// calls serialize behind the shared gate.
type Client struct {
	http       *http.Client
	baseURL    string
	gate       *Gate
	cooldown   time.Duration
	maxRetries int
	log        logging.Logger
	rnd        *rand.Rand
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(baseURL string, cooldown time.Duration, maxRetries int, log logging.Logger) *Client {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:       &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		gate:       NewGate(cooldown),
		cooldown:   cooldown,
		maxRetries: maxRetries,
		log:        log,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:      sleepCtx,
	}
}

// apiQuestion is the wire shape of one result; every text field is
// base64-encoded by the API.
type apiQuestion struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	Difficulty       string   `json:"difficulty"`
}

type apiEnvelope struct {
	ResponseCode int           `json:"response_code"`
	Results      []apiQuestion `json:"results"`
}

// Fetch retrieves and normalizes questions. On rate limiting it backs off
// and retries up to the configured bound; on any other failure it returns
// ErrQuestionsUnavailable so callers surface "try later" rather than an
// empty quiz.
func (c *Client) Fetch(ctx context.Context, req Request) ([]domain.Question, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return nil, err
	}

	target, err := c.buildURL(req)
	if err != nil {
		return nil, err
	}

	backoff := c.cooldown
	for attempt := 0; ; attempt++ {
		questions, retryable, err := c.fetchOnce(ctx, target, req)
		if err == nil {
			return questions, nil
		}
		if !retryable || attempt+1 >= c.maxRetries {
			c.log.Warn(ctx, "question fetch failed", "error", err, "attempts", attempt+1)
			return nil, fmt.Errorf("%w: %v", domain.ErrQuestionsUnavailable, err)
		}
		c.log.Info(ctx, "question api rate limited, backing off", "wait", backoff)
		if err := c.sleep(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
	}
}

func (c *Client) fetchOnce(ctx context.Context, target string, req Request) ([]domain.Question, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("rate limited (429)")
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, false, fmt.Errorf("decode envelope: %w", err)
	}
	if len(envelope.Results) == 0 {
		return nil, false, fmt.Errorf("empty result set (code %d)", envelope.ResponseCode)
	}

	questions := make([]domain.Question, 0, len(envelope.Results))
	for _, raw := range envelope.Results {
		q, err := c.normalize(raw, req)
		if err != nil {
			return nil, false, err
		}
		questions = append(questions, q)
	}
	return questions, false, nil
}

func (c *Client) buildURL(req Request) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}
	amount := req.Amount
	if amount <= 0 {
		amount = 5
	}
	params := url.Values{}
	params.Set("amount", strconv.Itoa(amount))
	params.Set("type", "multiple")
	params.Set("encode", "base64")
	if req.Category != "" && req.Category != CategoryRandom {
		if id, ok := CategoryID(req.Category); ok {
			params.Set("category", strconv.Itoa(id))
		}
	}
	if req.Difficulty != "" && req.Difficulty != "random" {
		params.Set("difficulty", req.Difficulty)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// normalize decodes the text-safe encoding and shuffles the four options
// under stable labels.
func (c *Client) normalize(raw apiQuestion, req Request) (domain.Question, error) {
	prompt, err := decodeText(raw.Question)
	if err != nil {
		return domain.Question{}, fmt.Errorf("decode question: %w", err)
	}
	correct, err := decodeText(raw.CorrectAnswer)
	if err != nil {
		return domain.Question{}, fmt.Errorf("decode answer: %w", err)
	}
	options := []domain.Option{{Text: correct, Correct: true}}
	for _, enc := range raw.IncorrectAnswers {
		text, err := decodeText(enc)
		if err != nil {
			return domain.Question{}, fmt.Errorf("decode answer: %w", err)
		}
		options = append(options, domain.Option{Text: text})
	}
	c.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	for i := range options {
		options[i].Label = optionLabels[i%len(optionLabels)]
	}

	var difficulty domain.Difficulty
	if raw.Difficulty != "" {
		text, err := decodeText(raw.Difficulty)
		if err != nil {
			return domain.Question{}, fmt.Errorf("decode difficulty: %w", err)
		}
		difficulty = domain.Difficulty(text)
	} else if req.Difficulty != "" && req.Difficulty != "random" {
		difficulty = domain.Difficulty(req.Difficulty)
	} else {
		difficulty = domain.DifficultyMedium
	}

	return domain.Question{
		Prompt:     prompt,
		Options:    options,
		Difficulty: difficulty,
	}, nil
}

func decodeText(encoded string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return html.UnescapeString(string(decoded)), nil
}
