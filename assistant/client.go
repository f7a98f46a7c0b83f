// Package assistant talks to the hosted language model that powers the chat
// view and keeps per-conversation transcripts.
package assistant

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/giygas/mymedic-api/logging"
	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 60 * time.Second
)

// SystemPrompt frames every conversation.
const SystemPrompt = `You are MyMedic, a knowledgeable medical AI assistant specializing in medications, symptoms, and health conditions. You have access to a comprehensive medication database with drug interactions, side effects, and clinical information.

Your responsibilities:
- Provide accurate, evidence-based medication information
- Explain drug interactions and their severity
- Answer questions about symptoms and conditions
- Always emphasize consulting healthcare professionals
- Never diagnose or prescribe medications
- Flag emergency situations and recommend immediate medical attention
- Cite sources when possible
- Use clear, patient-friendly language
- Ask clarifying questions when needed

Important disclaimers to include:
- This is educational information only
- Always consult a healthcare provider
- For emergencies, call 911 or go to the ER
- Do not stop or change medications without medical advice`

// ErrMissingAPIKey is returned before any request is made when no API key
// is configured.
var ErrMissingAPIKey = errors.New("API_KEY environment variable not set")

// maxEventSize bounds a single server-sent event line.
const maxEventSize = 1 << 20

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Role is the author of a conversation turn as the model API names it.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one completed message of the model-facing history.
type Turn struct {
	Role Role
	Text string
}

// Fragment is one piece of a streamed reply. A fragment with a non-nil Err
// is always the last one.
type Fragment struct {
	Text string
	Err  error
}

// Streamer sends a message in the context of history and streams the reply.
type Streamer interface {
	SendMessageStream(ctx context.Context, history []Turn, text string) (<-chan Fragment, error)
}

// Client is a streaming client for the Gemini generateContent API.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

var _ Streamer = (*Client)(nil)

// NewClient validates cfg and fills in defaults. A missing API key returns
// ErrMissingAPIKey.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logging.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// BreakerState reports the circuit breaker state, "closed" when healthy.
func (c *Client) BreakerState() string {
	if c == nil {
		return gobreaker.StateClosed.String()
	}
	return c.breaker.State().String()
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction content   `json:"systemInstruction"`
	Contents          []content `json:"contents"`
}

type generateChunk struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// SendMessageStream opens a streaming request and returns a channel of
// reply fragments in arrival order. The channel is closed at the end of the
// stream. When ctx is cancelled the stream is abandoned and the channel is
// closed without an error fragment.
func (c *Client) SendMessageStream(ctx context.Context, history []Turn, text string) (<-chan Fragment, error) {
	if c == nil || c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(newGenerateRequest(history, text))
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.open(ctx, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("assistant unavailable (circuit breaker open): %w", err)
		}
		return nil, err
	}
	resp := result.(*http.Response)

	out := make(chan Fragment)
	go c.consume(ctx, resp.Body, out)
	return out, nil
}

func newGenerateRequest(history []Turn, text string) generateRequest {
	contents := make([]content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, content{Role: string(turn.Role), Parts: []part{{Text: turn.Text}}})
	}
	contents = append(contents, content{Role: string(RoleUser), Parts: []part{{Text: text}}})

	return generateRequest{
		SystemInstruction: content{Parts: []part{{Text: SystemPrompt}}},
		Contents:          contents,
	}
}

func (c *Client) open(ctx context.Context, body []byte) (*http.Response, error) {
	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.cfg.BaseURL, url.PathEscape(c.cfg.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assistant request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("assistant returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return resp, nil
}

func (c *Client) consume(ctx context.Context, body io.ReadCloser, out chan<- Fragment) {
	defer close(out)
	defer body.Close()

	send := func(f Fragment) bool {
		select {
		case out <- f:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var chunk generateChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			send(Fragment{Err: fmt.Errorf("failed to decode stream event: %w", err)})
			return
		}
		if chunk.Error != nil {
			send(Fragment{Err: fmt.Errorf("assistant stream error %d: %s", chunk.Error.Code, chunk.Error.Message)})
			return
		}

		text := chunk.text()
		if text == "" {
			continue
		}
		if !send(Fragment{Text: text}) {
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		send(Fragment{Err: fmt.Errorf("assistant stream interrupted: %w", err)})
	}
}

func (g *generateChunk) text() string {
	if len(g.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range g.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
