package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who wrote a transcript message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

const (
	GreetingText = "Hello! I am MyMedic AI chat. I can provide information on medications, drug interactions, and health conditions. How can I help you today? \n\n_Please remember, I am an AI assistant and not a substitute for professional medical advice._"
	FallbackText = "Sorry, I encountered an error. Please check your API key and network connection, then try again."
)

var (
	// ErrBusy is returned when a message is sent while the previous reply is
	// still streaming.
	ErrBusy         = errors.New("a reply is already in progress")
	ErrEmptyMessage = errors.New("message is empty")
)

type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

func newMessage(text string, sender Sender) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}
}

// Session is one conversation. The transcript always starts with the
// greeting and only grows; the model only sees completed exchanges.
type Session struct {
	id        string
	createdAt time.Time

	mu         sync.Mutex
	messages   []Message
	turns      []Turn
	busy       bool
	lastActive time.Time
}

func NewSession() *Session {
	now := time.Now()
	return &Session{
		id:         uuid.NewString(),
		createdAt:  now,
		messages:   []Message{newMessage(GreetingText, SenderAI)},
		lastActive: now,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Send appends text as a user message and streams the reply through
// streamer. onFragment, when set, is called with each fragment as it
// arrives. The returned message is the completed AI entry, or the fallback
// message when the exchange failed. A cancelled ctx returns ctx.Err() and
// adds no fallback. Prior transcript entries, including a partial reply, are
// never removed.
func (s *Session) Send(ctx context.Context, streamer Streamer, text string, onFragment func(string)) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return Message{}, ErrBusy
	}
	s.busy = true
	s.messages = append(s.messages, newMessage(text, SenderUser))
	history := make([]Turn, len(s.turns))
	copy(history, s.turns)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.lastActive = time.Now()
		s.mu.Unlock()
	}()

	fragments, err := streamer.SendMessageStream(ctx, history, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Message{}, ctxErr
		}
		return s.fail(), err
	}

	s.mu.Lock()
	s.messages = append(s.messages, newMessage("", SenderAI))
	aiIndex := len(s.messages) - 1
	s.mu.Unlock()

	var reply strings.Builder
	var streamErr error
	for f := range fragments {
		if f.Err != nil {
			streamErr = f.Err
			continue
		}
		reply.WriteString(f.Text)

		s.mu.Lock()
		s.messages[aiIndex].Text = reply.String()
		s.mu.Unlock()

		if onFragment != nil {
			onFragment(f.Text)
		}
	}

	if streamErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.mu.Lock()
			ai := s.messages[aiIndex]
			s.mu.Unlock()
			return ai, ctxErr
		}
		return s.fail(), streamErr
	}

	s.mu.Lock()
	ai := s.messages[aiIndex]
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return ai, err
	}
	s.turns = append(s.turns,
		Turn{Role: RoleUser, Text: text},
		Turn{Role: RoleModel, Text: ai.Text},
	)
	s.mu.Unlock()

	return ai, nil
}

func (s *Session) fail() Message {
	msg := newMessage(FallbackText, SenderAI)
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return msg
}
