package assistant

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStreamer struct {
	mu        sync.Mutex
	fragments []Fragment
	openErr   error
	block     chan struct{}
	histories [][]Turn
}

func (f *fakeStreamer) SendMessageStream(ctx context.Context, history []Turn, text string) (<-chan Fragment, error) {
	f.mu.Lock()
	f.histories = append(f.histories, history)
	f.mu.Unlock()

	if f.openErr != nil {
		return nil, f.openErr
	}
	ch := make(chan Fragment)
	go func() {
		defer close(ch)
		if f.block != nil {
			<-f.block
		}
		for _, fr := range f.fragments {
			ch <- fr
		}
	}()
	return ch, nil
}

func senders(msgs []Message) []Sender {
	out := make([]Sender, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Sender)
	}
	return out
}

func TestNewSessionStartsWithGreeting(t *testing.T) {
	s := NewSession()
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, GreetingText, msgs[0].Text)
	assert.Equal(t, SenderAI, msgs[0].Sender)
	assert.NotEmpty(t, s.ID())
}

func TestSendAccumulatesReply(t *testing.T) {
	s := NewSession()
	streamer := &fakeStreamer{fragments: []Fragment{{Text: "Warfarin "}, {Text: "is an anticoagulant."}}}

	var seen []string
	reply, err := s.Send(context.Background(), streamer, "  what is warfarin?  ", func(text string) {
		seen = append(seen, text)
	})
	require.NoError(t, err)

	assert.Equal(t, "Warfarin is an anticoagulant.", reply.Text)
	assert.Equal(t, []string{"Warfarin ", "is an anticoagulant."}, seen)

	msgs := s.Messages()
	assert.Equal(t, []Sender{SenderAI, SenderUser, SenderAI}, senders(msgs))
	assert.Equal(t, "what is warfarin?", msgs[1].Text)
	assert.Equal(t, reply, msgs[2])

	_, err = s.Send(context.Background(), streamer, "and with aspirin?", nil)
	require.NoError(t, err)
	require.Len(t, streamer.histories, 2)
	assert.Empty(t, streamer.histories[0])
	assert.Equal(t, []Turn{
		{Role: RoleUser, Text: "what is warfarin?"},
		{Role: RoleModel, Text: "Warfarin is an anticoagulant."},
	}, streamer.histories[1])
}

func TestSendOpenFailureAppendsFallback(t *testing.T) {
	s := NewSession()
	streamer := &fakeStreamer{openErr: ErrMissingAPIKey}

	reply, err := s.Send(context.Background(), streamer, "hello", nil)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
	assert.Equal(t, FallbackText, reply.Text)

	msgs := s.Messages()
	assert.Equal(t, []Sender{SenderAI, SenderUser, SenderAI}, senders(msgs))
	assert.Equal(t, FallbackText, msgs[2].Text)
	assert.False(t, s.Busy())
}

func TestSendStreamFailureKeepsPartialReply(t *testing.T) {
	s := NewSession()
	boom := errors.New("connection reset")
	streamer := &fakeStreamer{fragments: []Fragment{{Text: "partial"}, {Err: boom}}}

	_, err := s.Send(context.Background(), streamer, "hello", nil)
	assert.True(t, errors.Is(err, boom))

	msgs := s.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "partial", msgs[2].Text)
	assert.Equal(t, FallbackText, msgs[3].Text)

	_, err = s.Send(context.Background(), &fakeStreamer{}, "again", nil)
	require.NoError(t, err)
}

func TestSendRejectsEmptyAndConcurrentMessages(t *testing.T) {
	s := NewSession()

	_, err := s.Send(context.Background(), &fakeStreamer{}, "   ", nil)
	assert.True(t, errors.Is(err, ErrEmptyMessage))
	assert.Len(t, s.Messages(), 1)

	streamer := &fakeStreamer{block: make(chan struct{}), fragments: []Fragment{{Text: "done"}}}
	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), streamer, "first", nil)
		done <- err
	}()

	require.Eventually(t, s.Busy, time.Second, 5*time.Millisecond)
	_, err = s.Send(context.Background(), streamer, "second", nil)
	assert.True(t, errors.Is(err, ErrBusy))

	close(streamer.block)
	require.NoError(t, <-done)
	assert.False(t, s.Busy())
	assert.Len(t, s.Messages(), 3)
}

func TestSessions(t *testing.T) {
	reg, err := NewSessions(2)
	require.NoError(t, err)

	a := reg.Create()
	b := reg.Create()
	got, ok := reg.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)

	c := reg.Create()
	assert.Equal(t, 2, reg.Len())
	_, ok = reg.Get(b.ID())
	assert.False(t, ok, "least recently used session is evicted")
	_, ok = reg.Get(c.ID())
	assert.True(t, ok)
}

func TestSessionsPruneIdle(t *testing.T) {
	reg, err := NewSessions(0)
	require.NoError(t, err)

	idle := reg.Create()
	active := reg.Create()
	busy := reg.Create()

	old := time.Now().Add(-time.Hour)
	idle.lastActive = old
	busy.lastActive = old
	busy.busy = true

	assert.Equal(t, 1, reg.PruneIdle(30*time.Minute))
	_, ok := reg.Get(idle.ID())
	assert.False(t, ok)
	_, ok = reg.Get(active.ID())
	assert.True(t, ok)
	_, ok = reg.Get(busy.ID())
	assert.True(t, ok)
}

func TestSendCancelledKeepsPartialReplyOutOfHistory(t *testing.T) {
	streamer := &fakeStreamer{fragments: []Fragment{{Text: "Partial"}}}
	s := NewSession()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg, err := s.Send(ctx, streamer, "Is it safe?", nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "Partial", msg.Text)
	assert.False(t, s.Busy())
	assert.Equal(t, []Sender{SenderAI, SenderUser, SenderAI}, senders(s.Messages()))

	// The cancelled exchange is not sent back to the model.
	_, err = s.Send(context.Background(), streamer, "Again", nil)
	require.NoError(t, err)
	require.Len(t, streamer.histories, 2)
	assert.Empty(t, streamer.histories[1])
}

func TestSendCancelledBeforeStreamOpensAddsNoFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	s := NewSession()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := s.Send(ctx, c, "Is it safe?", nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.Busy())

	msgs := s.Messages()
	assert.Equal(t, []Sender{SenderAI, SenderUser}, senders(msgs))
	for _, m := range msgs {
		assert.NotEqual(t, FallbackText, m.Text)
	}
}
