package mocks

import (
	"context"
	"sync"

	kafkaGo "github.com/segmentio/kafka-go"

	"huddle/infras/kafka"
)

// stubClient is a thread-safe no-op client that records published messages.
// Services publish events from detached goroutines, so tests use this stub
// instead of a strict mock to avoid racing the controller shutdown.
type stubClient struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func NewStubClient() *stubClient { //nolint:revive
	return &stubClient{}
}

func (s *stubClient) SendMessages(_ context.Context, _ string, messages ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, messages...)

	return nil
}

func (s *stubClient) Consume(_ context.Context, _, _ string, _ func(kafkaGo.Message)) {
}

func (s *stubClient) Reader(_, _ string) *kafkaGo.Reader {
	return nil
}

// Sent returns a copy of everything published so far.
func (s *stubClient) Sent() []kafka.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]kafka.Message, len(s.messages))
	copy(out, s.messages)

	return out
}
