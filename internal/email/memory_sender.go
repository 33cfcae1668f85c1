package email

import (
	"context"
	"sync"
)

// MemorySender keeps sent messages in memory. It is safe for concurrent use.
type MemorySender struct {
	mu       sync.Mutex
	messages []Message
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
	return nil
}

// Messages returns a copy of the sent messages.
func (s *MemorySender) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}
