package mail

import (
	"context"
	"sync"
)

// Message is a captured outbound email.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// MemorySender captures messages for tests.
type MemorySender struct {
	mu       sync.Mutex
	messages []Message
}

// NewMemorySender creates an empty capturing sender.
func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

// Send records the message.
func (s *MemorySender) Send(_ context.Context, recipient, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, Message{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	})

	return nil
}

// Messages returns a snapshot of everything sent so far.
func (s *MemorySender) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)

	return out
}
