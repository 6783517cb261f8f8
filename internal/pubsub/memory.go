package pubsub

import (
	"context"
	"errors"
	"sync"
)

// ErrPublisherClosed is returned when publishing after Close.
var ErrPublisherClosed = errors.New("publisher closed")

// MemoryMessage is one message recorded by the in-memory publisher.
type MemoryMessage struct {
	Subject string
	Data    []byte
}

// MemoryPublisher implements Publisher in memory. It is the default when no
// NATS URL is configured and doubles as a capture point in tests.
type MemoryPublisher struct {
	mu       sync.Mutex
	messages []MemoryMessage
	closed   bool
}

// NewMemoryPublisher creates an in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	p.messages = append(p.messages, MemoryMessage{Subject: subject, Data: buf})
	return nil
}

// Messages returns a copy of everything published so far.
func (p *MemoryPublisher) Messages() []MemoryMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]MemoryMessage, len(p.messages))
	copy(out, p.messages)
	return out
}

func (p *MemoryPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
