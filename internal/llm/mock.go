package llm

import (
	"context"
	"sync"
)

// #region mock
// Mock is a scripted Client for tests and replay runs. It returns queued
// replies in order, falls back to a fixed reply once the queue drains, and
// records every request it sees. Safe for concurrent use.
type Mock struct {
	mu       sync.Mutex
	queue    []scripted
	fallback string
	health   Health
	requests []Request
}

type scripted struct {
	text string
	err  error
}

// NewMock builds a Mock whose fallback reply is used once the queue drains.
func NewMock(fallback string) *Mock {
	return &Mock{
		fallback: fallback,
		health: Health{
			Status:    StatusHealthy,
			Provider:  "mock",
			Model:     "mock",
			Available: true,
		},
	}
}

// Enqueue schedules the next reply text. Chainable.
func (m *Mock) Enqueue(text string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, scripted{text: text})
	return m
}

// EnqueueError schedules the next call to fail. Chainable.
func (m *Mock) EnqueueError(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, scripted{err: err})
	return m
}

// WithHealth overrides the health report. Chainable.
func (m *Mock) WithHealth(h Health) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health = h
	return m
}

// Requests returns a copy of every request seen so far.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Complete pops the next scripted reply, or returns the fallback.
func (m *Mock) Complete(_ context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next.text, next.err
	}
	return m.fallback, nil
}

// CheckHealth returns the scripted health report.
func (m *Mock) CheckHealth(_ context.Context) Health {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health
}

// Name identifies the provider.
func (m *Mock) Name() string { return "mock" }

// Model returns the mock model identifier.
func (m *Mock) Model() string { return "mock" }

// #endregion mock
