// Package mock provides a scripted provider.Backend for tests.
package mock

import (
	"context"
	"sync"

	"github.com/aman1195/risk-scan-pro/provider"
)

// Backend returns Response or Err and records every request it receives
type Backend struct {
	BackendName string
	Response    string
	Err         error
	// Hook, when set, runs before the response is returned
	Hook func(ctx context.Context, req provider.Request)

	mu       sync.Mutex
	requests []provider.Request
}

// New creates a Backend named name that answers with response
func New(name, response string) *Backend {
	return &Backend{BackendName: name, Response: response}
}

// Failing creates a Backend named name that always returns err
func Failing(name string, err error) *Backend {
	return &Backend{BackendName: name, Err: err}
}

func (b *Backend) Name() string {
	return b.BackendName
}

func (b *Backend) Complete(ctx context.Context, req provider.Request) (string, error) {
	b.mu.Lock()
	b.requests = append(b.requests, req)
	b.mu.Unlock()

	if b.Hook != nil {
		b.Hook(ctx, req)
	}
	if b.Err != nil {
		return "", b.Err
	}
	return b.Response, nil
}

// Requests returns a copy of the requests received so far
func (b *Backend) Requests() []provider.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]provider.Request(nil), b.requests...)
}

// Calls returns how many requests were received
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}
