package api

import (
	"context"
	"sync"

	"github.com/diogo/folio/internal/models"
)

// MockTransport is a mock implementation of Transport for testing
type MockTransport struct {
	// Mock return values
	Reply string
	Err   error

	// SendFunc, when set, replaces Reply/Err
	SendFunc func(ctx context.Context, text string, history []models.WireMessage) (string, error)

	// Call recorders
	mu          sync.Mutex
	Calls       int
	LastText    string
	LastHistory []models.WireMessage
}

// Ensure MockTransport implements Transport
var _ Transport = (*MockTransport)(nil)

func (m *MockTransport) Send(ctx context.Context, text string, history []models.WireMessage) (string, error) {
	m.mu.Lock()
	m.Calls++
	m.LastText = text
	m.LastHistory = append([]models.WireMessage(nil), history...)
	fn := m.SendFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, history)
	}
	return m.Reply, m.Err
}

// CallCount returns how many times Send was called
func (m *MockTransport) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// Recorded returns the text and history of the last call
func (m *MockTransport) Recorded() (string, []models.WireMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastText, append([]models.WireMessage(nil), m.LastHistory...)
}

// BlockingSend returns a SendFunc that waits until ctx is done
func BlockingSend() func(ctx context.Context, text string, history []models.WireMessage) (string, error) {
	return func(ctx context.Context, _ string, _ []models.WireMessage) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
}
