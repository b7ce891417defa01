package payments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/providers"
)

// MockAdapter provides deterministic payment sessions for local development.
// Every created session verifies as captured.
type MockAdapter struct {
	name string

	mu       sync.Mutex
	sessions map[string]bool
}

// NewMockAdapter creates a mock payment provider
func NewMockAdapter(name string) *MockAdapter {
	return &MockAdapter{
		name:     name,
		sessions: make(map[string]bool),
	}
}

// Name returns the provider identifier
func (m *MockAdapter) Name() string {
	return m.name
}

// CreateSession returns a mock session reference
func (m *MockAdapter) CreateSession(ctx context.Context, req providers.CheckoutRequest) (*providers.PaymentSession, error) {
	ref := fmt.Sprintf("mock-%s-%d", m.name, time.Now().UnixNano())

	m.mu.Lock()
	m.sessions[ref] = true
	m.mu.Unlock()

	return &providers.PaymentSession{
		Ref:         ref,
		RedirectURL: fmt.Sprintf("https://example.com/checkout/%s", ref),
	}, nil
}

// VerifyCapture reports true for sessions this adapter created
func (m *MockAdapter) VerifyCapture(ctx context.Context, ref string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[ref], nil
}
