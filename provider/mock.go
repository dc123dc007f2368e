package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a mock translation provider for testing.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	Err          error             // If set, Translate returns this error

	mu          sync.Mutex
	callCount   int
	lastRequest *Request
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                "Hola",
			"World":                "Mundo",
			"Hello World":          "Hola Mundo",
			"Welcome to our site.": "Bienvenido a nuestro sitio.",
		},
	}
}

// Translate returns mock translations. Unknown texts come back bracketed so
// tests can tell a mock passthrough from a real mapping.
func (m *MockProvider) Translate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = &req
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}

	if translation, ok := m.Translations[req.Text]; ok {
		return translation, nil
	}
	return fmt.Sprintf("[%s]", req.Text), nil
}

// CallCount returns the number of times Translate was called.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the most recent request received.
func (m *MockProvider) LastRequest() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastRequest = nil
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)
