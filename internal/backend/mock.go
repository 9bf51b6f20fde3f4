package backend

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar al backend real.
type MockClient struct {
	mu          sync.Mutex
	Reply       ChatReply
	Err         error
	Suggestions []string
	SuggestErr  error
	// Block, si no es nil, retiene SendMessage hasta que se cierre o se
	// cancele el contexto.
	Block        chan struct{}
	Started      chan string
	Sent         []string
	SuggestCalls int
}

func (m *MockClient) SendMessage(ctx context.Context, text string) (ChatReply, error) {
	m.mu.Lock()
	m.Sent = append(m.Sent, text)
	block := m.Block
	started := m.Started
	m.mu.Unlock()

	if started != nil {
		started <- text
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ChatReply{}, ctx.Err()
		}
	}
	return m.Reply, m.Err
}

func (m *MockClient) GetSuggestions(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuggestCalls++
	return m.Suggestions, m.SuggestErr
}

// SentCount devuelve cuantas veces se llamo SendMessage.
func (m *MockClient) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
