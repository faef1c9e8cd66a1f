package challenge

import (
	"context"
	"sync"
)

// MemoryStore keeps challenges in a process-local map. Entries live until
// consumed or overwritten; suitable for a single-instance deployment and for
// tests.
type MemoryStore struct {
	mu       sync.Mutex
	byWallet map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byWallet: make(map[string]string)}
}

func (s *MemoryStore) Issue(_ context.Context, walletAddress string) (string, error) {
	msg, err := NewMessage()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.byWallet[walletAddress] = msg
	s.mu.Unlock()
	return msg, nil
}

func (s *MemoryStore) Get(_ context.Context, walletAddress string) (string, bool, error) {
	s.mu.Lock()
	msg, ok := s.byWallet[walletAddress]
	s.mu.Unlock()
	return msg, ok, nil
}

func (s *MemoryStore) Consume(_ context.Context, walletAddress, message string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byWallet[walletAddress]
	if !ok || stored != message {
		return false, nil
	}
	delete(s.byWallet, walletAddress)
	return true, nil
}
