package store

import (
	"context"
	"sync"

	"github.com/ultma/ultma-server-go/internal/game"
)

// Memory keeps the snapshot in process. Matches are cloned on the way in and
// out so callers never share state with the store.
type Memory struct {
	mu    sync.RWMutex
	match *game.Match
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) Load(ctx context.Context) (*game.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.match.Clone(), nil
}

func (s *Memory) Save(ctx context.Context, m *game.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.match = m.Clone()
	return nil
}

func (s *Memory) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.match = nil
	return nil
}

func (s *Memory) Close() error { return nil }
