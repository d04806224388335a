package storage

import (
	"context"
	"sync"

	"instagram-agent-platform/models"
)

// MemoryStorage serializes all access with a mutex. Used for local
// development without MongoDB and throughout the tests.
type MemoryStorage struct {
	mu     sync.Mutex
	config models.AgentConfig
	seeded bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Get(ctx context.Context) (models.AgentConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked()
	return cloneConfig(s.config), nil
}

func (s *MemoryStorage) Update(ctx context.Context, mutate Mutator) (models.AgentConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked()
	s.config = mutate(cloneConfig(s.config))
	return cloneConfig(s.config), nil
}

func (s *MemoryStorage) seedLocked() {
	if !s.seeded {
		s.config = models.DefaultAgentConfig()
		s.seeded = true
	}
}

// cloneConfig deep-copies the record so callers and mutators never share
// slices or the embedded post with the stored value.
func cloneConfig(c models.AgentConfig) models.AgentConfig {
	out := c
	out.Hashtags = append([]string(nil), c.Hashtags...)
	if c.LastPost != nil {
		post := *c.LastPost
		post.Hashtags = append([]string(nil), c.LastPost.Hashtags...)
		out.LastPost = &post
	}
	return out
}
