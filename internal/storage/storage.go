package storage

import (
	"context"
	"errors"

	"instagram-agent-platform/models"
)

// ErrUpdateConflict is returned when an update keeps losing the
// read-modify-write race after all retries.
var ErrUpdateConflict = errors.New("config update lost concurrent write race")

// Mutator transforms the current config into the next one. It must be a
// pure function: the store may call it more than once when an optimistic
// write loses a race and is retried against fresher state.
type Mutator func(models.AgentConfig) models.AgentConfig

// ConfigStore is the durable single-record store for the agent blueprint
// and the last run's result. Get initializes defaults on first access.
// Update applies the mutator to the latest persisted state and persists
// the result; concurrent updates are serialized, never interleaved.
type ConfigStore interface {
	Get(ctx context.Context) (models.AgentConfig, error)
	Update(ctx context.Context, mutate Mutator) (models.AgentConfig, error)
}
