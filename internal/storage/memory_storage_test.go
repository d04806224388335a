package storage

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"instagram-agent-platform/models"
)

func TestGetSeedsDefaults(t *testing.T) {
	store := NewMemoryStorage()

	cfg, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.ContentTheme == "" || cfg.Tone == "" {
		t.Fatal("initialized record must have non-empty theme and tone")
	}
	if cfg.DailyTime == "" {
		t.Fatal("initialized record must have a daily time")
	}
}

func TestIdentityUpdateRoundTrip(t *testing.T) {
	store := NewMemoryStorage()

	before, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	after, err := store.Update(context.Background(), func(c models.AgentConfig) models.AgentConfig {
		return c
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !reflect.DeepEqual(before, after) {
		t.Fatalf("identity update changed the record:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	store := NewMemoryStorage()

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		tag := fmt.Sprintf("#tag%02d", i)
		go func() {
			defer wg.Done()
			_, err := store.Update(context.Background(), func(c models.AgentConfig) models.AgentConfig {
				c.Hashtags = append(c.Hashtags, tag)
				return c
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	cfg, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cfg.Hashtags) != writers {
		t.Fatalf("lost writes: %d hashtags, want %d", len(cfg.Hashtags), writers)
	}
}

func TestReturnedConfigIsIsolated(t *testing.T) {
	store := NewMemoryStorage()

	_, err := store.Update(context.Background(), func(c models.AgentConfig) models.AgentConfig {
		c.Hashtags = []string{"#one"}
		return c
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	cfg, _ := store.Get(context.Background())
	cfg.Hashtags[0] = "#mutated"

	fresh, _ := store.Get(context.Background())
	if fresh.Hashtags[0] != "#one" {
		t.Fatal("caller mutation leaked into the stored record")
	}
}
