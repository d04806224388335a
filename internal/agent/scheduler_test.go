package agent

import (
	"context"
	"testing"
	"time"

	"instagram-agent-platform/internal/storage"
	"instagram-agent-platform/models"
)

func seedStore(t *testing.T, cfg models.AgentConfig) storage.ConfigStore {
	t.Helper()
	store := storage.NewMemoryStorage()
	_, err := store.Update(context.Background(), func(models.AgentConfig) models.AgentConfig {
		return cfg
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func TestEvaluateReadyAfterDailyTime(t *testing.T) {
	store := seedStore(t, models.AgentConfig{
		ContentTheme: "morning routines",
		Tone:         "upbeat",
		DailyTime:    "08:00",
	})
	s := NewScheduler(store, time.UTC)

	now := time.Date(2025, 6, 2, 8, 5, 0, 0, time.UTC)
	eval, err := s.Evaluate(context.Background(), now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !eval.Ready {
		t.Fatalf("expected ready at 08:05 with daily time 08:00, reason: %s", eval.Reason)
	}
}

func TestEvaluateNotReadyBeforeDailyTime(t *testing.T) {
	store := seedStore(t, models.AgentConfig{
		ContentTheme: "morning routines",
		Tone:         "upbeat",
		DailyTime:    "18:30",
	})
	s := NewScheduler(store, time.UTC)

	now := time.Date(2025, 6, 2, 8, 5, 0, 0, time.UTC)
	eval, err := s.Evaluate(context.Background(), now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if eval.Ready {
		t.Fatal("expected not ready before the configured time")
	}
}

func TestEvaluateSuppressedAfterRunToday(t *testing.T) {
	now := time.Date(2025, 6, 2, 23, 59, 0, 0, time.UTC)
	store := seedStore(t, models.AgentConfig{
		ContentTheme: "morning routines",
		Tone:         "upbeat",
		DailyTime:    "00:00",
		LastRunDate:  "2025-06-02",
	})
	s := NewScheduler(store, time.UTC)

	eval, err := s.Evaluate(context.Background(), now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if eval.Ready {
		t.Fatal("expected not ready when the run already happened today")
	}
}

func TestEvaluateReadyAgainNextDay(t *testing.T) {
	store := seedStore(t, models.AgentConfig{
		ContentTheme: "morning routines",
		Tone:         "upbeat",
		DailyTime:    "08:00",
		LastRunDate:  "2025-06-02",
	})
	s := NewScheduler(store, time.UTC)

	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	eval, err := s.Evaluate(context.Background(), now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !eval.Ready {
		t.Fatalf("expected ready on the next day, reason: %s", eval.Reason)
	}
}

func TestEvaluateCatchUpWhenTimeLongPast(t *testing.T) {
	store := seedStore(t, models.AgentConfig{
		ContentTheme: "evening recaps",
		Tone:         "calm",
		DailyTime:    "06:00",
	})
	s := NewScheduler(store, time.UTC)

	// Late-day check with no run yet fires immediately, no missed-window skip.
	now := time.Date(2025, 6, 2, 22, 0, 0, 0, time.UTC)
	eval, err := s.Evaluate(context.Background(), now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !eval.Ready {
		t.Fatalf("expected catch-up ready, reason: %s", eval.Reason)
	}
}

func TestEvaluateMalformedDailyTimeNeverReady(t *testing.T) {
	for _, bad := range []string{"", "25:00", "12:60", "9:00", "noon", "12:5"} {
		store := seedStore(t, models.AgentConfig{
			ContentTheme: "morning routines",
			Tone:         "upbeat",
			DailyTime:    bad,
		})
		s := NewScheduler(store, time.UTC)

		eval, err := s.Evaluate(context.Background(), time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("daily time %q: evaluate should not fail: %v", bad, err)
		}
		if eval.Ready {
			t.Fatalf("daily time %q: expected never ready", bad)
		}
	}
}

func TestEvaluateUsesReferenceTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	store := seedStore(t, models.AgentConfig{
		ContentTheme: "morning routines",
		Tone:         "upbeat",
		DailyTime:    "08:00",
	})
	s := NewScheduler(store, loc)

	// 23:30 UTC is 08:30 the next day in UTC+9.
	now := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	eval, err := s.Evaluate(context.Background(), now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !eval.Ready {
		t.Fatalf("expected ready in reference timezone, reason: %s", eval.Reason)
	}
}

func TestEvaluateNeverMutatesState(t *testing.T) {
	store := seedStore(t, models.AgentConfig{
		ContentTheme: "morning routines",
		Tone:         "upbeat",
		DailyTime:    "08:00",
	})
	s := NewScheduler(store, time.UTC)

	if _, err := s.Evaluate(context.Background(), time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	after, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after.LastRunDate != "" || after.LastPost != nil {
		t.Fatal("evaluate must not record a run")
	}
}

func TestParseDailyTime(t *testing.T) {
	hour, minute, err := ParseDailyTime("23:59")
	if err != nil || hour != 23 || minute != 59 {
		t.Fatalf("23:59 parsed to %d:%d, err=%v", hour, minute, err)
	}
	if _, _, err := ParseDailyTime("08:00"); err != nil {
		t.Fatalf("08:00 should parse: %v", err)
	}
	if _, _, err := ParseDailyTime("8:00"); err == nil {
		t.Fatal("single-digit hour should be rejected")
	}
}
