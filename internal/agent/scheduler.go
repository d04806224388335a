package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"instagram-agent-platform/internal/logger"
	"instagram-agent-platform/internal/storage"
	"instagram-agent-platform/models"
)

const dateLayout = "2006-01-02"

// Evaluation is the scheduler's answer for a single check.
type Evaluation struct {
	Config models.AgentConfig `json:"config"`
	Ready  bool               `json:"ready"`
	Reason string             `json:"reason,omitempty"`
}

// Scheduler decides whether the daily trigger should fire. It never
// mutates state; marking the day as run is the pipeline's job, so a
// failed run stays eligible for a later check the same day.
type Scheduler struct {
	store storage.ConfigStore
	loc   *time.Location
}

func NewScheduler(store storage.ConfigStore, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{store: store, loc: loc}
}

// Evaluate reads the current config and reports whether a run is due at
// now. A dailyTime already in the past today means ready (catch-up, not
// a missed-window skip). A malformed dailyTime never fires and never
// crashes the check.
func (s *Scheduler) Evaluate(ctx context.Context, now time.Time) (*Evaluation, error) {
	cfg, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	local := now.In(s.loc)
	today := local.Format(dateLayout)

	if cfg.LastRunDate == today {
		return &Evaluation{Config: cfg, Ready: false, Reason: "already ran today"}, nil
	}

	hour, minute, err := ParseDailyTime(cfg.DailyTime)
	if err != nil {
		logger.Warn("Invalid daily time in config, trigger disabled",
			"daily_time", cfg.DailyTime, "error", err)
		return &Evaluation{Config: cfg, Ready: false, Reason: "daily time is not valid HH:MM"}, nil
	}

	trigger := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, s.loc)
	if local.Before(trigger) {
		return &Evaluation{Config: cfg, Ready: false, Reason: "not scheduled to run right now"}, nil
	}

	return &Evaluation{Config: cfg, Ready: true, Reason: "scheduled time reached"}, nil
}

// ParseDailyTime parses a strict 24-hour "HH:MM" value.
func ParseDailyTime(value string) (hour, minute int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}
