package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"purpleair_display/internal/logger"
	"purpleair_display/internal/models"
	"purpleair_display/internal/repository"
)

const pruneTimeout = time.Minute

// PruneResult reports how many rows a prune removed.
type PruneResult struct {
	Cutoff   time.Time `json:"cutoff"`
	Readings int64     `json:"readings"`
	Events   int64     `json:"events"`
}

// RetentionService deletes readings and events older than the retention
// window on a cron schedule.
type RetentionService struct {
	readings  repository.ReadingRepo
	eventRepo repository.EventRepo
	keep      time.Duration
	schedule  string
	log       *logger.Logger
	now       func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewRetentionService(readings repository.ReadingRepo, eventRepo repository.EventRepo,
	keep time.Duration, schedule string, log *logger.Logger) *RetentionService {
	return &RetentionService{
		readings:  readings,
		eventRepo: eventRepo,
		keep:      keep,
		schedule:  schedule,
		log:       log,
		now:       time.Now,
	}
}

// Start registers the prune job and starts the scheduler.
func (s *RetentionService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, s.runScheduled); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c
	if s.log != nil {
		s.log.Infow("retention scheduler started", "schedule", s.schedule, "keep", s.keep.String())
	}
	return nil
}

// Stop halts the scheduler and waits for a running prune to finish.
func (s *RetentionService) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
}

func (s *RetentionService) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()
	if _, err := s.Prune(ctx, s.now()); err != nil && s.log != nil {
		s.log.Errorw("prune failed", "error", err)
	}
}

// Prune removes rows older than now minus the retention window.
func (s *RetentionService) Prune(ctx context.Context, now time.Time) (PruneResult, error) {
	res := PruneResult{Cutoff: now.UTC().Add(-s.keep)}

	n, err := s.readings.DeleteBefore(ctx, res.Cutoff)
	if err != nil {
		return res, fmt.Errorf("prune readings: %w", err)
	}
	res.Readings = n

	n, err = s.eventRepo.DeleteBefore(ctx, res.Cutoff)
	if err != nil {
		return res, fmt.Errorf("prune events: %w", err)
	}
	res.Events = n

	err = s.eventRepo.Append(ctx, models.DeviceEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now.UTC(),
		Type:        models.EventPrune,
		Description: "Old readings and events pruned",
		Metadata: map[string]any{
			"cutoff":   res.Cutoff.Format(time.RFC3339),
			"readings": res.Readings,
			"events":   res.Events,
		},
	})
	if err != nil {
		return res, fmt.Errorf("append prune event: %w", err)
	}

	if s.log != nil {
		s.log.Infow("pruned", "cutoff", res.Cutoff, "readings", res.Readings, "events", res.Events)
	}
	return res, nil
}
