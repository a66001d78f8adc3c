package service

import (
	"context"
	"time"

	"purpleair_display/internal/display"
	"purpleair_display/internal/models"
	"purpleair_display/internal/repository"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
)

type MonitoringService struct {
	readings repository.ReadingRepo
	opts     display.Options
	now      func() time.Time
}

func NewMonitoringService(readings repository.ReadingRepo, opts display.Options) *MonitoringService {
	return &MonitoringService{readings: readings, opts: opts, now: time.Now}
}

// Current returns the latest stored reading.
// If nothing was fetched yet, returns a baseline WAITING reading.
func (s *MonitoringService) Current(ctx context.Context) (models.Reading, error) {
	r, err := s.readings.Latest(ctx)
	if err != nil {
		return models.Reading{}, err
	}
	if r.ID == 0 {
		return s.baselineReading(), nil
	}
	r.FetchedAt = toUTC(r.FetchedAt)
	r.ObservedAt = toUTC(r.ObservedAt)
	return r, nil
}

// History returns readings in [From, To], oldest first.
func (s *MonitoringService) History(ctx context.Context, f HistoryFilter) ([]models.Reading, error) {
	from, to := toUTC(f.From), toUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, ErrInvalidTimeRange
	}
	return s.readings.List(ctx, from, to, clampLimit(f.Limit))
}

// Frame renders the current reading the way the character display shows it.
func (s *MonitoringService) Frame(ctx context.Context) (display.Frame, error) {
	r, err := s.Current(ctx)
	if err != nil {
		return display.Frame{}, err
	}
	return display.Render(r, s.now(), s.opts), nil
}

// baselineReading is what the display shows before the first poll succeeds.
func (s *MonitoringService) baselineReading() models.Reading {
	return models.Reading{
		Status:   models.StatusWaiting,
		Category: "Unknown",
	}
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultHistoryLimit
	case n > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return n
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
