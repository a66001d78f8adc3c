package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"purpleair_display/internal/logger"
	"purpleair_display/internal/models"
	"purpleair_display/internal/repository"
)

// maxFetchTimeout bounds a single request to the monitor.
const maxFetchTimeout = 10 * time.Second

type linkState int

const (
	linkUnknown linkState = iota
	linkOnline
	linkOffline
)

// PollerService fetches the monitor's readings on a fixed interval, stores
// them and fans them out to sinks.
type PollerService struct {
	source    SensorSource
	readings  repository.ReadingRepo
	eventRepo repository.EventRepo
	sinks     []ReadingSink
	log       *logger.Logger
	now       func() time.Time

	// only touched by the goroutine running Run
	link         linkState
	lastCategory string
	seeded       bool
}

func NewPollerService(source SensorSource, readings repository.ReadingRepo, eventRepo repository.EventRepo,
	log *logger.Logger, sinks ...ReadingSink) *PollerService {
	return &PollerService{
		source:    source,
		readings:  readings,
		eventRepo: eventRepo,
		sinks:     sinks,
		log:       log,
		now:       time.Now,
	}
}

// Run polls once immediately and then on every tick until ctx is canceled.
func (s *PollerService) Run(ctx context.Context, interval time.Duration) {
	timeout := interval
	if timeout <= 0 || timeout > maxFetchTimeout {
		timeout = maxFetchTimeout
	}

	_ = s.PollOnce(ctx, timeout)
	if interval <= 0 {
		return
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = s.PollOnce(ctx, timeout)
		}
	}
}

// PollOnce performs a single fetch/store/publish cycle.
func (s *PollerService) PollOnce(ctx context.Context, timeout time.Duration) error {
	s.seed(ctx)

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	r, err := s.source.Fetch(fetchCtx)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.markOffline(ctx, err)
		return err
	}

	id, err := s.readings.Save(ctx, r)
	if err != nil {
		s.logError("save reading", err)
		return err
	}
	r.ID = id

	s.markOnline(ctx, r)
	s.trackCategory(ctx, r)

	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, r); err != nil {
			s.logError("publish reading", err)
		}
	}

	if s.log != nil {
		s.log.Debugw("reading stored", "id", r.ID, "aqi", r.AQI, "pm2_5", r.PM25, "flags", r.Flags)
	}
	return nil
}

// seed restores the last category so a restart does not report a change.
func (s *PollerService) seed(ctx context.Context) {
	if s.seeded {
		return
	}
	s.seeded = true
	last, err := s.readings.Latest(ctx)
	if err != nil {
		s.logError("load latest reading", err)
		return
	}
	s.lastCategory = last.Category
}

func (s *PollerService) markOnline(ctx context.Context, r models.Reading) {
	if s.link == linkOnline {
		return
	}
	s.link = linkOnline
	s.appendEvent(ctx, models.EventSensorOnline, "Sensor reachable", map[string]any{
		"sensor_id": r.SensorID,
	})
	if s.log != nil {
		s.log.Infow("sensor online", "sensor_id", r.SensorID)
	}
}

func (s *PollerService) markOffline(ctx context.Context, cause error) {
	if s.log != nil {
		s.log.Warnw("poll failed", "error", cause)
	}
	if s.link == linkOffline {
		return
	}
	s.link = linkOffline
	s.appendEvent(ctx, models.EventSensorOffline, "Sensor unreachable", map[string]any{
		"error": cause.Error(),
	})
}

func (s *PollerService) trackCategory(ctx context.Context, r models.Reading) {
	prev := s.lastCategory
	s.lastCategory = r.Category
	if prev == "" || prev == r.Category {
		return
	}
	s.appendEvent(ctx, models.EventCategoryChange, "AQI category changed", map[string]any{
		"from": prev,
		"to":   r.Category,
		"aqi":  r.AQI,
	})
}

func (s *PollerService) appendEvent(ctx context.Context, typ, desc string, meta map[string]any) {
	err := s.eventRepo.Append(ctx, models.DeviceEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  s.now().UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	})
	switch {
	case errors.Is(err, repository.ErrMetadataEncoding):
		if s.log != nil {
			s.log.Warnw("event stored without metadata", "type", typ, "error", err)
		}
	case err != nil:
		s.logError("append event", err)
	}
}

func (s *PollerService) logError(msg string, err error) {
	if s.log != nil {
		s.log.Errorw(msg, "error", err)
	}
}
