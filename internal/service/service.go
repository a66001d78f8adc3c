package service

import (
	"context"
	"io"
	"time"

	"purpleair_display/internal/config"
	"purpleair_display/internal/display"
	"purpleair_display/internal/logger"
	"purpleair_display/internal/models"
	"purpleair_display/internal/network"
	"purpleair_display/internal/repository"
)

// SensorSource fetches one reading from the monitor.
type SensorSource interface {
	Fetch(ctx context.Context) (models.Reading, error)
}

// ReadingSink receives every reading the poller stored.
type ReadingSink interface {
	Publish(ctx context.Context, r models.Reading) error
}

// Monitoring exposes the latest reading, history and the rendered display.
type Monitoring interface {
	Current(ctx context.Context) (models.Reading, error)
	History(ctx context.Context, f HistoryFilter) ([]models.Reading, error)
	Frame(ctx context.Context) (display.Frame, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error)
}

// Poller runs the background loop that fetches the monitor's /json.
// Stop via context cancellation in main() for graceful shutdown.
type Poller interface {
	Run(ctx context.Context, interval time.Duration)
}

// OTA gates firmware uploads behind the configured password.
type OTA interface {
	Protected() bool
	MaxImageBytes() int64
	Challenge() (string, error)
	Authenticate(ctx context.Context, c Credentials) (string, error)
	ParseToken(token string) (string, error)
	Accept(ctx context.Context, u Upload) (models.FirmwareImage, error)
	LatestFirmware(ctx context.Context) (*models.FirmwareImage, error)
}

// Device describes the configured device without secrets.
type Device interface {
	Info() models.DeviceInfo
}

// Retention prunes old readings and events on a schedule.
type Retention interface {
	Start() error
	Stop()
	Prune(ctx context.Context, now time.Time) (PruneResult, error)
}

// Service aggregates all sub-services.
type Service struct {
	Monitoring
	EventLog
	Poller
	OTA
	Device
	Retention
}

// Deps are the non-repository inputs of NewService.
type Deps struct {
	Config  config.Config
	Profile network.Profile
	Source  SensorSource
	Sinks   []ReadingSink
	Log     *logger.Logger
}

// NewService wires the repository layer and the loaded configuration into
// concrete services.
func NewService(repos *repository.Repository, d Deps) (*Service, error) {
	otaSettings, err := OTASettingsFrom(d.Config.OTA)
	if err != nil {
		return nil, err
	}

	displayOpts := display.Options{
		Width:      d.Config.Display.Width,
		Hostname:   d.Profile.Hostname(),
		StaleAfter: 3 * d.Config.PollInterval(),
	}

	return &Service{
		Monitoring: NewMonitoringService(repos.ReadingRepo, displayOpts),
		EventLog:   NewEventLogService(repos.EventRepo),
		Poller:     NewPollerService(d.Source, repos.ReadingRepo, repos.EventRepo, d.Log.With("component", "poller"), d.Sinks...),
		OTA:        NewOTAService(otaSettings, repos.FirmwareRepo, repos.EventRepo, d.Log.With("component", "ota")),
		Device:     NewDeviceService(d.Config, d.Profile),
		Retention: NewRetentionService(repos.ReadingRepo, repos.EventRepo,
			d.Config.Storage.Retention, d.Config.Storage.PruneSchedule, d.Log.With("component", "retention")),
	}, nil
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", or one of the models.Event* constants
}

// HistoryFilter selects stored readings.
type HistoryFilter struct {
	From  time.Time
	To    time.Time
	Limit int // 0 means DefaultHistoryLimit; capped at MaxHistoryLimit
}

// Credentials carry either a plain password or a challenge response.
type Credentials struct {
	Password string

	Nonce    string
	CNonce   string
	Response string // md5(digest:nonce:cnonce), hex
}

// Upload is a firmware image offered for OTA.
type Upload struct {
	Filename string
	Size     int64 // -1 when unknown
	MD5      string
	Body     io.Reader
}
