package main

import (
	"context"
	"database/sql"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"purpleair_display/internal/config"
	"purpleair_display/internal/display"
	"purpleair_display/internal/handlers"
	"purpleair_display/internal/logger"
	"purpleair_display/internal/models"
	"purpleair_display/internal/mqtt"
	"purpleair_display/internal/network"
	"purpleair_display/internal/repository"
	"purpleair_display/internal/repository/db"
	"purpleair_display/internal/sensor"
	"purpleair_display/internal/server"
	"purpleair_display/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	configPathEnv   = "PURPLEAIR_CONFIG"
	shutdownTimeout = 10 * time.Second
	fetchTimeout    = 10 * time.Second
)

// @title        PurpleAir Display API
// @version      1.0
// @description  Local dashboard and OTA gate for a PurpleAir display.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	// load configs/config.yml (or $PURPLEAIR_CONFIG) overlaid with PURPLEAIR_* env
	cfg, err := config.Load(os.Getenv(configPathEnv))
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("invalid configuration", "err", err)
	}

	// init logger; debug strings select the debug level
	log := logger.Get(cfg.LogLevel())
	if !cfg.DebugStrings {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Debugw("configuration loaded", "config", cfg.Redacted())

	profile, err := network.NewProfile(cfg.WiFi.SSID, cfg.WiFi.Password, cfg.WiFi.Hostname)
	if err != nil {
		log.Fatalw("invalid network profile", "err", err)
	}
	if path := cfg.Network.WPAConfPath; path != "" {
		if err := network.WriteWPAConfig(path, profile); err != nil {
			log.Fatalw("failed to write wpa_supplicant config", "path", path, "err", err)
		}
		log.Infow("wpa_supplicant config written", "path", path, "ssid", profile.SSID())
	}

	// open DB
	conn, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// outputs for every polled reading
	displayOpts := display.Options{
		Width:      cfg.Display.Width,
		StaleAfter: 3 * cfg.PollInterval(),
		Hostname:   profile.Hostname(),
	}
	sinks, closers := openSinks(cfg, profile, displayOpts, log)
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	mqttClient := mqtt.NewClient(cfg.MQTT, profile.Hostname(), log.With("component", "mqtt"))
	if mqttClient != nil {
		if err := mqttClient.Connect(); err != nil {
			log.Errorw("mqtt connect failed", "err", err)
		}
		sinks = append(sinks, mqttClient)
	}

	// wire dependencies
	repos := repository.NewRepository(conn)
	services, err := service.NewService(repos, service.Deps{
		Config:  cfg,
		Profile: profile,
		Source:  sensor.NewClient(cfg.APIURL(), fetchTimeout),
		Sinks:   sinks,
		Log:     log,
	})
	if err != nil {
		log.Fatalw("failed to init services", "err", err)
	}
	apiHandler := handlers.NewHandler(services, log)

	recordStartup(repos.EventRepo, cfg, profile, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start poller (via composed service)
	go services.Poller.Run(ctx, cfg.PollInterval())

	if err := services.Retention.Start(); err != nil {
		log.Fatalw("failed to start retention scheduler", "err", err)
	}

	// start HTTP server
	srv := server.New(cfg.HTTP.Port, apiHandler.InitRoutes())
	runHTTPServer(srv, log)

	// graceful shutdown
	waitForShutdown(cancel, services.Retention, mqttClient, srv, log)
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg config.Config, log *logger.Logger) (*sql.DB, error) {
	log.Infow("opening sqlite", "path", cfg.DB.Path)
	return db.InitDB(cfg.DB.Path)
}

// openSinks opens the optional serial character display.
func openSinks(cfg config.Config, profile network.Profile, opts display.Options, log *logger.Logger) ([]service.ReadingSink, []io.Closer) {
	if cfg.Display.SerialPort == "" {
		return nil, nil
	}
	sink, err := display.OpenSerial(cfg.Display.SerialPort, cfg.Display.BaudRate, opts)
	if err != nil {
		log.Errorw("serial display unavailable", "port", cfg.Display.SerialPort, "err", err)
		return nil, nil
	}
	if err := sink.WriteFrame(display.Render(models.Reading{Status: models.StatusWaiting}, time.Now(), opts)); err != nil {
		log.Warnw("serial display initial frame failed", "port", cfg.Display.SerialPort, "err", err)
	}
	log.Infow("serial display attached", "port", cfg.Display.SerialPort, "baud", cfg.Display.BaudRate, "host", profile.Hostname())
	return []service.ReadingSink{sink}, []io.Closer{sink}
}

func recordStartup(events repository.EventRepo, cfg config.Config, profile network.Profile, log *logger.Logger) {
	err := events.Append(context.Background(), models.DeviceEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        models.EventStartup,
		Description: "Display started",
		Metadata: map[string]any{
			"hostname":      profile.Hostname(),
			"api_url":       cfg.APIURL(),
			"poll_interval": cfg.PollInterval().String(),
		},
	})
	if err != nil {
		log.Errorw("failed to record startup", "err", err)
	}
	log.Infow("starting", "hostname", profile.Hostname(), "api_url", cfg.APIURL(),
		"poll_interval", cfg.PollInterval().String(), "ota_protected", cfg.OTA.PasswordProtected)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		log.Infow("http listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, retention service.Retention, mq *mqtt.Client, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down...")

	// stop background goroutines
	cancel()
	retention.Stop()
	mq.Disconnect()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	_ = log.Sync()
}
