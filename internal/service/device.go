package service

import (
	"purpleair_display/internal/config"
	"purpleair_display/internal/models"
	"purpleair_display/internal/network"
)

// DeviceService reports the configured identity of the device.
type DeviceService struct {
	info models.DeviceInfo
}

// NewDeviceService snapshots the non-secret parts of cfg.
func NewDeviceService(cfg config.Config, profile network.Profile) *DeviceService {
	return &DeviceService{info: models.DeviceInfo{
		Hostname:            profile.DisplayName(),
		HostnameLabel:       profile.Hostname(),
		SSID:                profile.SSID(),
		OpenNetwork:         profile.Open(),
		APIURL:              cfg.APIURL(),
		PollIntervalSeconds: cfg.PollIntervalSeconds,
		DebugStrings:        cfg.DebugStrings,
		OTAProtected:        cfg.OTA.PasswordProtected,
		OTAPasswordIsMD5:    cfg.OTA.PasswordIsMD5,
	}}
}

func (s *DeviceService) Info() models.DeviceInfo { return s.info }
