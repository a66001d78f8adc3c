package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"purpleair_display/internal/network"
)

// Log levels selected by DebugStrings. Kept in sync with internal/logger.
const (
	levelDebug = "debug"
	levelInfo  = "info"
)

const (
	envPrefix        = "PURPLEAIR"
	defaultSearchDir = "configs"
	defaultName      = "config"
	redactedValue    = "***"

	maxSSIDBytes   = 32
	md5HexLength   = 32
	maxHostnameLen = 253
	maxDNSLabelLen = 63
)

// WiFi holds the station credentials and the advertised hostname.
type WiFi struct {
	SSID     string `mapstructure:"ssid"`
	Password string `mapstructure:"password"`
	Hostname string `mapstructure:"hostname"`
}

// API locates the PurpleAir monitor's local JSON endpoint.
type API struct {
	Server string `mapstructure:"server"`
	Port   int    `mapstructure:"port"`
	Path   string `mapstructure:"path"`
}

// OTA gates firmware uploads.
type OTA struct {
	PasswordProtected bool   `mapstructure:"password_protected"`
	PasswordIsMD5     bool   `mapstructure:"password_is_md5"`
	Password          string `mapstructure:"password"`

	SessionSecret     string        `mapstructure:"session_secret"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	FirmwareDir       string        `mapstructure:"firmware_dir"`
	MaxImageBytes     int64         `mapstructure:"max_image_bytes"`
	AuthRatePerMinute float64       `mapstructure:"auth_rate_per_minute"`
	AuthBurst         int           `mapstructure:"auth_burst"`
}

type HTTP struct {
	Port string `mapstructure:"port"`
}

type DB struct {
	Path string `mapstructure:"path"`
}

type Storage struct {
	Retention     time.Duration `mapstructure:"retention"`
	PruneSchedule string        `mapstructure:"prune_schedule"`
}

type MQTT struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	HADiscovery bool   `mapstructure:"ha_discovery"`
}

type Display struct {
	SerialPort string `mapstructure:"serial_port"`
	BaudRate   int    `mapstructure:"baud_rate"`
	Width      int    `mapstructure:"width"`
}

type Network struct {
	WPAConfPath string `mapstructure:"wpa_conf_path"`
}

// Config is the device configuration record. It is produced once by Load
// and passed around by value; nothing mutates it after validation.
type Config struct {
	DebugStrings        bool   `mapstructure:"debug_strings"`
	WiFi                WiFi   `mapstructure:"wifi"`
	API                 API    `mapstructure:"api"`
	PollIntervalSeconds uint32 `mapstructure:"poll_interval_seconds"`
	OTA                 OTA    `mapstructure:"ota"`

	HTTP    HTTP    `mapstructure:"http"`
	DB      DB      `mapstructure:"db"`
	Storage Storage `mapstructure:"storage"`
	MQTT    MQTT    `mapstructure:"mqtt"`
	Display Display `mapstructure:"display"`
	Network Network `mapstructure:"network"`
}

// Default returns the stock build: the values a device ships with when the
// user has not edited anything.
func Default() Config {
	return Config{
		DebugStrings: false,
		WiFi: WiFi{
			SSID:     "Starbucks Wifi",
			Password: "psk here",
			Hostname: "PurpleAir Display",
		},
		API: API{
			Server: "192.168.10.10",
			Port:   80,
			Path:   "/json",
		},
		PollIntervalSeconds: 40,
		OTA: OTA{
			PasswordProtected: true,
			PasswordIsMD5:     false,
			Password:          "hackme",
			SessionTTL:        10 * time.Minute,
			FirmwareDir:       "firmware",
			MaxImageBytes:     4 << 20,
			AuthRatePerMinute: 6,
			AuthBurst:         3,
		},
		HTTP:    HTTP{Port: "8080"},
		DB:      DB{Path: "purpleair.db"},
		Storage: Storage{Retention: 30 * 24 * time.Hour, PruneSchedule: "@daily"},
		MQTT: MQTT{
			Broker:      "tcp://localhost:1883",
			TopicPrefix: "purpleair",
		},
		Display: Display{BaudRate: 9600, Width: 20},
	}
}

// Load reads the configuration from path (or configs/config.* when path is
// empty), overlays PURPLEAIR_* environment variables and validates the
// result. A missing file is not an error: the defaults are used.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(defaultSearchDir)
		v.SetConfigName(defaultName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg = cfg.sanitized()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("debug_strings", d.DebugStrings)
	v.SetDefault("wifi.ssid", d.WiFi.SSID)
	v.SetDefault("wifi.password", d.WiFi.Password)
	v.SetDefault("wifi.hostname", d.WiFi.Hostname)
	v.SetDefault("api.server", d.API.Server)
	v.SetDefault("api.port", d.API.Port)
	v.SetDefault("api.path", d.API.Path)
	v.SetDefault("poll_interval_seconds", d.PollIntervalSeconds)
	v.SetDefault("ota.password_protected", d.OTA.PasswordProtected)
	v.SetDefault("ota.password_is_md5", d.OTA.PasswordIsMD5)
	v.SetDefault("ota.password", d.OTA.Password)
	v.SetDefault("ota.session_secret", d.OTA.SessionSecret)
	v.SetDefault("ota.session_ttl", d.OTA.SessionTTL)
	v.SetDefault("ota.firmware_dir", d.OTA.FirmwareDir)
	v.SetDefault("ota.max_image_bytes", d.OTA.MaxImageBytes)
	v.SetDefault("ota.auth_rate_per_minute", d.OTA.AuthRatePerMinute)
	v.SetDefault("ota.auth_burst", d.OTA.AuthBurst)
	v.SetDefault("http.port", d.HTTP.Port)
	v.SetDefault("db.path", d.DB.Path)
	v.SetDefault("storage.retention", d.Storage.Retention)
	v.SetDefault("storage.prune_schedule", d.Storage.PruneSchedule)
	v.SetDefault("mqtt.enabled", d.MQTT.Enabled)
	v.SetDefault("mqtt.broker", d.MQTT.Broker)
	v.SetDefault("mqtt.client_id", d.MQTT.ClientID)
	v.SetDefault("mqtt.username", d.MQTT.Username)
	v.SetDefault("mqtt.password", d.MQTT.Password)
	v.SetDefault("mqtt.topic_prefix", d.MQTT.TopicPrefix)
	v.SetDefault("mqtt.ha_discovery", d.MQTT.HADiscovery)
	v.SetDefault("display.serial_port", d.Display.SerialPort)
	v.SetDefault("display.baud_rate", d.Display.BaudRate)
	v.SetDefault("display.width", d.Display.Width)
	v.SetDefault("network.wpa_conf_path", d.Network.WPAConfPath)
}

// sanitized trims incidental whitespace. SSID, passphrase and OTA password
// are literals and are left alone.
func (c Config) sanitized() Config {
	c.WiFi.Hostname = strings.TrimSpace(c.WiFi.Hostname)
	c.API.Server = strings.TrimSpace(c.API.Server)
	c.API.Path = strings.TrimSpace(c.API.Path)
	c.OTA.FirmwareDir = strings.TrimSpace(c.OTA.FirmwareDir)
	c.HTTP.Port = strings.TrimSpace(c.HTTP.Port)
	c.DB.Path = strings.TrimSpace(c.DB.Path)
	c.MQTT.Broker = strings.TrimSpace(c.MQTT.Broker)
	c.MQTT.TopicPrefix = strings.Trim(strings.TrimSpace(c.MQTT.TopicPrefix), "/")
	c.Display.SerialPort = strings.TrimSpace(c.Display.SerialPort)
	c.Network.WPAConfPath = strings.TrimSpace(c.Network.WPAConfPath)
	return c
}

// Validation errors. Validate wraps them with the offending key.
var (
	ErrInvalidSSID       = errors.New("invalid ssid")
	ErrInvalidPassphrase = errors.New("invalid wifi passphrase")
	ErrInvalidHostname   = errors.New("invalid hostname")
	ErrInvalidServer     = errors.New("invalid api server")
	ErrInvalidPort       = errors.New("port out of range [1, 65535]")
	ErrInvalidPath       = errors.New("api path must start with '/'")
	ErrInvalidInterval   = errors.New("poll interval must be at least 1 second")
	ErrMissingOTAPass    = errors.New("ota password required when password protection is on")
	ErrInvalidOTAHash    = errors.New("ota password must be a 32 digit hex md5 digest")
	ErrNotPositive       = errors.New("must be positive")
)

// Validate reports every violated constraint, not just the first.
func (c Config) Validate() error {
	var err error

	if c.WiFi.SSID == "" || len(c.WiFi.SSID) > maxSSIDBytes {
		err = multierr.Append(err, fmt.Errorf("wifi.ssid: %w", ErrInvalidSSID))
	}
	if !network.ValidPSK(c.WiFi.Password) {
		err = multierr.Append(err, fmt.Errorf("wifi.password: %w", ErrInvalidPassphrase))
	}
	if c.WiFi.Hostname == "" {
		err = multierr.Append(err, fmt.Errorf("wifi.hostname: %w", ErrInvalidHostname))
	}
	if !validServer(c.API.Server) {
		err = multierr.Append(err, fmt.Errorf("api.server %q: %w", c.API.Server, ErrInvalidServer))
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("api.port %d: %w", c.API.Port, ErrInvalidPort))
	}
	if !strings.HasPrefix(c.API.Path, "/") {
		err = multierr.Append(err, fmt.Errorf("api.path %q: %w", c.API.Path, ErrInvalidPath))
	}
	if c.PollIntervalSeconds < 1 {
		err = multierr.Append(err, fmt.Errorf("poll_interval_seconds: %w", ErrInvalidInterval))
	}

	if c.OTA.PasswordProtected {
		switch {
		case c.OTA.Password == "":
			err = multierr.Append(err, fmt.Errorf("ota.password: %w", ErrMissingOTAPass))
		case c.OTA.PasswordIsMD5 && !isHex(c.OTA.Password, md5HexLength):
			err = multierr.Append(err, fmt.Errorf("ota.password: %w", ErrInvalidOTAHash))
		}
	}
	if c.OTA.SessionTTL <= 0 {
		err = multierr.Append(err, fmt.Errorf("ota.session_ttl: %w", ErrNotPositive))
	}
	if c.OTA.MaxImageBytes <= 0 {
		err = multierr.Append(err, fmt.Errorf("ota.max_image_bytes: %w", ErrNotPositive))
	}
	if c.OTA.AuthRatePerMinute <= 0 || c.OTA.AuthBurst <= 0 {
		err = multierr.Append(err, fmt.Errorf("ota.auth_rate_per_minute/auth_burst: %w", ErrNotPositive))
	}
	if c.Storage.Retention <= 0 {
		err = multierr.Append(err, fmt.Errorf("storage.retention: %w", ErrNotPositive))
	}
	if c.Display.Width <= 0 {
		err = multierr.Append(err, fmt.Errorf("display.width: %w", ErrNotPositive))
	}
	if c.Display.SerialPort != "" && c.Display.BaudRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("display.baud_rate: %w", ErrNotPositive))
	}
	return err
}

func validServer(s string) bool {
	if s == "" {
		return false
	}
	if net.ParseIP(s) != nil {
		return true
	}
	if len(s) > maxHostnameLen {
		return false
	}
	for _, label := range strings.Split(strings.TrimSuffix(s, "."), ".") {
		if !validDNSLabel(label) {
			return false
		}
	}
	return true
}

func validDNSLabel(l string) bool {
	if l == "" || len(l) > maxDNSLabelLen || l[0] == '-' || l[len(l)-1] == '-' {
		return false
	}
	for i := 0; i < len(l); i++ {
		c := l[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-') {
			return false
		}
	}
	return true
}

func isHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// APIURL is the full URL the sensor client polls.
func (c Config) APIURL() string {
	return fmt.Sprintf("http://%s%s", net.JoinHostPort(c.API.Server, fmt.Sprint(c.API.Port)), c.API.Path)
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// LogLevel maps DebugStrings onto a logger level name.
func (c Config) LogLevel() string {
	if c.DebugStrings {
		return levelDebug
	}
	return levelInfo
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return redactedValue
	}
	c.WiFi.Password = mask(c.WiFi.Password)
	c.OTA.Password = mask(c.OTA.Password)
	c.OTA.SessionSecret = mask(c.OTA.SessionSecret)
	c.MQTT.Password = mask(c.MQTT.Password)
	return c
}
