package sensor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"purpleair_display/internal/models"
)

const (
	maxBodyBytes = 64 << 10

	// a channel disagreement counts only when both the absolute and the
	// relative difference are large
	mismatchAbsUg = 5.0
	mismatchRel   = 0.7

	sensorTimeLayout = "2006/01/02T15:04:05"
	userAgent        = "purpleair-display"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status from sensor")
	ErrMalformedPayload = errors.New("malformed sensor payload")
	ErrMissingField     = errors.New("sensor payload missing field")
)

// payload mirrors the subset of the monitor's /json document we use.
// Channel B keys are absent on single-laser units.
type payload struct {
	SensorID  string   `json:"SensorId"`
	DateTime  string   `json:"DateTime"`
	PM25A     *float64 `json:"pm2_5_atm"`
	PM25B     *float64 `json:"pm2_5_atm_b"`
	SensorAQI *float64 `json:"pm2.5_aqi"`
	TempF     *float64 `json:"current_temp_f"`
	Humidity  *float64 `json:"current_humidity"`
	Pressure  *float64 `json:"pressure"`
	RSSI      *int     `json:"rssi"`
}

// Client polls a single monitor.
type Client struct {
	url  string
	http *http.Client
	now  func() time.Time
}

// NewClient returns a client for the given endpoint URL,
// e.g. http://192.168.10.10:80/json.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
		now:  time.Now,
	}
}

// URL is the endpoint this client polls.
func (c *Client) URL() string { return c.url }

// Fetch performs one GET and parses the response into a Reading.
func (c *Client) Fetch(ctx context.Context) (models.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return models.Reading{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Reading{}, fmt.Errorf("get %s: %w", c.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return models.Reading{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return models.Reading{}, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return models.Reading{}, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedPayload, maxBodyBytes)
	}

	return Parse(body, c.now().UTC())
}

// Parse converts a raw /json document into a Reading fetched at fetchedAt.
func Parse(body []byte, fetchedAt time.Time) (models.Reading, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return models.Reading{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.PM25A == nil {
		return models.Reading{}, fmt.Errorf("%w: pm2_5_atm", ErrMissingField)
	}

	r := models.Reading{
		Status:      models.StatusOK,
		SensorID:    strings.TrimSpace(p.SensorID),
		FetchedAt:   fetchedAt,
		PM25A:       *p.PM25A,
		TempF:       deref(p.TempF),
		HumidityPct: deref(p.Humidity),
		PressureHPa: deref(p.Pressure),
	}
	// the monitor reports UTC as "2024/05/01T17:02:11z"
	stamp := strings.TrimRight(strings.TrimSpace(p.DateTime), "zZ")
	if t, err := time.Parse(sensorTimeLayout, stamp); err == nil {
		r.ObservedAt = t.UTC()
	}
	if p.RSSI != nil {
		r.RSSI = *p.RSSI
	}
	if p.SensorAQI != nil {
		r.SensorAQI = int(math.Round(*p.SensorAQI))
	}

	if p.PM25B != nil {
		b := *p.PM25B
		r.PM25B = &b
		r.PM25 = (r.PM25A + b) / 2
		if channelsDisagree(r.PM25A, b) {
			r.Flags = append(r.Flags, models.FlagChannelMismatch)
		}
	} else {
		r.PM25 = r.PM25A
		r.Flags = append(r.Flags, models.FlagSingleChannel)
	}

	r.AQI = AQI(r.PM25)
	cat := CategoryFor(r.AQI)
	r.Category = cat.Name
	r.Color = cat.Color
	return r, nil
}

func channelsDisagree(a, b float64) bool {
	diff := math.Abs(a - b)
	mean := (a + b) / 2
	if mean <= 0 {
		return false
	}
	return diff > mismatchAbsUg && diff/mean > mismatchRel
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
