package models

import "time"

// Reading statuses.
const (
	StatusOK      = "OK"
	StatusWaiting = "WAITING" // nothing fetched yet
)

// Reading flags.
const (
	FlagChannelMismatch = "CHANNEL_MISMATCH"
	FlagSingleChannel   = "SINGLE_CHANNEL"
)

// Reading is one parsed snapshot of the monitor's /json document.
type Reading struct {
	ID         int64     `json:"id,omitempty"`
	Status     string    `json:"status"`
	SensorID   string    `json:"sensor_id,omitempty"`
	ObservedAt time.Time `json:"observed_at,omitempty"` // sensor clock
	FetchedAt  time.Time `json:"fetched_at"`

	PM25A     float64  `json:"pm2_5_a"`              // µg/m³, channel A
	PM25B     *float64 `json:"pm2_5_b,omitempty"`    // nil on single-laser units
	PM25      float64  `json:"pm2_5"`                // value the AQI is computed from
	AQI       int      `json:"aqi"`                  // US EPA
	Category  string   `json:"category"`             // e.g. "Good"
	Color     string   `json:"color"`                // #rrggbb
	SensorAQI int      `json:"sensor_aqi,omitempty"` // as reported by the monitor

	TempF       float64  `json:"temp_f"`
	HumidityPct float64  `json:"humidity_pct"`
	PressureHPa float64  `json:"pressure_hpa"`
	RSSI        int      `json:"rssi,omitempty"`
	Flags       []string `json:"flags,omitempty"`
}

// HasFlag reports whether f is set on the reading.
func (r Reading) HasFlag(f string) bool {
	for _, x := range r.Flags {
		if x == f {
			return true
		}
	}
	return false
}
