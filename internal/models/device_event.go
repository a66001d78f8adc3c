package models

import "time"

// Event types.
const (
	EventStartup        = "STARTUP"
	EventSensorOnline   = "SENSOR_ONLINE"
	EventSensorOffline  = "SENSOR_OFFLINE"
	EventCategoryChange = "AQI_CATEGORY_CHANGE"
	EventOTAAuthFailed  = "OTA_AUTH_FAILED"
	EventOTAAccepted    = "OTA_ACCEPTED"
	EventOTARejected    = "OTA_REJECTED"
	EventPrune          = "PRUNE"
)

// DeviceEvent is a single log entry.
type DeviceEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
