package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
)

type sensorSpec struct {
	key       string
	name      string
	unit      string
	class     string
	valueTmpl string
}

var haSensors = []sensorSpec{
	{key: "aqi", name: "AQI", class: "aqi", valueTmpl: "{{ value_json.aqi }}"},
	{key: "pm25", name: "PM2.5", unit: "µg/m³", class: "pm25", valueTmpl: "{{ value_json.pm2_5 }}"},
	{key: "temperature", name: "Temperature", unit: "°F", class: "temperature", valueTmpl: "{{ value_json.temp_f }}"},
	{key: "humidity", name: "Humidity", unit: "%", class: "humidity", valueTmpl: "{{ value_json.humidity_pct }}"},
}

// discoveryConfigs returns the retained Home Assistant config messages keyed
// by topic.
func (c *Client) discoveryConfigs() map[string][]byte {
	out := make(map[string][]byte, len(haSensors))
	device := map[string]any{
		"identifiers":  []string{c.nodeID},
		"name":         "PurpleAir Display",
		"manufacturer": "PurpleAir",
		"model":        "Display",
	}
	for _, s := range haSensors {
		payload := map[string]any{
			"name":                  s.name,
			"unique_id":             c.nodeID + "_" + s.key,
			"state_topic":           c.topic("state"),
			"value_template":        s.valueTmpl,
			"device_class":          s.class,
			"state_class":           "measurement",
			"availability_topic":    c.topic("availability"),
			"payload_available":     payloadOnline,
			"payload_not_available": payloadOffline,
			"device":                device,
		}
		if s.unit != "" {
			payload["unit_of_measurement"] = s.unit
		}
		raw, _ := json.Marshal(payload)
		out[fmt.Sprintf("%s/sensor/%s/%s/config", discoveryPrefix, c.nodeID, s.key)] = raw
	}
	return out
}

// safeID keeps characters Home Assistant accepts in object ids.
func safeID(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return -1
	}, s)
}
