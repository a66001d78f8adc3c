package models

// DeviceInfo is the public, secret-free view of the device configuration.
type DeviceInfo struct {
	Hostname            string `json:"hostname"`
	HostnameLabel       string `json:"hostname_label"`
	SSID                string `json:"ssid"`
	OpenNetwork         bool   `json:"open_network"`
	APIURL              string `json:"api_url"`
	PollIntervalSeconds uint32 `json:"poll_interval_seconds"`
	DebugStrings        bool   `json:"debug_strings"`
	OTAProtected        bool   `json:"ota_password_protected"`
	OTAPasswordIsMD5    bool   `json:"ota_password_is_md5"`
}
