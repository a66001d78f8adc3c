package models

import "time"

// FirmwareImage records an accepted OTA upload.
type FirmwareImage struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	MD5        string    `json:"md5"`
	SHA256     string    `json:"sha256"`
	UploadedAt time.Time `json:"uploaded_at"`
}
