// Package network derives the station profile a display joins with: the
// WPA2 key material and the hostname label it advertises.
package network

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pmkIterations = 4096
	pmkLength     = 32
	rawPSKHexLen  = 64
	maxLabelLen   = 63
	fallbackLabel = "purpleair"
	maxSSIDLen    = 32
)

var (
	ErrEmptySSID     = errors.New("ssid is empty")
	ErrSSIDTooLong   = errors.New("ssid longer than 32 bytes")
	ErrBadPassphrase = errors.New("passphrase must be 8..63 printable ASCII characters or 64 hex digits")
	ErrEmptyHostname = errors.New("hostname is empty")
)

// Profile is an immutable station profile.
type Profile struct {
	ssid     string
	psk      string
	hostname string
}

// NewProfile validates the credentials. An empty psk means an open network.
func NewProfile(ssid, psk, hostname string) (Profile, error) {
	switch {
	case ssid == "":
		return Profile{}, ErrEmptySSID
	case len(ssid) > maxSSIDLen:
		return Profile{}, ErrSSIDTooLong
	case strings.TrimSpace(hostname) == "":
		return Profile{}, ErrEmptyHostname
	}
	if !ValidPSK(psk) {
		return Profile{}, ErrBadPassphrase
	}
	return Profile{ssid: ssid, psk: psk, hostname: strings.TrimSpace(hostname)}, nil
}

func (p Profile) SSID() string { return p.ssid }

// Open reports whether the network has no pre-shared key.
func (p Profile) Open() bool { return p.psk == "" }

// DisplayName is the hostname as configured.
func (p Profile) DisplayName() string { return p.hostname }

// Hostname reduces the configured name to a single RFC 1123 label:
// "PurpleAir Display" becomes "purpleair-display".
func (p Profile) Hostname() string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(p.hostname) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	label := strings.Trim(b.String(), "-")
	if len(label) > maxLabelLen {
		label = strings.TrimRight(label[:maxLabelLen], "-")
	}
	if label == "" {
		return fallbackLabel
	}
	return label
}

// PMK returns the 256-bit pairwise master key, or nil for open networks.
// A 64 hex digit psk is already the key and is decoded as is.
func (p Profile) PMK() []byte {
	if p.Open() {
		return nil
	}
	if isRawPSK(p.psk) {
		key, _ := hex.DecodeString(p.psk)
		return key
	}
	return pbkdf2.Key([]byte(p.psk), []byte(p.ssid), pmkIterations, pmkLength, sha1.New)
}

// WPASupplicantBlock renders a wpa_supplicant network block. Only the
// derived key is written, never the passphrase.
func (p Profile) WPASupplicantBlock() string {
	var b strings.Builder
	b.WriteString("network={\n")
	b.WriteString("\tssid=" + supplicantSSID(p.ssid) + "\n")
	if p.Open() {
		b.WriteString("\tkey_mgmt=NONE\n")
	} else {
		b.WriteString("\tkey_mgmt=WPA-PSK\n")
		fmt.Fprintf(&b, "\tpsk=%s\n", hex.EncodeToString(p.PMK()))
	}
	b.WriteString("}\n")
	return b.String()
}

// WriteWPAConfig writes a minimal wpa_supplicant.conf for the profile.
func WriteWPAConfig(path string, p Profile) error {
	content := "ctrl_interface=/var/run/wpa_supplicant\nupdate_config=0\n\n" + p.WPASupplicantBlock()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write wpa config %q: %w", path, err)
	}
	return nil
}

// supplicantSSID quotes plain printable ASCII. Anything else is written as
// unquoted hex because wpa_supplicant has no escapes inside quotes.
func supplicantSSID(ssid string) string {
	for i := 0; i < len(ssid); i++ {
		if c := ssid[i]; c < 0x20 || c > 0x7e || c == '"' || c == '\\' {
			return hex.EncodeToString([]byte(ssid))
		}
	}
	return `"` + ssid + `"`
}

// ValidPSK accepts an empty psk (open network), an 8..63 character
// printable ASCII passphrase, or a raw 64 digit hex key.
func ValidPSK(psk string) bool {
	return psk == "" || isRawPSK(psk) || isPassphrase(psk)
}

func isRawPSK(s string) bool {
	if len(s) != rawPSKHexLen {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func isPassphrase(s string) bool {
	if len(s) < 8 || len(s) > 63 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
