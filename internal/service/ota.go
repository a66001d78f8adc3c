package service

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"purpleair_display/internal/config"
	"purpleair_display/internal/logger"
	"purpleair_display/internal/models"
	"purpleair_display/internal/repository"
)

const (
	otaSubject     = "ota"
	nonceTTL       = time.Minute
	nonceBytes     = 16
	maxOpenNonces  = 64
	secretBytes    = 32
	imageExtension = ".bin"
)

// Domain errors for OTA flows.
var (
	ErrInvalidPassword     = errors.New("invalid password")
	ErrMissingCredentials  = errors.New("password or challenge response required")
	ErrUnknownChallenge    = errors.New("unknown or expired challenge")
	ErrTooManyChallenges   = errors.New("too many open challenges")
	ErrRateLimited         = errors.New("too many authentication attempts")
	ErrInvalidToken        = errors.New("invalid token")
	ErrImageTooLarge       = errors.New("firmware image too large")
	ErrEmptyImage          = errors.New("firmware image is empty")
	ErrChecksumMismatch    = errors.New("firmware md5 mismatch")
	ErrInvalidChecksumSpec = errors.New("md5 must be 32 hex characters")
)

// OTASettings is the OTA part of the configuration, normalized for use.
type OTASettings struct {
	Protected      bool
	PasswordDigest string // lowercase md5 hex of the OTA password
	SessionSecret  []byte
	SessionTTL     time.Duration
	FirmwareDir    string
	MaxImageBytes  int64
	AuthPerMinute  float64
	AuthBurst      int
}

// OTASettingsFrom derives settings from the loaded config. The plaintext
// password does not survive this call. An empty session secret is replaced
// by a random one, which invalidates tokens on restart.
func OTASettingsFrom(c config.OTA) (OTASettings, error) {
	s := OTASettings{
		Protected:     c.PasswordProtected,
		SessionTTL:    c.SessionTTL,
		FirmwareDir:   c.FirmwareDir,
		MaxImageBytes: c.MaxImageBytes,
		AuthPerMinute: c.AuthRatePerMinute,
		AuthBurst:     c.AuthBurst,
	}
	if c.PasswordProtected {
		if c.PasswordIsMD5 {
			s.PasswordDigest = strings.ToLower(c.Password)
		} else {
			s.PasswordDigest = md5Hex([]byte(c.Password))
		}
	}
	if c.SessionSecret != "" {
		s.SessionSecret = []byte(c.SessionSecret)
	} else {
		b := make([]byte, secretBytes)
		if _, err := rand.Read(b); err != nil {
			return OTASettings{}, fmt.Errorf("generate session secret: %w", err)
		}
		s.SessionSecret = b
	}
	return s, nil
}

// Claims defines JWT claims of an OTA session.
type Claims struct {
	jwt.RegisteredClaims
}

// OTAService authenticates OTA clients and stores uploaded images.
type OTAService struct {
	settings  OTASettings
	firmware  repository.FirmwareRepo
	eventRepo repository.EventRepo
	limiter   *rate.Limiter
	now       func() time.Time
	log       *logger.Logger

	mu     sync.Mutex
	nonces map[string]time.Time // nonce -> expiry
}

func NewOTAService(settings OTASettings, firmware repository.FirmwareRepo, eventRepo repository.EventRepo, log *logger.Logger) *OTAService {
	limit := rate.Inf
	if settings.AuthPerMinute > 0 {
		limit = rate.Limit(settings.AuthPerMinute / 60)
	}
	burst := settings.AuthBurst
	if burst < 1 {
		burst = 1
	}
	return &OTAService{
		settings:  settings,
		firmware:  firmware,
		eventRepo: eventRepo,
		limiter:   rate.NewLimiter(limit, burst),
		now:       time.Now,
		log:       log,
		nonces:    make(map[string]time.Time),
	}
}

// Protected reports whether uploads require authentication.
func (s *OTAService) Protected() bool { return s.settings.Protected }

// MaxImageBytes is the largest firmware image Accept stores.
func (s *OTAService) MaxImageBytes() int64 { return s.settings.MaxImageBytes }

// Challenge issues a single-use nonce for the challenge/response flow.
func (s *OTAService) Challenge() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(b)

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for n, exp := range s.nonces {
		if now.After(exp) {
			delete(s.nonces, n)
		}
	}
	if len(s.nonces) >= maxOpenNonces {
		return "", ErrTooManyChallenges
	}
	s.nonces[nonce] = now.Add(nonceTTL)
	return nonce, nil
}

// Authenticate checks a plain password or a challenge response and returns
// a session token.
func (s *OTAService) Authenticate(ctx context.Context, c Credentials) (string, error) {
	if !s.settings.Protected {
		return s.issueToken()
	}
	if !s.limiter.Allow() {
		return "", ErrRateLimited
	}

	var err error
	switch {
	case c.Password != "":
		err = s.checkPassword(c.Password)
	case c.Nonce != "":
		err = s.checkResponse(c.Nonce, c.CNonce, c.Response)
	default:
		return "", ErrMissingCredentials
	}
	if err != nil {
		s.appendEvent(ctx, models.EventOTAAuthFailed, "OTA authentication failed", map[string]any{
			"reason": err.Error(),
		})
		return "", err
	}
	return s.issueToken()
}

func (s *OTAService) checkPassword(password string) error {
	if !equalHex(md5Hex([]byte(password)), s.settings.PasswordDigest) {
		return ErrInvalidPassword
	}
	return nil
}

func (s *OTAService) checkResponse(nonce, cnonce, response string) error {
	if !s.consumeNonce(nonce) {
		return ErrUnknownChallenge
	}
	want := md5Hex([]byte(s.settings.PasswordDigest + ":" + nonce + ":" + cnonce))
	if !equalHex(want, strings.ToLower(strings.TrimSpace(response))) {
		return ErrInvalidPassword
	}
	return nil
}

func (s *OTAService) consumeNonce(nonce string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.nonces[nonce]
	if !ok {
		return false
	}
	delete(s.nonces, nonce)
	return !s.now().After(exp)
}

// ParseToken validates an OTA session token and returns its subject.
func (s *OTAService) ParseToken(accessToken string) (string, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.settings.SessionSecret, nil
	}, jwt.WithSubject(otaSubject), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (s *OTAService) issueToken() (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   otaSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.settings.SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.settings.SessionSecret)
}

// Accept stores an uploaded image after size and checksum checks.
func (s *OTAService) Accept(ctx context.Context, u Upload) (models.FirmwareImage, error) {
	img, err := s.accept(ctx, u)
	if err != nil {
		s.appendEvent(ctx, models.EventOTARejected, "Firmware image rejected", map[string]any{
			"filename": u.Filename,
			"reason":   err.Error(),
		})
		return models.FirmwareImage{}, err
	}
	s.appendEvent(ctx, models.EventOTAAccepted, "Firmware image accepted", map[string]any{
		"id":         img.ID,
		"filename":   img.Filename,
		"size_bytes": img.SizeBytes,
		"md5":        img.MD5,
	})
	return img, nil
}

func (s *OTAService) accept(ctx context.Context, u Upload) (models.FirmwareImage, error) {
	want := strings.ToLower(strings.TrimSpace(u.MD5))
	if want != "" && !isHex32(want) {
		return models.FirmwareImage{}, ErrInvalidChecksumSpec
	}
	if u.Size > s.settings.MaxImageBytes {
		return models.FirmwareImage{}, ErrImageTooLarge
	}
	if err := os.MkdirAll(s.settings.FirmwareDir, 0o750); err != nil {
		return models.FirmwareImage{}, fmt.Errorf("create firmware dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.settings.FirmwareDir, "upload-*.part")
	if err != nil {
		return models.FirmwareImage{}, fmt.Errorf("create temp image: %w", err)
	}
	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(tmp.Name())
		}
	}()

	md5h, shah := md5.New(), sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, md5h, shah), io.LimitReader(u.Body, s.settings.MaxImageBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return models.FirmwareImage{}, fmt.Errorf("write image: %w", err)
	}
	switch {
	case n > s.settings.MaxImageBytes:
		return models.FirmwareImage{}, ErrImageTooLarge
	case n == 0:
		return models.FirmwareImage{}, ErrEmptyImage
	}

	sum := hex.EncodeToString(md5h.Sum(nil))
	if want != "" && !equalHex(sum, want) {
		return models.FirmwareImage{}, ErrChecksumMismatch
	}
	if err := ctx.Err(); err != nil {
		return models.FirmwareImage{}, err
	}

	img := models.FirmwareImage{
		ID:         uuid.NewString(),
		Filename:   cleanFilename(u.Filename),
		SizeBytes:  n,
		MD5:        sum,
		SHA256:     hex.EncodeToString(shah.Sum(nil)),
		UploadedAt: s.now().UTC(),
	}
	dst := filepath.Join(s.settings.FirmwareDir, img.ID+imageExtension)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return models.FirmwareImage{}, fmt.Errorf("store image: %w", err)
	}
	if err := s.firmware.Create(ctx, img); err != nil {
		_ = os.Remove(dst)
		return models.FirmwareImage{}, err
	}
	keep = true
	return img, nil
}

// LatestFirmware returns the last accepted image, or nil.
func (s *OTAService) LatestFirmware(ctx context.Context) (*models.FirmwareImage, error) {
	return s.firmware.Latest(ctx)
}

func (s *OTAService) appendEvent(ctx context.Context, typ, desc string, meta map[string]any) {
	err := s.eventRepo.Append(ctx, models.DeviceEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  s.now().UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	})
	if err != nil && s.log != nil {
		s.log.Warnw("failed to record ota event", "type", typ, "error", err)
	}
}

func cleanFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return base
}

func md5Hex(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

func equalHex(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func isHex32(s string) bool {
	if len(s) != 32 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
