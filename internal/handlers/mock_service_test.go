package handlers

import (
	"context"
	"net/http"
	"time"

	"purpleair_display/internal/display"
	"purpleair_display/internal/models"
	"purpleair_display/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockOTA struct {
	protected bool
	maxImage  int64

	nonce    string
	nonceErr error

	token    string
	authErr  error
	lastCred service.Credentials

	parseSubject   string
	parseErr       error
	lastParseToken string

	image      models.FirmwareImage
	acceptErr  error
	lastUpload service.Upload
	lastBody   string

	latest    *models.FirmwareImage
	latestErr error
}

func (m *mockOTA) Protected() bool { return m.protected }

func (m *mockOTA) MaxImageBytes() int64 { return m.maxImage }

func (m *mockOTA) Challenge() (string, error) { return m.nonce, m.nonceErr }

func (m *mockOTA) Authenticate(ctx context.Context, c service.Credentials) (string, error) {
	m.lastCred = c
	return m.token, m.authErr
}

func (m *mockOTA) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.parseSubject, m.parseErr
}

func (m *mockOTA) Accept(ctx context.Context, u service.Upload) (models.FirmwareImage, error) {
	m.lastUpload = u
	if u.Body != nil {
		buf := make([]byte, 1024)
		n, _ := u.Body.Read(buf)
		m.lastBody = string(buf[:n])
	}
	return m.image, m.acceptErr
}

func (m *mockOTA) LatestFirmware(ctx context.Context) (*models.FirmwareImage, error) {
	return m.latest, m.latestErr
}

type mockMonitoring struct {
	reading  models.Reading
	err      error
	history  []models.Reading
	histErr  error
	frame    display.Frame
	frameErr error

	lastFilter service.HistoryFilter
}

func (m *mockMonitoring) Current(ctx context.Context) (models.Reading, error) {
	return m.reading, m.err
}

func (m *mockMonitoring) History(ctx context.Context, f service.HistoryFilter) ([]models.Reading, error) {
	m.lastFilter = f
	return m.history, m.histErr
}

func (m *mockMonitoring) Frame(ctx context.Context) (display.Frame, error) {
	return m.frame, m.frameErr
}

type mockEventLog struct {
	resp     []models.DeviceEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.DeviceEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

type mockDevice struct {
	info models.DeviceInfo
}

func (m *mockDevice) Info() models.DeviceInfo { return m.info }

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withHeader(req *http.Request, hdr http.Header) *http.Request {
	for k, vv := range hdr {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
