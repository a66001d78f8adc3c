package handlers

import (
	"errors"
	"net/http"

	"purpleair_display/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	formFirmware = "firmware"
	formMD5      = "md5"

	// room for multipart boundaries and the md5 field around the image
	multipartSlack = 64 << 10

	errMissingFirmware = "missing multipart file 'firmware'"
	errUploadTooLarge  = "firmware upload too large"
	errNoFirmware      = "no firmware uploaded"
)

// otaCredentials accepts either a plain password or a challenge response.
type otaCredentials struct {
	Password string `json:"password,omitempty"`
	Nonce    string `json:"nonce,omitempty"`
	CNonce   string `json:"cnonce,omitempty"`
	Response string `json:"response,omitempty"`
}

// OTASignInRequest is an exported model for Swagger docs of the sign-in payload.
type OTASignInRequest struct {
	// Plain OTA password
	Password string `json:"password,omitempty" example:"hackme"`
	// Nonce from GET /auth/ota/challenge
	Nonce string `json:"nonce,omitempty" example:"8f14e45fceea167a5a36dedd4bea2543"`
	// Client nonce
	CNonce string `json:"cnonce,omitempty" example:"c81e728d9d4c2f63"`
	// md5(md5(password) + ":" + nonce + ":" + cnonce), hex
	Response string `json:"response,omitempty"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("ota_bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// @Summary      OTA challenge
// @Description  Issues a single-use nonce valid for one minute.
// @Tags         ota
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "nonce, expires_in"
// @Failure      429  {object}  map[string]string
// @Router       /auth/ota/challenge [get]
func (h *Handler) otaChallenge(c *gin.Context) {
	nonce, err := h.services.OTA.Challenge()
	if err != nil {
		if errors.Is(err, service.ErrTooManyChallenges) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to issue challenge", "ota_challenge_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nonce": nonce, "expires_in": 60})
}

// @Summary      OTA sign-in
// @Description  Exchanges the OTA password or a challenge response for a session token.
// @Tags         ota
// @Accept       json
// @Produce      json
// @Param        body  body      OTASignInRequest  true  "Credentials"
// @Success      200   {object}  map[string]string  "token"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/ota [post]
func (h *Handler) otaSignIn(c *gin.Context) {
	var input otaCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.OTA.Authenticate(c.Request.Context(), service.Credentials{
		Password: input.Password,
		Nonce:    input.Nonce,
		CNonce:   input.CNonce,
		Response: input.Response,
	})
	if err != nil {
		if h.log != nil {
			h.log.Infow("ota_sign_in_failed", "err", err, "client_ip", c.ClientIP())
		}
		switch {
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidPassword), errors.Is(err, service.ErrUnknownChallenge):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign in"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// @Summary      Upload firmware
// @Description  Stores an OTA image. The optional md5 field must match the uploaded bytes.
// @Tags         ota
// @Accept       multipart/form-data
// @Produce      json
// @Param        firmware  formData  file    true   "Firmware image"
// @Param        md5       formData  string  false  "Expected md5, hex"
// @Success      201  {object}  models.FirmwareImage
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      413  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/ota/firmware [post]
// @Security     BearerAuth
func (h *Handler) uploadFirmware(c *gin.Context) {
	if imageCap := h.services.OTA.MaxImageBytes(); imageCap > 0 {
		limit := imageCap + multipartSlack
		if c.Request.ContentLength > limit {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": errUploadTooLarge})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	fh, err := c.FormFile(formFirmware)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": errUploadTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingFirmware})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to read upload", "ota_open_upload_failed", err)
		return
	}
	defer func() { _ = f.Close() }()

	img, err := h.services.OTA.Accept(c.Request.Context(), service.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		MD5:      c.PostForm(formMD5),
		Body:     f,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImageTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrEmptyImage),
			errors.Is(err, service.ErrChecksumMismatch),
			errors.Is(err, service.ErrInvalidChecksumSpec):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, "failed to store firmware", "ota_accept_failed", err,
				"filename", fh.Filename)
		}
		return
	}

	if h.log != nil {
		h.log.Infow("ota_firmware_accepted", "id", img.ID, "size_bytes", img.SizeBytes, "md5", img.MD5)
	}
	c.JSON(http.StatusCreated, img)
}

// @Summary      Latest firmware
// @Tags         ota
// @Produce      json
// @Success      200  {object}  models.FirmwareImage
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/ota/firmware [get]
// @Security     BearerAuth
func (h *Handler) getFirmware(c *gin.Context) {
	img, err := h.services.OTA.LatestFirmware(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load firmware", "ota_latest_failed", err)
		return
	}
	if img == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoFirmware})
		return
	}
	c.JSON(http.StatusOK, img)
}
