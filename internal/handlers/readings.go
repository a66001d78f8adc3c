package handlers

import (
	"net/http"
	"strconv"
	"time"

	"purpleair_display/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errGetReading   = "failed to load reading"
	errGetReadings  = "failed to load readings"
	errRenderFrame  = "failed to render display"
	errLimitInvalid = "invalid 'limit'; use a positive integer"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Current reading
// @Description  Latest stored reading, or a WAITING placeholder before the first successful poll.
// @Tags         readings
// @Produce      json
// @Success      200  {object}  models.Reading
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/reading [get]
func (h *Handler) getReading(c *gin.Context) {
	r, err := h.services.Monitoring.Current(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetReading, "reading_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary      Reading history
// @Tags         readings
// @Produce      json
// @Param        from   query  string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"
// @Param        to     query  string  false  "End of range; date-only is end of day"
// @Param        limit  query  int     false  "Max readings (default 100, max 1000)"
// @Success      200  {object}  map[string]interface{}  "count, readings"
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/readings [get]
func (h *Handler) getReadings(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}

	limit := 0
	if qs := c.Query("limit"); qs != "" {
		n, err := strconv.Atoi(qs)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errLimitInvalid})
			return
		}
		limit = n
	}

	readings, err := h.services.Monitoring.History(c.Request.Context(), service.HistoryFilter{
		From:  from,
		To:    to,
		Limit: limit,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetReadings, "readings_list_failed", err,
			"from", from, "to", to, "limit", limit)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(readings),
		"readings": readings,
	})
}

// @Summary      Display frame
// @Description  The text currently shown on the character display.
// @Tags         readings
// @Produce      json
// @Success      200  {object}  display.Frame
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/display [get]
func (h *Handler) getDisplay(c *gin.Context) {
	f, err := h.services.Monitoring.Frame(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errRenderFrame, "display_render_failed", err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// @Summary      Device configuration
// @Description  Non-secret view of the device configuration.
// @Tags         system
// @Produce      json
// @Success      200  {object}  models.DeviceInfo
// @Router       /api/v1/device [get]
func (h *Handler) getDevice(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Device.Info())
}

// parseRange reads optional 'from'/'to' query bounds and writes a 400 on
// failure. A date-only 'to' is treated as end of day inclusive.
func (h *Handler) parseRange(c *gin.Context) (from, to time.Time, ok bool) {
	var err error
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return time.Time{}, time.Time{}, false
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return time.Time{}, time.Time{}, false
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
