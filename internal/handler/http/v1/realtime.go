package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @Summary Stream all report changes
// @Description Server-Sent Events with INSERT, UPDATE and DELETE of any report. Token may be passed as access_token.
// @Tags Realtime
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {object} ChangeEventResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /realtime/reports [get]
func (h *Handler) streamAllReports(c *gin.Context) {
	h.streamChanges(c, "streamAllReports", nil)
}

// @Summary Stream my report changes
// @Description Server-Sent Events with changes of the current user's reports. Token may be passed as access_token.
// @Tags Realtime
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {object} ChangeEventResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /realtime/my-reports [get]
func (h *Handler) streamMyReports(c *gin.Context) {
	userID := currentPrincipal(c).UserID
	h.streamChanges(c, "streamMyReports", &userID)
}

// streamChanges держит поток SSE, пока клиент не отключится или хаб не закроется
func (h *Handler) streamChanges(c *gin.Context, method string, userID *uuid.UUID) {
	log := h.logger.WithField("method", method)
	sub := h.hub.Subscribe(userID)
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()
	log.Debug("Realtime subscriber connected")

	keepAlive := h.keepAlive
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug("Realtime subscriber disconnected")
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			c.SSEvent(string(event.Type), EventToChangeEventResponse(event))
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := c.Writer.WriteString(": keep-alive\n\n"); err != nil {
				log.WithError(err).Debug("Failed to write keep-alive")
				return
			}
			c.Writer.Flush()
		}
	}
}
