package v1

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/civic_incident_system/internal/config"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/shenikar/civic_incident_system/internal/realtime"
	"github.com/shenikar/civic_incident_system/internal/service"
	"github.com/sirupsen/logrus"
)

// DefaultKeepAlive - период комментариев keep-alive в потоках SSE
const DefaultKeepAlive = 25 * time.Second

type Handler struct {
	reportService service.ReportService
	authService   service.AuthService
	adminService  service.AdminService
	hub           *realtime.Hub
	logger        *logrus.Logger
	validate      *validator.Validate
	cfg           *config.Config
	keepAlive     time.Duration
}

func NewHandler(
	reportService service.ReportService,
	authService service.AuthService,
	adminService service.AdminService,
	hub *realtime.Hub,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		reportService: reportService,
		authService:   authService,
		adminService:  adminService,
		hub:           hub,
		logger:        logger,
		validate:      validator.New(),
		cfg:           cfg,
		keepAlive:     DefaultKeepAlive,
	}
}

// @Summary Sign up
// @Description Register a citizen account. The user must log in afterwards.
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body SignUpRequest true "Sign up request"
// @Success 201 {object} UserResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 409 {object} map[string]string "Email already registered"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/signup [post]
func (h *Handler) signUp(c *gin.Context) {
	var input SignUpRequest
	log := h.logger.WithField("method", "signUp")

	if !h.bindJSON(c, log, &input) {
		return
	}

	user, err := h.authService.SignUp(c.Request.Context(), DTOToSignUpInput(input))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToUserResponse(user))
}

// @Summary Log in
// @Description Exchange email and password for a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body LoginRequest true "Login request"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Invalid email or password"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input LoginRequest
	log := h.logger.WithField("method", "login")

	if !h.bindJSON(c, log, &input) {
		return
	}

	session, err := h.authService.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToSessionResponse(session))
}

// @Summary Current user
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "User not found"
// @Router /me [get]
func (h *Handler) getProfile(c *gin.Context) {
	principal := currentPrincipal(c)
	log := h.logger.WithField("method", "getProfile").WithField("user_id", principal.UserID)

	user, err := h.authService.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToUserResponse(user))
}

// @Summary Profile statistics
// @Description Number of reports submitted by the current user and how many were resolved.
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileStatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /me/stats [get]
func (h *Handler) getProfileStats(c *gin.Context) {
	principal := currentPrincipal(c)
	log := h.logger.WithField("method", "getProfileStats").WithField("user_id", principal.UserID)

	stats, err := h.reportService.ProfileStats(c.Request.Context(), principal.UserID)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ProfileStatsResponse{
		TotalReports:    stats.TotalReports,
		ResolvedReports: stats.ResolvedReports,
	})
}

// @Summary Notifications
// @Description Progress notifications derived from the current user's reports, newest first.
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {array} NotificationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /me/notifications [get]
func (h *Handler) getNotifications(c *gin.Context) {
	principal := currentPrincipal(c)
	log := h.logger.WithField("method", "getNotifications").WithField("user_id", principal.UserID)

	notifications, err := h.reportService.Notifications(c.Request.Context(), principal.UserID)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToNotificationResponses(notifications))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindJSON разбирает и валидирует тело запроса, при ошибке отвечает 400
func (h *Handler) bindJSON(c *gin.Context, log *logrus.Entry, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError переводит ошибку сервиса в HTTP ответ
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	status, message := errorResponse(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	} else {
		log.WithError(err).Warn("Request rejected")
	}
	c.JSON(status, gin.H{"error": message})
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{models.ErrNotFound, http.StatusNotFound},
	{models.ErrEmailTaken, http.StatusConflict},
	{models.ErrInvalidTransition, http.StatusConflict},
	{models.ErrConflict, http.StatusConflict},
	{models.ErrUnsupportedPhoto, http.StatusBadRequest},
	{models.ErrInvalidInput, http.StatusBadRequest},
	{models.ErrUnauthorized, http.StatusUnauthorized},
	{models.ErrForbidden, http.StatusForbidden},
	{models.ErrVerificationUnavailable, http.StatusServiceUnavailable},
}

func errorResponse(err error) (int, string) {
	for _, e := range errorStatuses {
		if !errors.Is(err, e.err) {
			continue
		}
		if e.err == models.ErrUnsupportedPhoto {
			return e.status, err.Error()
		}
		return e.status, detail(err, e.err)
	}
	return http.StatusInternalServerError, "internal server error"
}

// detail возвращает пояснение, записанное после сигнальной ошибки ("invalid input: <detail>")
func detail(err, sentinel error) string {
	msg, prefix := err.Error(), sentinel.Error()+": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return sentinel.Error()
}
