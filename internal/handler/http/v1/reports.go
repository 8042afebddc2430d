package v1

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/shenikar/civic_incident_system/internal/storage"
)

// multipartOverhead - запас на поля формы сверх размера фотографии
const multipartOverhead = 1 << 20

// @Summary Submit a report
// @Description Submit an incident report as multipart form data with an optional photo.
// @Description Severity is derived from the incident type when omitted.
// @Tags Reports
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param incident_type formData string true "Incident type" Enums(Flood, Puddle, Pothole, Landslide, Fire, Accident, Other)
// @Param severity formData string false "Severity" Enums(low, medium, high, critical)
// @Param description formData string false "Description, up to 2000 characters"
// @Param location formData string false "Human readable location"
// @Param latitude formData number true "Latitude"
// @Param longitude formData number true "Longitude"
// @Param photo formData file false "Incident photo (jpeg, png, webp)"
// @Success 201 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid form data or photo"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports [post]
func (h *Handler) submitReport(c *gin.Context) {
	principal := currentPrincipal(c)
	log := h.logger.WithField("method", "submitReport").WithField("user_id", principal.UserID)

	maxBytes := h.maxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(maxBytes)+multipartOverhead)

	var form SubmitReportForm
	if err := c.ShouldBind(&form); err != nil {
		log.WithError(err).Warn("Failed to bind form")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}
	input, err := FormToReportInput(form)
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	photo, err := readPhoto(c, maxBytes)
	if err != nil {
		log.WithError(err).Warn("Failed to read photo")
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to upload image: " + err.Error()})
		return
	}

	report, err := h.reportService.SubmitReport(c.Request.Context(), principal, input, photo)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToReportResponse(report))
}

func (h *Handler) maxUploadBytes() int {
	if h.cfg != nil && h.cfg.MaxUploadBytes > 0 {
		return h.cfg.MaxUploadBytes
	}
	return storage.MaxPhotoBytes
}

// readPhoto читает необязательную фотографию из поля photo.
// Файл читается на байт больше лимита, чтобы хранилище отклонило слишком большой.
func readPhoto(c *gin.Context, maxBytes int) (*models.PhotoUpload, error) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(maxBytes)+1))
	if err != nil {
		return nil, err
	}
	return &models.PhotoUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// @Summary My reports
// @Description Reports submitted by the current user, newest first.
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(all, pending, in-progress, resolved, rejected)
// @Success 200 {array} ReportResponse
// @Failure 400 {object} map[string]string "Unknown status"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/mine [get]
func (h *Handler) listMyReports(c *gin.Context) {
	principal := currentPrincipal(c)
	log := h.logger.WithField("method", "listMyReports").WithField("user_id", principal.UserID)

	reports, err := h.reportService.ListMyReports(c.Request.Context(), principal.UserID, c.Query("status"))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToReportResponses(reports))
}

// @Summary Get report by ID
// @Description Citizens can read only their own reports, admins can read any.
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid report ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/{id} [get]
func (h *Handler) getReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	principal := currentPrincipal(c)
	log := h.logger.WithField("method", "getReport").WithField("id", id)

	report, err := h.reportService.GetReport(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	// Чужой отчет для гражданина не существует
	if report.UserID != principal.UserID && !principal.Role.AtLeast(models.RoleAdmin) {
		log.Warn("Citizen requested a foreign report")
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Live map
// @Description Non-rejected reports grouped into nearby markers, with severity counts.
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param type query string false "Incident type or all"
// @Param severity query string false "Severity or all"
// @Param status query string false "Status or all"
// @Param search query string false "Substring of location or description"
// @Success 200 {object} MapResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /map [get]
func (h *Handler) getMap(c *gin.Context) {
	log := h.logger.WithField("method", "getMap")

	view, err := h.reportService.LiveMap(c.Request.Context(), models.ReportFilter{
		Type:     c.Query("type"),
		Severity: c.Query("severity"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToMapResponse(view))
}

// @Summary Verify an incident with AI
// @Description Ask the vision model whether the photo and description describe a genuine incident.
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body VerifyIncidentRequest true "Incident data"
// @Success 200 {object} VerificationResponse
// @Failure 400 {object} map[string]string "Missing required incident data"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Verification failed"
// @Failure 503 {object} map[string]string "AI verification is not configured"
// @Router /verify-incident [post]
func (h *Handler) verifyIncident(c *gin.Context) {
	var input VerifyIncidentRequest
	log := h.logger.WithField("method", "verifyIncident")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required incident data"})
		return
	}

	verdict, err := h.reportService.VerifyIncident(c.Request.Context(), DTOToVerificationRequest(input))
	if err != nil {
		status, message := errorResponse(err)
		if status == http.StatusInternalServerError {
			message = "Gemini verification failed"
		}
		log.WithError(err).Error("Verification failed")
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.JSON(http.StatusOK, VerificationResponse{
		Verified:   verdict.Verified,
		Confidence: verdict.Confidence,
		Reason:     verdict.Reason,
	})
}

// @Summary Incident photo
// @Description Serve a stored incident photo by its public key.
// @Tags Media
// @Produce image/jpeg,image/png,image/webp
// @Param key path string true "Photo key"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string "Invalid key"
// @Failure 404 {object} map[string]string "Photo not found"
// @Router /media/incident-images/{key} [get]
func (h *Handler) getPhoto(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	log := h.logger.WithField("method", "getPhoto").WithField("key", key)

	data, contentType, err := h.reportService.OpenPhoto(c.Request.Context(), key)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, contentType, data)
}
