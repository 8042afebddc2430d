package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/civic_incident_system/internal/models"
)

// @Summary Review queue
// @Description Pending reports of one severity, newest first. Without a severity the highest non-empty one is shown.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param severity query string false "Severity or all" Enums(all, critical, high, medium, low)
// @Success 200 {object} ReviewQueueResponse
// @Failure 400 {object} map[string]string "Unknown severity"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/review [get]
func (h *Handler) getReviewQueue(c *gin.Context) {
	log := h.logger.WithField("method", "getReviewQueue")

	queue, err := h.reportService.ReviewQueue(c.Request.Context(), c.Query("severity"))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToReviewQueueResponse(queue))
}

// @Summary Review a report
// @Description Confirm (pending to in-progress, dispatches the department webhook) or reject (pending to rejected, flagged).
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param input body ReviewRequest true "Review decision"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid report ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 409 {object} map[string]string "Report is not pending"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/reports/{id}/review [post]
func (h *Handler) reviewReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "reviewReport").WithField("id", id)

	var input ReviewRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	report, err := h.reportService.ReviewReport(c.Request.Context(), currentPrincipal(c), id, models.ReviewAction(input.Action))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Resolve a report
// @Description Mark an in-progress report as resolved.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid report ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 409 {object} map[string]string "Report is not in progress"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/reports/{id}/resolve [post]
func (h *Handler) resolveReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "resolveReport").WithField("id", id)

	report, err := h.reportService.ResolveReport(c.Request.Context(), currentPrincipal(c), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Overview
// @Description Incident counters by status plus admin and citizen counts.
// @Tags SuperAdmin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} OverviewResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /super/overview [get]
func (h *Handler) getOverview(c *gin.Context) {
	log := h.logger.WithField("method", "getOverview")

	overview, err := h.adminService.Overview(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToOverviewResponse(overview))
}

// @Summary All incidents
// @Tags SuperAdmin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status or all"
// @Param department query string false "Department or all"
// @Success 200 {array} ReportResponse
// @Failure 400 {object} map[string]string "Unknown status"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /super/incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	reports, err := h.adminService.ListIncidents(c.Request.Context(), c.Query("status"), c.Query("department"))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToReportResponses(reports))
}

// @Summary Departments
// @Tags SuperAdmin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} string
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /super/departments [get]
func (h *Handler) listDepartments(c *gin.Context) {
	log := h.logger.WithField("method", "listDepartments")

	departments, err := h.adminService.Departments(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, departments)
}

// @Summary Admins
// @Tags SuperAdmin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /super/admins [get]
func (h *Handler) listAdmins(c *gin.Context) {
	log := h.logger.WithField("method", "listAdmins")

	admins, err := h.adminService.ListAdmins(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToUserResponses(admins))
}

// @Summary Create admin
// @Tags SuperAdmin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body CreateAdminRequest true "New admin"
// @Success 201 {object} UserResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Email already registered"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /super/admins [post]
func (h *Handler) createAdmin(c *gin.Context) {
	var input CreateAdminRequest
	log := h.logger.WithField("method", "createAdmin")

	if !h.bindJSON(c, log, &input) {
		return
	}

	user, err := h.adminService.CreateAdmin(c.Request.Context(), DTOToAdminInput(input))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToUserResponse(user))
}

// @Summary Delete admin
// @Tags SuperAdmin
// @Security BearerAuth
// @Param id path string true "Admin ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Target is not an admin"
// @Failure 404 {object} map[string]string "Admin not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /super/admins/{id} [delete]
func (h *Handler) deleteAdmin(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "deleteAdmin").WithField("id", id)

	if err := h.adminService.DeleteAdmin(c.Request.Context(), id); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Delete report
// @Tags SuperAdmin
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid report ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /super/reports/{id} [delete]
func (h *Handler) deleteReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "deleteReport").WithField("id", id)

	if err := h.reportService.DeleteReport(c.Request.Context(), id); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Export incidents
// @Description Download incidents as CSV rows, a PDF summary or GeoJSON.
// @Tags SuperAdmin
// @Produce text/csv,application/pdf,application/geo+json
// @Security BearerAuth
// @Param format query string false "Export format" Enums(csv, pdf, geojson) default(csv)
// @Param status query string false "Status or all"
// @Param department query string false "Department or all"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string "Unknown format or status"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /super/export [get]
func (h *Handler) exportIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "exportIncidents")

	file, err := h.adminService.Export(c.Request.Context(), c.Query("format"), c.Query("status"), c.Query("department"))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
