package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/shenikar/civic_incident_system/internal/storage"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Регистрация и вход
	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.signUp)
		auth.POST("/login", h.login)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)

	// Маршруты гражданина
	user := api.Group("", AuthMiddleware(h.authService, h.logger))
	{
		user.GET("/me", h.getProfile)
		user.GET("/me/stats", h.getProfileStats)
		user.GET("/me/notifications", h.getNotifications)

		user.POST("/reports", h.submitReport)
		user.GET("/reports/mine", h.listMyReports)
		user.GET("/reports/:id", h.getReport)
		user.GET("/map", h.getMap)
		user.POST("/verify-incident", h.verifyIncident)

		user.GET("/realtime/my-reports", h.streamMyReports)
		user.GET("/realtime/reports", RequireRole(models.RoleAdmin, h.logger), h.streamAllReports)
	}

	// Маршруты администратора службы
	admin := user.Group("/admin", RequireRole(models.RoleAdmin, h.logger))
	{
		admin.GET("/review", h.getReviewQueue)
		admin.POST("/reports/:id/review", h.reviewReport)
		admin.POST("/reports/:id/resolve", h.resolveReport)
	}

	// Маршруты супер-администратора
	super := user.Group("/super", RequireRole(models.RoleSuperAdmin, h.logger))
	{
		super.GET("/overview", h.getOverview)
		super.GET("/incidents", h.listIncidents)
		super.GET("/departments", h.listDepartments)
		super.GET("/admins", h.listAdmins)
		super.POST("/admins", h.createAdmin)
		super.DELETE("/admins/:id", h.deleteAdmin)
		super.DELETE("/reports/:id", h.deleteReport)
		super.GET("/export", h.exportIncidents)
	}
}

// RegisterMediaRoutes регистрирует раздачу фотографий по публичным ссылкам хранилища
func (h *Handler) RegisterMediaRoutes(r gin.IRoutes) {
	r.GET("/media/"+storage.Bucket+"/*key", h.getPhoto)
}
