package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stayandpark/service-frontdesk/internal/application"
	"github.com/stayandpark/service-frontdesk/internal/platform/auth"
	"github.com/stayandpark/service-frontdesk/internal/platform/middleware"
	"github.com/stayandpark/service-frontdesk/internal/platform/response"
)

// AdminHandler handles admin reports and management.
type AdminHandler struct {
	identity   *application.IdentityService
	attendance *application.AttendanceService
	promotions *application.PromotionService
	reports    *application.ReportService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	identity *application.IdentityService,
	attendance *application.AttendanceService,
	promotions *application.PromotionService,
	reports *application.ReportService,
) *AdminHandler {
	return &AdminHandler{
		identity:   identity,
		attendance: attendance,
		promotions: promotions,
		reports:    reports,
	}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/stats", h.Stats)
		admin.GET("/frequent-customers", h.FrequentCustomers)
		admin.GET("/persons", h.ListPersons)
		admin.GET("/presence", h.Presence)
		admin.POST("/promotions", h.CreatePromotion)
	}
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	stats, err := h.reports.Statistics(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// FrequentCustomers handles GET /api/v1/admin/frequent-customers?months=N.
func (h *AdminHandler) FrequentCustomers(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	months, _ := strconv.Atoi(c.DefaultQuery("months", strconv.Itoa(application.DefaultFrequentMonths)))

	customers, err := h.reports.FrequentCustomers(c.Request.Context(), userID, months)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, customers)
}

// ListPersons handles GET /api/v1/admin/persons?role=EMPLOYEE.
func (h *AdminHandler) ListPersons(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	persons, err := h.identity.ListPersons(c.Request.Context(), userID, c.Query("role"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, persons)
}

// Presence handles GET /api/v1/admin/presence.
func (h *AdminHandler) Presence(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	report, err := h.attendance.PresenceReport(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, report)
}

// CreatePromotion handles POST /api/v1/admin/promotions.
func (h *AdminHandler) CreatePromotion(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req application.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	promo, err := h.promotions.CreatePromotion(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, promo)
}
