package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stayandpark/service-frontdesk/internal/application"
	"github.com/stayandpark/service-frontdesk/internal/platform/auth"
	"github.com/stayandpark/service-frontdesk/internal/platform/middleware"
	"github.com/stayandpark/service-frontdesk/internal/platform/response"
)

// AttendanceHandler handles an employee's clock actions and history.
type AttendanceHandler struct {
	service *application.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(service *application.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// RegisterRoutes registers the attendance routes.
func (h *AttendanceHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	attendance := r.Group("/attendance")
	attendance.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleEmployee))
	{
		attendance.POST("/clock", h.Clock)
		attendance.GET("/history", h.History)
		attendance.GET("/presence", h.Presence)
	}
}

// Clock handles POST /api/v1/attendance/clock.
func (h *AttendanceHandler) Clock(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.ClockAction(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// History handles GET /api/v1/attendance/history?limit=N.
func (h *AttendanceHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	history, err := h.service.MyHistory(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, history)
}

// Presence handles GET /api/v1/attendance/presence.
func (h *AttendanceHandler) Presence(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	present, err := h.service.PresenceToday(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"present": present})
}
