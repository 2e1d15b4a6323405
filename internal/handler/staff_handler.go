package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stayandpark/service-frontdesk/internal/application"
	"github.com/stayandpark/service-frontdesk/internal/platform/auth"
	"github.com/stayandpark/service-frontdesk/internal/platform/middleware"
	"github.com/stayandpark/service-frontdesk/internal/platform/response"
)

// StaffHandler handles front desk requests made by employees and admins.
type StaffHandler struct {
	reservations *application.ReservationService
	identity     *application.IdentityService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(reservations *application.ReservationService, identity *application.IdentityService) *StaffHandler {
	return &StaffHandler{reservations: reservations, identity: identity}
}

// RegisterRoutes registers the staff routes.
func (h *StaffHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	staff := r.Group("/staff")
	staff.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleEmployee, auth.RoleAdmin))
	{
		staff.POST("/reservations", middleware.RequireRole(auth.RoleEmployee), h.CreateForCustomer)
		staff.GET("/reservations", h.ListReservations)
		staff.POST("/reservations/:id/finish", h.Finish)
		staff.POST("/reservations/:id/cancel", h.Cancel)
		staff.POST("/customers", h.RegisterCustomer)
	}
}

// CreateForCustomer handles POST /api/v1/staff/reservations.
func (h *StaffHandler) CreateForCustomer(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.StaffReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.reservations.CreateReservationForCustomer(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// ListReservations handles GET /api/v1/staff/reservations.
func (h *StaffHandler) ListReservations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	list, err := h.reservations.ListReservationsHandledOrAll(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, list)
}

// Finish handles POST /api/v1/staff/reservations/:id/finish.
func (h *StaffHandler) Finish(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	var req application.FinishReservationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	dto, err := h.reservations.FinishReservation(c.Request.Context(), userID, reservationID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// Cancel handles POST /api/v1/staff/reservations/:id/cancel.
func (h *StaffHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	var req application.CancelReservationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	dto, err := h.reservations.CancelReservation(c.Request.Context(), userID, reservationID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// RegisterCustomer handles POST /api/v1/staff/customers.
func (h *StaffHandler) RegisterCustomer(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	person, err := h.identity.RegisterCustomerByStaff(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, person)
}
