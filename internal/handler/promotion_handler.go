package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stayandpark/service-frontdesk/internal/application"
	"github.com/stayandpark/service-frontdesk/internal/platform/auth"
	"github.com/stayandpark/service-frontdesk/internal/platform/middleware"
	"github.com/stayandpark/service-frontdesk/internal/platform/response"
)

// PromotionHandler handles promotion lookups.
type PromotionHandler struct {
	service *application.PromotionService
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(service *application.PromotionService) *PromotionHandler {
	return &PromotionHandler{service: service}
}

// RegisterRoutes registers all promotion routes.
func (h *PromotionHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	promotions := r.Group("/promotions")
	promotions.Use(middleware.AuthMiddleware(jwtManager))
	{
		promotions.GET("/active", middleware.RequireRole(auth.RoleEmployee, auth.RoleAdmin), h.Active)
		promotions.GET("/eligible", middleware.RequireRole(auth.RoleCustomer), h.Eligible)
	}
}

// Active handles GET /api/v1/promotions/active.
func (h *PromotionHandler) Active(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	promos, err := h.service.ActivePromotions(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, promos)
}

// Eligible handles GET /api/v1/promotions/eligible?kind=LODGING|PARKING.
func (h *PromotionHandler) Eligible(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	promos, err := h.service.EligiblePromotions(c.Request.Context(), userID, c.Query("kind"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, promos)
}
