package handler

import (
	"net/http"

	checkoutapp "github.com/armory/backend/internal/application/checkout"
	"github.com/armory/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler handles checkout session API endpoints
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.Service
	middleware      []gin.HandlerFunc
}

// NewCheckoutHandler creates a new CheckoutHandler. The given middleware is
// applied to the checkout route group (identity attachment, rate limiting).
func NewCheckoutHandler(checkoutService *checkoutapp.Service, mw ...gin.HandlerFunc) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		middleware:      mw,
	}
}

// CreateCheckout prices the submitted cart on the server, verifies the
// buyer's claimed total, and opens a hosted payment session. The buyer may
// be anonymous; a bearer token just binds the eventual order to them.
func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	var req checkoutapp.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.checkoutService.CreateCheckout(c.Request.Context(), optionalUserID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetOrder returns the order behind a checkout session
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if sessionID == "" {
		h.BadRequest(c, "Session ID is required")
		return
	}

	resp, err := h.checkoutService.GetOrderBySession(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes registers checkout routes
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	checkout := rg.Group("/checkout")
	checkout.Use(h.middleware...)
	{
		checkout.POST("", h.CreateCheckout)
		checkout.GET("/:sessionID", h.GetOrder)
	}
}
