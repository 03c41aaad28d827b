package handler

import (
	statusapp "github.com/armory/backend/internal/application/status"
	"github.com/gin-gonic/gin"
)

// StatusHandler handles the polled status read-model endpoints
type StatusHandler struct {
	BaseHandler
	statusService *statusapp.Service
	requireAuth   gin.HandlerFunc
}

// NewStatusHandler creates a new StatusHandler. requireAuth protects the
// per-user endpoint; the per-session endpoint stays open because session IDs
// are unguessable capability tokens handed out by the processor.
func NewStatusHandler(statusService *statusapp.Service, requireAuth gin.HandlerFunc) *StatusHandler {
	return &StatusHandler{
		statusService: statusService,
		requireAuth:   requireAuth,
	}
}

// GetSessionStatus returns the lifecycle status of one checkout session
func (h *StatusHandler) GetSessionStatus(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if sessionID == "" {
		h.BadRequest(c, "Session ID is required")
		return
	}

	resp, err := h.statusService.GetSessionStatus(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetMyStatus returns the authenticated user's XP and inventory
func (h *StatusHandler) GetMyStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.statusService.GetUserStatus(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes registers status routes
func (h *StatusHandler) RegisterRoutes(rg *gin.RouterGroup) {
	status := rg.Group("/status")
	{
		status.GET("/session/:sessionID", h.GetSessionStatus)
		if h.requireAuth != nil {
			status.GET("/me", h.requireAuth, h.GetMyStatus)
		} else {
			status.GET("/me", h.GetMyStatus)
		}
	}
}
