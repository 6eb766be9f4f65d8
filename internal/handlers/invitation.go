package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ownership-api/internal/auth"
	"ownership-api/internal/config"
	"ownership-api/internal/models"
	"ownership-api/internal/services"
)

// Ownership scope header for the management surface
const ownershipHeader = "X-Ownership-ID"

// InvitationHandler handles the authenticated invitation management endpoints
type InvitationHandler struct {
	invitations *services.InvitationService
	authz       services.Authorizer
	cfg         config.AppConfig
}

// NewInvitationHandler creates a new InvitationHandler
func NewInvitationHandler(invitations *services.InvitationService, authz services.Authorizer, cfg config.AppConfig) *InvitationHandler {
	return &InvitationHandler{
		invitations: invitations,
		authz:       authz,
		cfg:         cfg,
	}
}

type invitationRequest struct {
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Name          *string `json:"name,omitempty"`
	ExpiresInDays int     `json:"expires_in_days,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

func (r invitationRequest) toInput(ownershipID, invitedBy uint) services.CreateInvitationInput {
	return services.CreateInvitationInput{
		OwnershipID:   ownershipID,
		InvitedBy:     invitedBy,
		Email:         r.Email,
		Phone:         r.Phone,
		Name:          r.Name,
		ExpiresInDays: r.ExpiresInDays,
		Notes:         r.Notes,
	}
}

// Create creates a contact-bound invitation and dispatches it
func (h *InvitationHandler) Create(c *gin.Context) {
	userID, ownershipID, ok := h.scope(c, models.CapInvitationsCreate)
	if !ok {
		return
	}

	var req invitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	inv, err := h.invitations.Create(req.toInput(ownershipID, userID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"invitation": inv,
		"url":        inv.InvitationURL(h.cfg.FrontendURL),
	})
}

// CreateBulk creates up to 50 invitations in one request
func (h *InvitationHandler) CreateBulk(c *gin.Context) {
	userID, ownershipID, ok := h.scope(c, models.CapInvitationsCreate)
	if !ok {
		return
	}

	var req struct {
		Invitations []invitationRequest `json:"invitations" binding:"required,min=1,max=50"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: between 1 and 50 invitations expected",
		})
		return
	}

	items := make([]services.CreateInvitationInput, len(req.Invitations))
	for i, r := range req.Invitations {
		items[i] = r.toInput(ownershipID, userID)
	}

	created, failures := h.invitations.CreateBulk(items, ownershipID, userID)

	failed := make([]gin.H, len(failures))
	for i, f := range failures {
		failed[i] = gin.H{
			"index": f.Index,
			"error": f.Err.Error(),
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"created": created,
		"failed":  failed,
	})
}

// GenerateLink mints an invitation link without sending anything
func (h *InvitationHandler) GenerateLink(c *gin.Context) {
	userID, ownershipID, ok := h.scope(c, models.CapInvitationsCreate)
	if !ok {
		return
	}

	var req invitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	inv, err := h.invitations.GenerateLink(req.toInput(ownershipID, userID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"invitation": inv,
		"url":        inv.InvitationURL(h.cfg.FrontendURL),
	})
}

// List returns the ownership's invitations with filters and pagination
func (h *InvitationHandler) List(c *gin.Context) {
	_, ownershipID, ok := h.scope(c, models.CapInvitationsView)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	invitations, total, err := h.invitations.List(ownershipID, services.InvitationFilters{
		Status:  c.Query("status"),
		Search:  c.Query("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invitations": invitations,
		"total":       total,
		"page":        page,
		"per_page":    perPage,
	})
}

// Show returns one invitation with its redemptions
func (h *InvitationHandler) Show(c *gin.Context) {
	_, ownershipID, ok := h.scope(c, models.CapInvitationsView)
	if !ok {
		return
	}

	inv, found := h.find(c, ownershipID)
	if !found {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invitation": inv,
		"url":        inv.InvitationURL(h.cfg.FrontendURL),
	})
}

// Resend redispatches a pending email invitation
func (h *InvitationHandler) Resend(c *gin.Context) {
	_, ownershipID, ok := h.scope(c, models.CapInvitationsResend)
	if !ok {
		return
	}

	inv, found := h.find(c, ownershipID)
	if !found {
		return
	}

	sent, err := h.invitations.Resend(inv)
	if err != nil {
		respondError(c, err)
		return
	}
	if !sent {
		respondError(c, services.ErrNotResendable)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invitation resent",
	})
}

// Cancel revokes a pending invitation. Cancelling a multi-use link needs
// the elevated capability since it cuts off an unknown number of
// prospective tenants.
func (h *InvitationHandler) Cancel(c *gin.Context) {
	userID, ownershipID, ok := h.scope(c, models.CapInvitationsView)
	if !ok {
		return
	}

	inv, found := h.find(c, ownershipID)
	if !found {
		return
	}

	if !h.authz.Can(userID, services.CancelCapability(inv), ownershipID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Insufficient permissions to cancel this invitation",
		})
		return
	}

	cancelled, err := h.invitations.Cancel(inv)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invitation": cancelled,
	})
}

// scope resolves the authenticated user and the ownership scope header,
// and enforces the capability for the route
func (h *InvitationHandler) scope(c *gin.Context, capability string) (userID, ownershipID uint, ok bool) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return 0, 0, false
	}

	raw := c.GetHeader(ownershipHeader)
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || parsed == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": ownershipHeader + " header required",
		})
		return 0, 0, false
	}
	ownershipID = uint(parsed)

	if !h.authz.Can(userID, capability, ownershipID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Insufficient permissions",
		})
		return 0, 0, false
	}

	return userID, ownershipID, true
}

// find loads the invitation by UUID and pins it to the request's ownership
// scope so one ownership's members can never read another's invitations
func (h *InvitationHandler) find(c *gin.Context, ownershipID uint) (*models.TenantInvitation, bool) {
	inv, err := h.invitations.FindByUUID(c.Param("uuid"))
	if err != nil || inv.OwnershipID != ownershipID {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Invitation not found",
		})
		return nil, false
	}
	return inv, true
}
