package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ownership-api/internal/services"
)

// PublicInvitationHandler handles the unauthenticated redemption endpoints
type PublicInvitationHandler struct {
	acceptance *services.AcceptanceService
}

// NewPublicInvitationHandler creates a new PublicInvitationHandler
func NewPublicInvitationHandler(acceptance *services.AcceptanceService) *PublicInvitationHandler {
	return &PublicInvitationHandler{acceptance: acceptance}
}

// ValidateToken checks a redemption token and returns the details the
// registration form needs to prefill. Internal identifiers stay hidden.
func (h *PublicInvitationHandler) ValidateToken(c *gin.Context) {
	inv, err := h.acceptance.Validate(c.Param("token"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{
			"valid": false,
			"error": publicValidationMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":          true,
		"email":          inv.Email,
		"name":           inv.Name,
		"ownership_name": inv.Ownership.Name,
		"expires_at":     inv.ExpiresAt,
	})
}

// Accept redeems the token with the registration payload and opens a
// session for the new tenant
func (h *PublicInvitationHandler) Accept(c *gin.Context) {
	var in services.RegistrationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid registration payload",
		})
		return
	}

	result, err := h.acceptance.Accept(c.Param("token"), in)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{
		"user":       result.User,
		"tenant":     result.Tenant,
		"invitation": result.Invitation,
	}

	// Tokens can be absent when session issuance failed after the
	// redemption committed; the tenant then signs in through /auth/login
	if result.Tokens != nil {
		setRefreshCookie(c, result.Tokens.RefreshToken)
		response["access_token"] = result.Tokens.AccessToken
	}

	c.JSON(http.StatusCreated, response)
}

// publicValidationMessage keeps the unauthenticated error surface small:
// a token that exists but is dead still gets a specific reason, but
// anything unexpected collapses to a generic message
func publicValidationMessage(err error) string {
	switch statusForError(err) {
	case http.StatusNotFound:
		return "Invitation not found"
	case http.StatusConflict:
		return err.Error()
	default:
		return "Invitation cannot be validated"
	}
}
