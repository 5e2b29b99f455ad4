package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventgate/backend/internal/helpers"
	"github.com/eventgate/backend/internal/middleware"
	"github.com/eventgate/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InviteRequest struct {
	Role      string     `json:"role" binding:"required"`
	EventID   *uuid.UUID `json:"event_id"`
	ExpiresAt time.Time  `json:"expires_at" binding:"required"`
}

type RedeemInviteRequest struct {
	Code string `json:"code" binding:"required"`
}

func CreateInvite(c *gin.Context) {
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	if !req.ExpiresAt.After(time.Now()) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Expiry must be in the future.")
		return
	}

	svcs := middleware.GetServices(c)
	if svcs == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Services not found.")
		return
	}

	invite, err := svcs.Invites.Create(c.Request.Context(), req.Role, req.EventID, req.ExpiresAt, userID.(uuid.UUID))
	if err != nil {
		if errors.Is(err, services.ErrInviteEventNeeded) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Staff invites must name an event; other roles must not.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create invite.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Invite created successfully.",
		"invite_id":  invite.ID,
		"code":       invite.Code,
		"expires_at": invite.ExpiresAt,
	})
}

func RedeemInvite(c *gin.Context) {
	var req RedeemInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	svcs := middleware.GetServices(c)
	if svcs == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Services not found.")
		return
	}

	invite, err := svcs.Invites.Redeem(c.Request.Context(), req.Code, userID.(uuid.UUID), time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Invite code not found.")
		case errors.Is(err, services.ErrInviteRedeemed):
			helpers.RespondWithError(c, http.StatusConflict, "Invite code has already been redeemed.")
		case errors.Is(err, services.ErrInviteRevoked):
			helpers.RespondWithError(c, http.StatusConflict, "Invite code has been revoked.")
		case errors.Is(err, services.ErrInviteExpired):
			helpers.RespondWithError(c, http.StatusGone, "Invite code has expired.")
		case errors.Is(err, services.ErrTransientConflict):
			helpers.RespondWithError(c, http.StatusConflict, "Redemption conflicted with another request, please retry.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to redeem invite.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invite redeemed successfully.",
		"role":    invite.Role,
	})
}

func RevokeInvite(c *gin.Context) {
	inviteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid invite ID.")
		return
	}

	svcs := middleware.GetServices(c)
	if svcs == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Services not found.")
		return
	}

	if err := svcs.Invites.Revoke(c.Request.Context(), inviteID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Invite code not found.")
		case errors.Is(err, services.ErrInviteNotPending):
			helpers.RespondWithError(c, http.StatusConflict, "Only pending invites can be revoked.")
		case errors.Is(err, services.ErrTransientConflict):
			helpers.RespondWithError(c, http.StatusConflict, "Revocation conflicted with another request, please retry.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to revoke invite.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invite revoked successfully.",
	})
}
