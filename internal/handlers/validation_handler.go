package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventgate/backend/internal/helpers"
	"github.com/eventgate/backend/internal/middleware"
	"github.com/eventgate/backend/internal/models"
	"github.com/eventgate/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ValidationRequest struct {
	Method   string `json:"method" binding:"required"`
	TicketID string `json:"ticket_id"`
	QRData   string `json:"qr_data"`
}

// ValidateTicket checks a ticket in. Manual check-in takes a ticket id; scans
// take the signed QR payload. The distinction between "unknown ticket" and
// "already used" matters to gate staff, so the two map to different statuses.
func ValidateTicket(c *gin.Context) {
	var req ValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	var identifier uuid.UUID
	switch req.Method {
	case models.ValidationMethodManual:
		parsed, err := uuid.Parse(req.TicketID)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
			return
		}
		identifier = parsed
	case models.ValidationMethodQRScan:
		parsed, err := helpers.ParseQRCodePayload(req.QRData)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid or tampered QR data.")
			return
		}
		identifier = parsed
	default:
		helpers.RespondWithError(c, http.StatusBadRequest, "Validation method must be manual or qr_scan.")
		return
	}

	svcs := middleware.GetServices(c)
	if svcs == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Services not found.")
		return
	}

	ticket, err := svcs.Validations.Validate(c.Request.Context(), identifier, req.Method, userID.(uuid.UUID), time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "No ticket matches that identifier.")
		case errors.Is(err, services.ErrAlreadyValidated):
			helpers.RespondWithError(c, http.StatusConflict, "Ticket has already been validated.")
		case errors.Is(err, services.ErrTicketVoid):
			helpers.RespondWithError(c, http.StatusConflict, "Ticket has been voided.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to validate ticket.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Ticket validated successfully.",
		"ticket_id": ticket.ID,
		"status":    ticket.ValidationStatus,
	})
}
