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
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

type PurchaseRequest struct {
	TicketTypeID uuid.UUID `json:"ticket_type_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required"`
}

// CreatePurchase issues tickets for the caller. Purchases are unconditionally
// paid; the capacity gate and pricing happen in the ticket service.
func CreatePurchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	approved, _ := c.Get("approved")
	if approved != true {
		helpers.RespondWithError(c, http.StatusForbidden, "Your account has not been approved yet.")
		return
	}

	svcs := middleware.GetServices(c)
	if svcs == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Services not found.")
		return
	}

	issued, err := svcs.Tickets.Issue(c.Request.Context(), req.TicketTypeID, userID.(uuid.UUID), req.Quantity, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQuantityOutOfRange):
			helpers.RespondWithError(c, http.StatusBadRequest, "Quantity must be between 1 and 10.")
		case errors.Is(err, services.ErrNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket type not found.")
		case errors.Is(err, services.ErrNotOnSale):
			helpers.RespondWithError(c, http.StatusBadRequest, "Tickets for this event are not on sale.")
		case errors.Is(err, services.ErrSoldOut):
			helpers.RespondWithError(c, http.StatusConflict, "Not enough tickets remaining.")
		case errors.Is(err, services.ErrTransientConflict):
			helpers.RespondWithError(c, http.StatusConflict, "Purchase conflicted with another, please retry.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to complete purchase.")
		}
		return
	}

	tickets := make([]gin.H, 0, len(issued))
	for _, item := range issued {
		tickets = append(tickets, gin.H{
			"ticket_id":     item.Ticket.ID,
			"qr_code_id":    item.QRCode.ID,
			"charged_price": item.Ticket.ChargedPrice,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Purchase completed successfully.",
		"tickets": tickets,
	})
}

func ListMyTickets(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var tickets []models.Ticket
	if err := gormDB.Preload("TicketType.Event").Where("owner_id = ?", userID).Order("created_at DESC").Find(&tickets).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving tickets.")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// GenerateTicketQR renders the PNG for a ticket's QR code. The payload is the
// QR code id plus an HMAC signature, never the ticket id.
func GenerateTicketQR(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var ticket models.Ticket
	if err := gormDB.First(&ticket, "id = ?", ticketID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	if ticket.OwnerID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to generate a QR code for this ticket.")
		return
	}

	if ticket.ValidationStatus != models.TicketUnvalidated {
		helpers.RespondWithError(c, http.StatusForbidden, "Ticket has already been used.")
		return
	}

	var qrCode models.QRCode
	if err := gormDB.First(&qrCode, "ticket_id = ?", ticket.ID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "QR code not found for ticket.")
		return
	}

	qrImage, err := qrcode.Encode(helpers.QRCodePayload(qrCode.ID), qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}
