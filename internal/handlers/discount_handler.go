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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DiscountRequest struct {
	Kind      string          `json:"kind" binding:"required"`
	Value     decimal.Decimal `json:"value" binding:"required"`
	ValidFrom time.Time       `json:"valid_from" binding:"required"`
	ValidTo   time.Time       `json:"valid_to" binding:"required"`
	Active    *bool           `json:"active"`
}

// ownedTicketType loads the ticket type and checks the caller owns the event
// it belongs to. Responds and returns nil when the check fails.
func ownedTicketType(c *gin.Context, gormDB *gorm.DB, ticketTypeID string) *models.TicketType {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return nil
	}

	var ticketType models.TicketType
	if err := gormDB.Where("id = ?", ticketTypeID).First(&ticketType).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket type not found.")
		return nil
	}

	var event models.Event
	if err := gormDB.Where("id = ? AND user_id = ?", ticketType.EventID, userID).First(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to modify this ticket type.")
		return nil
	}

	return &ticketType
}

func respondDiscountError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket type not found.")
	case errors.Is(err, services.ErrInvalidDiscount):
		helpers.RespondWithError(c, http.StatusBadRequest, "Discount kind, value or window is invalid.")
	case errors.Is(err, services.ErrDiscountOverlap):
		helpers.RespondWithError(c, http.StatusConflict, "An active discount already covers part of that window.")
	default:
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to save discount.")
	}
}

func CreateDiscount(c *gin.Context) {
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	ticketType := ownedTicketType(c, gormDB, c.Param("id"))
	if ticketType == nil {
		return
	}

	svcs := middleware.GetServices(c)
	if svcs == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Services not found.")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	discount := models.Discount{
		ID:           uuid.New(),
		Kind:         req.Kind,
		Value:        req.Value,
		ValidFrom:    req.ValidFrom,
		ValidTo:      req.ValidTo,
		Active:       active,
		TicketTypeID: ticketType.ID,
	}

	if err := svcs.Discounts.Create(c.Request.Context(), &discount); err != nil {
		respondDiscountError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Discount created successfully.",
		"discount_id": discount.ID,
	})
}

func ListDiscounts(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var discounts []models.Discount
	if err := gormDB.Where("ticket_type_id = ?", c.Param("id")).Order("valid_from ASC").Find(&discounts).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving discounts.")
		return
	}

	c.JSON(http.StatusOK, discounts)
}

func UpdateDiscount(c *gin.Context) {
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	ticketType := ownedTicketType(c, gormDB, c.Param("id"))
	if ticketType == nil {
		return
	}

	var discount models.Discount
	if err := gormDB.Where("id = ? AND ticket_type_id = ?", c.Param("discountId"), ticketType.ID).First(&discount).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Discount not found.")
		return
	}

	svcs := middleware.GetServices(c)
	if svcs == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Services not found.")
		return
	}

	discount.Kind = req.Kind
	discount.Value = req.Value
	discount.ValidFrom = req.ValidFrom
	discount.ValidTo = req.ValidTo
	if req.Active != nil {
		discount.Active = *req.Active
	}

	if err := svcs.Discounts.Update(c.Request.Context(), &discount); err != nil {
		respondDiscountError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Discount updated successfully.",
		"discount": discount,
	})
}

func DeleteDiscount(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	ticketType := ownedTicketType(c, gormDB, c.Param("id"))
	if ticketType == nil {
		return
	}

	var discount models.Discount
	if err := gormDB.Where("id = ? AND ticket_type_id = ?", c.Param("discountId"), ticketType.ID).First(&discount).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Discount not found.")
		return
	}

	if err := gormDB.Delete(&discount).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete discount.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount deleted successfully.",
	})
}
