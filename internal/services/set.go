package services

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Set bundles the service layer for injection into the HTTP handlers.
type Set struct {
	Inventory   *InventoryService
	Discounts   *DiscountService
	Tickets     *TicketService
	Validations *ValidationService
	Invites     *InviteService
}

func NewSet(db *gorm.DB, logger *zap.Logger) *Set {
	inventory := NewInventoryService(db, logger)
	discounts := NewDiscountService(db, logger)
	return &Set{
		Inventory:   inventory,
		Discounts:   discounts,
		Tickets:     NewTicketService(db, inventory, discounts, logger),
		Validations: NewValidationService(db, logger),
		Invites:     NewInviteService(db, NewGormRoleGranter(db), logger),
	}
}
