package services

import (
	"context"
	"errors"
	"time"

	"github.com/eventgate/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxPerPurchase caps how many tickets one request may mint.
const maxPerPurchase = 10

// IssuedTicket pairs a freshly minted ticket with its QR companion so the
// caller can hand the QR identifier to whatever renders or exports it.
type IssuedTicket struct {
	Ticket models.Ticket
	QRCode models.QRCode
}

// TicketService orchestrates a purchase: capacity gate, price resolution,
// then an all-or-nothing insert of the ticket and QR rows.
type TicketService struct {
	db        *gorm.DB
	inventory *InventoryService
	discounts *DiscountService
	logger    *zap.Logger
}

func NewTicketService(db *gorm.DB, inventory *InventoryService, discounts *DiscountService, logger *zap.Logger) *TicketService {
	return &TicketService{db: db, inventory: inventory, discounts: discounts, logger: logger}
}

// Issue mints quantity tickets of the given type for the owner. The
// reservation commits before the rows are written; if writing the rows then
// fails, the reservation is released so inventory is not silently lost. Every
// ticket in the request shares one purchase instant and therefore one
// resolved price.
func (s *TicketService) Issue(ctx context.Context, ticketTypeID, ownerID uuid.UUID, quantity int, now time.Time) ([]IssuedTicket, error) {
	if quantity < 1 || quantity > maxPerPurchase {
		return nil, ErrQuantityOutOfRange
	}

	var ticketType models.TicketType
	if err := s.db.WithContext(ctx).Preload("Event").First(&ticketType, "id = ?", ticketTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !ticketType.Event.OnSaleAt(now) {
		return nil, ErrNotOnSale
	}

	if err := s.inventory.Reserve(ctx, ticketTypeID, quantity); err != nil {
		return nil, err
	}

	unitPrice, _, err := s.discounts.UnitPriceAt(ctx, ticketTypeID, ticketType.Price, now)
	if err != nil {
		s.releaseReservation(ctx, ticketTypeID, quantity)
		return nil, err
	}

	issued := make([]IssuedTicket, 0, quantity)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < quantity; i++ {
			ticket := models.Ticket{
				ChargedPrice:     unitPrice,
				ValidationStatus: models.TicketUnvalidated,
				TicketTypeID:     ticketTypeID,
				OwnerID:          ownerID,
			}
			if err := tx.Create(&ticket).Error; err != nil {
				return err
			}
			qrCode := models.QRCode{TicketID: ticket.ID}
			if err := tx.Create(&qrCode).Error; err != nil {
				return err
			}
			issued = append(issued, IssuedTicket{Ticket: ticket, QRCode: qrCode})
		}
		return nil
	})
	if err != nil {
		s.releaseReservation(ctx, ticketTypeID, quantity)
		return nil, err
	}

	return issued, nil
}

func (s *TicketService) releaseReservation(ctx context.Context, ticketTypeID uuid.UUID, quantity int) {
	if err := s.inventory.Release(ctx, ticketTypeID, quantity); err != nil {
		// Inventory is now overstated until someone reconciles it; the
		// purchase itself already failed, so only log.
		s.logger.Error("failed to release reservation after issuance failure",
			zap.String("ticket_type_id", ticketTypeID.String()),
			zap.Int("quantity", quantity),
			zap.Error(err))
	}
}
