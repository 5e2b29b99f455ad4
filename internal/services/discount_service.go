package services

import (
	"context"
	"errors"
	"time"

	"github.com/eventgate/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DiscountService resolves the price a ticket is charged at a given instant
// and owns the write-side rule that keeps active discount windows from
// overlapping per ticket type.
type DiscountService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewDiscountService(db *gorm.DB, logger *zap.Logger) *DiscountService {
	return &DiscountService{db: db, logger: logger}
}

// UnitPriceAt returns the unit price after the discount covering the given
// instant, the discount that applied (nil for full price), and never mutates
// anything. The create/update checks guarantee at most one active window
// covers any instant; if a race slipped two through, the newest wins and the
// anomaly is logged rather than failing the purchase.
func (s *DiscountService) UnitPriceAt(ctx context.Context, ticketTypeID uuid.UUID, unitPrice decimal.Decimal, at time.Time) (decimal.Decimal, *models.Discount, error) {
	var discounts []models.Discount
	err := s.db.WithContext(ctx).
		Where("ticket_type_id = ? AND active = ? AND valid_from <= ? AND valid_to > ?",
			ticketTypeID, true, at, at).
		Order("created_at DESC").
		Find(&discounts).Error
	if err != nil {
		return decimal.Zero, nil, err
	}
	if len(discounts) == 0 {
		return unitPrice, nil, nil
	}
	if len(discounts) > 1 {
		s.logger.Warn("multiple active discounts cover the same instant, applying newest",
			zap.String("ticket_type_id", ticketTypeID.String()),
			zap.Int("matches", len(discounts)))
	}

	discount := discounts[0]
	return discount.Apply(unitPrice), &discount, nil
}

// Create persists a discount after checking its shape against the ticket
// type's price and refusing any overlap with another active discount.
func (s *DiscountService) Create(ctx context.Context, discount *models.Discount) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ticketType models.TicketType
		if err := tx.First(&ticketType, "id = ?", discount.TicketTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := validateDiscount(discount, ticketType.Price); err != nil {
			return err
		}
		if err := s.checkOverlap(tx, discount); err != nil {
			return err
		}
		return tx.Create(discount).Error
	})
}

// Update rewrites a discount's kind, value, window and active flag, holding
// the same overlap rule. Already-issued tickets keep their charged price; a
// discount edit is never applied retroactively.
func (s *DiscountService) Update(ctx context.Context, discount *models.Discount) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ticketType models.TicketType
		if err := tx.First(&ticketType, "id = ?", discount.TicketTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := validateDiscount(discount, ticketType.Price); err != nil {
			return err
		}
		if err := s.checkOverlap(tx, discount); err != nil {
			return err
		}
		return tx.Save(discount).Error
	})
}

// checkOverlap rejects the discount if another active discount on the same
// ticket type has a window intersecting it. Windows are half-open, so two
// windows overlap iff each starts before the other ends.
func (s *DiscountService) checkOverlap(tx *gorm.DB, discount *models.Discount) error {
	if !discount.Active {
		return nil
	}

	var count int64
	err := tx.Model(&models.Discount{}).
		Where("ticket_type_id = ? AND active = ? AND id <> ? AND valid_from < ? AND valid_to > ?",
			discount.TicketTypeID, true, discount.ID, discount.ValidTo, discount.ValidFrom).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDiscountOverlap
	}
	return nil
}

func validateDiscount(discount *models.Discount, unitPrice decimal.Decimal) error {
	if !discount.ValidTo.After(discount.ValidFrom) {
		return ErrInvalidDiscount
	}
	switch discount.Kind {
	case models.DiscountPercentage:
		if discount.Value.IsNegative() || discount.Value.GreaterThan(decimal.NewFromInt(100)) {
			return ErrInvalidDiscount
		}
	case models.DiscountFixedAmount:
		if !discount.Value.IsPositive() || discount.Value.GreaterThan(unitPrice) {
			return ErrInvalidDiscount
		}
	default:
		return ErrInvalidDiscount
	}
	return nil
}
