package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DiscountPercentage  = "percentage"
	DiscountFixedAmount = "fixed_amount"
)

// Discount belongs to exactly one TicketType. Its window is half-open:
// [ValidFrom, ValidTo). At most one active discount per ticket type may cover
// any instant; the overlap check runs at create/update time.
//
// Active deliberately carries no column default: gorm drops zero-value fields
// that have a default tag on insert, which would flip Active:false rows to
// true. Callers set the flag explicitly.
type Discount struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	Kind         string          `gorm:"not null"`
	Value        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ValidFrom    time.Time       `gorm:"not null"`
	ValidTo      time.Time       `gorm:"not null"`
	Active       bool            `gorm:"not null"`
	TicketTypeID uuid.UUID       `gorm:"type:uuid;not null;index"`
	TicketType   TicketType
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (discount *Discount) BeforeCreate(tx *gorm.DB) (err error) {
	if discount.ID == uuid.Nil {
		discount.ID = uuid.New()
	}
	return
}

// CoversAt reports whether the discount applies at the given instant.
func (discount *Discount) CoversAt(at time.Time) bool {
	return discount.Active && !at.Before(discount.ValidFrom) && at.Before(discount.ValidTo)
}

// Apply returns the unit price after the discount, never below zero.
func (discount *Discount) Apply(unitPrice decimal.Decimal) decimal.Decimal {
	var discounted decimal.Decimal
	switch discount.Kind {
	case DiscountPercentage:
		factor := decimal.NewFromInt(100).Sub(discount.Value).Div(decimal.NewFromInt(100))
		discounted = unitPrice.Mul(factor).Round(2)
	case DiscountFixedAmount:
		discounted = unitPrice.Sub(discount.Value)
	default:
		return unitPrice
	}
	if discounted.IsNegative() {
		return decimal.Zero
	}
	return discounted
}
