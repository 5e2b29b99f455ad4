package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TicketType is a purchasable category of ticket within one event. SoldCount
// only moves through the inventory service's version-guarded updates; Capacity
// nil means unlimited.
type TicketType struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	Name      string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Capacity  *int
	SoldCount int `gorm:"not null;default:0"`
	Version   int `gorm:"not null;default:1"`
	EventID   uuid.UUID
	Event     Event
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ticketType *TicketType) BeforeCreate(tx *gorm.DB) (err error) {
	if ticketType.ID == uuid.Nil {
		ticketType.ID = uuid.New()
	}
	return
}

// Remaining returns the tickets still available, or -1 when unlimited.
func (ticketType *TicketType) Remaining() int {
	if ticketType.Capacity == nil {
		return -1
	}
	return *ticketType.Capacity - ticketType.SoldCount
}
