package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TicketUnvalidated = "unvalidated"
	TicketValidated   = "validated"
	TicketVoid        = "void"
)

// Ticket is one issued admission. ChargedPrice is a snapshot taken at the
// purchase instant and never changes afterwards; ValidationStatus only moves
// through the validation service.
type Ticket struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	ChargedPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ValidationStatus string          `gorm:"not null;default:'unvalidated'"`
	TicketTypeID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	TicketType       TicketType
	OwnerID          uuid.UUID `gorm:"type:uuid;not null;index"`
	Owner            User      `gorm:"foreignKey:OwnerID"`
	CreatedAt        time.Time
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}

// QRCode is the scannable companion of a ticket, created in the same
// transaction. Its id is the QR payload; it is a lookup key distinct from the
// ticket's own id.
type QRCode struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	TicketID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Ticket    Ticket
	CreatedAt time.Time
}

func (qrCode *QRCode) BeforeCreate(tx *gorm.DB) (err error) {
	if qrCode.ID == uuid.Nil {
		qrCode.ID = uuid.New()
	}
	return
}
