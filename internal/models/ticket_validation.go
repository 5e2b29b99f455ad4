package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ValidationMethodManual = "manual"
	ValidationMethodQRScan = "qr_scan"
)

const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
)

// TicketValidation is the append-only check-in audit trail. Every validation
// attempt writes exactly one row, including attempts against unknown
// identifiers, which carry a null TicketID. Rows are never updated or deleted;
// no mutation method exists anywhere in the codebase.
type TicketValidation struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	TicketID    *uuid.UUID `gorm:"type:uuid;index"`
	Method      string     `gorm:"not null"`
	Outcome     string     `gorm:"not null"`
	ValidatorID uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
}

func (validation *TicketValidation) BeforeCreate(tx *gorm.DB) (err error) {
	if validation.ID == uuid.Nil {
		validation.ID = uuid.New()
	}
	return
}
