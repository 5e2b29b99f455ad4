package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InvitePending  = "pending"
	InviteRedeemed = "redeemed"
	InviteRevoked  = "revoked"
	InviteExpired  = "expired"
)

// InviteCode is a single-use, time-bound role grant. Status moves
// pending->redeemed exactly once (version-guarded) or pending->revoked;
// expiry is observed lazily when a redeem attempt arrives after ExpiresAt.
// EventID is set iff Role is staff.
type InviteCode struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	Code      string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	Role      string     `gorm:"not null"`
	EventID   *uuid.UUID `gorm:"type:uuid"`
	Status    string     `gorm:"not null;default:'pending'"`
	ExpiresAt time.Time  `gorm:"not null"`
	Version   int        `gorm:"not null;default:1"`
	CreatedBy uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (invite *InviteCode) BeforeCreate(tx *gorm.DB) (err error) {
	if invite.ID == uuid.Nil {
		invite.ID = uuid.New()
	}
	return
}
