package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventDraft     = "draft"
	EventPublished = "published"
	EventCancelled = "cancelled"
)

type Event struct {
	gorm.Model
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Title       string    `gorm:"not null"`
	Description string    `gorm:"not null"`
	StartTime   time.Time `gorm:"not null"`
	EndTime     time.Time `gorm:"not null"`
	City        string    `gorm:"not null"`
	Location    string    `gorm:"not null"`
	Status      string    `gorm:"not null;default:'draft'"`
	SalesStart  time.Time `gorm:"not null"`
	SalesEnd    time.Time `gorm:"not null"`
	User        User
	UserID      uuid.UUID
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}

// OnSaleAt reports whether tickets for the event can be sold at the given
// instant. Sales require a published event and an open sales window.
func (event *Event) OnSaleAt(at time.Time) bool {
	if event.Status != EventPublished {
		return false
	}
	return !at.Before(event.SalesStart) && at.Before(event.SalesEnd)
}

type EventStaff struct {
	EventID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_staff"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_staff"`
	CreatedAt time.Time
}

func (EventStaff) TableName() string {
	return "event_staff"
}
