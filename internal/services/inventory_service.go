package services

import (
	"context"
	"errors"

	"github.com/eventgate/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// reserveRetries bounds the optimistic read-check-write cycle before the
// caller is told to retry itself.
const reserveRetries = 3

// InventoryService owns sold_count on ticket types. All mutations go through
// the version-guarded cycle below; nothing else in the codebase writes the
// column, which is what keeps capacity a hard limit under concurrent
// purchases.
type InventoryService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewInventoryService(db *gorm.DB, logger *zap.Logger) *InventoryService {
	return &InventoryService{db: db, logger: logger}
}

// Reserve takes quantity tickets out of the remaining capacity, or fails with
// ErrSoldOut leaving sold_count untouched. A lost optimistic race re-reads and
// tries again; after reserveRetries losses it gives up with
// ErrTransientConflict so the caller can distinguish contention from a real
// sell-out.
func (s *InventoryService) Reserve(ctx context.Context, ticketTypeID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return ErrQuantityOutOfRange
	}

	for attempt := 0; attempt < reserveRetries; attempt++ {
		var ticketType models.TicketType
		if err := s.db.WithContext(ctx).First(&ticketType, "id = ?", ticketTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if ticketType.Capacity != nil && ticketType.SoldCount+quantity > *ticketType.Capacity {
			return ErrSoldOut
		}

		result := s.db.WithContext(ctx).Model(&models.TicketType{}).
			Where("id = ? AND version = ?", ticketType.ID, ticketType.Version).
			Updates(map[string]interface{}{
				"sold_count": ticketType.SoldCount + quantity,
				"version":    ticketType.Version + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			return nil
		}
		// Someone else committed first; re-read and re-check.
	}

	s.logger.Warn("reservation lost the version race repeatedly",
		zap.String("ticket_type_id", ticketTypeID.String()),
		zap.Int("quantity", quantity))
	return ErrTransientConflict
}

// Release is the compensating decrement for a committed reservation whose
// issuance failed afterwards. It never drives sold_count below zero.
func (s *InventoryService) Release(ctx context.Context, ticketTypeID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return ErrQuantityOutOfRange
	}

	for attempt := 0; attempt < reserveRetries; attempt++ {
		var ticketType models.TicketType
		if err := s.db.WithContext(ctx).First(&ticketType, "id = ?", ticketTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		remaining := ticketType.SoldCount - quantity
		if remaining < 0 {
			remaining = 0
		}

		result := s.db.WithContext(ctx).Model(&models.TicketType{}).
			Where("id = ? AND version = ?", ticketType.ID, ticketType.Version).
			Updates(map[string]interface{}{
				"sold_count": remaining,
				"version":    ticketType.Version + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			return nil
		}
	}

	s.logger.Warn("release lost the version race repeatedly",
		zap.String("ticket_type_id", ticketTypeID.String()),
		zap.Int("quantity", quantity))
	return ErrTransientConflict
}
