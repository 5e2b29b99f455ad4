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

// ValidationService runs the check-in state machine. A ticket validates at
// most once; any later attempt is a meaningful negative signal (possible
// duplicate entry), so it is recorded and reported, never treated as a no-op.
// Every attempt, including ones against unknown identifiers, appends exactly
// one TicketValidation row.
type ValidationService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewValidationService(db *gorm.DB, logger *zap.Logger) *ValidationService {
	return &ValidationService{db: db, logger: logger}
}

// Validate resolves the identifier to a ticket (ticket id for manual
// check-in, QR code id for scans) and flips it unvalidated->validated. The
// status flip and the valid audit row commit in one transaction; failed
// attempts commit their invalid audit row on their own.
func (s *ValidationService) Validate(ctx context.Context, identifier uuid.UUID, method string, validatorID uuid.UUID, now time.Time) (*models.Ticket, error) {
	ticket, err := s.resolve(ctx, identifier, method)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordAttempt(ctx, nil, method, models.OutcomeInvalid, validatorID, now)
			return nil, ErrNotFound
		}
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Ticket{}).
			Where("id = ? AND validation_status = ?", ticket.ID, models.TicketUnvalidated).
			Update("validation_status", models.TicketValidated)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Already flipped, or voided by cancellation.
			return ErrAlreadyValidated
		}

		record := models.TicketValidation{
			TicketID:    &ticket.ID,
			Method:      method,
			Outcome:     models.OutcomeValid,
			ValidatorID: validatorID,
			CreatedAt:   now,
		}
		return tx.Create(&record).Error
	})
	if err == nil {
		ticket.ValidationStatus = models.TicketValidated
		return ticket, nil
	}
	if !errors.Is(err, ErrAlreadyValidated) {
		return nil, err
	}

	// The rejected attempt still goes on the audit trail, outside the
	// rolled-back transaction.
	s.recordAttempt(ctx, &ticket.ID, method, models.OutcomeInvalid, validatorID, now)

	// Re-read so a race with a concurrent scan reports the right reason.
	var fresh models.Ticket
	if err := s.db.WithContext(ctx).First(&fresh, "id = ?", ticket.ID).Error; err == nil && fresh.ValidationStatus == models.TicketVoid {
		return nil, ErrTicketVoid
	}
	return nil, ErrAlreadyValidated
}

func (s *ValidationService) resolve(ctx context.Context, identifier uuid.UUID, method string) (*models.Ticket, error) {
	var ticket models.Ticket
	switch method {
	case models.ValidationMethodManual:
		if err := s.db.WithContext(ctx).First(&ticket, "id = ?", identifier).Error; err != nil {
			return nil, err
		}
	case models.ValidationMethodQRScan:
		var qrCode models.QRCode
		if err := s.db.WithContext(ctx).First(&qrCode, "id = ?", identifier).Error; err != nil {
			return nil, err
		}
		if err := s.db.WithContext(ctx).First(&ticket, "id = ?", qrCode.TicketID).Error; err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidMethod
	}
	return &ticket, nil
}

// recordAttempt appends an audit row stamped with the same clock the caller
// validated against, so valid and invalid rows order consistently.
func (s *ValidationService) recordAttempt(ctx context.Context, ticketID *uuid.UUID, method, outcome string, validatorID uuid.UUID, at time.Time) {
	record := models.TicketValidation{
		TicketID:    ticketID,
		Method:      method,
		Outcome:     outcome,
		ValidatorID: validatorID,
		CreatedAt:   at,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		s.logger.Error("failed to record validation attempt",
			zap.String("method", method),
			zap.Error(err))
	}
}
