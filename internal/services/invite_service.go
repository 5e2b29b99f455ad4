package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/eventgate/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoleGranter applies a role to a user. Grants must be idempotent: redeeming
// retries after a crash may grant the same role twice, and that has to be
// harmless, because the redemption write is the single source of truth for
// whether a code was used.
type RoleGranter interface {
	Grant(ctx context.Context, userID uuid.UUID, role string) error
}

// InviteService consumes single-use invite codes with the same
// version-guarded cycle the inventory uses. Commit order on redeem: grant
// role, assign staff (if applicable), then mark the code redeemed.
type InviteService struct {
	db     *gorm.DB
	roles  RoleGranter
	logger *zap.Logger
}

func NewInviteService(db *gorm.DB, roles RoleGranter, logger *zap.Logger) *InviteService {
	return &InviteService{db: db, roles: roles, logger: logger}
}

// Create mints a pending invite code. Staff invites must name the event the
// redeemer will be assigned to; other roles must not.
func (s *InviteService) Create(ctx context.Context, role string, eventID *uuid.UUID, expiresAt time.Time, createdBy uuid.UUID) (*models.InviteCode, error) {
	if (role == models.RoleStaff) != (eventID != nil) {
		return nil, ErrInviteEventNeeded
	}

	token := make([]byte, 16)
	if _, err := rand.Read(token); err != nil {
		return nil, err
	}

	invite := models.InviteCode{
		Code:      hex.EncodeToString(token),
		Role:      role,
		EventID:   eventID,
		Status:    models.InvitePending,
		ExpiresAt: expiresAt,
		CreatedBy: createdBy,
	}
	if err := s.db.WithContext(ctx).Create(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// Redeem consumes a pending code: grant the role, assign event staff when the
// code carries one, then flip the code to redeemed guarded by its version. A
// lost race re-reads so the caller gets the real terminal status instead of a
// bare conflict.
func (s *InviteService) Redeem(ctx context.Context, code string, userID uuid.UUID, now time.Time) (*models.InviteCode, error) {
	for attempt := 0; attempt < reserveRetries; attempt++ {
		var invite models.InviteCode
		if err := s.db.WithContext(ctx).First(&invite, "code = ?", code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}

		switch invite.Status {
		case models.InviteRedeemed:
			return nil, ErrInviteRedeemed
		case models.InviteRevoked:
			return nil, ErrInviteRevoked
		case models.InviteExpired:
			return nil, ErrInviteExpired
		}

		if !now.Before(invite.ExpiresAt) {
			// Lazily observed expiry; the status write is best effort.
			s.db.WithContext(ctx).Model(&models.InviteCode{}).
				Where("id = ? AND version = ?", invite.ID, invite.Version).
				Updates(map[string]interface{}{
					"status":  models.InviteExpired,
					"version": invite.Version + 1,
				})
			return nil, ErrInviteExpired
		}

		if err := s.roles.Grant(ctx, userID, invite.Role); err != nil {
			return nil, err
		}

		if invite.Role == models.RoleStaff && invite.EventID != nil {
			assignment := models.EventStaff{EventID: *invite.EventID, UserID: userID}
			err := s.db.WithContext(ctx).
				Where("event_id = ? AND user_id = ?", *invite.EventID, userID).
				FirstOrCreate(&assignment).Error
			if err != nil {
				return nil, err
			}
		}

		result := s.db.WithContext(ctx).Model(&models.InviteCode{}).
			Where("id = ? AND version = ? AND status = ?", invite.ID, invite.Version, models.InvitePending).
			Updates(map[string]interface{}{
				"status":  models.InviteRedeemed,
				"version": invite.Version + 1,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			invite.Status = models.InviteRedeemed
			invite.Version++
			return &invite, nil
		}
		// Raced with another redeem or a revoke; loop to report the truth.
	}

	s.logger.Warn("invite redemption lost the version race repeatedly",
		zap.String("code", code))
	return nil, ErrTransientConflict
}

// Revoke takes a pending code out of circulation.
func (s *InviteService) Revoke(ctx context.Context, id uuid.UUID) error {
	var invite models.InviteCode
	if err := s.db.WithContext(ctx).First(&invite, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if invite.Status != models.InvitePending {
		return ErrInviteNotPending
	}

	result := s.db.WithContext(ctx).Model(&models.InviteCode{}).
		Where("id = ? AND version = ? AND status = ?", invite.ID, invite.Version, models.InvitePending).
		Updates(map[string]interface{}{
			"status":  models.InviteRevoked,
			"version": invite.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransientConflict
	}
	return nil
}

// GormRoleGranter grants a role by pointing the user's role_id at it. Setting
// the same role twice is a no-op, which satisfies the idempotency the
// redemption flow relies on.
type GormRoleGranter struct {
	db *gorm.DB
}

func NewGormRoleGranter(db *gorm.DB) *GormRoleGranter {
	return &GormRoleGranter{db: db}
}

func (g *GormRoleGranter) Grant(ctx context.Context, userID uuid.UUID, role string) error {
	var roleRow models.Role
	if err := g.db.WithContext(ctx).First(&roleRow, "name = ?", role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	result := g.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("role_id", roleRow.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
