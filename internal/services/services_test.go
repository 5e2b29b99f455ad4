package services

import (
	"testing"
	"time"

	"github.com/eventgate/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// In-memory sqlite gives every connection its own database; pin the pool
	// to one connection so concurrent test goroutines share state.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Event{},
		&models.EventStaff{},
		&models.TicketType{},
		&models.Discount{},
		&models.Ticket{},
		&models.QRCode{},
		&models.TicketValidation{},
		&models.InviteCode{},
	)
	require.NoError(t, err)

	return db
}

func seedTestRoles(t *testing.T, db *gorm.DB) map[string]models.Role {
	roles := make(map[string]models.Role)
	for _, name := range []string{models.RoleAttendee, models.RoleOrganizer, models.RoleStaff, models.RoleAdmin} {
		role := models.Role{Name: name}
		require.NoError(t, db.Create(&role).Error)
		roles[name] = role
	}
	return roles
}

func createTestUser(t *testing.T, db *gorm.DB, roleID uuid.UUID) models.User {
	user := models.User{
		Email:       uuid.NewString() + "@example.com",
		Password:    "hashed",
		PhoneNumber: "0000",
		Approved:    true,
		RoleID:      roleID,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// createOnSaleEvent returns a published event whose sales window covers now.
func createOnSaleEvent(t *testing.T, db *gorm.DB, organizerID uuid.UUID) models.Event {
	now := time.Now()
	event := models.Event{
		Title:       "Test Event",
		Description: "test",
		StartTime:   now.Add(48 * time.Hour),
		EndTime:     now.Add(52 * time.Hour),
		City:        "Jakarta",
		Location:    "Hall A",
		Status:      models.EventPublished,
		SalesStart:  now.Add(-time.Hour),
		SalesEnd:    now.Add(24 * time.Hour),
		UserID:      organizerID,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func createTicketType(t *testing.T, db *gorm.DB, eventID uuid.UUID, price decimal.Decimal, capacity *int) models.TicketType {
	ticketType := models.TicketType{
		Name:     "Regular",
		Price:    price,
		Capacity: capacity,
		EventID:  eventID,
	}
	require.NoError(t, db.Create(&ticketType).Error)
	return ticketType
}

func intPtr(v int) *int {
	return &v
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
