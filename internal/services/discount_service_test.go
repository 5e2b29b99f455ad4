package services

import (
	"context"
	"testing"
	"time"

	"github.com/eventgate/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func discountFixture(t *testing.T) (*gorm.DB, *DiscountService, models.TicketType) {
	db := setupTestDB(t)
	roles := seedTestRoles(t, db)
	organizer := createTestUser(t, db, roles[models.RoleOrganizer].ID)
	event := createOnSaleEvent(t, db, organizer.ID)
	ticketType := createTicketType(t, db, event.ID, decimal.NewFromInt(100), nil)
	return db, NewDiscountService(db, testLogger()), ticketType
}

func windowAround(at time.Time) (time.Time, time.Time) {
	return at.Add(-time.Hour), at.Add(time.Hour)
}

func TestUnitPriceAtAppliesPercentage(t *testing.T) {
	db, svc, ticketType := discountFixture(t)
	now := time.Now()
	from, to := windowAround(now)

	discount := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(20),
		ValidFrom:    from,
		ValidTo:      to,
		Active:       true,
		TicketTypeID: ticketType.ID,
	}
	require.NoError(t, db.Create(&discount).Error)

	price, applied, err := svc.UnitPriceAt(context.Background(), ticketType.ID, ticketType.Price, now)
	require.NoError(t, err)
	require.NotNil(t, applied)
	assert.True(t, price.Equal(decimal.NewFromInt(80)), "got %s", price)
}

func TestUnitPriceAtAppliesFixedAmount(t *testing.T) {
	db, svc, ticketType := discountFixture(t)
	now := time.Now()
	from, to := windowAround(now)

	discount := models.Discount{
		Kind:         models.DiscountFixedAmount,
		Value:        decimal.NewFromInt(30),
		ValidFrom:    from,
		ValidTo:      to,
		Active:       true,
		TicketTypeID: ticketType.ID,
	}
	require.NoError(t, db.Create(&discount).Error)

	price, _, err := svc.UnitPriceAt(context.Background(), ticketType.ID, ticketType.Price, now)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(70)), "got %s", price)
}

func TestUnitPriceAtFullPriceWithoutCoverage(t *testing.T) {
	db, svc, ticketType := discountFixture(t)
	now := time.Now()

	// Window entirely in the past.
	discount := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(50),
		ValidFrom:    now.Add(-3 * time.Hour),
		ValidTo:      now.Add(-2 * time.Hour),
		Active:       true,
		TicketTypeID: ticketType.ID,
	}
	require.NoError(t, db.Create(&discount).Error)

	price, applied, err := svc.UnitPriceAt(context.Background(), ticketType.ID, ticketType.Price, now)
	require.NoError(t, err)
	assert.Nil(t, applied)
	assert.True(t, price.Equal(decimal.NewFromInt(100)))
}

func TestUnitPriceAtIgnoresInactive(t *testing.T) {
	db, svc, ticketType := discountFixture(t)
	now := time.Now()
	from, to := windowAround(now)

	discount := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(50),
		ValidFrom:    from,
		ValidTo:      to,
		Active:       false,
		TicketTypeID: ticketType.ID,
	}
	require.NoError(t, db.Create(&discount).Error)

	price, applied, err := svc.UnitPriceAt(context.Background(), ticketType.ID, ticketType.Price, now)
	require.NoError(t, err)
	assert.Nil(t, applied)
	assert.True(t, price.Equal(decimal.NewFromInt(100)))
}

func TestUnitPriceAtWindowIsHalfOpen(t *testing.T) {
	db, svc, ticketType := discountFixture(t)
	from := time.Now().Truncate(time.Second)
	to := from.Add(time.Hour)

	discount := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(20),
		ValidFrom:    from,
		ValidTo:      to,
		Active:       true,
		TicketTypeID: ticketType.ID,
	}
	require.NoError(t, db.Create(&discount).Error)

	ctx := context.Background()

	price, _, err := svc.UnitPriceAt(ctx, ticketType.ID, ticketType.Price, from)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(80)), "valid_from is inclusive")

	price, _, err = svc.UnitPriceAt(ctx, ticketType.ID, ticketType.Price, to)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(100)), "valid_to is exclusive")
}

func TestUnitPriceAtNewestWinsOnOverlapAnomaly(t *testing.T) {
	db, svc, ticketType := discountFixture(t)
	now := time.Now()
	from, to := windowAround(now)

	// Two overlapping active rows inserted directly, simulating a race the
	// write-side check missed.
	older := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(10),
		ValidFrom:    from,
		ValidTo:      to,
		Active:       true,
		TicketTypeID: ticketType.ID,
		CreatedAt:    now.Add(-2 * time.Hour),
	}
	require.NoError(t, db.Create(&older).Error)

	newer := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(25),
		ValidFrom:    from,
		ValidTo:      to,
		Active:       true,
		TicketTypeID: ticketType.ID,
		CreatedAt:    now.Add(-time.Hour),
	}
	require.NoError(t, db.Create(&newer).Error)

	price, applied, err := svc.UnitPriceAt(context.Background(), ticketType.ID, ticketType.Price, now)
	require.NoError(t, err)
	require.NotNil(t, applied)
	assert.Equal(t, newer.ID, applied.ID)
	assert.True(t, price.Equal(decimal.NewFromInt(75)))
}

func TestUnitPriceAtIsDeterministic(t *testing.T) {
	db, svc, ticketType := discountFixture(t)
	now := time.Now()
	from, to := windowAround(now)

	discount := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(15),
		ValidFrom:    from,
		ValidTo:      to,
		Active:       true,
		TicketTypeID: ticketType.ID,
	}
	require.NoError(t, db.Create(&discount).Error)

	first, _, err := svc.UnitPriceAt(context.Background(), ticketType.ID, ticketType.Price, now)
	require.NoError(t, err)
	second, _, err := svc.UnitPriceAt(context.Background(), ticketType.ID, ticketType.Price, now)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestCreateDiscountRejectsOverlap(t *testing.T) {
	_, svc, ticketType := discountFixture(t)
	ctx := context.Background()
	base := time.Now()

	first := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(10),
		ValidFrom:    base,
		ValidTo:      base.Add(2 * time.Hour),
		Active:       true,
		TicketTypeID: ticketType.ID,
	}
	require.NoError(t, svc.Create(ctx, &first))

	overlapping := models.Discount{
		Kind:         models.DiscountFixedAmount,
		Value:        decimal.NewFromInt(5),
		ValidFrom:    base.Add(time.Hour),
		ValidTo:      base.Add(3 * time.Hour),
		Active:       true,
		TicketTypeID: ticketType.ID,
	}
	assert.ErrorIs(t, svc.Create(ctx, &overlapping), ErrDiscountOverlap)
}

func TestCreateDiscountAllowsTouchingWindows(t *testing.T) {
	_, svc, ticketType := discountFixture(t)
	ctx := context.Background()
	base := time.Now()

	first := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(10),
		ValidFrom:    base,
		ValidTo:      base.Add(time.Hour),
		Active:       true,
		TicketTypeID: ticketType.ID,
	}
	require.NoError(t, svc.Create(ctx, &first))

	// [base+1h, base+2h) starts exactly where the first window ends.
	second := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(20),
		ValidFrom:    base.Add(time.Hour),
		ValidTo:      base.Add(2 * time.Hour),
		Active:       true,
		TicketTypeID: ticketType.ID,
	}
	assert.NoError(t, svc.Create(ctx, &second))
}

func TestCreateDiscountAllowsOverlapWithInactive(t *testing.T) {
	_, svc, ticketType := discountFixture(t)
	ctx := context.Background()
	base := time.Now()

	inactive := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(10),
		ValidFrom:    base,
		ValidTo:      base.Add(2 * time.Hour),
		Active:       false,
		TicketTypeID: ticketType.ID,
	}
	require.NoError(t, svc.Create(ctx, &inactive))

	active := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(20),
		ValidFrom:    base,
		ValidTo:      base.Add(2 * time.Hour),
		Active:       true,
		TicketTypeID: ticketType.ID,
	}
	assert.NoError(t, svc.Create(ctx, &active))
}

func TestCreateDiscountPersistsInactiveFlag(t *testing.T) {
	db, svc, ticketType := discountFixture(t)
	ctx := context.Background()
	now := time.Now()
	from, to := windowAround(now)

	inactive := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(50),
		ValidFrom:    from,
		ValidTo:      to,
		Active:       false,
		TicketTypeID: ticketType.ID,
	}
	require.NoError(t, svc.Create(ctx, &inactive))

	var stored models.Discount
	require.NoError(t, db.First(&stored, "id = ?", inactive.ID).Error)
	assert.False(t, stored.Active, "inactive flag must survive the insert")

	price, applied, err := svc.UnitPriceAt(ctx, ticketType.ID, ticketType.Price, now)
	require.NoError(t, err)
	assert.Nil(t, applied)
	assert.True(t, price.Equal(decimal.NewFromInt(100)))
}

func TestCreateDiscountValidation(t *testing.T) {
	_, svc, ticketType := discountFixture(t)
	ctx := context.Background()
	base := time.Now()

	cases := []struct {
		name     string
		discount models.Discount
	}{
		{"percentage above 100", models.Discount{
			Kind: models.DiscountPercentage, Value: decimal.NewFromInt(150),
			ValidFrom: base, ValidTo: base.Add(time.Hour), Active: true, TicketTypeID: ticketType.ID,
		}},
		{"negative percentage", models.Discount{
			Kind: models.DiscountPercentage, Value: decimal.NewFromInt(-5),
			ValidFrom: base, ValidTo: base.Add(time.Hour), Active: true, TicketTypeID: ticketType.ID,
		}},
		{"zero fixed amount", models.Discount{
			Kind: models.DiscountFixedAmount, Value: decimal.Zero,
			ValidFrom: base, ValidTo: base.Add(time.Hour), Active: true, TicketTypeID: ticketType.ID,
		}},
		{"fixed amount above unit price", models.Discount{
			Kind: models.DiscountFixedAmount, Value: decimal.NewFromInt(150),
			ValidFrom: base, ValidTo: base.Add(time.Hour), Active: true, TicketTypeID: ticketType.ID,
		}},
		{"window ends before it starts", models.Discount{
			Kind: models.DiscountPercentage, Value: decimal.NewFromInt(10),
			ValidFrom: base.Add(time.Hour), ValidTo: base, Active: true, TicketTypeID: ticketType.ID,
		}},
		{"unknown kind", models.Discount{
			Kind: "bogo", Value: decimal.NewFromInt(10),
			ValidFrom: base, ValidTo: base.Add(time.Hour), Active: true, TicketTypeID: ticketType.ID,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			discount := tc.discount
			assert.ErrorIs(t, svc.Create(ctx, &discount), ErrInvalidDiscount)
		})
	}
}

func TestFullPercentageDiscountClampsToZero(t *testing.T) {
	db, svc, ticketType := discountFixture(t)
	now := time.Now()
	from, to := windowAround(now)

	discount := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(100),
		ValidFrom:    from,
		ValidTo:      to,
		Active:       true,
		TicketTypeID: ticketType.ID,
	}
	require.NoError(t, db.Create(&discount).Error)

	price, _, err := svc.UnitPriceAt(context.Background(), ticketType.ID, ticketType.Price, now)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.Zero))
}

func TestUpdateDiscountKeepsOverlapRule(t *testing.T) {
	_, svc, ticketType := discountFixture(t)
	ctx := context.Background()
	base := time.Now()

	first := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(10),
		ValidFrom:    base,
		ValidTo:      base.Add(time.Hour),
		Active:       true,
		TicketTypeID: ticketType.ID,
	}
	require.NoError(t, svc.Create(ctx, &first))

	second := models.Discount{
		Kind:         models.DiscountPercentage,
		Value:        decimal.NewFromInt(20),
		ValidFrom:    base.Add(2 * time.Hour),
		ValidTo:      base.Add(3 * time.Hour),
		Active:       true,
		TicketTypeID: ticketType.ID,
	}
	require.NoError(t, svc.Create(ctx, &second))

	// Sliding the second window onto the first must fail; the second row
	// must not collide with itself.
	second.ValidFrom = base.Add(30 * time.Minute)
	assert.ErrorIs(t, svc.Update(ctx, &second), ErrDiscountOverlap)

	second.ValidFrom = base.Add(2 * time.Hour)
	assert.NoError(t, svc.Update(ctx, &second))
}
