package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEventOnSaleAt(t *testing.T) {
	now := time.Now()
	event := Event{
		Status:     EventPublished,
		SalesStart: now.Add(-time.Hour),
		SalesEnd:   now.Add(time.Hour),
	}

	assert.True(t, event.OnSaleAt(now))
	assert.True(t, event.OnSaleAt(event.SalesStart), "sales start is inclusive")
	assert.False(t, event.OnSaleAt(event.SalesEnd), "sales end is exclusive")
	assert.False(t, event.OnSaleAt(now.Add(-2*time.Hour)))

	event.Status = EventDraft
	assert.False(t, event.OnSaleAt(now), "draft events are never on sale")
}

func TestDiscountApply(t *testing.T) {
	price := decimal.NewFromInt(100)

	percentage := Discount{Kind: DiscountPercentage, Value: decimal.NewFromInt(20)}
	assert.True(t, percentage.Apply(price).Equal(decimal.NewFromInt(80)))

	fixed := Discount{Kind: DiscountFixedAmount, Value: decimal.NewFromInt(30)}
	assert.True(t, fixed.Apply(price).Equal(decimal.NewFromInt(70)))

	full := Discount{Kind: DiscountPercentage, Value: decimal.NewFromInt(100)}
	assert.True(t, full.Apply(price).Equal(decimal.Zero))

	oversized := Discount{Kind: DiscountFixedAmount, Value: decimal.NewFromInt(150)}
	assert.True(t, oversized.Apply(price).Equal(decimal.Zero), "never negative")

	unknown := Discount{Kind: "bogo", Value: decimal.NewFromInt(10)}
	assert.True(t, unknown.Apply(price).Equal(price))
}

func TestDiscountCoversAt(t *testing.T) {
	now := time.Now()
	discount := Discount{
		Active:    true,
		ValidFrom: now.Add(-time.Hour),
		ValidTo:   now.Add(time.Hour),
	}

	assert.True(t, discount.CoversAt(now))
	assert.True(t, discount.CoversAt(discount.ValidFrom))
	assert.False(t, discount.CoversAt(discount.ValidTo))

	discount.Active = false
	assert.False(t, discount.CoversAt(now))
}

func TestTicketTypeRemaining(t *testing.T) {
	capacity := 10
	ticketType := TicketType{Capacity: &capacity, SoldCount: 4}
	assert.Equal(t, 6, ticketType.Remaining())

	unlimited := TicketType{}
	assert.Equal(t, -1, unlimited.Remaining())
}
