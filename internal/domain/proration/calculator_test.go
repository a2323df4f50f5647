package proration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateUpgrade(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	res := Calculate(Input{
		CurrentAmountInCents: 30000,
		NewAmountInCents:     60000,
		PeriodEnd:            now.AddDate(0, 0, 15),
		Now:                  now,
	})

	assert.Equal(t, int64(15), res.DaysRemaining)
	// 30000/30 = 1000 per day, 15 days remaining
	assert.Equal(t, int64(15000), res.CreditInCents)
	assert.Equal(t, int64(45000), res.ChargeNowInCents)
	assert.True(t, res.IsUpgrade)
	assert.False(t, res.IsDowngrade)
}

func TestCalculateDowngradeCreditExceedsNewPrice(t *testing.T) {
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	res := Calculate(Input{
		CurrentAmountInCents: 90000,
		NewAmountInCents:     30000,
		PeriodEnd:            now.AddDate(0, 0, 28),
		Now:                  now,
	})

	// 90000/30 = 3000 per day, 28 days = 84000 credit, clamped charge
	assert.Equal(t, int64(84000), res.CreditInCents)
	assert.Equal(t, int64(0), res.ChargeNowInCents)
	assert.True(t, res.IsDowngrade)
}

func TestCalculatePartialDayRoundsUp(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	res := Calculate(Input{
		CurrentAmountInCents: 30000,
		NewAmountInCents:     30000,
		PeriodEnd:            now.Add(36 * time.Hour),
		Now:                  now,
	})

	assert.Equal(t, int64(2), res.DaysRemaining)
	assert.False(t, res.IsUpgrade)
	assert.False(t, res.IsDowngrade)
}

func TestCalculateExpiredPeriod(t *testing.T) {
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	res := Calculate(Input{
		CurrentAmountInCents: 30000,
		NewAmountInCents:     60000,
		PeriodEnd:            now.AddDate(0, 0, -3),
		Now:                  now,
	})

	assert.Equal(t, int64(0), res.DaysRemaining)
	assert.Equal(t, int64(0), res.CreditInCents)
	assert.Equal(t, int64(60000), res.ChargeNowInCents)
}

func TestCalculateFractionalDailyRateFloors(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	res := Calculate(Input{
		CurrentAmountInCents: 1000, // 33.33... per day
		NewAmountInCents:     2000,
		PeriodEnd:            now.AddDate(0, 0, 7),
		Now:                  now,
	})

	// 1000/30 * 7 = 233.33, floored
	assert.Equal(t, int64(233), res.CreditInCents)
	assert.Equal(t, int64(1767), res.ChargeNowInCents)
}
