package analytics

import (
	"testing"
	"time"

	"tradecraft/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC) // a Monday

func makeTrade(legs ...domain.Leg) *domain.Trade {
	return &domain.Trade{
		ID:        "t1",
		UserID:    "u1",
		Symbol:    "AAPL",
		AssetType: domain.AssetStock,
		CreatedAt: baseTime,
		Legs:      legs,
	}
}

func leg(action domain.LegAction, at time.Time, qty, price, fee float64) domain.Leg {
	return domain.Leg{Action: action, Time: at, Quantity: qty, Price: price, Fee: fee}
}

func TestNormalize_WinningTrade(t *testing.T) {
	trade := makeTrade(
		leg(domain.Buy, baseTime, 2, 100, 0),
		leg(domain.Sell, baseTime.Add(2*time.Hour), 2, 120, 0),
	)

	ct, err := Normalize(trade)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusWin, ct.Status)
	assert.Equal(t, 200.0, ct.OpenedTotal)
	require.NotNil(t, ct.ClosedTotal)
	assert.Equal(t, 240.0, *ct.ClosedTotal)
	require.NotNil(t, ct.RealizedPNL)
	assert.Equal(t, 40.0, *ct.RealizedPNL)
	require.NotNil(t, ct.ReturnPct)
	assert.InDelta(t, 20.0, *ct.ReturnPct, 1e-9)
	require.NotNil(t, ct.Holding)
	assert.Equal(t, 2*time.Hour, *ct.Holding)
}

func TestNormalize_FeesTurnFlatTradeIntoLoss(t *testing.T) {
	trade := makeTrade(
		leg(domain.Buy, baseTime, 1, 50, 1),
		leg(domain.Sell, baseTime.Add(time.Hour), 1, 50, 1),
	)

	ct, err := Normalize(trade)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusLoss, ct.Status)
	assert.Equal(t, 51.0, ct.OpenedTotal)
	assert.Equal(t, 49.0, *ct.ClosedTotal)
	assert.Equal(t, -2.0, *ct.RealizedPNL)
}

func TestNormalize_OpenTrade(t *testing.T) {
	trade := makeTrade(leg(domain.Buy, baseTime, 10, 25, 0.5))

	ct, err := Normalize(trade)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOpen, ct.Status)
	assert.Equal(t, 250.5, ct.OpenedTotal)
	assert.Nil(t, ct.ClosedTotal)
	assert.Nil(t, ct.RealizedPNL)
	assert.Nil(t, ct.ReturnPct)
	assert.Nil(t, ct.Holding)
	assert.Nil(t, ct.ExitTime)
}

func TestNormalize_BreakEven(t *testing.T) {
	trade := makeTrade(
		leg(domain.Buy, baseTime, 2, 100, 0),
		leg(domain.Sell, baseTime.Add(time.Minute), 2, 100, 0),
	)

	ct, err := Normalize(trade)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBreakEven, ct.Status)
	assert.Equal(t, 0.0, *ct.RealizedPNL)
}

func TestNormalize_MultiLegScaleOut(t *testing.T) {
	// One entry, two partial exits: closing proceeds are summed.
	trade := makeTrade(
		leg(domain.Buy, baseTime, 10, 100, 2),
		leg(domain.Sell, baseTime.Add(time.Hour), 5, 110, 1),
		leg(domain.Sell, baseTime.Add(3*time.Hour), 5, 120, 1),
	)

	ct, err := Normalize(trade)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusWin, ct.Status)
	assert.Equal(t, 1002.0, ct.OpenedTotal)
	assert.Equal(t, 549.0+599.0, *ct.ClosedTotal)
	assert.InDelta(t, 146.0, *ct.RealizedPNL, 1e-9)
	// Holding spans entry to the final fill.
	assert.Equal(t, 3*time.Hour, *ct.Holding)
	assert.True(t, ct.ExitTime.Equal(baseTime.Add(3*time.Hour)))
}

func TestNormalize_RejectsLeglessTrade(t *testing.T) {
	_, err := Normalize(makeTrade())
	require.Error(t, err)
}

func TestNormalize_RejectsNegativeQuantity(t *testing.T) {
	_, err := Normalize(makeTrade(leg(domain.Buy, baseTime, -1, 100, 0)))
	require.Error(t, err)
}

func TestNormalizeAll_SkipsMalformed(t *testing.T) {
	good := makeTrade(
		leg(domain.Buy, baseTime, 1, 10, 0),
		leg(domain.Sell, baseTime.Add(time.Hour), 1, 12, 0),
	)
	bad := makeTrade() // no legs

	computed, skipped := NormalizeAll([]*domain.Trade{good, bad})
	assert.Len(t, computed, 1)
	assert.Len(t, skipped, 1)
}

func TestFormatHolding(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"under a minute", 42 * time.Second, "<1 MIN"},
		{"minutes", 37 * time.Minute, "37 MIN"},
		{"whole hours", 2 * time.Hour, "2 HRS"},
		{"fractional hours round", 2*time.Hour + 33*time.Minute, "2.6 HRS"},
		{"just under a day", 23*time.Hour + 59*time.Minute, "24 HRS"},
		{"days", 36 * time.Hour, "1.5 DAYS"},
		{"many days", 10 * 24 * time.Hour, "10 DAYS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatHolding(tt.d))
		})
	}
}
