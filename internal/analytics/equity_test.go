package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEquityCurve_Empty(t *testing.T) {
	assert.Nil(t, BuildEquityCurve(nil, ByDay, time.UTC))
	assert.Nil(t, BuildEquityCurve([]*ComputedTrade{openTrade(t, "AAPL", 0)}, ByDay, time.UTC))
}

func TestBuildEquityCurve_SameDayTradesCollapse(t *testing.T) {
	// Two trades closing the same calendar day merge into one +7 step.
	trades := []*ComputedTrade{
		closedTrade(t, "AAPL", 0, 10),
		closedTrade(t, "TSLA", 2*time.Hour, -3),
		closedTrade(t, "NVDA", 48*time.Hour, 5),
	}

	points := BuildEquityCurve(trades, ByDay, time.UTC)
	require.Len(t, points, 2)

	assert.InDelta(t, 7.0, points[0].Delta, 1e-9)
	assert.InDelta(t, 7.0, points[0].Cumulative, 1e-9)
	assert.Equal(t, "06/02/2025", points[0].Label)

	assert.InDelta(t, 5.0, points[1].Delta, 1e-9)
	assert.InDelta(t, 12.0, points[1].Cumulative, 1e-9)
	assert.Equal(t, "06/04/2025", points[1].Label)
}

func TestBuildEquityCurve_SkipsSilentDays(t *testing.T) {
	// Nothing closed on June 3; the curve jumps straight from June 2 to
	// June 4 with no zero-delta point between.
	trades := []*ComputedTrade{
		closedTrade(t, "AAPL", 0, 10),
		closedTrade(t, "AAPL", 48*time.Hour, -4),
	}

	points := BuildEquityCurve(trades, ByDay, time.UTC)
	require.Len(t, points, 2)
	assert.Equal(t, "06/02/2025", points[0].Label)
	assert.Equal(t, "06/04/2025", points[1].Label)
}

func TestBuildEquityCurve_HourBuckets(t *testing.T) {
	trades := []*ComputedTrade{
		closedTrade(t, "AAPL", 0, 10),          // exits 10:30
		closedTrade(t, "AAPL", time.Minute, 2), // exits 10:31, same hour
		closedTrade(t, "AAPL", 3*time.Hour, 1), // exits 13:30
	}

	points := BuildEquityCurve(trades, ByHour, time.UTC)
	require.Len(t, points, 2)
	assert.Equal(t, "06/02/2025 10:00", points[0].Label)
	assert.InDelta(t, 12.0, points[0].Cumulative, 1e-9)
	assert.Equal(t, "06/02/2025 13:00", points[1].Label)
	assert.InDelta(t, 13.0, points[1].Cumulative, 1e-9)
}

func TestBuildEquityCurve_OrdersByExitTime(t *testing.T) {
	// Input order reversed; buckets still come out chronological.
	trades := []*ComputedTrade{
		closedTrade(t, "AAPL", 72*time.Hour, 3),
		closedTrade(t, "AAPL", 0, 10),
	}

	points := BuildEquityCurve(trades, ByDay, time.UTC)
	require.Len(t, points, 2)
	assert.True(t, points[0].Time.Before(points[1].Time))
	assert.InDelta(t, 10.0, points[0].Cumulative, 1e-9)
	assert.InDelta(t, 13.0, points[1].Cumulative, 1e-9)
}

func TestBuildEquityCurve_FinalValueMatchesAggregateTotal(t *testing.T) {
	trades := []*ComputedTrade{
		closedTrade(t, "AAPL", 0, 10),
		closedTrade(t, "TSLA", 24*time.Hour, -3),
		closedTrade(t, "NVDA", 49*time.Hour, 8),
		openTrade(t, "SPY", 2*time.Hour), // skipped by both consumers
	}

	summary := Aggregate(trades)
	points := BuildEquityCurve(trades, ByDay, time.UTC)
	require.NotEmpty(t, points)
	assert.InDelta(t, summary.TotalPNL, points[len(points)-1].Cumulative, 1e-9)
}

func TestBuildEquityCurve_Idempotent(t *testing.T) {
	trades := []*ComputedTrade{
		closedTrade(t, "AAPL", 0, 10),
		closedTrade(t, "TSLA", 26*time.Hour, -3),
	}

	first := BuildEquityCurve(trades, ByDay, time.UTC)
	second := BuildEquityCurve(trades, ByDay, time.UTC)
	assert.Equal(t, first, second)
}

func TestGranularityFor(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, loc)

	day, err := ResolveFilter(FilterToday, now, loc)
	require.NoError(t, err)
	assert.Equal(t, ByHour, GranularityFor(day))

	week, err := ResolveFilter(FilterThisWeek, now, loc)
	require.NoError(t, err)
	assert.Equal(t, ByDay, GranularityFor(week))

	all, err := ResolveFilter(FilterAll, now, loc)
	require.NoError(t, err)
	assert.Equal(t, ByDay, GranularityFor(all))
}
