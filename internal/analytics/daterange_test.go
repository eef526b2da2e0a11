package analytics

import (
	"testing"
	"time"

	"tradecraft/internal/domain"
	"tradecraft/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestResolveFilter_Today(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	now := time.Date(2025, 6, 4, 15, 45, 0, 0, loc) // Wednesday afternoon

	r, err := ResolveFilter(FilterToday, now, loc)
	require.NoError(t, err)

	assert.True(t, r.Start.Equal(time.Date(2025, 6, 4, 0, 0, 0, 0, loc)))
	assert.True(t, r.End.Equal(time.Date(2025, 6, 5, 0, 0, 0, 0, loc)))
	assert.True(t, r.SingleDay())
}

func TestResolveFilter_Yesterday(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	now := time.Date(2025, 6, 4, 15, 45, 0, 0, loc)

	r, err := ResolveFilter(FilterYesterday, now, loc)
	require.NoError(t, err)

	assert.True(t, r.Start.Equal(time.Date(2025, 6, 3, 0, 0, 0, 0, loc)))
	assert.True(t, r.End.Equal(time.Date(2025, 6, 4, 0, 0, 0, 0, loc)))
}

func TestResolveFilter_ThisWeekOnWednesday(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	// Wednesday June 4 2025; the week began Monday June 2.
	now := time.Date(2025, 6, 4, 10, 0, 0, 0, loc)

	r, err := ResolveFilter(FilterThisWeek, now, loc)
	require.NoError(t, err)

	assert.True(t, r.Start.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, loc)))
	assert.True(t, r.End.Equal(time.Date(2025, 6, 9, 0, 0, 0, 0, loc)))
	assert.False(t, r.SingleDay())
}

func TestResolveFilter_ThisWeekOnSunday(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	// Sunday June 8 2025 still belongs to the week of Monday June 2.
	now := time.Date(2025, 6, 8, 10, 0, 0, 0, loc)

	r, err := ResolveFilter(FilterThisWeek, now, loc)
	require.NoError(t, err)

	assert.True(t, r.Start.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, loc)))
	assert.True(t, r.End.Equal(time.Date(2025, 6, 9, 0, 0, 0, 0, loc)))
}

func TestResolveFilter_LastWeek(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	now := time.Date(2025, 6, 4, 10, 0, 0, 0, loc)

	r, err := ResolveFilter(FilterLastWeek, now, loc)
	require.NoError(t, err)

	assert.True(t, r.Start.Equal(time.Date(2025, 5, 26, 0, 0, 0, 0, loc)))
	assert.True(t, r.End.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, loc)))
}

func TestResolveFilter_MonthAndYear(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, loc)

	tests := []struct {
		token      FilterToken
		start, end time.Time
	}{
		{FilterThisMonth, time.Date(2025, 1, 1, 0, 0, 0, 0, loc), time.Date(2025, 2, 1, 0, 0, 0, 0, loc)},
		{FilterLastMonth, time.Date(2024, 12, 1, 0, 0, 0, 0, loc), time.Date(2025, 1, 1, 0, 0, 0, 0, loc)},
		{FilterThisYear, time.Date(2025, 1, 1, 0, 0, 0, 0, loc), time.Date(2026, 1, 1, 0, 0, 0, 0, loc)},
		{FilterLastYear, time.Date(2024, 1, 1, 0, 0, 0, 0, loc), time.Date(2025, 1, 1, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(string(tt.token), func(t *testing.T) {
			r, err := ResolveFilter(tt.token, now, loc)
			require.NoError(t, err)
			assert.True(t, r.Start.Equal(tt.start), "start: got %v want %v", r.Start, tt.start)
			assert.True(t, r.End.Equal(tt.end), "end: got %v want %v", r.End, tt.end)
		})
	}
}

func TestResolveFilter_AllIsUnbounded(t *testing.T) {
	r, err := ResolveFilter(FilterAll, time.Now(), time.UTC)
	require.NoError(t, err)
	assert.False(t, r.HasStart)
	assert.False(t, r.HasEnd)
	assert.True(t, r.Contains(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestResolveFilter_UnknownToken(t *testing.T) {
	_, err := ResolveFilter("fortnight", time.Now(), time.UTC)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrUnknownFilter)
}

func TestCustomRange_RejectsInvertedBounds(t *testing.T) {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	_, err := CustomRange(start, start, time.UTC)
	assert.ErrorIs(t, err, ports.ErrInvalidInterval)
}

func TestContains_HalfOpen(t *testing.T) {
	loc := time.UTC
	r, err := CustomRange(
		time.Date(2025, 6, 2, 0, 0, 0, 0, loc),
		time.Date(2025, 6, 3, 0, 0, 0, 0, loc),
		loc,
	)
	require.NoError(t, err)

	assert.True(t, r.Contains(time.Date(2025, 6, 2, 0, 0, 0, 0, loc)), "start is inclusive")
	assert.True(t, r.Contains(time.Date(2025, 6, 2, 23, 59, 59, 0, loc)))
	assert.False(t, r.Contains(time.Date(2025, 6, 3, 0, 0, 0, 0, loc)), "end is exclusive")
}

func TestFilterTrades_UsesEntryTime(t *testing.T) {
	loc := time.UTC
	inside := makeTrade(
		leg("buy", time.Date(2025, 6, 2, 10, 0, 0, 0, loc), 1, 10, 0),
		// Exits outside the window; entry time alone decides inclusion.
		leg("sell", time.Date(2025, 6, 9, 10, 0, 0, 0, loc), 1, 12, 0),
	)
	outside := makeTrade(leg("buy", time.Date(2025, 5, 1, 10, 0, 0, 0, loc), 1, 10, 0))

	computed, skipped := NormalizeAll([]*domain.Trade{inside, outside})
	require.Empty(t, skipped)

	r, err := CustomRange(
		time.Date(2025, 6, 2, 0, 0, 0, 0, loc),
		time.Date(2025, 6, 7, 0, 0, 0, 0, loc),
		loc,
	)
	require.NoError(t, err)

	kept := FilterTrades(computed, r)
	require.Len(t, kept, 1)
	assert.True(t, kept[0].EntryTime.Equal(time.Date(2025, 6, 2, 10, 0, 0, 0, loc)))
}
