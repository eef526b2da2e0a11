package analytics

import (
	"fmt"
	"time"

	"tradecraft/internal/ports"
)

// FilterToken is a named quick filter resolved relative to "now".
type FilterToken string

const (
	FilterAll       FilterToken = "all"
	FilterToday     FilterToken = "today"
	FilterYesterday FilterToken = "yesterday"
	FilterThisWeek  FilterToken = "this_week"
	FilterLastWeek  FilterToken = "last_week"
	FilterThisMonth FilterToken = "this_month"
	FilterLastMonth FilterToken = "last_month"
	FilterThisYear  FilterToken = "this_year"
	FilterLastYear  FilterToken = "last_year"
)

// DateRange is a resolved half-open [Start, End) interval in a single
// location. Either bound may be absent ("all" is unbounded on both sides).
type DateRange struct {
	Start    time.Time
	End      time.Time
	HasStart bool
	HasEnd   bool
	Loc      *time.Location
}

// ResolveFilter maps a quick-filter token and an evaluation instant to a
// concrete interval. Weeks are ISO weeks: Monday-start, so on a Sunday the
// week began six days earlier.
func ResolveFilter(token FilterToken, now time.Time, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	today := midnight(now)

	switch token {
	case FilterAll, "":
		return DateRange{Loc: loc}, nil
	case FilterToday:
		return bounded(today, today.AddDate(0, 0, 1), loc), nil
	case FilterYesterday:
		return bounded(today.AddDate(0, 0, -1), today, loc), nil
	case FilterThisWeek:
		start := weekStart(today)
		return bounded(start, start.AddDate(0, 0, 7), loc), nil
	case FilterLastWeek:
		end := weekStart(today)
		return bounded(end.AddDate(0, 0, -7), end, loc), nil
	case FilterThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return bounded(start, start.AddDate(0, 1, 0), loc), nil
	case FilterLastMonth:
		end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return bounded(end.AddDate(0, -1, 0), end, loc), nil
	case FilterThisYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return bounded(start, start.AddDate(1, 0, 0), loc), nil
	case FilterLastYear:
		end := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return bounded(end.AddDate(-1, 0, 0), end, loc), nil
	default:
		return DateRange{}, fmt.Errorf("%w: %q", ports.ErrUnknownFilter, token)
	}
}

// CustomRange builds an explicit [start, end) interval. Callers offering
// inclusive date pickers must extend end to the following midnight before
// calling.
func CustomRange(start, end time.Time, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}
	if !start.Before(end) {
		return DateRange{}, fmt.Errorf("%w: start=%s end=%s", ports.ErrInvalidInterval, start, end)
	}
	return bounded(start.In(loc), end.In(loc), loc), nil
}

func bounded(start, end time.Time, loc *time.Location) DateRange {
	return DateRange{Start: start, End: end, HasStart: true, HasEnd: true, Loc: loc}
}

// Contains reports whether ts falls inside the interval; absent bounds
// always match.
func (r DateRange) Contains(ts time.Time) bool {
	if r.HasStart && ts.Before(r.Start) {
		return false
	}
	if r.HasEnd && !ts.Before(r.End) {
		return false
	}
	return true
}

// Bounded reports whether both ends of the interval are set.
func (r DateRange) Bounded() bool {
	return r.HasStart && r.HasEnd
}

// SingleDay reports whether the interval covers at most one calendar day,
// which switches equity-curve bucketing from days to hours.
func (r DateRange) SingleDay() bool {
	return r.Bounded() && !r.End.After(r.Start.AddDate(0, 0, 1))
}

// Location returns the range's location, defaulting to time.Local.
func (r DateRange) Location() *time.Location {
	if r.Loc == nil {
		return time.Local
	}
	return r.Loc
}

// FilterTrades keeps the trades whose entry-leg timestamp falls inside the
// range. Entry time is the canonical inclusion key for every consumer;
// equity-curve ordering alone uses exit time.
func FilterTrades(trades []*ComputedTrade, r DateRange) []*ComputedTrade {
	if !r.HasStart && !r.HasEnd {
		return trades
	}
	kept := make([]*ComputedTrade, 0, len(trades))
	for _, ct := range trades {
		if r.Contains(ct.EntryTime) {
			kept = append(kept, ct)
		}
	}
	return kept
}

// midnight truncates t to the start of its calendar day.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// weekStart returns the Monday midnight of the ISO week containing day.
func weekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}
