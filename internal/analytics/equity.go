package analytics

import (
	"sort"
	"time"
)

// Granularity selects the equity-curve bucket width.
type Granularity string

const (
	ByDay  Granularity = "day"
	ByHour Granularity = "hour"
)

// EquityPoint is one step of the cumulative P&L series.
type EquityPoint struct {
	Label      string    // bucket label for display
	Time       time.Time // bucket start
	Delta      float64   // P&L realized inside this bucket
	Cumulative float64   // running total including this bucket
}

const (
	dayLabel  = "01/02/2006"
	hourLabel = "01/02/2006 15:00"
)

// GranularityFor picks hour buckets for single-day ranges (today,
// yesterday) and day buckets for anything wider.
func GranularityFor(r DateRange) Granularity {
	if r.SingleDay() {
		return ByHour
	}
	return ByDay
}

// BuildEquityCurve produces the running total of realized P&L over time.
//
// Only closed trades participate; open trades are skipped entirely. Trades
// are ordered by exit time, since the curve reflects when P&L was realized,
// and all trades closing in the same bucket collapse into one step. Buckets
// with no closed trades produce no point, so consecutive points may be
// non-adjacent in time. The running total starts at zero before the first
// bucket.
func BuildEquityCurve(trades []*ComputedTrade, gran Granularity, loc *time.Location) []EquityPoint {
	if loc == nil {
		loc = time.Local
	}

	type bucket struct {
		start time.Time
		pnl   float64
	}
	byStart := make(map[time.Time]*bucket)
	for _, ct := range trades {
		if ct.RealizedPNL == nil || ct.ExitTime == nil {
			continue
		}
		start := bucketStart(ct.ExitTime.In(loc), gran)
		b := byStart[start]
		if b == nil {
			b = &bucket{start: start}
			byStart[start] = b
		}
		b.pnl += *ct.RealizedPNL
	}
	if len(byStart) == 0 {
		return nil
	}

	buckets := make([]*bucket, 0, len(byStart))
	for _, b := range byStart {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].start.Before(buckets[j].start) })

	label := dayLabel
	if gran == ByHour {
		label = hourLabel
	}
	points := make([]EquityPoint, 0, len(buckets))
	var running float64
	for _, b := range buckets {
		running += b.pnl
		points = append(points, EquityPoint{
			Label:      b.start.Format(label),
			Time:       b.start,
			Delta:      b.pnl,
			Cumulative: running,
		})
	}
	return points
}

func bucketStart(t time.Time, gran Granularity) time.Time {
	if gran == ByHour {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
