// Package analytics is the trade performance engine: it derives per-trade
// outcomes, aggregate statistics and equity curves from raw journal trades.
// Every function here is pure; callers load trades first and render the
// results however they like.
package analytics

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"tradecraft/internal/domain"
)

// ComputedTrade is the canonical per-trade view derived from a raw trade.
// Pointer fields are nil when the underlying value is undefined (an open
// trade has no realized P&L); callers must render a placeholder, never zero.
type ComputedTrade struct {
	Trade *domain.Trade

	Status      domain.TradeStatus
	OpenedTotal float64        // entry cost including the entry fee
	ClosedTotal *float64       // closing proceeds net of fees; nil while open
	RealizedPNL *float64       // ClosedTotal - OpenedTotal; nil while open
	ReturnPct   *float64       // RealizedPNL / OpenedTotal * 100; nil while open or when OpenedTotal == 0
	Holding     *time.Duration // exit time - entry time; nil while open

	EntryTime time.Time  // opening-leg timestamp; the canonical filter key
	ExitTime  *time.Time // final-leg timestamp; orders the equity curve
}

// Normalize derives the computed view of one trade.
//
// The first leg opens the position; every later leg closes quantity against
// it, so a partial close or scale-out needs no special casing: closing
// proceeds are summed across all closing legs. A trade with fewer than two
// legs is OPEN regardless of any other field.
//
// Normalize assumes validated input but still fails fast on a legless or
// structurally invalid trade rather than producing NaN.
func Normalize(t *domain.Trade) (*ComputedTrade, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	entry := t.EntryLeg()
	ct := &ComputedTrade{
		Trade:       t,
		Status:      domain.StatusOpen,
		OpenedTotal: entry.Quantity*entry.Price + entry.Fee,
		EntryTime:   entry.Time,
	}

	closing := t.ClosingLegs()
	if len(closing) == 0 {
		return ct, nil
	}

	var closedTotal float64
	for _, leg := range closing {
		// Fees reduce proceeds on the closing side.
		closedTotal += leg.Quantity*leg.Price - leg.Fee
	}
	pnl := closedTotal - ct.OpenedTotal

	ct.ClosedTotal = &closedTotal
	ct.RealizedPNL = &pnl
	if ct.OpenedTotal != 0 {
		pct := pnl / ct.OpenedTotal * 100
		ct.ReturnPct = &pct
	}

	exit := t.ExitLeg()
	exitTime := exit.Time
	hold := exitTime.Sub(entry.Time)
	ct.ExitTime = &exitTime
	ct.Holding = &hold

	switch {
	case pnl > 0:
		ct.Status = domain.StatusWin
	case pnl < 0:
		ct.Status = domain.StatusLoss
	default:
		ct.Status = domain.StatusBreakEven
	}
	return ct, nil
}

// NormalizeAll normalizes a collection, excluding malformed trades instead
// of aborting the whole computation. Returned errors describe the excluded
// trades so the caller can log them.
func NormalizeAll(trades []*domain.Trade) ([]*ComputedTrade, []error) {
	computed := make([]*ComputedTrade, 0, len(trades))
	var skipped []error
	for _, t := range trades {
		ct, err := Normalize(t)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("excluding malformed trade: %w", err))
			continue
		}
		computed = append(computed, ct)
	}
	return computed, skipped
}

// FormatHolding renders a holding duration for display. Buckets: under a
// minute, under an hour, under a day, then days; hours and days are rounded
// to one decimal.
func FormatHolding(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "<1 MIN"
	case d < time.Hour:
		return fmt.Sprintf("%d MIN", int(d.Minutes()))
	case d < 24*time.Hour:
		return formatOneDecimal(d.Hours()) + " HRS"
	default:
		return formatOneDecimal(d.Hours()/24) + " DAYS"
	}
}

// formatOneDecimal rounds to one decimal and drops a trailing ".0".
func formatOneDecimal(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
