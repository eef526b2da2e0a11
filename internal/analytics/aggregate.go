package analytics

import (
	"sort"
	"time"

	"tradecraft/internal/domain"
)

// NoTagsBucket groups trades that carry no tags in the per-tag breakdown.
const NoTagsBucket = "--NO TAGS--"

// Summary holds the aggregate statistics over one filtered trade
// collection. Pointer fields are nil when the statistic is undefined (empty
// group or zero denominator); callers render "-" instead of 0.
type Summary struct {
	TotalTrades    int
	Wins           int
	Losses         int
	BreakEvenCount int
	OpenCount      int

	WinRate      *float64 // wins/(wins+losses)*100 over closed trades only
	AvgWin       *float64
	AvgLoss      *float64 // signed, i.e. negative
	TotalPNL     float64  // open trades contribute zero
	ProfitFactor *float64
	Expectancy   *float64

	WinStreak  int
	LossStreak int

	TopWin  *TradeExtreme
	TopLoss *TradeExtreme

	AvgHoldWin  *time.Duration
	AvgHoldLoss *time.Duration

	AvgDailyVolume  *float64 // trades per distinct entry day
	AvgPositionSize *float64 // mean opening-leg quantity
}

// TradeExtreme reports the single best or worst trade.
type TradeExtreme struct {
	TradeID   string
	Symbol    string
	PNL       float64
	ReturnPct *float64
}

// GroupStat is one row of a per-tag or per-symbol breakdown.
type GroupStat struct {
	Key          string
	Trades       int
	TotalPNL     float64  // summed over closed trades in the group
	AvgReturnPct *float64 // mean return over closed trades; nil if none
	WeightedPct  float64  // group trade count / total trade count * 100
}

// Aggregate reduces a filtered collection of computed trades to summary
// statistics. Streaks scan oldest to newest by entry time; the input slice
// is not mutated.
func Aggregate(trades []*ComputedTrade) *Summary {
	s := &Summary{}
	if len(trades) == 0 {
		return s
	}

	ordered := make([]*ComputedTrade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EntryTime.Before(ordered[j].EntryTime)
	})

	var (
		winSum, lossSum       float64
		winHold, lossHold     time.Duration
		winStreak, lossStreak int
		sizeSum               float64
		entryDays             = make(map[string]struct{})
	)

	for _, ct := range ordered {
		s.TotalTrades++
		sizeSum += ct.Trade.EntryLeg().Quantity
		entryDays[ct.EntryTime.Format("2006-01-02")] = struct{}{}

		switch ct.Status {
		case domain.StatusWin:
			s.Wins++
			winSum += *ct.RealizedPNL
			winHold += *ct.Holding
			winStreak++
			lossStreak = 0
			if s.TopWin == nil || *ct.RealizedPNL > s.TopWin.PNL {
				s.TopWin = extremeOf(ct)
			}
		case domain.StatusLoss:
			s.Losses++
			lossSum += *ct.RealizedPNL
			lossHold += *ct.Holding
			lossStreak++
			winStreak = 0
			if s.TopLoss == nil || *ct.RealizedPNL < s.TopLoss.PNL {
				s.TopLoss = extremeOf(ct)
			}
		case domain.StatusBreakEven:
			s.BreakEvenCount++
			winStreak = 0
			lossStreak = 0
		default:
			s.OpenCount++
			winStreak = 0
			lossStreak = 0
		}
		if winStreak > s.WinStreak {
			s.WinStreak = winStreak
		}
		if lossStreak > s.LossStreak {
			s.LossStreak = lossStreak
		}
		if ct.RealizedPNL != nil {
			s.TotalPNL += *ct.RealizedPNL
		}
	}

	if s.Wins > 0 {
		avg := winSum / float64(s.Wins)
		s.AvgWin = &avg
		hold := winHold / time.Duration(s.Wins)
		s.AvgHoldWin = &hold
	}
	if s.Losses > 0 {
		avg := lossSum / float64(s.Losses)
		s.AvgLoss = &avg
		hold := lossHold / time.Duration(s.Losses)
		s.AvgHoldLoss = &hold
	}
	if decided := s.Wins + s.Losses; decided > 0 {
		rate := float64(s.Wins) / float64(decided) * 100
		s.WinRate = &rate
	}
	if lossSum != 0 {
		pf := winSum / -lossSum
		s.ProfitFactor = &pf
	}
	if closed := s.Wins + s.Losses + s.BreakEvenCount; closed > 0 {
		// Rates here are fractions of the closed-trade count, not of
		// all trades; break-even trades dilute both terms.
		var avgWin, avgLoss float64
		if s.AvgWin != nil {
			avgWin = *s.AvgWin
		}
		if s.AvgLoss != nil {
			avgLoss = *s.AvgLoss
		}
		exp := avgWin*float64(s.Wins)/float64(closed) + avgLoss*float64(s.Losses)/float64(closed)
		s.Expectancy = &exp
	}
	if len(entryDays) > 0 {
		vol := float64(s.TotalTrades) / float64(len(entryDays))
		s.AvgDailyVolume = &vol
	}
	size := sizeSum / float64(s.TotalTrades)
	s.AvgPositionSize = &size

	return s
}

func extremeOf(ct *ComputedTrade) *TradeExtreme {
	return &TradeExtreme{
		TradeID:   ct.Trade.ID,
		Symbol:    ct.Trade.Symbol,
		PNL:       *ct.RealizedPNL,
		ReturnPct: ct.ReturnPct,
	}
}

// GroupByTag breaks the collection down per tag. A trade with several tags
// contributes its full count to each of them, so weighted percentages may
// sum past 100; a trade with none lands in the NoTagsBucket row.
func GroupByTag(trades []*ComputedTrade) []GroupStat {
	return groupBy(trades, func(ct *ComputedTrade) []string {
		if len(ct.Trade.Tags) == 0 {
			return []string{NoTagsBucket}
		}
		return ct.Trade.Tags
	})
}

// GroupBySymbol breaks the collection down per instrument symbol.
func GroupBySymbol(trades []*ComputedTrade) []GroupStat {
	return groupBy(trades, func(ct *ComputedTrade) []string {
		return []string{ct.Trade.Symbol}
	})
}

type groupAccum struct {
	trades    int
	pnl       float64
	retSum    float64
	retTrades int
}

func groupBy(trades []*ComputedTrade, keysOf func(*ComputedTrade) []string) []GroupStat {
	groups := make(map[string]*groupAccum)
	for _, ct := range trades {
		for _, key := range keysOf(ct) {
			g := groups[key]
			if g == nil {
				g = &groupAccum{}
				groups[key] = g
			}
			g.trades++
			if ct.RealizedPNL != nil {
				g.pnl += *ct.RealizedPNL
			}
			if ct.ReturnPct != nil {
				g.retSum += *ct.ReturnPct
				g.retTrades++
			}
		}
	}

	rows := make([]GroupStat, 0, len(groups))
	for key, g := range groups {
		row := GroupStat{
			Key:         key,
			Trades:      g.trades,
			TotalPNL:    g.pnl,
			WeightedPct: float64(g.trades) / float64(len(trades)) * 100,
		}
		if g.retTrades > 0 {
			avg := g.retSum / float64(g.retTrades)
			row.AvgReturnPct = &avg
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

// WeekdayPNL is realized P&L summed by the exit leg's day of week.
type WeekdayPNL struct {
	Day string
	PNL float64
}

// PNLByWeekday sums closed-trade P&L per exit weekday. All seven rows are
// emitted, Monday first, zero-filled.
func PNLByWeekday(trades []*ComputedTrade) []WeekdayPNL {
	byDay := make(map[time.Weekday]float64)
	for _, ct := range trades {
		if ct.RealizedPNL == nil || ct.ExitTime == nil {
			continue
		}
		byDay[ct.ExitTime.Weekday()] += *ct.RealizedPNL
	}
	days := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
	rows := make([]WeekdayPNL, 0, len(days))
	for _, d := range days {
		rows = append(rows, WeekdayPNL{Day: d.String(), PNL: byDay[d]})
	}
	return rows
}

// HourPNL is realized P&L summed by the exit leg's hour of day.
type HourPNL struct {
	Hour int
	PNL  float64
}

// PNLByHour sums closed-trade P&L per exit hour. Only hours with at least
// one closed trade are emitted, ascending.
func PNLByHour(trades []*ComputedTrade) []HourPNL {
	byHour := make(map[int]float64)
	for _, ct := range trades {
		if ct.RealizedPNL == nil || ct.ExitTime == nil {
			continue
		}
		byHour[ct.ExitTime.Hour()] += *ct.RealizedPNL
	}
	rows := make([]HourPNL, 0, len(byHour))
	for hour, pnl := range byHour {
		rows = append(rows, HourPNL{Hour: hour, PNL: pnl})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Hour < rows[j].Hour })
	return rows
}
