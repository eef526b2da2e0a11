package httpapi

import (
	"time"

	"tradecraft/internal/analytics"
	"tradecraft/internal/domain"
)

// --- Request payloads ---

type legPayload struct {
	Action   string    `json:"action" validate:"required,oneof=buy sell"`
	Time     time.Time `json:"time" validate:"required"`
	Quantity float64   `json:"quantity" validate:"required,gt=0"`
	Price    float64   `json:"price" validate:"gte=0"`
	Fee      float64   `json:"fee" validate:"gte=0"`
}

type createTradeRequest struct {
	Symbol       string       `json:"symbol" validate:"required"`
	AssetType    string       `json:"asset_type" validate:"required,oneof=stock option future crypto"`
	JournalEntry string       `json:"journal_entry"`
	Tags         []string     `json:"tags" validate:"dive,required"`
	Legs         []legPayload `json:"legs" validate:"required,min=1,dive"`
}

type updateTradeRequest struct {
	JournalEntry string   `json:"journal_entry"`
	Tags         []string `json:"tags" validate:"dive,required"`
}

func (p legPayload) toDomain() domain.Leg {
	return domain.Leg{
		Action:   domain.LegAction(p.Action),
		Time:     p.Time,
		Quantity: p.Quantity,
		Price:    p.Price,
		Fee:      p.Fee,
	}
}

// --- Response payloads ---

// tradeResponse is one computed per-trade row. Undefined values are null,
// never zero.
type tradeResponse struct {
	ID           string     `json:"id"`
	Symbol       string     `json:"symbol"`
	AssetType    string     `json:"asset_type"`
	Status       string     `json:"status"`
	Side         string     `json:"side"`
	Quantity     float64    `json:"quantity"`
	EntryPrice   float64    `json:"entry_price"`
	ExitPrice    *float64   `json:"exit_price"`
	OpenedTotal  float64    `json:"opened_total"`
	ClosedTotal  *float64   `json:"closed_total"`
	RealizedPNL  *float64   `json:"realized_pnl"`
	ReturnPct    *float64   `json:"return_pct"`
	EntryTime    time.Time  `json:"entry_time"`
	ExitTime     *time.Time `json:"exit_time"`
	Hold         *string    `json:"hold"`
	JournalEntry string     `json:"journal_entry"`
	Tags         []string   `json:"tags"`
}

func toTradeResponse(ct *analytics.ComputedTrade) tradeResponse {
	t := ct.Trade
	entry := t.EntryLeg()
	resp := tradeResponse{
		ID:           t.ID,
		Symbol:       t.Symbol,
		AssetType:    string(t.AssetType),
		Status:       string(ct.Status),
		Side:         string(entry.Action),
		Quantity:     entry.Quantity,
		EntryPrice:   entry.Price,
		OpenedTotal:  ct.OpenedTotal,
		ClosedTotal:  ct.ClosedTotal,
		RealizedPNL:  ct.RealizedPNL,
		ReturnPct:    ct.ReturnPct,
		EntryTime:    ct.EntryTime,
		ExitTime:     ct.ExitTime,
		JournalEntry: t.JournalEntry,
		Tags:         t.Tags,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if exit := t.ExitLeg(); exit != nil {
		resp.ExitPrice = &exit.Price
	}
	if ct.Holding != nil {
		hold := analytics.FormatHolding(*ct.Holding)
		resp.Hold = &hold
	}
	return resp
}

func toTradeResponses(computed []*analytics.ComputedTrade) []tradeResponse {
	rows := make([]tradeResponse, 0, len(computed))
	for _, ct := range computed {
		rows = append(rows, toTradeResponse(ct))
	}
	return rows
}

type extremeResponse struct {
	TradeID   string   `json:"trade_id"`
	Symbol    string   `json:"symbol"`
	PNL       float64  `json:"pnl"`
	ReturnPct *float64 `json:"return_pct"`
}

// summaryResponse mirrors analytics.Summary; holding averages carry both
// the raw seconds and the display form.
type summaryResponse struct {
	TotalTrades    int `json:"total_trades"`
	Wins           int `json:"wins"`
	Losses         int `json:"losses"`
	BreakEvenCount int `json:"break_even_count"`
	OpenCount      int `json:"open_count"`

	WinRate      *float64 `json:"win_rate"`
	AvgWin       *float64 `json:"avg_win"`
	AvgLoss      *float64 `json:"avg_loss"`
	TotalPNL     float64  `json:"total_pnl"`
	ProfitFactor *float64 `json:"profit_factor"`
	Expectancy   *float64 `json:"expectancy"`

	WinStreak  int `json:"win_streak"`
	LossStreak int `json:"loss_streak"`

	TopWin  *extremeResponse `json:"top_win"`
	TopLoss *extremeResponse `json:"top_loss"`

	AvgHoldWinSeconds  *float64 `json:"avg_hold_win_seconds"`
	AvgHoldWin         *string  `json:"avg_hold_win"`
	AvgHoldLossSeconds *float64 `json:"avg_hold_loss_seconds"`
	AvgHoldLoss        *string  `json:"avg_hold_loss"`

	AvgDailyVolume  *float64 `json:"avg_daily_volume"`
	AvgPositionSize *float64 `json:"avg_position_size"`
}

func toSummaryResponse(s *analytics.Summary) summaryResponse {
	resp := summaryResponse{
		TotalTrades:     s.TotalTrades,
		Wins:            s.Wins,
		Losses:          s.Losses,
		BreakEvenCount:  s.BreakEvenCount,
		OpenCount:       s.OpenCount,
		WinRate:         s.WinRate,
		AvgWin:          s.AvgWin,
		AvgLoss:         s.AvgLoss,
		TotalPNL:        s.TotalPNL,
		ProfitFactor:    s.ProfitFactor,
		Expectancy:      s.Expectancy,
		WinStreak:       s.WinStreak,
		LossStreak:      s.LossStreak,
		AvgDailyVolume:  s.AvgDailyVolume,
		AvgPositionSize: s.AvgPositionSize,
	}
	if s.TopWin != nil {
		resp.TopWin = &extremeResponse{
			TradeID:   s.TopWin.TradeID,
			Symbol:    s.TopWin.Symbol,
			PNL:       s.TopWin.PNL,
			ReturnPct: s.TopWin.ReturnPct,
		}
	}
	if s.TopLoss != nil {
		resp.TopLoss = &extremeResponse{
			TradeID:   s.TopLoss.TradeID,
			Symbol:    s.TopLoss.Symbol,
			PNL:       s.TopLoss.PNL,
			ReturnPct: s.TopLoss.ReturnPct,
		}
	}
	if s.AvgHoldWin != nil {
		secs := s.AvgHoldWin.Seconds()
		display := analytics.FormatHolding(*s.AvgHoldWin)
		resp.AvgHoldWinSeconds = &secs
		resp.AvgHoldWin = &display
	}
	if s.AvgHoldLoss != nil {
		secs := s.AvgHoldLoss.Seconds()
		display := analytics.FormatHolding(*s.AvgHoldLoss)
		resp.AvgHoldLossSeconds = &secs
		resp.AvgHoldLoss = &display
	}
	return resp
}

type groupRow struct {
	Key          string   `json:"key"`
	Trades       int      `json:"trades"`
	TotalPNL     float64  `json:"total_pnl"`
	AvgReturnPct *float64 `json:"avg_return_pct"`
	WeightedPct  float64  `json:"weighted_pct"`
}

func toGroupRows(stats []analytics.GroupStat) []groupRow {
	rows := make([]groupRow, 0, len(stats))
	for _, g := range stats {
		rows = append(rows, groupRow{
			Key:          g.Key,
			Trades:       g.Trades,
			TotalPNL:     g.TotalPNL,
			AvgReturnPct: g.AvgReturnPct,
			WeightedPct:  g.WeightedPct,
		})
	}
	return rows
}

type equityPointResponse struct {
	Label      string    `json:"label"`
	Time       time.Time `json:"time"`
	Delta      float64   `json:"delta"`
	Cumulative float64   `json:"cumulative"`
}

func toEquityResponses(points []analytics.EquityPoint) []equityPointResponse {
	rows := make([]equityPointResponse, 0, len(points))
	for _, p := range points {
		rows = append(rows, equityPointResponse{
			Label:      p.Label,
			Time:       p.Time,
			Delta:      p.Delta,
			Cumulative: p.Cumulative,
		})
	}
	return rows
}

type weekdayRow struct {
	Day string  `json:"day"`
	PNL float64 `json:"pnl"`
}

type hourRow struct {
	Hour int     `json:"hour"`
	PNL  float64 `json:"pnl"`
}

func toWeekdayRows(rows []analytics.WeekdayPNL) []weekdayRow {
	out := make([]weekdayRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, weekdayRow{Day: r.Day, PNL: r.PNL})
	}
	return out
}

func toHourRows(rows []analytics.HourPNL) []hourRow {
	out := make([]hourRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, hourRow{Hour: r.Hour, PNL: r.PNL})
	}
	return out
}

type dashboardResponse struct {
	Trades      []tradeResponse       `json:"trades"`
	Summary     summaryResponse       `json:"summary"`
	ByTag       []groupRow            `json:"by_tag"`
	BySymbol    []groupRow            `json:"by_symbol"`
	ByWeekday   []weekdayRow          `json:"by_weekday"`
	ByHour      []hourRow             `json:"by_hour"`
	EquityCurve []equityPointResponse `json:"equity_curve"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type createdResponse struct {
	ID string `json:"id"`
}
