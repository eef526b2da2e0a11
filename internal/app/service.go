package app

import (
	"context"
	"fmt"
	"time"

	"tradecraft/internal/analytics"
	"tradecraft/internal/domain"
	"tradecraft/internal/metrics"
	"tradecraft/internal/ports"
)

// JournalService orchestrates trade persistence and the analytics engine.
// It owns no identity: every call takes an explicit user ID and operates on
// that user's trades only.
type JournalService struct {
	logger ports.Logger
	repo   ports.TradeRepository
	loc    *time.Location
	now    func() time.Time // injectable clock for quick-filter resolution
}

// NewJournalService creates a new application service instance.
func NewJournalService(logger ports.Logger, repo ports.TradeRepository, loc *time.Location) (*JournalService, error) {
	if logger == nil || repo == nil {
		return nil, fmt.Errorf("missing required dependencies for JournalService")
	}
	if loc == nil {
		loc = time.Local
	}
	return &JournalService{
		logger: logger,
		repo:   repo,
		loc:    loc,
		now:    time.Now,
	}, nil
}

// Filter selects the working set for one analytics call. Either a named
// quick-filter token or explicit bounds; explicit bounds win when both are
// present. Symbols and Tags additionally narrow by instrument and label.
type Filter struct {
	Token   analytics.FilterToken
	Start   *time.Time
	End     *time.Time
	Symbols []string
	Tags    []string
}

// Dashboard bundles everything one filter change needs to render: the
// per-trade rows, the aggregate summary, breakdowns, and the equity curve.
type Dashboard struct {
	Trades      []*analytics.ComputedTrade
	Summary     *analytics.Summary
	ByTag       []analytics.GroupStat
	BySymbol    []analytics.GroupStat
	ByWeekday   []analytics.WeekdayPNL
	ByHour      []analytics.HourPNL
	EquityCurve []analytics.EquityPoint
}

// Location returns the time zone every calendar computation resolves in.
// Presentation layers must parse user-typed dates in this same zone so a
// typed date and a quick-filter token mean the same interval.
func (s *JournalService) Location() *time.Location {
	return s.loc
}

// RecordTrade validates and stores a new trade. A trade without legs is
// rejected here and never reaches the analytics engine.
func (s *JournalService) RecordTrade(ctx context.Context, trade *domain.Trade) (string, error) {
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = s.now()
	}
	if err := trade.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrValidation, err)
	}
	id, err := s.repo.Create(ctx, trade)
	if err != nil {
		return "", err
	}
	metrics.TradesCreated.WithLabelValues(string(trade.AssetType)).Inc()
	s.logger.Info(ctx, "Trade recorded", map[string]interface{}{"tradeID": id, "symbol": trade.Symbol, "user": trade.UserID})
	return id, nil
}

// AppendLeg adds a closing (or scale-in) fill to an existing trade.
func (s *JournalService) AppendLeg(ctx context.Context, userID, tradeID string, leg *domain.Leg) error {
	if err := leg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrValidation, err)
	}
	if _, err := s.repo.AppendLeg(ctx, userID, tradeID, leg); err != nil {
		return err
	}
	metrics.LegsAppended.Inc()
	s.logger.Info(ctx, "Leg appended", map[string]interface{}{"tradeID": tradeID, "action": leg.Action})
	return nil
}

// UpdateJournal replaces a trade's journal entry and tag set.
func (s *JournalService) UpdateJournal(ctx context.Context, userID, tradeID, journalEntry string, tags []string) error {
	trade, err := s.repo.FindByID(ctx, userID, tradeID)
	if err != nil {
		return err
	}
	if trade == nil {
		return fmt.Errorf("trade %s: %w", tradeID, ports.ErrNotFound)
	}
	trade.JournalEntry = journalEntry
	trade.Tags = tags
	return s.repo.Update(ctx, trade)
}

// DeleteTrade removes a trade and, through the schema, its legs and tags.
func (s *JournalService) DeleteTrade(ctx context.Context, userID, tradeID string) error {
	if err := s.repo.Delete(ctx, userID, tradeID); err != nil {
		return err
	}
	metrics.TradesDeleted.Inc()
	s.logger.Info(ctx, "Trade deleted", map[string]interface{}{"tradeID": tradeID})
	return nil
}

// GetTrade returns the computed view of one trade.
func (s *JournalService) GetTrade(ctx context.Context, userID, tradeID string) (*analytics.ComputedTrade, error) {
	trade, err := s.repo.FindByID(ctx, userID, tradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, fmt.Errorf("trade %s: %w", tradeID, ports.ErrNotFound)
	}
	ct, err := analytics.Normalize(trade)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrValidation, err)
	}
	return ct, nil
}

// ListTrades returns the filtered, normalized working set ordered by entry
// time. Malformed trades are excluded with a warning rather than aborting
// the whole computation.
func (s *JournalService) ListTrades(ctx context.Context, userID string, f Filter) ([]*analytics.ComputedTrade, error) {
	computed, _, err := s.workingSet(ctx, userID, f)
	return computed, err
}

// Stats computes the aggregate summary over the filtered working set.
func (s *JournalService) Stats(ctx context.Context, userID string, f Filter) (*analytics.Summary, error) {
	defer metrics.ObserveAnalytics("stats", time.Now())
	computed, _, err := s.workingSet(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return analytics.Aggregate(computed), nil
}

// StatsByTag computes the per-tag breakdown over the filtered working set.
func (s *JournalService) StatsByTag(ctx context.Context, userID string, f Filter) ([]analytics.GroupStat, error) {
	computed, _, err := s.workingSet(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return analytics.GroupByTag(computed), nil
}

// StatsBySymbol computes the per-symbol breakdown over the filtered working set.
func (s *JournalService) StatsBySymbol(ctx context.Context, userID string, f Filter) ([]analytics.GroupStat, error) {
	computed, _, err := s.workingSet(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return analytics.GroupBySymbol(computed), nil
}

// EquityCurve computes the cumulative P&L series, bucketed by hour for
// single-day ranges and by day otherwise.
func (s *JournalService) EquityCurve(ctx context.Context, userID string, f Filter) ([]analytics.EquityPoint, error) {
	defer metrics.ObserveAnalytics("equity_curve", time.Now())
	computed, rng, err := s.workingSet(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return analytics.BuildEquityCurve(computed, analytics.GranularityFor(rng), rng.Location()), nil
}

// Dashboard runs the full pipeline once: one repository read, one
// normalization pass, then every consumer over the same working set.
func (s *JournalService) Dashboard(ctx context.Context, userID string, f Filter) (*Dashboard, error) {
	defer metrics.ObserveAnalytics("dashboard", time.Now())
	computed, rng, err := s.workingSet(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Trades:      computed,
		Summary:     analytics.Aggregate(computed),
		ByTag:       analytics.GroupByTag(computed),
		BySymbol:    analytics.GroupBySymbol(computed),
		ByWeekday:   analytics.PNLByWeekday(computed),
		ByHour:      analytics.PNLByHour(computed),
		EquityCurve: analytics.BuildEquityCurve(computed, analytics.GranularityFor(rng), rng.Location()),
	}, nil
}

// workingSet loads, normalizes and filters the user's trades once per call;
// nothing is cached between invocations.
func (s *JournalService) workingSet(ctx context.Context, userID string, f Filter) ([]*analytics.ComputedTrade, analytics.DateRange, error) {
	rng, err := s.resolveRange(f)
	if err != nil {
		return nil, analytics.DateRange{}, err
	}

	q := ports.TradeQuery{}
	if rng.HasStart {
		q.Since = &rng.Start
	}
	if rng.HasEnd {
		q.Until = &rng.End
	}
	trades, err := s.repo.FindByUser(ctx, userID, q)
	if err != nil {
		return nil, rng, err
	}

	computed, skipped := analytics.NormalizeAll(trades)
	for _, skipErr := range skipped {
		metrics.MalformedTrades.Inc()
		s.logger.Warn(ctx, "Trade excluded from analytics", map[string]interface{}{"reason": skipErr.Error(), "user": userID})
	}

	// The repository already applied the window; re-applying keeps the
	// semantics identical for repositories that ignore the query hint.
	computed = analytics.FilterTrades(computed, rng)
	computed = filterSymbolsTags(computed, f.Symbols, f.Tags)
	return computed, rng, nil
}

func (s *JournalService) resolveRange(f Filter) (analytics.DateRange, error) {
	if f.Start != nil || f.End != nil {
		if f.Start == nil || f.End == nil {
			return analytics.DateRange{}, fmt.Errorf("%w: custom range needs both start and end", ports.ErrInvalidRequest)
		}
		return analytics.CustomRange(*f.Start, *f.End, s.loc)
	}
	return analytics.ResolveFilter(f.Token, s.now(), s.loc)
}

func filterSymbolsTags(trades []*analytics.ComputedTrade, symbols, tags []string) []*analytics.ComputedTrade {
	if len(symbols) == 0 && len(tags) == 0 {
		return trades
	}
	wantSymbol := toSet(symbols)
	wantTag := toSet(tags)
	kept := make([]*analytics.ComputedTrade, 0, len(trades))
	for _, ct := range trades {
		if len(wantSymbol) > 0 {
			if _, ok := wantSymbol[ct.Trade.Symbol]; !ok {
				continue
			}
		}
		if len(wantTag) > 0 && !hasAnyTag(ct.Trade.Tags, wantTag) {
			continue
		}
		kept = append(kept, ct)
	}
	return kept
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func hasAnyTag(tags []string, want map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := want[tag]; ok {
			return true
		}
	}
	return false
}
