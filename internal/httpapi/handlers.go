package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tradecraft/internal/analytics"
	"tradecraft/internal/app"
	"tradecraft/internal/domain"
	"tradecraft/internal/ports"
)

type contextKey string

const userKey contextKey = "userID"

// requireUser extracts the owner scope from the X-User-ID header. This is
// parameter passing, not authentication; an auth layer would sit in front.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if userID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: "X-User-ID header is required"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, userID)))
	})
}

func userFrom(r *http.Request) string {
	userID, _ := r.Context().Value(userKey).(string)
	return userID
}

func (h *Handler) createTrade(w http.ResponseWriter, r *http.Request) {
	var req createTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}

	trade := &domain.Trade{
		UserID:       userFrom(r),
		Symbol:       strings.ToUpper(req.Symbol),
		AssetType:    domain.AssetType(req.AssetType),
		JournalEntry: req.JournalEntry,
		Tags:         req.Tags,
	}
	for _, leg := range req.Legs {
		trade.Legs = append(trade.Legs, leg.toDomain())
	}

	id, err := h.svc.RecordTrade(r.Context(), trade)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, createdResponse{ID: id})
}

func (h *Handler) listTrades(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	computed, err := h.svc.ListTrades(r.Context(), userFrom(r), filter)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, toTradeResponses(computed))
}

func (h *Handler) getTrade(w http.ResponseWriter, r *http.Request) {
	ct, err := h.svc.GetTrade(r.Context(), userFrom(r), chi.URLParam(r, "tradeID"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, toTradeResponse(ct))
}

func (h *Handler) updateTrade(w http.ResponseWriter, r *http.Request) {
	var req updateTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}
	err := h.svc.UpdateJournal(r.Context(), userFrom(r), chi.URLParam(r, "tradeID"), req.JournalEntry, req.Tags)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *Handler) deleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTrade(r.Context(), userFrom(r), chi.URLParam(r, "tradeID")); err != nil {
		h.renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *Handler) appendLeg(w http.ResponseWriter, r *http.Request) {
	var req legPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}
	leg := req.toDomain()
	if err := h.svc.AppendLeg(r.Context(), userFrom(r), chi.URLParam(r, "tradeID"), &leg); err != nil {
		h.renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]int64{"leg_id": leg.ID})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	summary, err := h.svc.Stats(r.Context(), userFrom(r), filter)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, toSummaryResponse(summary))
}

func (h *Handler) statsByTag(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	rows, err := h.svc.StatsByTag(r.Context(), userFrom(r), filter)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, toGroupRows(rows))
}

func (h *Handler) statsBySymbol(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	rows, err := h.svc.StatsBySymbol(r.Context(), userFrom(r), filter)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, toGroupRows(rows))
}

func (h *Handler) equityCurve(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	points, err := h.svc.EquityCurve(r.Context(), userFrom(r), filter)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, toEquityResponses(points))
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	d, err := h.svc.Dashboard(r.Context(), userFrom(r), filter)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, dashboardResponse{
		Trades:      toTradeResponses(d.Trades),
		Summary:     toSummaryResponse(d.Summary),
		ByTag:       toGroupRows(d.ByTag),
		BySymbol:    toGroupRows(d.BySymbol),
		ByWeekday:   toWeekdayRows(d.ByWeekday),
		ByHour:      toHourRows(d.ByHour),
		EquityCurve: toEquityResponses(d.EquityCurve),
	})
}

// parseFilter reads the working-set selection from query parameters:
// ?filter= quick token, or ?start=&end= explicit bounds (RFC3339, or plain
// dates whose inclusive end extends to the following midnight), plus
// optional ?symbols= and ?tags= CSV narrowing. Plain dates resolve to
// midnights in the service's time zone, the same zone quick-filter tokens
// resolve in; a typed date and a token must select the same instants.
func (h *Handler) parseFilter(r *http.Request) (app.Filter, error) {
	q := r.URL.Query()
	loc := h.svc.Location()
	f := app.Filter{
		Token:   analytics.FilterToken(q.Get("filter")),
		Symbols: splitCSV(q.Get("symbols")),
		Tags:    splitCSV(q.Get("tags")),
	}

	if startStr := q.Get("start"); startStr != "" {
		start, _, err := parseTimeParam(startStr, loc)
		if err != nil {
			return f, err
		}
		f.Start = &start
	}
	if endStr := q.Get("end"); endStr != "" {
		end, dateOnly, err := parseTimeParam(endStr, loc)
		if err != nil {
			return f, err
		}
		if dateOnly {
			// Inclusive date at the UI boundary, half-open internally.
			end = end.AddDate(0, 0, 1)
		}
		f.End = &end
	}
	return f, nil
}

func parseTimeParam(s string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	if t, err = time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true, nil
	}
	if t, err = time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, errBadTime(s)
}

func errBadTime(s string) error {
	return &badRequestError{msg: "invalid time value " + s + ": expected YYYY-MM-DD or RFC3339"}
}

type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// renderError maps service errors to status codes; unexpected ones are
// logged and hidden behind a 500.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var badReq *badRequestError
	switch {
	case errors.As(err, &badReq),
		errors.Is(err, ports.ErrValidation),
		errors.Is(err, ports.ErrInvalidRequest),
		errors.Is(err, ports.ErrUnknownFilter),
		errors.Is(err, ports.ErrInvalidInterval):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: err.Error()})
	case errors.Is(err, ports.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorResponse{Error: err.Error()})
	case errors.Is(err, ports.ErrPermissionDenied):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, errorResponse{Error: err.Error()})
	default:
		h.logger.Error(r.Context(), err, "Unhandled error serving request", map[string]interface{}{"path": r.URL.Path})
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "internal error"})
	}
}
