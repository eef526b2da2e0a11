package ports

import (
	"context"
	"time"

	"tradecraft/internal/domain"
)

// TradeQuery narrows a listing to a time window. A nil bound leaves that
// side unbounded. Since/Until are compared against the entry-leg timestamp
// as a half-open [Since, Until) interval.
type TradeQuery struct {
	Since *time.Time
	Until *time.Time
}

// TradeRepository defines the interface for storing and retrieving journal
// trades together with their legs and tags.
type TradeRepository interface {
	// Create saves a new trade (with its legs and tags) and returns its ID.
	Create(ctx context.Context, trade *domain.Trade) (string, error)
	// Update modifies a trade's metadata (journal entry, tags).
	Update(ctx context.Context, trade *domain.Trade) error
	// Delete removes a trade; its legs and tags are cascade-deleted.
	Delete(ctx context.Context, userID, tradeID string) error
	// FindByID retrieves one trade scoped to its owner.
	// Returns nil, nil if not found.
	FindByID(ctx context.Context, userID, tradeID string) (*domain.Trade, error)
	// FindByUser retrieves all trades for a user, optionally restricted by
	// the query window, ordered by entry-leg time ascending.
	FindByUser(ctx context.Context, userID string, q TradeQuery) ([]*domain.Trade, error)
	// AppendLeg adds a closing (or scale-in) leg to an existing trade and
	// returns its assigned ID.
	AppendLeg(ctx context.Context, userID, tradeID string, leg *domain.Leg) (int64, error)
}
