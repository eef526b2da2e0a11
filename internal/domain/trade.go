package domain

import (
	"fmt"
	"time"
)

// Leg represents a single fill event within a trade. The first leg of a
// trade opens the position; every later leg closes quantity against it.
type Leg struct {
	ID       int64     // Unique identifier for the leg (usually from DB)
	TradeID  string    // Identifier of the owning trade
	Action   LegAction // buy or sell
	Time     time.Time // Timestamp of the fill
	Quantity float64   // Filled quantity (positive)
	Price    float64   // Fill price (positive)
	Fee      float64   // Commission/fee, always a cost regardless of side
}

// Trade represents one logical position composed of one or more legs on the
// same symbol. Status, P&L and holding duration are not stored here; they
// are derived by the analytics package.
type Trade struct {
	ID           string    // Unique identifier (UUID)
	UserID       string    // Owning user; trades are never shared
	Symbol       string    // Instrument symbol (e.g. "AAPL")
	AssetType    AssetType // stock, option, future, crypto
	CreatedAt    time.Time // When the trade record was created
	JournalEntry string    // Free-text notes
	Tags         []string  // User-assigned labels, may be empty
	Legs         []Leg     // Ordered chronologically; legs[0] is the entry
}

// EntryLeg returns the opening leg, or nil for a malformed legless trade.
func (t *Trade) EntryLeg() *Leg {
	if len(t.Legs) == 0 {
		return nil
	}
	return &t.Legs[0]
}

// ExitLeg returns the final closing leg, or nil while the trade is open.
func (t *Trade) ExitLeg() *Leg {
	if len(t.Legs) < 2 {
		return nil
	}
	return &t.Legs[len(t.Legs)-1]
}

// ClosingLegs returns every leg after the entry.
func (t *Trade) ClosingLegs() []Leg {
	if len(t.Legs) < 2 {
		return nil
	}
	return t.Legs[1:]
}

// IsOpen reports whether the trade has no closing leg yet.
func (t *Trade) IsOpen() bool {
	return len(t.Legs) < 2
}

// Validate checks the structural invariants enforced at creation time: at
// least one leg, and no leg with a negative quantity, price or fee. A trade
// violating these never reaches the analytics engine.
func (t *Trade) Validate() error {
	if t.UserID == "" {
		return fmt.Errorf("trade %s: user ID is required", t.ID)
	}
	if t.Symbol == "" {
		return fmt.Errorf("trade %s: symbol is required", t.ID)
	}
	if len(t.Legs) == 0 {
		return fmt.Errorf("trade %s: at least one leg (the opening leg) is required", t.ID)
	}
	for i, leg := range t.Legs {
		if err := leg.Validate(); err != nil {
			return fmt.Errorf("trade %s: leg %d: %w", t.ID, i, err)
		}
	}
	return nil
}

// Validate checks a single leg's invariants.
func (l *Leg) Validate() error {
	if l.Action != Buy && l.Action != Sell {
		return fmt.Errorf("invalid action %q", l.Action)
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %v", l.Quantity)
	}
	if l.Price < 0 {
		return fmt.Errorf("price cannot be negative, got %v", l.Price)
	}
	if l.Fee < 0 {
		return fmt.Errorf("fee cannot be negative, got %v", l.Fee)
	}
	if l.Time.IsZero() {
		return fmt.Errorf("leg timestamp is required")
	}
	return nil
}
