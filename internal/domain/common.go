package domain

// LegAction represents the side of a fill (BUY or SELL).
type LegAction string

const (
	Buy  LegAction = "buy"
	Sell LegAction = "sell"
)

// AssetType classifies the instrument a trade was taken on.
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetOption AssetType = "option"
	AssetFuture AssetType = "future"
	AssetCrypto AssetType = "crypto"
)

// TradeStatus represents the computed outcome of a trade.
type TradeStatus string

const (
	// StatusOpen applies to any trade without a closing leg, regardless
	// of every other field.
	StatusOpen      TradeStatus = "OPEN"
	StatusWin       TradeStatus = "WIN"
	StatusLoss      TradeStatus = "LOSS"
	StatusBreakEven TradeStatus = "BREAK-EVEN"
)

// IsClosed reports whether the status belongs to a trade with realized P&L.
func (s TradeStatus) IsClosed() bool {
	return s == StatusWin || s == StatusLoss || s == StatusBreakEven
}
