// Package models provides domain models for the trading journal.
package models

// TradeType represents the instrument class of a trade.
type TradeType string

const (
	TradeTypeStock  TradeType = "STOCK"
	TradeTypeOption TradeType = "OPTION"
)

// OptionType represents the right of an option contract.
type OptionType string

const (
	OptionTypeCall OptionType = "CALL"
	OptionTypePut  OptionType = "PUT"
)

// TradeSide represents the direction of a position.
type TradeSide string

const (
	SideLong  TradeSide = "LONG"
	SideShort TradeSide = "SHORT"
)

// TradeStatus represents the lifecycle state of a trade.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "OPEN"
	StatusClosed TradeStatus = "CLOSED"
)

// ParseTradeType parses a trade type, case-sensitively matching the stored form.
func ParseTradeType(s string) (TradeType, bool) {
	switch TradeType(s) {
	case TradeTypeStock, TradeTypeOption:
		return TradeType(s), true
	}
	return "", false
}

// ParseTradeSide parses a trade side.
func ParseTradeSide(s string) (TradeSide, bool) {
	switch TradeSide(s) {
	case SideLong, SideShort:
		return TradeSide(s), true
	}
	return "", false
}

// ParseTradeStatus parses a trade status.
func ParseTradeStatus(s string) (TradeStatus, bool) {
	switch TradeStatus(s) {
	case StatusOpen, StatusClosed:
		return TradeStatus(s), true
	}
	return "", false
}

// ParseOptionType parses an option right.
func ParseOptionType(s string) (OptionType, bool) {
	switch OptionType(s) {
	case OptionTypeCall, OptionTypePut:
		return OptionType(s), true
	}
	return "", false
}
