package journal

import (
	"math"
	"regexp"
	"strings"

	"trademind/internal/errors"
	"trademind/internal/models"
)

// Validation limits
const (
	maxSymbolLen = 24
	maxNotesLen  = 4000
	maxPrice     = 1e9
	maxQuantity  = 1e8
)

// Symbol pattern: uppercase letters, digits, spaces and a few separators
var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9 &._/-]*$`)

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSymbol upper-cases and trims a symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.Join(strings.Fields(symbol), " "))
}

// ValidateSymbol validates a normalized symbol.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return errors.NewValidationError("symbol", symbol, "symbol cannot be empty")
	}
	if len(symbol) > maxSymbolLen {
		return errors.NewValidationError("symbol", symbol, "symbol too long")
	}
	if !symbolPattern.MatchString(symbol) {
		return errors.NewValidationError("symbol", symbol, "invalid symbol format")
	}
	return nil
}

// ValidatePrice validates a price field. Entry prices must be positive.
func ValidatePrice(field string, price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return errors.NewValidationError(field, price, "must be a number")
	}
	if price <= 0 {
		return errors.NewValidationError(field, price, "must be positive")
	}
	if price > maxPrice {
		return errors.NewValidationError(field, price, "exceeds maximum allowed")
	}
	return nil
}

// ValidateQuantity validates a position size.
func ValidateQuantity(qty float64) error {
	if math.IsNaN(qty) || qty <= 0 {
		return errors.NewValidationError("quantity", qty, "quantity must be positive")
	}
	if qty > maxQuantity {
		return errors.NewValidationError("quantity", qty, "quantity exceeds maximum allowed")
	}
	return nil
}

// ValidateFees rejects negative fees.
func ValidateFees(fees float64) error {
	if math.IsNaN(fees) || fees < 0 {
		return errors.NewValidationError("fees", fees, "fees cannot be negative")
	}
	return nil
}

// ValidateTrade checks a complete trade before it is stored.
func ValidateTrade(t *models.Trade) error {
	if err := ValidateSymbol(t.Symbol); err != nil {
		return err
	}
	if _, ok := models.ParseTradeType(string(t.Type)); !ok {
		return errors.NewValidationError("type", t.Type, "must be STOCK or OPTION")
	}
	if _, ok := models.ParseTradeSide(string(t.Side)); !ok {
		return errors.NewValidationError("side", t.Side, "must be LONG or SHORT")
	}
	if _, ok := models.ParseTradeStatus(string(t.Status)); !ok {
		return errors.NewValidationError("status", t.Status, "must be OPEN or CLOSED")
	}
	if err := ValidatePrice("entry_price", t.EntryPrice); err != nil {
		return err
	}
	if err := ValidateQuantity(t.Quantity); err != nil {
		return err
	}
	if err := ValidateFees(t.Fees); err != nil {
		return err
	}
	if t.EntryDate.IsZero() {
		return errors.NewValidationError("entry_date", t.EntryDate, "entry date is required")
	}
	if t.ExitPrice != nil {
		if err := ValidatePrice("exit_price", *t.ExitPrice); err != nil {
			return err
		}
	}
	if t.Status == models.StatusClosed && (t.ExitPrice == nil || t.ExitDate == nil) {
		return errors.NewValidationError("exit_price", t.ExitPrice, "closed trades need an exit price and date")
	}
	if t.ExitDate != nil && t.ExitDate.Before(t.EntryDate) {
		return errors.NewValidationError("exit_date", *t.ExitDate, "exit date is before entry date")
	}
	if t.Type == models.TradeTypeOption && t.OptionDetails != nil {
		if _, ok := models.ParseOptionType(string(t.OptionDetails.OptionType)); !ok {
			return errors.NewValidationError("option_type", t.OptionDetails.OptionType, "must be CALL or PUT")
		}
	}
	if len(t.Notes) > maxNotesLen {
		return errors.NewValidationError("notes", len(t.Notes), "notes too long")
	}
	return nil
}
