package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"trademind/internal/errors"
	"trademind/internal/models"
	"trademind/pkg/utils"
)

// ReadTrades parses trades from CSV in the WriteTrades layout. Only symbol,
// entry_price, quantity and entry_date are required. Rows that fail to parse
// are skipped and reported together in the returned error; the trades that
// did parse are returned alongside it.
func ReadTrades(r io.Reader, loc *time.Location) ([]models.Trade, error) {
	if loc == nil {
		loc = time.Local
	}

	var rows []*TradeRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to read trades: %w", err)
	}

	trades := make([]models.Trade, 0, len(rows))
	var errs error
	for i, row := range rows {
		t, err := row.Trade(loc)
		if err != nil {
			// Row numbers count the header as row 1.
			errs = multierr.Append(errs, errors.NewRowError(i+2, err))
			continue
		}
		trades = append(trades, t)
	}
	return trades, errs
}

// Trade converts a CSV row back into a trade. The status is derived from the
// exit price when the column is empty.
func (row *TradeRow) Trade(loc *time.Location) (models.Trade, error) {
	t := models.Trade{
		ID:         strings.TrimSpace(row.ID),
		Symbol:     strings.ToUpper(strings.TrimSpace(row.Symbol)),
		Type:       models.TradeTypeStock,
		Side:       models.SideLong,
		Notes:      row.Notes,
		Emotions:   splitTags(row.Emotions),
		Mistakes:   splitTags(row.Mistakes),
		Strategies: splitTags(row.Strategies),
		Tags:       splitTags(row.Tags),
	}
	if t.Symbol == "" {
		return t, errors.NewValidationError("symbol", row.Symbol, "symbol is required")
	}

	if row.Type != "" {
		typ, ok := models.ParseTradeType(strings.ToUpper(row.Type))
		if !ok {
			return t, errors.NewValidationError("type", row.Type, "must be STOCK or OPTION")
		}
		t.Type = typ
	}
	if row.Side != "" {
		side, ok := models.ParseTradeSide(strings.ToUpper(row.Side))
		if !ok {
			return t, errors.NewValidationError("side", row.Side, "must be LONG or SHORT")
		}
		t.Side = side
	}

	var err error
	if t.EntryPrice, err = parseNumber("entry_price", row.EntryPrice, true); err != nil {
		return t, err
	}
	if t.Quantity, err = parseNumber("quantity", row.Quantity, true); err != nil {
		return t, err
	}
	if t.Fees, err = parseNumber("fees", row.Fees, false); err != nil {
		return t, err
	}
	if t.EntryDate, err = parseDate("entry_date", row.EntryDate, loc); err != nil {
		return t, err
	}

	if strings.TrimSpace(row.ExitPrice) != "" {
		exit, err := parseNumber("exit_price", row.ExitPrice, true)
		if err != nil {
			return t, err
		}
		t.ExitPrice = models.Float(exit)
	}
	if strings.TrimSpace(row.ExitDate) != "" {
		exitDate, err := parseDate("exit_date", row.ExitDate, loc)
		if err != nil {
			return t, err
		}
		t.ExitDate = models.Time(exitDate)
	}

	switch {
	case row.Status != "":
		status, ok := models.ParseTradeStatus(strings.ToUpper(row.Status))
		if !ok {
			return t, errors.NewValidationError("status", row.Status, "must be OPEN or CLOSED")
		}
		t.Status = status
	case t.ExitPrice != nil:
		t.Status = models.StatusClosed
	default:
		t.Status = models.StatusOpen
	}
	if t.Status == models.StatusClosed && t.ExitDate == nil {
		return t, errors.NewValidationError("exit_date", row.ExitDate, "closed trades need an exit date")
	}

	if t.Type == models.TradeTypeOption && (row.OptionType != "" || row.Strike != "") {
		od := &models.OptionDetails{Expiration: strings.TrimSpace(row.Expiration)}
		if row.OptionType != "" {
			ot, ok := models.ParseOptionType(strings.ToUpper(row.OptionType))
			if !ok {
				return t, errors.NewValidationError("option_type", row.OptionType, "must be CALL or PUT")
			}
			od.OptionType = ot
		}
		if od.Strike, err = parseNumber("strike", row.Strike, false); err != nil {
			return t, err
		}
		t.OptionDetails = od
	}
	return t, nil
}

func parseNumber(field, s string, required bool) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if required {
			return 0, errors.NewValidationError(field, s, "value is required")
		}
		return 0, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, errors.NewValidationError(field, s, "not a number")
	}
	v, _ := d.Float64()
	return v, nil
}

func parseDate(field, s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.NewValidationError(field, s, "date is required")
	}
	t, err := utils.ParseDateTime(s, loc)
	if err != nil {
		return time.Time{}, errors.NewValidationError(field, s, "unrecognised date")
	}
	return t, nil
}

func splitTags(s string) []string {
	var out []string
	for _, tag := range strings.Split(s, tagSeparator) {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
