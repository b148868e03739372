package journal

import "golang.org/x/exp/slices"

// Suggested tag vocabularies offered by the trade form. Free-text tags
// outside these lists are accepted.
var (
	Emotions = []string{"Calm", "Fear", "Greed", "FOMO", "Excited", "Anxious", "Confident", "Impatient"}

	Mistakes = []string{
		"Chasing",
		"No Stop Loss",
		"Over-leveraged",
		"Early Exit",
		"Late Entry",
		"Averaging Down",
		"Revenge Trade",
		"Ignored Setup",
		"FOMO",
		"More than 3 Trades",
		"No strategy",
	}

	Strategies = []string{
		"Breakout",
		"Mean Reversion",
		"Trend Following",
		"Support/Resistance",
		"EMA Cross",
		"VWAP Bounce",
		"Scalp",
		"Gap Fill",
		"200 EMA support",
		"PIVOT Resistance",
		"PIVOT Support",
		"EMA Retested",
	}

	// Symbols are the preset instruments; anything else is a custom symbol.
	Symbols = []string{"NIFTY 50", "BANKNIFTY", "SENSEX", "GOLD", "BTC", "ETH"}
)

// IsPresetSymbol reports whether symbol is one of the preset instruments.
func IsPresetSymbol(symbol string) bool {
	return slices.Contains(Symbols, symbol)
}

// NormalizeTags trims tags, drops blanks and removes repeats while keeping
// the first occurrence, the way a toggle list behaves.
func NormalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = trimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
