package analytics

import "trademind/internal/models"

// Bucket accumulates the trades that share a grouping key.
// Breakeven trades count toward Count but neither Wins nor Losses.
type Bucket struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	PnL    float64 `json:"pnl"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
}

func (b *Bucket) add(pnl float64) {
	b.Count++
	b.PnL += pnl
	if pnl > 0 {
		b.Wins++
	} else if pnl < 0 {
		b.Losses++
	}
}

// WinRate returns Wins as a percentage of Count, 0 for an empty bucket.
func (b Bucket) WinRate() float64 {
	if b.Count == 0 {
		return 0
	}
	return float64(b.Wins) / float64(b.Count) * 100
}

// AvgPnL returns the mean gross P&L per trade, 0 for an empty bucket.
func (b Bucket) AvgPnL() float64 {
	if b.Count == 0 {
		return 0
	}
	return b.PnL / float64(b.Count)
}

// accumulator groups trades into buckets and remembers first-seen key order,
// which is the tie-break order for every later stable sort.
type accumulator struct {
	order   []string
	buckets map[string]*Bucket
}

func newAccumulator() *accumulator {
	return &accumulator{buckets: make(map[string]*Bucket)}
}

// seed registers an empty bucket so fixed domains keep their order.
func (a *accumulator) seed(key, label string) {
	if _, ok := a.buckets[key]; ok {
		return
	}
	a.buckets[key] = &Bucket{Key: key, Label: label}
	a.order = append(a.order, key)
}

func (a *accumulator) add(key, label string, pnl float64) {
	a.seed(key, label)
	a.buckets[key].add(pnl)
}

// addIfSeeded only accumulates into keys that were seeded beforehand.
func (a *accumulator) addIfSeeded(key string, pnl float64) bool {
	b, ok := a.buckets[key]
	if !ok {
		return false
	}
	b.add(pnl)
	return true
}

func (a *accumulator) list() []Bucket {
	out := make([]Bucket, 0, len(a.order))
	for _, k := range a.order {
		out = append(out, *a.buckets[k])
	}
	return out
}

func (a *accumulator) byKey() map[string]Bucket {
	out := make(map[string]Bucket, len(a.buckets))
	for k, b := range a.buckets {
		out[k] = *b
	}
	return out
}

// TagCategory names one of the free-text tag lists carried by a trade.
type TagCategory string

const (
	CategoryEmotion  TagCategory = "emotions"
	CategoryMistake  TagCategory = "mistakes"
	CategoryStrategy TagCategory = "strategies"
)

// Sentinel buckets for trades that carry no tag in a category.
const (
	NeutralEmotion     = "Neutral"
	DisciplinedMistake = "No Mistake (Disciplined)"
)

// Sentinel returns the bucket an untagged trade falls into, or "" when the
// category has no sentinel and untagged trades are left out.
func (c TagCategory) Sentinel() string {
	switch c {
	case CategoryEmotion:
		return NeutralEmotion
	case CategoryMistake:
		return DisciplinedMistake
	default:
		return ""
	}
}

// IsSentinel reports whether key is the category's untagged bucket.
func (c TagCategory) IsSentinel(key string) bool {
	s := c.Sentinel()
	return s != "" && key == s
}

// TagsFor returns the trade's tags in a category, substituting the sentinel
// for an empty list. Duplicate tags are kept as-is.
func TagsFor(t models.Trade, c TagCategory) []string {
	var tags []string
	switch c {
	case CategoryEmotion:
		tags = t.Emotions
	case CategoryMistake:
		tags = t.Mistakes
	case CategoryStrategy:
		tags = t.Strategies
	}
	if len(tags) == 0 {
		if s := c.Sentinel(); s != "" {
			return []string{s}
		}
		return nil
	}
	return tags
}
