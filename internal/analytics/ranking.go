package analytics

import (
	"golang.org/x/exp/slices"
)

// DefaultTopSymbols and DefaultRecentWeeks bound the symbol and weekly views.
const (
	DefaultTopSymbols  = 10
	DefaultRecentWeeks = 12
)

// SortByPnLDesc returns a copy of buckets ordered by P&L, highest first.
// Equal P&L keeps the input order.
func SortByPnLDesc(buckets []Bucket) []Bucket {
	out := slices.Clone(buckets)
	slices.SortStableFunc(out, func(a, b Bucket) int {
		return compareFloat(b.PnL, a.PnL)
	})
	return out
}

// SortByPnLAsc returns a copy of buckets ordered by P&L, biggest loss first.
func SortByPnLAsc(buckets []Bucket) []Bucket {
	out := slices.Clone(buckets)
	slices.SortStableFunc(out, func(a, b Bucket) int {
		return compareFloat(a.PnL, b.PnL)
	})
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Extremes returns the first and last bucket of an already ordered list.
// ok is false when the list is empty.
func Extremes(sorted []Bucket) (first, last Bucket, ok bool) {
	if len(sorted) == 0 {
		return Bucket{}, Bucket{}, false
	}
	return sorted[0], sorted[len(sorted)-1], true
}

// BestWorst picks the first bucket with the highest P&L and the first with
// the lowest. ok is false when there are no buckets, which views render as
// "no data".
func BestWorst(buckets []Bucket) (best, worst Bucket, ok bool) {
	if len(buckets) == 0 {
		return Bucket{}, Bucket{}, false
	}
	return SortByPnLDesc(buckets)[0], SortByPnLAsc(buckets)[0], true
}

// MostFrequentMistake returns the mistake bucket with the highest count,
// ignoring the disciplined sentinel. Ties keep input order.
func MostFrequentMistake(mistakes []Bucket) (Bucket, bool) {
	var tagged []Bucket
	for _, b := range mistakes {
		if !CategoryMistake.IsSentinel(b.Key) {
			tagged = append(tagged, b)
		}
	}
	if len(tagged) == 0 {
		return Bucket{}, false
	}
	slices.SortStableFunc(tagged, func(a, b Bucket) int {
		return b.Count - a.Count
	})
	return tagged[0], true
}

// TotalMistakeLoss sums the losing P&L of every tagged mistake bucket.
// The result is zero or negative.
func TotalMistakeLoss(mistakes []Bucket) float64 {
	var total float64
	for _, b := range mistakes {
		if CategoryMistake.IsSentinel(b.Key) || b.PnL >= 0 {
			continue
		}
		total += b.PnL
	}
	return total
}

// TopSymbols returns at most n symbol buckets by P&L descending. n <= 0
// returns all of them.
func TopSymbols(symbols []Bucket, n int) []Bucket {
	sorted := SortByPnLDesc(symbols)
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// RecentWeeks keeps the n most recent weekly buckets, newest first, ordered
// by reverse lexicographic week key.
func RecentWeeks(weeks []Bucket, n int) []Bucket {
	out := slices.Clone(weeks)
	slices.SortStableFunc(out, func(a, b Bucket) int {
		switch {
		case a.Key > b.Key:
			return -1
		case a.Key < b.Key:
			return 1
		default:
			return 0
		}
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
