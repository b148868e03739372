package models

import "time"

// Trade represents a single journaled trade.
type Trade struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Symbol        string         `json:"symbol"`
	Type          TradeType      `json:"type"`
	Side          TradeSide      `json:"side"`
	EntryPrice    float64        `json:"entry_price"`
	ExitPrice     *float64       `json:"exit_price,omitempty"`
	Quantity      float64        `json:"quantity"`
	EntryDate     time.Time      `json:"entry_date"`
	ExitDate      *time.Time     `json:"exit_date,omitempty"`
	Fees          float64        `json:"fees"`
	Status        TradeStatus    `json:"status"`
	Tags          []string       `json:"tags,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	OptionDetails *OptionDetails `json:"option_details,omitempty"`
	AIReview      *AIReview      `json:"ai_review,omitempty"`
	Attachments   []Attachment   `json:"attachments,omitempty"`
	Emotions      []string       `json:"emotions,omitempty"`
	Mistakes      []string       `json:"mistakes,omitempty"`
	Strategies    []string       `json:"strategies,omitempty"`
}

// IsClosed reports whether the trade has been closed.
func (t *Trade) IsClosed() bool {
	return t.Status == StatusClosed
}

// HasExit reports whether the trade carries a usable exit price.
// A zero exit price is treated as absent.
func (t *Trade) HasExit() bool {
	return t.ExitPrice != nil && *t.ExitPrice != 0
}

// OptionDetails carries contract details for option trades.
type OptionDetails struct {
	Strike     float64    `json:"strike"`
	Expiration string     `json:"expiration"`
	OptionType OptionType `json:"option_type"`
	Delta      *float64   `json:"delta,omitempty"`
	IV         *float64   `json:"iv,omitempty"`
	DTE        *int       `json:"dte,omitempty"`
}

// Attachment references an uploaded file linked to a trade.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// AIReview is a stored coaching review of a trade.
type AIReview struct {
	Score       float64  `json:"score"`
	Well        string   `json:"well"`
	Wrong       string   `json:"wrong"`
	Violations  bool     `json:"violations"`
	Improvement string   `json:"improvement"`
	Timestamp   int64    `json:"timestamp"`
	Sources     []Source `json:"sources,omitempty"`
}

// Source is a reference link attached to a review.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Time returns a pointer to t.
func Time(t time.Time) *time.Time {
	return &t
}
