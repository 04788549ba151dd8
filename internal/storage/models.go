// Package storage persists conversation sessions and completed-search
// history. Sessions are append-only: a chat's current session is always
// the row with the greatest start timestamp, and older rows are kept as
// superseded records.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/m3rciful/hotelbot/internal/hotels"
)

// Kind selects which fields a search collects and which sort order it
// sends upstream.
type Kind string

const (
	KindLowPrice  Kind = "low"
	KindHighPrice Kind = "high"
	KindBestDeal  Kind = "best"
)

// Command returns the bot command that starts a search of this kind.
func (k Kind) Command() string {
	switch k {
	case KindHighPrice:
		return "/highprice"
	case KindBestDeal:
		return "/bestdeal"
	default:
		return "/lowprice"
	}
}

// Status tracks a session's lifecycle. An interrupted chain leaves an
// explicit aborted row instead of a silently orphaned one.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// Session is the working memory of one multi-step dialogue. Fields fill
// in one at a time as the conversation advances; the row becomes
// immutable once the search executes.
type Session struct {
	ID          int64   `db:"id"`
	ChatID      int64   `db:"chat_id"`
	Kind        Kind    `db:"kind"`
	Status      Status  `db:"status"`
	Lang        string  `db:"lang"`
	City        string  `db:"city"`
	LocationID  string  `db:"location_id"`
	HotelCount  int     `db:"hotel_count"`
	Persons     string  `db:"persons"`
	CheckIn     string  `db:"check_in"`
	CheckOut    string  `db:"check_out"`
	Currency    string  `db:"currency"`
	PriceMin    int     `db:"price_min"`
	PriceMax    int     `db:"price_max"`
	MaxDistance float64 `db:"max_distance"`
	StartedAt   int64   `db:"started_at"`
}

// History is the immutable result set of one completed search. StartedAt
// matches the originating session row and joins the two.
type History struct {
	ID        int64  `db:"id"`
	ChatID    int64  `db:"chat_id"`
	Offers    []byte `db:"offers"`
	StartedAt int64  `db:"started_at"`
}

// DecodeOffers restores the (caption, id) pairs stored in Offers.
func (h *History) DecodeOffers() ([]hotels.Offer, error) {
	var offers []hotels.Offer
	if err := json.Unmarshal(h.Offers, &offers); err != nil {
		return nil, fmt.Errorf("history decode: %w", err)
	}
	return offers, nil
}

// EncodeOffers serializes a result list for a History row.
func EncodeOffers(offers []hotels.Offer) ([]byte, error) {
	data, err := json.Marshal(offers)
	if err != nil {
		return nil, fmt.Errorf("history encode: %w", err)
	}
	return data, nil
}
