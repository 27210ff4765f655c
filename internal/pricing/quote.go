package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type CurrencyScale int32

const DefaultCurrencyScale CurrencyScale = 2

// Tolerance absorbs client-side float rounding when comparing totals.
var Tolerance = decimal.RequireFromString("0.01")

type RoomRate struct {
	RoomID string          `json:"roomId"`
	Type   string          `json:"type"`
	Price  decimal.Decimal `json:"price"`
}

type Line struct {
	RoomID  string          `json:"roomId"`
	Type    string          `json:"type"`
	Nightly decimal.Decimal `json:"nightly"`
	Amount  decimal.Decimal `json:"amount"`
}

type Quote struct {
	Nights int             `json:"nights"`
	Lines  []Line          `json:"lines"`
	Total  decimal.Decimal `json:"total"`
}

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

// Nights counts calendar nights between two dates. Same-day stays count as one.
func Nights(checkIn, checkOut time.Time) (int, error) {
	in := checkIn.UTC().Truncate(24 * time.Hour)
	out := checkOut.UTC().Truncate(24 * time.Hour)
	if out.Before(in) {
		return 0, ValidationError{Field: "checkOut", Message: "check-out is before check-in"}
	}
	n := int(out.Sub(in).Hours() / 24)
	if n == 0 {
		n = 1
	}
	return n, nil
}

// Compute prices each room for every night. The result is informational:
// bookings keep the total the client submitted.
func Compute(rates []RoomRate, checkIn, checkOut time.Time, scale CurrencyScale) (*Quote, error) {
	if len(rates) == 0 {
		return nil, ValidationError{Field: "roomIds", Message: "at least one room is required"}
	}
	nights, err := Nights(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if scale <= 0 {
		scale = DefaultCurrencyScale
	}

	n := decimal.NewFromInt(int64(nights))
	q := &Quote{Nights: nights, Lines: make([]Line, 0, len(rates)), Total: decimal.Zero}
	for _, r := range rates {
		if r.Price.IsNegative() {
			return nil, ValidationError{Field: "roomIds", Message: "room price must be >= 0"}
		}
		amt := r.Price.Mul(n).Round(int32(scale))
		q.Lines = append(q.Lines, Line{RoomID: r.RoomID, Type: r.Type, Nightly: r.Price, Amount: amt})
		q.Total = q.Total.Add(amt)
	}
	q.Total = q.Total.Round(int32(scale))
	return q, nil
}

// Matches reports whether a client-submitted total agrees with the quote.
func (q *Quote) Matches(clientTotal decimal.Decimal) bool {
	return q.Total.Sub(clientTotal).Abs().LessThanOrEqual(Tolerance)
}
