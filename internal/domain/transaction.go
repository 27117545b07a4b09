package domain

import (
	"fmt"
	"time"
)

// DefaultHorizonDays is the forecast horizon applied when a request omits "days".
const DefaultHorizonDays = 30

// TransactionRecord represents one raw financial movement as supplied by the
// caller. Debit and Credit are pointers so that an omitted or null field can
// be distinguished from an explicit zero; both default to 0 when absent.
// Records are immutable once received.
type TransactionRecord struct {
	TransactionDate string   `json:"transaction_date" validate:"required"`
	Debit           *float64 `json:"debit" validate:"omitempty,gte=0"`
	Credit          *float64 `json:"credit" validate:"omitempty,gte=0"`
}

// Net returns credit minus debit for the record, treating missing fields as 0.
func (r TransactionRecord) Net() float64 {
	var debit, credit float64
	if r.Debit != nil {
		debit = *r.Debit
	}
	if r.Credit != nil {
		credit = *r.Credit
	}
	return credit - debit
}

// ForecastRequest is the inbound payload for a forecast run.
type ForecastRequest struct {
	Transactions []TransactionRecord `json:"transactions" validate:"required,dive"`
	Days         *int                `json:"days" validate:"omitempty,gte=0"`
}

// Horizon returns the requested number of future days, defaulting when unset.
func (fr ForecastRequest) Horizon() int {
	if fr.Days == nil {
		return DefaultHorizonDays
	}
	return *fr.Days
}

// ForecastPoint is a single predicted daily net cash flow.
type ForecastPoint struct {
	Date      time.Time
	Predicted float64
}

// dateLayouts are the accepted transaction_date formats, tried in order.
// Time-of-day, when present, is discarded during daily grouping.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTransactionDate parses an ISO-8601 date or timestamp string.
func ParseTransactionDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// ValidationError reports a record that failed structural validation during
// aggregation. Index is the record's position in the request payload.
type ValidationError struct {
	Index int
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("transaction %d: invalid %s %q", e.Index, e.Field, e.Value)
}
