package domain

import (
	"errors"
	"sort"
	"time"
)

// MinForecastDays is the minimum number of distinct calendar days a series
// must contain before a forecast may be attempted.
const MinForecastDays = 2

// ErrNotEnoughData rejects forecast attempts on series with fewer than
// MinForecastDays distinct dates. Its text is part of the HTTP contract and
// is returned to callers verbatim.
var ErrNotEnoughData = errors.New("Not enough data to forecast (need at least 2 days).")

// DailyPoint is the aggregated net cash flow for one calendar day.
type DailyPoint struct {
	Date time.Time
	Net  float64
}

// DailySeries is an ordered daily net-cash-flow series: strictly increasing
// by date, one entry per distinct calendar day present in the input. Days
// absent from the input are not filled in.
type DailySeries []DailyPoint

// Sum returns the total net cash flow across the series.
func (s DailySeries) Sum() float64 {
	var total float64
	for _, p := range s {
		total += p.Net
	}
	return total
}

// Last returns the date of the final point in the series.
func (s DailySeries) Last() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].Date
}

// SpanDays returns the number of calendar days between the first and last
// points, inclusive of neither endpoint (a two-consecutive-day series spans 1).
func (s DailySeries) SpanDays() int {
	if len(s) < 2 {
		return 0
	}
	return int(s[len(s)-1].Date.Sub(s[0].Date) / (24 * time.Hour))
}

// BuildDailySeries collapses raw transaction records into a DailySeries.
// For each record it parses transaction_date, defaults missing debit/credit
// to 0, and computes net = credit - debit; records are then grouped by
// calendar date (time component discarded) with net summed per group, and
// the result is ordered ascending by date. The grouping is order-independent:
// permuting the input does not change the output. A record whose date cannot
// be parsed fails the whole build with a *ValidationError.
func BuildDailySeries(records []TransactionRecord) (DailySeries, error) {
	totals := make(map[time.Time]float64, len(records))

	for i, record := range records {
		t, err := ParseTransactionDate(record.TransactionDate)
		if err != nil {
			return nil, &ValidationError{Index: i, Field: "transaction_date", Value: record.TransactionDate}
		}
		totals[dayOf(t)] += record.Net()
	}

	series := make(DailySeries, 0, len(totals))
	for date, net := range totals {
		series = append(series, DailyPoint{Date: date, Net: net})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	return series, nil
}

// dayOf truncates a timestamp to its own wall-clock calendar day, normalized
// to UTC midnight so map keys compare by date alone.
func dayOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
