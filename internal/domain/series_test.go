package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildDailySeries_CollapsesDuplicateDates(t *testing.T) {
	records := []TransactionRecord{
		{TransactionDate: "2024-01-01", Credit: fptr(30)},
		{TransactionDate: "2024-01-01", Debit: fptr(10)},
	}

	series, err := BuildDailySeries(records)
	require.NoError(t, err)

	require.Len(t, series, 1)
	assert.Equal(t, day(2024, time.January, 1), series[0].Date)
	assert.InDelta(t, 20.0, series[0].Net, 1e-9)
}

func TestBuildDailySeries_AscendingByDate(t *testing.T) {
	records := []TransactionRecord{
		{TransactionDate: "2024-02-10", Credit: fptr(5)},
		{TransactionDate: "2024-01-03", Debit: fptr(7)},
		{TransactionDate: "2024-01-20", Credit: fptr(12)},
		{TransactionDate: "2024-01-03", Credit: fptr(1)},
	}

	series, err := BuildDailySeries(records)
	require.NoError(t, err)

	require.Len(t, series, 3)
	for i := 1; i < len(series); i++ {
		assert.True(t, series[i-1].Date.Before(series[i].Date),
			"series must be strictly increasing, got %v then %v", series[i-1].Date, series[i].Date)
	}
}

func TestBuildDailySeries_OrderIndependent(t *testing.T) {
	records := []TransactionRecord{
		{TransactionDate: "2024-01-01", Credit: fptr(100)},
		{TransactionDate: "2024-01-02", Debit: fptr(50)},
		{TransactionDate: "2024-01-01", Debit: fptr(25)},
		{TransactionDate: "2024-01-03", Credit: fptr(20)},
		{TransactionDate: "2024-01-02", Credit: fptr(80)},
	}

	reversed := make([]TransactionRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	forward, err := BuildDailySeries(records)
	require.NoError(t, err)
	backward, err := BuildDailySeries(reversed)
	require.NoError(t, err)

	assert.Equal(t, forward, backward)
}

func TestBuildDailySeries_ConservesTotals(t *testing.T) {
	records := []TransactionRecord{
		{TransactionDate: "2024-01-01", Credit: fptr(100.25)},
		{TransactionDate: "2024-01-01", Debit: fptr(40.75)},
		{TransactionDate: "2024-01-05", Debit: fptr(13.5)},
		{TransactionDate: "2024-01-09", Credit: fptr(7)},
		{TransactionDate: "2024-01-09"},
	}

	var want float64
	for _, r := range records {
		want += r.Net()
	}

	series, err := BuildDailySeries(records)
	require.NoError(t, err)

	assert.InDelta(t, want, series.Sum(), 1e-9)
}

func TestBuildDailySeries_MissingAmountsDefaultToZero(t *testing.T) {
	implicit := []TransactionRecord{
		{TransactionDate: "2024-01-01"},
		{TransactionDate: "2024-01-02", Credit: fptr(50)},
	}
	explicit := []TransactionRecord{
		{TransactionDate: "2024-01-01", Debit: fptr(0), Credit: fptr(0)},
		{TransactionDate: "2024-01-02", Debit: fptr(0), Credit: fptr(50)},
	}

	fromImplicit, err := BuildDailySeries(implicit)
	require.NoError(t, err)
	fromExplicit, err := BuildDailySeries(explicit)
	require.NoError(t, err)

	assert.Equal(t, fromExplicit, fromImplicit)
}

func TestBuildDailySeries_DiscardsTimeOfDay(t *testing.T) {
	records := []TransactionRecord{
		{TransactionDate: "2024-03-05", Credit: fptr(100)},
		{TransactionDate: "2024-03-05T18:30:00Z", Debit: fptr(40)},
		{TransactionDate: "2024-03-05 09:15:00", Credit: fptr(5)},
	}

	series, err := BuildDailySeries(records)
	require.NoError(t, err)

	require.Len(t, series, 1)
	assert.Equal(t, day(2024, time.March, 5), series[0].Date)
	assert.InDelta(t, 65.0, series[0].Net, 1e-9)
}

func TestBuildDailySeries_InvalidDate(t *testing.T) {
	records := []TransactionRecord{
		{TransactionDate: "2024-01-01", Credit: fptr(1)},
		{TransactionDate: "first of March", Debit: fptr(2)},
	}

	_, err := BuildDailySeries(records)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
	assert.Equal(t, 1, verr.Index)
	assert.Equal(t, "transaction_date", verr.Field)
}

func TestBuildDailySeries_Empty(t *testing.T) {
	series, err := BuildDailySeries(nil)
	require.NoError(t, err)
	assert.Empty(t, series)
	assert.Less(t, len(series), MinForecastDays)
}

func TestDailySeries_SpanDays(t *testing.T) {
	tests := []struct {
		name   string
		series DailySeries
		want   int
	}{
		{"empty", nil, 0},
		{"single day", DailySeries{{Date: day(2024, time.January, 1)}}, 0},
		{"consecutive days", DailySeries{
			{Date: day(2024, time.January, 1)},
			{Date: day(2024, time.January, 2)},
		}, 1},
		{"gapped series", DailySeries{
			{Date: day(2024, time.January, 1)},
			{Date: day(2024, time.January, 10)},
			{Date: day(2024, time.January, 31)},
		}, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.series.SpanDays())
		})
	}
}
