package forecast

import (
	"fmt"
	"time"

	"github.com/tofunmi-festus/intelliflow-backend/internal/domain"
)

// seasonalitySpanDays is the minimum historical span, in calendar days,
// before a weekly component is estimated. Shorter series fit trend only.
const seasonalitySpanDays = 14

// Model is an additive daily cash-flow model: a linear trend over calendar
// days plus, when the series spans enough history, a day-of-week component.
// A Model is scoped to the single Fit call that produced it and holds no
// state beyond the fitted coefficients; fitting the same series twice yields
// identical models.
type Model struct {
	origin    time.Time
	intercept float64
	slope     float64
	seasonal  bool
	weekday   [7]float64
	rSquared  float64
}

// Fit estimates a fresh model from the series. The series must contain at
// least two distinct days; callers are expected to have applied the
// minimum-data guard already, so a shorter series is an error, not a
// degenerate fit.
func Fit(series domain.DailySeries) (*Model, error) {
	if len(series) < domain.MinForecastDays {
		return nil, fmt.Errorf("fit requires at least %d distinct days, got %d", domain.MinForecastDays, len(series))
	}

	origin := series[0].Date
	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, p := range series {
		xs[i] = daysSince(origin, p.Date)
		ys[i] = p.Net
	}

	slope, intercept := leastSquares(xs, ys)

	m := &Model{origin: origin, intercept: intercept, slope: slope}
	m.rSquared = rSquared(xs, ys, slope, intercept)

	if series.SpanDays() >= seasonalitySpanDays {
		m.fitWeekday(series, xs, ys)
	}

	return m, nil
}

// fitWeekday estimates the day-of-week component: the mean residual from the
// trend line per weekday, centered to zero mean across observed weekdays.
// A weekday never observed in the series contributes nothing.
func (m *Model) fitWeekday(series domain.DailySeries, xs, ys []float64) {
	var sums, counts [7]float64
	for i, p := range series {
		wd := int(p.Date.Weekday())
		sums[wd] += ys[i] - (m.intercept + m.slope*xs[i])
		counts[wd]++
	}

	var total float64
	var observed int
	for wd := range sums {
		if counts[wd] == 0 {
			continue
		}
		m.weekday[wd] = sums[wd] / counts[wd]
		total += m.weekday[wd]
		observed++
	}

	center := total / float64(observed)
	for wd := range m.weekday {
		if counts[wd] > 0 {
			m.weekday[wd] -= center
		}
	}

	m.seasonal = true
}

// Predict evaluates the model at the given date.
func (m *Model) Predict(date time.Time) float64 {
	predicted := m.intercept + m.slope*daysSince(m.origin, date)
	if m.seasonal {
		predicted += m.weekday[int(date.Weekday())]
	}
	return predicted
}

// Slope reports the fitted daily trend.
func (m *Model) Slope() float64 { return m.slope }

// RSquared reports how much of the series variance the trend line explains.
func (m *Model) RSquared() float64 { return m.rSquared }

// Seasonal reports whether a weekly component was estimated.
func (m *Model) Seasonal() bool { return m.seasonal }

// leastSquares fits y = slope*x + intercept by ordinary least squares.
func leastSquares(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// rSquared computes the coefficient of determination of the fitted line.
func rSquared(xs, ys []float64, slope, intercept float64) float64 {
	var mean float64
	for _, y := range ys {
		mean += y
	}
	mean /= float64(len(ys))

	var ssTot, ssRes float64
	for i := range ys {
		ssTot += (ys[i] - mean) * (ys[i] - mean)
		residual := ys[i] - (slope*xs[i] + intercept)
		ssRes += residual * residual
	}

	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}

// daysSince returns the whole calendar days from origin to date. Series
// dates are normalized to UTC midnight, so the division is exact.
func daysSince(origin, date time.Time) float64 {
	return float64(date.Sub(origin) / (24 * time.Hour))
}
