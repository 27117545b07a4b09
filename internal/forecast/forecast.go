package forecast

import (
	"fmt"
	"time"

	"github.com/tofunmi-festus/intelliflow-backend/internal/domain"
)

// Result carries the future predictions together with fit diagnostics.
type Result struct {
	Points   []domain.ForecastPoint
	Slope    float64
	RSquared float64
	Seasonal bool
}

// Forecast fits a fresh model to the series and predicts horizon future
// calendar days. The prediction frame covers every historical date plus
// horizon contiguous days immediately following the last one; only the
// trailing future block is returned, discarding the historical back-fit.
// A horizon of 0 yields an empty Points slice.
func Forecast(series domain.DailySeries, horizon int) (*Result, error) {
	if horizon < 0 {
		return nil, fmt.Errorf("horizon must be non-negative, got %d", horizon)
	}

	model, err := Fit(series)
	if err != nil {
		return nil, err
	}

	frame := predictionFrame(series, horizon)
	predictions := make([]domain.ForecastPoint, len(frame))
	for i, date := range frame {
		predictions[i] = domain.ForecastPoint{Date: date, Predicted: model.Predict(date)}
	}

	return &Result{
		Points:   predictions[len(predictions)-horizon:],
		Slope:    model.Slope(),
		RSquared: model.RSquared(),
		Seasonal: model.Seasonal(),
	}, nil
}

// predictionFrame lists every historical date followed by horizon contiguous
// calendar days starting the day after the last historical date.
func predictionFrame(series domain.DailySeries, horizon int) []time.Time {
	frame := make([]time.Time, 0, len(series)+horizon)
	for _, p := range series {
		frame = append(frame, p.Date)
	}
	last := series.Last()
	for i := 1; i <= horizon; i++ {
		frame = append(frame, last.AddDate(0, 0, i))
	}
	return frame
}
