package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/tofunmi-festus/intelliflow-backend/internal/api/middleware"
	"github.com/tofunmi-festus/intelliflow-backend/internal/domain"
	"github.com/tofunmi-festus/intelliflow-backend/internal/forecast"
	"github.com/tofunmi-festus/intelliflow-backend/internal/logger"
	"github.com/tofunmi-festus/intelliflow-backend/internal/workers"
)

// forecastPointPayload is the wire form of one forecast point.
type forecastPointPayload struct {
	Date              string  `json:"date"`
	PredictedCashflow float64 `json:"predicted_cashflow"`
}

// ForecastHandler serves cash-flow forecasts. Every request gets its own
// aggregation, model fit, and prediction; nothing is shared or cached across
// requests.
type ForecastHandler struct {
	pool         workers.Runner
	fitTimeout   time.Duration
	maxBodyBytes int64
	validate     *validator.Validate
	log          zerolog.Logger
}

// NewForecastHandler creates a new forecast handler. Model fits are executed
// on pool and abandoned after fitTimeout.
func NewForecastHandler(pool workers.Runner, fitTimeout time.Duration, maxBodyBytes int64, log zerolog.Logger) *ForecastHandler {
	return &ForecastHandler{
		pool:         pool,
		fitTimeout:   fitTimeout,
		maxBodyBytes: maxBodyBytes,
		validate:     newValidator(),
		log:          log,
	}
}

// newValidator builds the request validator, reporting fields by their JSON
// names so validation messages match the wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// requestLogger returns the request-scoped logger attached by the middleware
// chain, falling back to the handler's own when the request bypassed it.
func (h *ForecastHandler) requestLogger(ctx context.Context) zerolog.Logger {
	if log, ok := ctx.Value(logger.LoggerKey).(zerolog.Logger); ok {
		return log
	}
	return h.log
}

// Forecast handles POST /forecast.
func (h *ForecastHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.requestLogger(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req domain.ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		middleware.WriteError(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}

	series, err := domain.BuildDailySeries(req.Transactions)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			middleware.WriteError(w, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		log.Error().Err(err).Msg("Aggregation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to aggregate transactions")
		return
	}

	if len(series) < domain.MinForecastDays {
		log.Info().Int("distinct_days", len(series)).Msg("Rejecting forecast: not enough data")
		middleware.WriteError(w, http.StatusBadRequest, domain.ErrNotEnoughData.Error())
		return
	}

	horizon := req.Horizon()

	fitCtx, cancel := context.WithTimeout(ctx, h.fitTimeout)
	defer cancel()

	start := time.Now()
	var result *forecast.Result
	err = h.pool.Do(fitCtx, func() error {
		var fitErr error
		result, fitErr = forecast.Forecast(series, horizon)
		return fitErr
	})
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			log.Error().Err(err).Dur("timeout", h.fitTimeout).Msg("Forecast timed out")
			middleware.WriteError(w, http.StatusInternalServerError, "Forecast timed out")
		case errors.Is(err, workers.ErrPoolClosed):
			log.Error().Err(err).Msg("Forecast rejected: worker pool is stopped")
			middleware.WriteError(w, http.StatusInternalServerError, "Service is shutting down")
		default:
			log.Error().Err(err).Msg("Forecast failed")
			middleware.WriteError(w, http.StatusInternalServerError, "Forecast failed")
		}
		return
	}

	log.Debug().
		Int("transactions", len(req.Transactions)).
		Int("distinct_days", len(series)).
		Int("horizon_days", horizon).
		Float64("slope", result.Slope).
		Float64("r_squared", result.RSquared).
		Bool("seasonal", result.Seasonal).
		Dur("fit_duration", time.Since(start)).
		Msg("Forecast produced")

	// Return a JSON array even for a zero-day horizon, never null.
	points := make([]forecastPointPayload, 0, len(result.Points))
	for _, p := range result.Points {
		points = append(points, forecastPointPayload{
			Date:              p.Date.Format("2006-01-02"),
			PredictedCashflow: p.Predicted,
		})
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"forecast": points,
	})
}

// validationDetail flattens validator errors into one caller-facing message.
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fieldDetail(fe))
	}
	return strings.Join(parts, "; ")
}

// fieldDetail renders one field violation, e.g.
// "transactions[2].transaction_date is required".
func fieldDetail(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
