package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tofunmi-festus/intelliflow-backend/internal/domain"
	"github.com/tofunmi-festus/intelliflow-backend/internal/forecast"
	"github.com/tofunmi-festus/intelliflow-backend/internal/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(os.Getenv("LOG_LEVEL"))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "forecast":
		runForecast(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("IntelliFlow CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  forecast  Forecast cash flow from a JSON transactions file")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runForecast(log zerolog.Logger) {
	fs := flag.NewFlagSet("forecast", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to a JSON file in the /forecast request format")
	days := fs.Int("days", -1, "Forecast horizon in days (overrides the file's value)")
	fs.Parse(os.Args[2:])

	daysSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "days" {
			daysSet = true
		}
	})

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read input file")
	}

	var req domain.ForecastRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to parse input file")
	}

	horizon, err := resolveHorizon(req, *days, daysSet)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: invalid --days value")
	}

	series, err := domain.BuildDailySeries(req.Transactions)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid transactions")
	}

	if len(series) < domain.MinForecastDays {
		log.Fatal().Msg(domain.ErrNotEnoughData.Error())
	}

	result, err := forecast.Forecast(series, horizon)
	if err != nil {
		log.Fatal().Err(err).Msg("Forecast failed")
	}

	fmt.Printf("\n=== Cash-Flow Forecast (%d days) ===\n", horizon)
	fmt.Printf("History: %d transactions over %d days, ending %s\n",
		len(req.Transactions), len(series), series.Last().Format("2006-01-02"))
	fmt.Printf("Fit:     slope %.4f/day, r^2 %.3f, weekly seasonality %v\n",
		result.Slope, result.RSquared, result.Seasonal)
	fmt.Println()

	for _, p := range result.Points {
		fmt.Printf("  %s  %12.2f\n", p.Date.Format("2006-01-02"), p.Predicted)
	}
	fmt.Println()
}

// resolveHorizon picks the forecast horizon: an explicit -days flag overrides
// the file's value, which defaults the same way the HTTP API does. A negative
// flag value is an error.
func resolveHorizon(req domain.ForecastRequest, days int, daysSet bool) (int, error) {
	if !daysSet {
		return req.Horizon(), nil
	}
	if days < 0 {
		return 0, fmt.Errorf("days must be non-negative, got %d", days)
	}
	return days, nil
}
