package main

import (
	"strings"
	"testing"

	"github.com/tofunmi-festus/intelliflow-backend/internal/domain"
)

func TestResolveHorizon(t *testing.T) {
	intp := func(n int) *int { return &n }

	tests := []struct {
		name    string
		req     domain.ForecastRequest
		days    int
		daysSet bool
		want    int
		wantErr bool
	}{
		{"flag unset uses file value", domain.ForecastRequest{Days: intp(7)}, -1, false, 7, false},
		{"flag unset and file silent uses default", domain.ForecastRequest{}, -1, false, domain.DefaultHorizonDays, false},
		{"flag overrides file value", domain.ForecastRequest{Days: intp(7)}, 3, true, 3, false},
		{"flag zero is a valid horizon", domain.ForecastRequest{Days: intp(7)}, 0, true, 0, false},
		{"negative flag is rejected", domain.ForecastRequest{Days: intp(7)}, -5, true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveHorizon(tt.req, tt.days, tt.daysSet)
			if tt.wantErr {
				if err == nil {
					t.Fatal("resolveHorizon() error = nil, want rejection")
				}
				if !strings.Contains(err.Error(), "non-negative") {
					t.Errorf("resolveHorizon() error = %v, want it to mention non-negative", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveHorizon() error = %v, want nil", err)
			}
			if got != tt.want {
				t.Errorf("resolveHorizon() = %d, want %d", got, tt.want)
			}
		})
	}
}
