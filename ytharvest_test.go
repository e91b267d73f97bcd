package ytharvest

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestHarvestRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		channels []string
		start    string
		end      string
		wantErr  error
	}{
		{"no channels", nil, "2025-09-16", "2025-09-28", ErrNoChannels},
		{"inverted", []string{"UC1"}, "2025-09-28", "2025-09-16", ErrInvalidDateRange},
		{"bad date", []string{"UC1"}, "2025/09/16", "2025-09-28", ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// An empty key would fail client creation; validation must come first.
			_, err := Harvest(context.Background(), "", tt.channels, tt.start, tt.end)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Harvest() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHarvestRequiresAPIKey(t *testing.T) {
	_, err := Harvest(context.Background(), "", []string{"UC1"}, "2025-09-16", "2025-09-28")
	if err == nil {
		t.Error("Harvest() with empty API key should fail")
	}
}

func TestIsQuotaExceeded(t *testing.T) {
	if !IsQuotaExceeded(fmt.Errorf("page 2: %w", ErrQuotaExceeded)) {
		t.Error("wrapped ErrQuotaExceeded should be quota class")
	}
	if IsQuotaExceeded(ErrVideoNotFound) {
		t.Error("ErrVideoNotFound should not be quota class")
	}
}
