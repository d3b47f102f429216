package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateFutureDate(t *testing.T) {
	now := time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		date    time.Time
		wantErr error
	}{
		{"tomorrow", time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC), nil},
		{"next month", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), nil},
		{"today", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), ErrPastDate},
		{"later today", time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC), ErrPastDate},
		{"yesterday", time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), ErrPastDate},
		{"last year", time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), ErrPastDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFutureDate(tt.date, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
