package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhoneNumber_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"vodafone mobile", "01001234567", "01001234567"},
		{"etisalat mobile", "01112345678", "01112345678"},
		{"orange mobile", "01212345678", "01212345678"},
		{"we mobile", "01512345678", "01512345678"},
		{"cairo landline", "02234567890", "02234567890"},
		{"alexandria landline", "03123456789", "03123456789"},
		{"delta landline", "04012345678", "04012345678"},
		{"upper egypt landline", "05712345678", "05712345678"},
		{"new valley landline", "09912345678", "09912345678"},
		{"international with plus", "+20 100 123 4567", "01001234567"},
		{"international bare", "201001234567", "01001234567"},
		{"dashes and spaces", "010-0123-4567", "01001234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhoneNumber(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhoneNumber_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too short", "0100123456"},
		{"too long", "010012345678"},
		{"unknown mobile prefix", "01401234567"},
		{"no leading zero", "12345678901"},
		{"all zeros prefix", "00012345678"},
		{"empty", ""},
		{"letters only", "not a number"},
		{"eleven digits starting 20", "20123456789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizePhoneNumber(tt.input)
			assert.ErrorIs(t, err, ErrInvalidPhone)
		})
	}
}
