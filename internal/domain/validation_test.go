package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateINN(t *testing.T) {
	cases := []struct {
		name  string
		inn   string
		valid bool
	}{
		{"legal entity", "1234567890", true},
		{"individual", "123456789012", true},
		{"too short", "123456789", false},
		{"eleven digits", "12345678901", false},
		{"letters", "12345abcde", false},
		{"empty", "", false},
		{"unicode digits", "١٢٣٤٥٦٧٨٩٠", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateINN(tc.inn)
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, "payer_inn", vErr.Field)
		})
	}
}

func TestValidateDocumentNumber(t *testing.T) {
	assert.NoError(t, ValidateDocumentNumber("PAY-001"))
	assert.NoError(t, ValidateDocumentNumber(strings.Repeat("№", MaxDocumentNumberLength)))
	assert.Error(t, ValidateDocumentNumber(""))
	assert.Error(t, ValidateDocumentNumber("   "))
	assert.Error(t, ValidateDocumentNumber(strings.Repeat("x", MaxDocumentNumberLength+1)))
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(1))
	assert.Error(t, ValidateAmount(0))
	assert.Error(t, ValidateAmount(-100))
}
