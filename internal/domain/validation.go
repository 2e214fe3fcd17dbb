package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError describes a single rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidateINN accepts taxpayer identifiers of exactly 10 (legal entity) or
// 12 (individual) decimal digits.
func ValidateINN(inn string) error {
	if len(inn) != INNLegalEntityLength && len(inn) != INNIndividualLength {
		return &ValidationError{Field: "payer_inn", Reason: "must contain 10 or 12 digits"}
	}
	for _, r := range inn {
		if r < '0' || r > '9' {
			return &ValidationError{Field: "payer_inn", Reason: "must contain 10 or 12 digits"}
		}
	}
	return nil
}

func ValidateDocumentNumber(number string) error {
	if strings.TrimSpace(number) == "" {
		return &ValidationError{Field: "document_number", Reason: "is required"}
	}
	if utf8.RuneCountInString(number) > MaxDocumentNumberLength {
		return &ValidationError{Field: "document_number", Reason: fmt.Sprintf("must be at most %d characters", MaxDocumentNumberLength)}
	}
	return nil
}

func ValidateAmount(amount int64) error {
	if amount < 1 {
		return &ValidationError{Field: "amount", Reason: "must be a positive integer"}
	}
	return nil
}
