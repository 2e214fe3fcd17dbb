package service

import "errors"

var (
	// ErrInvalidAmount rejects non-positive payment amounts.
	ErrInvalidAmount = errors.New("payment amount must be positive")
	// ErrOrganizationNotFound is returned by balance reads for an unknown inn.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrStorageFailure marks failures of the ledger store other than the
	// duplicate-operation race. Nothing was committed, so the caller may retry.
	ErrStorageFailure = errors.New("ledger storage failure")
)
