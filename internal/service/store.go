package service

import (
	"context"

	"github.com/ayo6706/org-balance-ledger/internal/repository"
	"github.com/google/uuid"
)

// QueryStore defines the minimal data access contract required by services.
type QueryStore interface {
	Queries() repository.Querier
	RunInTx(ctx context.Context, fn func(q repository.Querier) error) error
}

// ProcessedCache is an optional shortcut for recognising repeated deliveries.
type ProcessedCache interface {
	Seen(ctx context.Context, operationID uuid.UUID) bool
	Remember(ctx context.Context, operationID uuid.UUID)
}
