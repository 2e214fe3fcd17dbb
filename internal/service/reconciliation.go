package service

import (
	"context"
	"fmt"

	"github.com/ayo6706/org-balance-ledger/internal/domain"
	"github.com/ayo6706/org-balance-ledger/internal/observability"
	"github.com/ayo6706/org-balance-ledger/internal/repository"
	"go.uber.org/zap"
)

// ReconciliationService verifies that every organization balance equals the
// sum of its balance log.
type ReconciliationService struct {
	store QueryStore
}

// NewReconciliationService creates a reconciliation service.
func NewReconciliationService(store QueryStore) *ReconciliationService {
	return &ReconciliationService{store: store}
}

// Run returns the mismatching organizations. Mismatches are reported through
// logs and metrics, not as an error.
func (s *ReconciliationService) Run(ctx context.Context) ([]repository.BalanceMismatch, error) {
	mismatches, err := s.store.Queries().ListBalanceMismatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("run balance reconciliation: %w", err)
	}

	observability.SetBalanceMismatches(len(mismatches))
	if len(mismatches) == 0 {
		zap.L().Info("Ledger Balanced")
		return nil, nil
	}

	for _, m := range mismatches {
		zap.L().Error("CRITICAL: organization balance diverged from balance log",
			zap.String("inn", m.INN),
			zap.String("balance", domain.Money(m.Balance).String()),
			zap.String("ledger_total", domain.Money(m.LedgerTotal).String()),
			zap.String("difference", domain.Money(m.Balance-m.LedgerTotal).String()),
		)
	}
	return mismatches, nil
}
