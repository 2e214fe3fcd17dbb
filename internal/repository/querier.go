package repository

import (
	"context"

	"github.com/ayo6706/org-balance-ledger/internal/models"
	"github.com/google/uuid"
)

// Querier is the ledger data-access contract. Every method runs on whatever
// connection or transaction the implementation was bound to.
type Querier interface {
	GetPaymentByOperationID(ctx context.Context, operationID uuid.UUID) (models.Payment, error)
	GetOrCreateOrganization(ctx context.Context, inn string) (models.Organization, error)
	GetOrganizationByInn(ctx context.Context, inn string) (models.Organization, error)
	InsertPayment(ctx context.Context, arg InsertPaymentParams) (models.Payment, error)
	ApplyBalanceDelta(ctx context.Context, organizationID int64, delta int64) (int64, error)
	AppendBalanceLog(ctx context.Context, arg AppendBalanceLogParams) (models.BalanceLog, error)
	ListBalanceLogs(ctx context.Context, arg ListBalanceLogsParams) ([]models.BalanceLog, error)
	CountBalanceLogs(ctx context.Context, organizationID int64) (int64, error)
	ListBalanceMismatches(ctx context.Context) ([]BalanceMismatch, error)
}

var _ Querier = (*Queries)(nil)
