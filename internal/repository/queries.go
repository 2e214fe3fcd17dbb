package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayo6706/org-balance-ledger/internal/models"
	"github.com/google/uuid"
)

const getPaymentByOperationID = `
SELECT id, operation_id, amount, payer_inn, document_number, document_date, created_at
FROM payments
WHERE operation_id = $1
`

func (q *Queries) GetPaymentByOperationID(ctx context.Context, operationID uuid.UUID) (models.Payment, error) {
	var p models.Payment
	err := q.db.QueryRow(ctx, getPaymentByOperationID, operationID).Scan(
		&p.ID, &p.OperationID, &p.Amount, &p.PayerINN, &p.DocumentNumber, &p.DocumentDate, &p.CreatedAt,
	)
	if err != nil {
		return models.Payment{}, fmt.Errorf("get payment by operation_id: %w", notFound(err))
	}
	return p, nil
}

const lockOrganizationByInn = `
SELECT id, inn, balance, created_at
FROM organizations
WHERE inn = $1
FOR UPDATE
`

const insertOrganization = `
INSERT INTO organizations (inn, balance, created_at)
VALUES ($1, 0, NOW())
RETURNING id, inn, balance, created_at
`

// GetOrCreateOrganization returns the organization row for inn, locked for
// the rest of the enclosing transaction, creating it with a zero balance if
// absent. The insert runs under a savepoint: when a concurrent transaction
// creates the same inn first, the unique violation on organizations_inn_key
// only rolls back the savepoint and the committed row is re-read.
func (q *Queries) GetOrCreateOrganization(ctx context.Context, inn string) (models.Organization, error) {
	org, err := q.scanOrganization(ctx, lockOrganizationByInn, inn)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return org, err
	}

	sp, err := q.db.Begin(ctx)
	if err != nil {
		return models.Organization{}, fmt.Errorf("begin organization savepoint: %w", err)
	}
	err = sp.QueryRow(ctx, insertOrganization, inn).Scan(&org.ID, &org.INN, &org.Balance, &org.CreatedAt)
	if err != nil {
		_ = sp.Rollback(ctx)
		if isUniqueViolation(err, organizationsINNKey) {
			return q.scanOrganization(ctx, lockOrganizationByInn, inn)
		}
		return models.Organization{}, fmt.Errorf("insert organization: %w", err)
	}
	if err := sp.Commit(ctx); err != nil {
		return models.Organization{}, fmt.Errorf("release organization savepoint: %w", err)
	}
	return org, nil
}

const getOrganizationByInn = `
SELECT id, inn, balance, created_at
FROM organizations
WHERE inn = $1
`

func (q *Queries) GetOrganizationByInn(ctx context.Context, inn string) (models.Organization, error) {
	return q.scanOrganization(ctx, getOrganizationByInn, inn)
}

func (q *Queries) scanOrganization(ctx context.Context, query, inn string) (models.Organization, error) {
	var org models.Organization
	err := q.db.QueryRow(ctx, query, inn).Scan(&org.ID, &org.INN, &org.Balance, &org.CreatedAt)
	if err != nil {
		return models.Organization{}, fmt.Errorf("get organization by inn: %w", notFound(err))
	}
	return org, nil
}

type InsertPaymentParams struct {
	OperationID    uuid.UUID
	Amount         int64
	PayerINN       string
	DocumentNumber string
	DocumentDate   time.Time
}

const insertPayment = `
INSERT INTO payments (operation_id, amount, payer_inn, document_number, document_date, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
RETURNING id, operation_id, amount, payer_inn, document_number, document_date, created_at
`

// InsertPayment fails with ErrDuplicateOperation when operation_id is
// already taken. In a transaction the failed statement aborts it, so the
// caller must roll back.
func (q *Queries) InsertPayment(ctx context.Context, arg InsertPaymentParams) (models.Payment, error) {
	var p models.Payment
	err := q.db.QueryRow(ctx, insertPayment,
		arg.OperationID, arg.Amount, arg.PayerINN, arg.DocumentNumber, arg.DocumentDate,
	).Scan(&p.ID, &p.OperationID, &p.Amount, &p.PayerINN, &p.DocumentNumber, &p.DocumentDate, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, paymentsOperationIDKey) {
			return models.Payment{}, fmt.Errorf("insert payment %s: %w", arg.OperationID, ErrDuplicateOperation)
		}
		return models.Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	return p, nil
}

const applyBalanceDelta = `
UPDATE organizations
SET balance = balance + $1
WHERE id = $2
RETURNING balance
`

func (q *Queries) ApplyBalanceDelta(ctx context.Context, organizationID int64, delta int64) (int64, error) {
	var balance int64
	if err := q.db.QueryRow(ctx, applyBalanceDelta, delta, organizationID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("apply balance delta: %w", notFound(err))
	}
	return balance, nil
}

type AppendBalanceLogParams struct {
	OrganizationID int64
	PaymentID      *int64
	Amount         int64
	Comment        string
}

const appendBalanceLog = `
INSERT INTO balance_logs (organization_id, payment_id, amount, comment, created_at)
VALUES ($1, $2, $3, $4, NOW())
RETURNING id, organization_id, payment_id, amount, comment, created_at
`

func (q *Queries) AppendBalanceLog(ctx context.Context, arg AppendBalanceLogParams) (models.BalanceLog, error) {
	var l models.BalanceLog
	err := q.db.QueryRow(ctx, appendBalanceLog, arg.OrganizationID, arg.PaymentID, arg.Amount, arg.Comment).
		Scan(&l.ID, &l.OrganizationID, &l.PaymentID, &l.Amount, &l.Comment, &l.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, balanceLogsPaymentIDKey) {
			return models.BalanceLog{}, fmt.Errorf("append balance log: payment already logged: %w", err)
		}
		return models.BalanceLog{}, fmt.Errorf("append balance log: %w", err)
	}
	return l, nil
}

type ListBalanceLogsParams struct {
	OrganizationID int64
	Limit          int32
	Offset         int32
}

const listBalanceLogs = `
SELECT id, organization_id, payment_id, amount, comment, created_at
FROM balance_logs
WHERE organization_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

func (q *Queries) ListBalanceLogs(ctx context.Context, arg ListBalanceLogsParams) ([]models.BalanceLog, error) {
	rows, err := q.db.Query(ctx, listBalanceLogs, arg.OrganizationID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, fmt.Errorf("list balance logs: %w", err)
	}
	defer rows.Close()

	logs := []models.BalanceLog{}
	for rows.Next() {
		var l models.BalanceLog
		if err := rows.Scan(&l.ID, &l.OrganizationID, &l.PaymentID, &l.Amount, &l.Comment, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan balance log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance logs: %w", err)
	}
	return logs, nil
}

const countBalanceLogs = `SELECT COUNT(*) FROM balance_logs WHERE organization_id = $1`

func (q *Queries) CountBalanceLogs(ctx context.Context, organizationID int64) (int64, error) {
	var n int64
	if err := q.db.QueryRow(ctx, countBalanceLogs, organizationID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count balance logs: %w", err)
	}
	return n, nil
}

// BalanceMismatch is an organization whose stored balance differs from the
// sum of its balance log.
type BalanceMismatch struct {
	OrganizationID int64
	INN            string
	Balance        int64
	LedgerTotal    int64
}

const listBalanceMismatches = `
SELECT o.id, o.inn, o.balance, COALESCE(SUM(l.amount), 0)::BIGINT AS ledger_total
FROM organizations o
LEFT JOIN balance_logs l ON l.organization_id = o.id
GROUP BY o.id, o.inn, o.balance
HAVING o.balance <> COALESCE(SUM(l.amount), 0)
ORDER BY o.id
`

func (q *Queries) ListBalanceMismatches(ctx context.Context) ([]BalanceMismatch, error) {
	rows, err := q.db.Query(ctx, listBalanceMismatches)
	if err != nil {
		return nil, fmt.Errorf("list balance mismatches: %w", err)
	}
	defer rows.Close()

	var out []BalanceMismatch
	for rows.Next() {
		var m BalanceMismatch
		if err := rows.Scan(&m.OrganizationID, &m.INN, &m.Balance, &m.LedgerTotal); err != nil {
			return nil, fmt.Errorf("scan balance mismatch: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance mismatches: %w", err)
	}
	return out, nil
}
