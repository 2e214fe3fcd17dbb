package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateOperation = errors.New("payment with this operation_id already exists")
)

const (
	uniqueViolationCode = "23505"

	organizationsINNKey     = "organizations_inn_key"
	paymentsOperationIDKey  = "payments_operation_id_key"
	balanceLogsPaymentIDKey = "balance_logs_payment_id_key"
)

// isUniqueViolation reports whether err is a unique_violation raised by the
// named constraint. Violations of other constraints are not matched.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == constraint
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
