package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayo6706/org-balance-ledger/internal/domain"
	"github.com/ayo6706/org-balance-ledger/internal/observability"
	"github.com/ayo6706/org-balance-ledger/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome of a single notification ingestion.
type Outcome string

const (
	OutcomeAccepted         Outcome = domain.OutcomeAccepted
	OutcomeAlreadyProcessed Outcome = domain.OutcomeAlreadyProcessed
)

// Notification is a bank payment notification that has passed field
// validation.
type Notification struct {
	OperationID    uuid.UUID
	Amount         int64
	PayerINN       string
	DocumentNumber string
	DocumentDate   time.Time
}

// IngestResult describes what Ingest did. Balance is only set for
// OutcomeAccepted.
type IngestResult struct {
	Outcome        Outcome
	PaymentID      int64
	OrganizationID int64
	Balance        int64
}

// PaymentService posts incoming bank payments to organization balances
// exactly once per operation id.
type PaymentService struct {
	store QueryStore
	cache ProcessedCache
}

// NewPaymentService creates a PaymentService. cache may be nil.
func NewPaymentService(store QueryStore, cache ProcessedCache) *PaymentService {
	return &PaymentService{store: store, cache: cache}
}

// Ingest records n and credits the payer organization.
//
// The lookup before the transaction only short-cuts repeated deliveries.
// Exactly-once application rests on the unique operation_id constraint: when
// two deliveries race past the lookup, the loser's insert fails with
// repository.ErrDuplicateOperation, its transaction rolls back whole and the
// delivery is reported as OutcomeAlreadyProcessed.
func (s *PaymentService) Ingest(ctx context.Context, n Notification) (*IngestResult, error) {
	if n.Amount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, n.Amount)
	}

	logger := zap.L().With(
		zap.String("operation_id", n.OperationID.String()),
		zap.String("payer_inn", n.PayerINN),
	)

	if s.cache != nil && s.cache.Seen(ctx, n.OperationID) {
		return s.alreadyProcessed(logger, 0), nil
	}

	existing, err := s.store.Queries().GetPaymentByOperationID(ctx, n.OperationID)
	switch {
	case err == nil:
		s.remember(ctx, n.OperationID)
		return s.alreadyProcessed(logger, existing.ID), nil
	case !errors.Is(err, repository.ErrNotFound):
		observability.IncrementPaymentOutcome(domain.OutcomeFailed)
		return nil, fmt.Errorf("%w: check operation: %w", ErrStorageFailure, err)
	}

	var result IngestResult
	err = s.store.RunInTx(ctx, func(qtx repository.Querier) error {
		org, err := qtx.GetOrCreateOrganization(ctx, n.PayerINN)
		if err != nil {
			return err
		}

		payment, err := qtx.InsertPayment(ctx, repository.InsertPaymentParams{
			OperationID:    n.OperationID,
			Amount:         n.Amount,
			PayerINN:       n.PayerINN,
			DocumentNumber: n.DocumentNumber,
			DocumentDate:   n.DocumentDate,
		})
		if err != nil {
			return err
		}

		balance, err := qtx.ApplyBalanceDelta(ctx, org.ID, payment.Amount)
		if err != nil {
			return err
		}

		if _, err := qtx.AppendBalanceLog(ctx, repository.AppendBalanceLogParams{
			OrganizationID: org.ID,
			PaymentID:      &payment.ID,
			Amount:         payment.Amount,
			Comment:        paymentComment(payment.DocumentNumber),
		}); err != nil {
			return err
		}

		result = IngestResult{
			Outcome:        OutcomeAccepted,
			PaymentID:      payment.ID,
			OrganizationID: org.ID,
			Balance:        balance,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateOperation) {
			logger.Info("concurrent duplicate delivery rolled back")
			s.remember(ctx, n.OperationID)
			return s.alreadyProcessed(logger, 0), nil
		}
		observability.IncrementPaymentOutcome(domain.OutcomeFailed)
		logger.Error("payment ingestion failed", zap.Error(err))
		return nil, fmt.Errorf("%w: post payment: %w", ErrStorageFailure, err)
	}

	s.remember(ctx, n.OperationID)
	observability.IncrementPaymentOutcome(domain.OutcomeAccepted)
	logger.Info("payment accepted",
		zap.Int64("payment_id", result.PaymentID),
		zap.String("amount", domain.Money(n.Amount).String()),
		zap.Int64("balance", result.Balance),
	)
	return &result, nil
}

func (s *PaymentService) alreadyProcessed(logger *zap.Logger, paymentID int64) *IngestResult {
	observability.IncrementPaymentOutcome(domain.OutcomeAlreadyProcessed)
	logger.Debug("payment already processed")
	return &IngestResult{Outcome: OutcomeAlreadyProcessed, PaymentID: paymentID}
}

func (s *PaymentService) remember(ctx context.Context, operationID uuid.UUID) {
	if s.cache != nil {
		s.cache.Remember(ctx, operationID)
	}
}

func paymentComment(documentNumber string) string {
	comment := "Incoming payment, document " + documentNumber
	if r := []rune(comment); len(r) > domain.MaxCommentLength {
		comment = string(r[:domain.MaxCommentLength])
	}
	return comment
}
