package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ayo6706/org-balance-ledger/internal/domain"
	"github.com/ayo6706/org-balance-ledger/internal/models"
	"github.com/ayo6706/org-balance-ledger/internal/repository"
)

const (
	defaultStatementPageSize = 20
	maxStatementPageSize     = 100
)

// OrganizationBalance is the public balance view of an organization.
type OrganizationBalance struct {
	INN     string `json:"inn"`
	Balance int64  `json:"balance"`
}

type StatementEntry struct {
	ID            int64     `json:"id"`
	PaymentID     *int64    `json:"payment_id,omitempty"`
	Amount        int64     `json:"amount"`
	AmountDisplay string    `json:"amount_display"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}

type Statement struct {
	INN            string           `json:"inn"`
	Balance        int64            `json:"balance"`
	BalanceDisplay string           `json:"balance_display"`
	Page           int              `json:"page"`
	PageSize       int              `json:"page_size"`
	Total          int64            `json:"total"`
	Entries        []StatementEntry `json:"entries"`
}

// BalanceService answers read-only balance queries.
type BalanceService struct {
	store QueryStore
}

func NewBalanceService(store QueryStore) *BalanceService {
	return &BalanceService{store: store}
}

func (s *BalanceService) GetBalance(ctx context.Context, inn string) (*OrganizationBalance, error) {
	org, err := s.store.Queries().GetOrganizationByInn(ctx, inn)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("%w: get balance: %w", ErrStorageFailure, err)
	}
	return &OrganizationBalance{INN: org.INN, Balance: org.Balance}, nil
}

// GetStatement returns one page of the organization's balance log, newest
// first.
func (s *BalanceService) GetStatement(ctx context.Context, inn string, page, pageSize int) (*Statement, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultStatementPageSize
	}
	pageSize = min(pageSize, maxStatementPageSize)

	queries := s.store.Queries()
	org, err := queries.GetOrganizationByInn(ctx, inn)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("%w: get organization: %w", ErrStorageFailure, err)
	}

	total, err := queries.CountBalanceLogs(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	entries := []StatementEntry{}
	// Pages whose offset does not fit in an int32 are past any real log.
	if page-1 <= math.MaxInt32/pageSize {
		logs, err := queries.ListBalanceLogs(ctx, repository.ListBalanceLogsParams{
			OrganizationID: org.ID,
			Limit:          int32(pageSize),
			Offset:         int32((page - 1) * pageSize),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
		}
		entries = appendStatementEntries(entries, logs)
	}

	return &Statement{
		INN:            org.INN,
		Balance:        org.Balance,
		BalanceDisplay: domain.Money(org.Balance).String(),
		Page:           page,
		PageSize:       pageSize,
		Total:          total,
		Entries:        entries,
	}, nil
}

func appendStatementEntries(entries []StatementEntry, logs []models.BalanceLog) []StatementEntry {
	for _, l := range logs {
		entries = append(entries, StatementEntry{
			ID:            l.ID,
			PaymentID:     l.PaymentID,
			Amount:        l.Amount,
			AmountDisplay: domain.Money(l.Amount).String(),
			Comment:       l.Comment,
			CreatedAt:     l.CreatedAt,
		})
	}
	return entries
}
