package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ayo6706/org-balance-ledger/internal/testutil/pgtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateOrganizationConcurrentFirstCreate(t *testing.T) {
	pool := pgtest.Setup(t)
	store := NewStore(pool)
	ctx := context.Background()

	const workers = 8
	ids := make([]int64, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.RunInTx(ctx, func(q Querier) error {
				org, err := q.GetOrCreateOrganization(ctx, "7707083893")
				ids[i] = org.ID
				return err
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM organizations WHERE inn = $1", "7707083893").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestInsertPaymentDuplicateOperation(t *testing.T) {
	pool := pgtest.Setup(t)
	q := New(pool)
	ctx := context.Background()

	arg := InsertPaymentParams{
		OperationID:    uuid.New(),
		Amount:         10_000,
		PayerINN:       "1234567890",
		DocumentNumber: "PAY-001",
		DocumentDate:   time.Date(2024, 4, 27, 21, 0, 0, 0, time.UTC),
	}
	p, err := q.InsertPayment(ctx, arg)
	require.NoError(t, err)
	assert.Equal(t, arg.OperationID, p.OperationID)
	assert.True(t, p.DocumentDate.Equal(arg.DocumentDate))

	_, err = q.InsertPayment(ctx, arg)
	require.ErrorIs(t, err, ErrDuplicateOperation)

	found, err := q.GetPaymentByOperationID(ctx, arg.OperationID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	_, err = q.GetPaymentByOperationID(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInsertPaymentRejectsNonPositiveAmountAsStorageError(t *testing.T) {
	pool := pgtest.Setup(t)
	q := New(pool)

	_, err := q.InsertPayment(context.Background(), InsertPaymentParams{
		OperationID:    uuid.New(),
		Amount:         0,
		PayerINN:       "1234567890",
		DocumentNumber: "PAY-000",
		DocumentDate:   time.Now(),
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicateOperation))
}

func TestRunInTxRollsBackAllWrites(t *testing.T) {
	pool := pgtest.Setup(t)
	store := NewStore(pool)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.RunInTx(ctx, func(q Querier) error {
		org, err := q.GetOrCreateOrganization(ctx, "1234567890")
		if err != nil {
			return err
		}
		p, err := q.InsertPayment(ctx, InsertPaymentParams{
			OperationID:    uuid.New(),
			Amount:         500,
			PayerINN:       org.INN,
			DocumentNumber: "PAY-RB",
			DocumentDate:   time.Now(),
		})
		if err != nil {
			return err
		}
		if _, err := q.ApplyBalanceDelta(ctx, org.ID, p.Amount); err != nil {
			return err
		}
		if _, err := q.AppendBalanceLog(ctx, AppendBalanceLogParams{OrganizationID: org.ID, PaymentID: &p.ID, Amount: p.Amount}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Queries().GetOrganizationByInn(ctx, "1234567890")
	require.ErrorIs(t, err, ErrNotFound)

	var payments, logs int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM payments").Scan(&payments))
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM balance_logs").Scan(&logs))
	assert.Zero(t, payments)
	assert.Zero(t, logs)
}

func TestBalanceLogsAndMismatches(t *testing.T) {
	pool := pgtest.Setup(t)
	store := NewStore(pool)
	q := store.Queries()
	ctx := context.Background()

	var orgID int64
	require.NoError(t, store.RunInTx(ctx, func(q Querier) error {
		org, err := q.GetOrCreateOrganization(ctx, "123456789012")
		if err != nil {
			return err
		}
		orgID = org.ID
		for _, amount := range []int64{100, 250} {
			if _, err := q.ApplyBalanceDelta(ctx, org.ID, amount); err != nil {
				return err
			}
			if _, err := q.AppendBalanceLog(ctx, AppendBalanceLogParams{OrganizationID: org.ID, Amount: amount, Comment: "manual"}); err != nil {
				return err
			}
		}
		return nil
	}))

	logs, err := q.ListBalanceLogs(ctx, ListBalanceLogsParams{OrganizationID: orgID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(250), logs[0].Amount)
	assert.Nil(t, logs[0].PaymentID)

	n, err := q.CountBalanceLogs(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	mismatches, err := q.ListBalanceMismatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	_, err = pool.Exec(ctx, "UPDATE organizations SET balance = balance + 1 WHERE id = $1", orgID)
	require.NoError(t, err)

	mismatches, err = q.ListBalanceMismatches(ctx)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, int64(351), mismatches[0].Balance)
	assert.Equal(t, int64(350), mismatches[0].LedgerTotal)
}
