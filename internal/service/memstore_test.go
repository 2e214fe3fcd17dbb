package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ayo6706/org-balance-ledger/internal/models"
	"github.com/ayo6706/org-balance-ledger/internal/repository"
	"github.com/google/uuid"
)

// memStore is an in-memory QueryStore. Transactions run one at a time on a
// private copy of the state that replaces the committed state only when fn
// succeeds, which mirrors the all-or-nothing behaviour of RunInTx.
type memStore struct {
	txMu    sync.Mutex
	stateMu sync.Mutex
	state   memState

	// hideCommittedPayments makes lookups outside a transaction miss, as if
	// every delivery raced past the pre-check.
	hideCommittedPayments bool
	// failures maps a Querier method name to the error it should return.
	failures  map[string]error
	txCount   int
	listCalls []repository.ListBalanceLogsParams
}

type memState struct {
	nextID   int64
	orgs     map[string]models.Organization
	payments map[uuid.UUID]models.Payment
	logs     []models.BalanceLog
}

func newMemStore() *memStore {
	return &memStore{
		state: memState{
			orgs:     map[string]models.Organization{},
			payments: map[uuid.UUID]models.Payment{},
		},
		failures: map[string]error{},
	}
}

func (s memState) clone() memState {
	out := memState{
		nextID:   s.nextID,
		orgs:     make(map[string]models.Organization, len(s.orgs)),
		payments: make(map[uuid.UUID]models.Payment, len(s.payments)),
		logs:     append([]models.BalanceLog(nil), s.logs...),
	}
	for k, v := range s.orgs {
		out.orgs[k] = v
	}
	for k, v := range s.payments {
		out.payments[k] = v
	}
	return out
}

func (m *memStore) Queries() repository.Querier {
	return &memQueries{store: m}
}

func (m *memStore) RunInTx(ctx context.Context, fn func(q repository.Querier) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.stateMu.Lock()
	work := m.state.clone()
	m.txCount++
	m.stateMu.Unlock()

	if err := fn(&memQueries{store: m, tx: &work}); err != nil {
		return err
	}

	m.stateMu.Lock()
	m.state = work
	m.stateMu.Unlock()
	return nil
}

func (m *memStore) seedOrganization(inn string, balance int64) models.Organization {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.state.nextID++
	org := models.Organization{ID: m.state.nextID, INN: inn, Balance: balance, CreatedAt: time.Now()}
	m.state.orgs[inn] = org
	return org
}

func (m *memStore) snapshot() memState {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.state.clone()
}

type memQueries struct {
	store *memStore
	tx    *memState
}

func (q *memQueries) view(fn func(s *memState) error) error {
	if q.tx != nil {
		return fn(q.tx)
	}
	q.store.stateMu.Lock()
	defer q.store.stateMu.Unlock()
	return fn(&q.store.state)
}

func (q *memQueries) fault(method string) error {
	return q.store.failures[method]
}

func (q *memQueries) GetPaymentByOperationID(ctx context.Context, operationID uuid.UUID) (models.Payment, error) {
	if err := q.fault("GetPaymentByOperationID"); err != nil {
		return models.Payment{}, err
	}
	var p models.Payment
	err := q.view(func(s *memState) error {
		found, ok := s.payments[operationID]
		if !ok || (q.tx == nil && q.store.hideCommittedPayments) {
			return fmt.Errorf("get payment by operation_id: %w", repository.ErrNotFound)
		}
		p = found
		return nil
	})
	return p, err
}

func (q *memQueries) GetOrCreateOrganization(ctx context.Context, inn string) (models.Organization, error) {
	if err := q.fault("GetOrCreateOrganization"); err != nil {
		return models.Organization{}, err
	}
	var org models.Organization
	err := q.view(func(s *memState) error {
		if found, ok := s.orgs[inn]; ok {
			org = found
			return nil
		}
		s.nextID++
		org = models.Organization{ID: s.nextID, INN: inn, CreatedAt: time.Now()}
		s.orgs[inn] = org
		return nil
	})
	return org, err
}

func (q *memQueries) GetOrganizationByInn(ctx context.Context, inn string) (models.Organization, error) {
	if err := q.fault("GetOrganizationByInn"); err != nil {
		return models.Organization{}, err
	}
	var org models.Organization
	err := q.view(func(s *memState) error {
		found, ok := s.orgs[inn]
		if !ok {
			return fmt.Errorf("get organization by inn: %w", repository.ErrNotFound)
		}
		org = found
		return nil
	})
	return org, err
}

func (q *memQueries) InsertPayment(ctx context.Context, arg repository.InsertPaymentParams) (models.Payment, error) {
	if err := q.fault("InsertPayment"); err != nil {
		return models.Payment{}, err
	}
	var p models.Payment
	err := q.view(func(s *memState) error {
		if _, ok := s.payments[arg.OperationID]; ok {
			return fmt.Errorf("insert payment %s: %w", arg.OperationID, repository.ErrDuplicateOperation)
		}
		s.nextID++
		p = models.Payment{
			ID:             s.nextID,
			OperationID:    arg.OperationID,
			Amount:         arg.Amount,
			PayerINN:       arg.PayerINN,
			DocumentNumber: arg.DocumentNumber,
			DocumentDate:   arg.DocumentDate,
			CreatedAt:      time.Now(),
		}
		s.payments[arg.OperationID] = p
		return nil
	})
	return p, err
}

func (q *memQueries) ApplyBalanceDelta(ctx context.Context, organizationID int64, delta int64) (int64, error) {
	if err := q.fault("ApplyBalanceDelta"); err != nil {
		return 0, err
	}
	var balance int64
	err := q.view(func(s *memState) error {
		for inn, org := range s.orgs {
			if org.ID == organizationID {
				org.Balance += delta
				s.orgs[inn] = org
				balance = org.Balance
				return nil
			}
		}
		return fmt.Errorf("apply balance delta: %w", repository.ErrNotFound)
	})
	return balance, err
}

func (q *memQueries) AppendBalanceLog(ctx context.Context, arg repository.AppendBalanceLogParams) (models.BalanceLog, error) {
	if err := q.fault("AppendBalanceLog"); err != nil {
		return models.BalanceLog{}, err
	}
	var l models.BalanceLog
	err := q.view(func(s *memState) error {
		s.nextID++
		l = models.BalanceLog{
			ID:             s.nextID,
			OrganizationID: arg.OrganizationID,
			PaymentID:      arg.PaymentID,
			Amount:         arg.Amount,
			Comment:        arg.Comment,
			CreatedAt:      time.Now(),
		}
		s.logs = append(s.logs, l)
		return nil
	})
	return l, err
}

func (q *memQueries) ListBalanceLogs(ctx context.Context, arg repository.ListBalanceLogsParams) ([]models.BalanceLog, error) {
	if err := q.fault("ListBalanceLogs"); err != nil {
		return nil, err
	}
	out := []models.BalanceLog{}
	err := q.view(func(s *memState) error {
		q.store.listCalls = append(q.store.listCalls, arg)
		var mine []models.BalanceLog
		for _, l := range s.logs {
			if l.OrganizationID == arg.OrganizationID {
				mine = append(mine, l)
			}
		}
		sort.Slice(mine, func(i, j int) bool { return mine[i].ID > mine[j].ID })
		for i := int(arg.Offset); i < len(mine) && len(out) < int(arg.Limit); i++ {
			out = append(out, mine[i])
		}
		return nil
	})
	return out, err
}

func (q *memQueries) CountBalanceLogs(ctx context.Context, organizationID int64) (int64, error) {
	var n int64
	err := q.view(func(s *memState) error {
		for _, l := range s.logs {
			if l.OrganizationID == organizationID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (q *memQueries) ListBalanceMismatches(ctx context.Context) ([]repository.BalanceMismatch, error) {
	if err := q.fault("ListBalanceMismatches"); err != nil {
		return nil, err
	}
	var out []repository.BalanceMismatch
	err := q.view(func(s *memState) error {
		totals := ledgerTotals(*s)
		for _, org := range s.orgs {
			if org.Balance != totals[org.ID] {
				out = append(out, repository.BalanceMismatch{
					OrganizationID: org.ID,
					INN:            org.INN,
					Balance:        org.Balance,
					LedgerTotal:    totals[org.ID],
				})
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].OrganizationID < out[j].OrganizationID })
		return nil
	})
	return out, err
}

func ledgerTotals(s memState) map[int64]int64 {
	totals := map[int64]int64{}
	for _, l := range s.logs {
		totals[l.OrganizationID] += l.Amount
	}
	return totals
}
