// Package repotest provides an in-memory implementation of the repository
// interfaces for service and handler tests. Semantics mirror the postgres
// implementation: atomic mutations, balance_after snapshots, insufficient
// funds checks, statement ordering.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ejdotp/digiWallet/internal/models"
	"github.com/ejdotp/digiWallet/internal/repository"
	"github.com/google/uuid"
)

type Store struct {
	mu       sync.Mutex
	users    map[string]models.User // by id
	byName   map[string]string      // username -> id
	txns     []models.Transaction
	products map[string]models.Product
	audits   []models.AuditLog
	seq      int64
}

func NewStore() *Store {
	return &Store{
		users:    map[string]models.User{},
		byName:   map[string]string{},
		products: map[string]models.Product{},
	}
}

// ---- repository.Users ----

func (s *Store) Create(ctx context.Context, username, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[username]; ok {
		return models.User{}, models.ErrDuplicateUsername
	}
	u := models.User{ID: uuid.NewString(), Username: username, PasswordHash: passwordHash, CreatedAt: time.Now()}
	s.users[u.ID] = u
	s.byName[username] = u.ID
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byName[username]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return s.users[id], nil
}

// ---- repository.Ledger ----

func (s *Store) append(userID string, kind models.TransactionKind, amount, after int64) models.Transaction {
	s.seq++
	t := models.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: after,
		Seq:          s.seq,
		CreatedAt:    time.Now(),
	}
	s.txns = append(s.txns, t)
	return t
}

func (s *Store) Credit(ctx context.Context, userID string, amount int64) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, models.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.Transaction{}, models.ErrUserNotFound
	}
	u.Balance += amount
	s.users[userID] = u
	return s.append(userID, models.TxnCredit, amount, u.Balance), nil
}

func (s *Store) Debit(ctx context.Context, userID string, amount int64) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, models.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.Transaction{}, models.ErrUserNotFound
	}
	if u.Balance < amount {
		return models.Transaction{}, models.ErrInsufficientFunds
	}
	u.Balance -= amount
	s.users[userID] = u
	return s.append(userID, models.TxnDebit, amount, u.Balance), nil
}

func (s *Store) Transfer(ctx context.Context, fromID, toID string, amount int64) (models.Transaction, models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, models.Transaction{}, models.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	from, ok := s.users[fromID]
	if !ok {
		return models.Transaction{}, models.Transaction{}, models.ErrUserNotFound
	}
	if _, ok := s.users[toID]; !ok {
		return models.Transaction{}, models.Transaction{}, models.ErrUserNotFound
	}
	if from.Balance < amount {
		return models.Transaction{}, models.Transaction{}, models.ErrInsufficientFunds
	}
	from.Balance -= amount
	s.users[fromID] = from
	debit := s.append(fromID, models.TxnDebit, amount, from.Balance)

	to := s.users[toID]
	to.Balance += amount
	s.users[toID] = to
	credit := s.append(toID, models.TxnCredit, amount, to.Balance)
	return debit, credit, nil
}

func (s *Store) Statement(ctx context.Context, userID string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transaction
	for _, t := range s.txns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Seq > out[j].Seq
	})
	return out, nil
}

// ---- repository.Products ----

func (s *Store) CreateProduct(ctx context.Context, name string, price int64, description string) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := models.Product{ID: uuid.NewString(), Name: name, Price: price, Description: description, CreatedAt: time.Now()}
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, models.ErrProductNotFound
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ---- repository.AuditLogs ----

func (s *Store) CreateAudit(ctx context.Context, l models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.CreatedAt = time.Now()
	s.audits = append(s.audits, l)
	return nil
}

func (s *Store) Audits() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLog(nil), s.audits...)
}

// Products / AuditLogs adapters so one Store satisfies all four repository
// interfaces despite the overlapping method names.

type productsView struct{ *Store }

func (v productsView) Create(ctx context.Context, name string, price int64, description string) (models.Product, error) {
	return v.CreateProduct(ctx, name, price, description)
}
func (v productsView) GetByID(ctx context.Context, id string) (models.Product, error) {
	return v.GetProductByID(ctx, id)
}
func (v productsView) List(ctx context.Context) ([]models.Product, error) {
	return v.ListProducts(ctx)
}

type auditView struct{ *Store }

func (v auditView) Create(ctx context.Context, l models.AuditLog) error {
	return v.CreateAudit(ctx, l)
}

func (s *Store) ProductsRepo() repository.Products { return productsView{s} }
func (s *Store) AuditRepo() repository.AuditLogs   { return auditView{s} }
