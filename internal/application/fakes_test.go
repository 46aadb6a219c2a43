package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
	repo "github.com/oksasatya/go-finance-tracker/internal/domain/repository"
)

func ptr[T any](v T) *T { return &v }

// ---- users ----

type memUsers struct {
	mu     sync.Mutex
	seq    int
	byID   map[string]entity.User
	getErr error
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]entity.User{}} }

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.byID {
		if v.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("user-%d", m.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return repo.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// ---- transactions ----

type memTransactions struct {
	mu   sync.Mutex
	seq  int
	byID map[string]entity.Transaction
}

func newMemTransactions() *memTransactions {
	return &memTransactions{byID: map[string]entity.Transaction{}}
}

func clone(t entity.Transaction) entity.Transaction {
	if t.StartDate != nil {
		s := *t.StartDate
		t.StartDate = &s
	}
	return t
}

func (m *memTransactions) Create(_ context.Context, t *entity.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t.ID = fmt.Sprintf("tx-%d", m.seq)
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.byID[t.ID] = clone(*t)
	return nil
}

func (m *memTransactions) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := clone(t)
	return &c, nil
}

func (m *memTransactions) filter(keep func(entity.Transaction) bool) []entity.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Transaction{}
	for _, t := range m.byID {
		if keep(t) {
			out = append(out, clone(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (m *memTransactions) ListByOwner(_ context.Context, ownerID string) ([]entity.Transaction, error) {
	return m.filter(func(t entity.Transaction) bool { return t.OwnerID == ownerID }), nil
}

func (m *memTransactions) ListRecurring(_ context.Context, ownerID string) ([]entity.Transaction, error) {
	return m.filter(func(t entity.Transaction) bool { return t.OwnerID == ownerID && t.IsRecurring }), nil
}

func (m *memTransactions) Update(_ context.Context, t *entity.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[t.ID]; !ok {
		return repo.ErrNotFound
	}
	t.UpdatedAt = time.Now()
	m.byID[t.ID] = clone(*t)
	return nil
}

func (m *memTransactions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memTransactions) Summarize(_ context.Context, ownerID string, from, to time.Time) (entity.Summary, error) {
	var s entity.Summary
	for _, t := range m.filter(func(t entity.Transaction) bool { return t.OwnerID == ownerID }) {
		if !t.Date.Before(from) && !t.Date.After(to) {
			s.TotalAmount += t.Amount
			s.Count++
		}
	}
	return s, nil
}

func (m *memTransactions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// ---- side channels ----

type fakeTokens struct{ err error }

func (f fakeTokens) Issue(subjectID string) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return "token-for-" + subjectID, time.Now().Add(30 * 24 * time.Hour), nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []entity.AuditEntry
	err     error
}

func (a *memAudit) Insert(_ context.Context, e entity.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, e)
	return nil
}

func (a *memAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type memPublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (p *memPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body)
	return nil
}

type memCache struct {
	mu          sync.Mutex
	items       map[string]entity.SafeUser
	invalidated []string
}

func newMemCache() *memCache { return &memCache{items: map[string]entity.SafeUser{}} }

func (c *memCache) Get(_ context.Context, id string) (*entity.SafeUser, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.items[id]
	if !ok {
		return nil, false
	}
	return &u, true
}

func (c *memCache) Set(_ context.Context, u *entity.SafeUser) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[u.ID] = *u
}

func (c *memCache) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
}

type memIndex struct {
	mu      sync.Mutex
	docs    map[string]entity.Transaction
	removed []string
	hits    []string
	err     error
}

func newMemIndex() *memIndex { return &memIndex{docs: map[string]entity.Transaction{}} }

func (x *memIndex) Index(_ context.Context, _ entity.Kind, t *entity.Transaction) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.err != nil {
		return x.err
	}
	x.docs[t.ID] = *t
	return nil
}

func (x *memIndex) Remove(_ context.Context, _ entity.Kind, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, id)
	x.removed = append(x.removed, id)
	return x.err
}

func (x *memIndex) Search(_ context.Context, _ entity.Kind, _, _ string, size int) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.err != nil {
		return nil, x.err
	}
	if len(x.hits) > size {
		return x.hits[:size], nil
	}
	return x.hits, nil
}

var errStorage = errors.New("connection reset by peer")
