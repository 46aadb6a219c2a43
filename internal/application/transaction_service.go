package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
	repo "github.com/oksasatya/go-finance-tracker/internal/domain/repository"
	"github.com/oksasatya/go-finance-tracker/pkg/helpers"
)

// ErrSearchUnavailable is returned by Search when no index is configured.
var ErrSearchUnavailable = errors.New("search is not configured")

const maxSearchResults = 50

// TransactionService is the recurring-transaction capability for one kind.
// The same code serves incomes and expenses; only Kind differs.
type TransactionService struct {
	Kind   entity.Kind
	Repo   repo.TransactionRepository
	Policy RecurringPolicy
	Index  TransactionIndex
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewTransactionService(kind entity.Kind, transactions repo.TransactionRepository, index TransactionIndex, logger *logrus.Logger) *TransactionService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &TransactionService{
		Kind:   kind,
		Repo:   transactions,
		Policy: RecurringPolicy{Kind: kind},
		Index:  index,
		Logger: logger,
		Now:    time.Now,
	}
}

// sameID compares identifiers that may differ in case or padding.
func sameID(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// owned fetches id and checks it belongs to ownerID. verb names the action
// in the Forbidden message ("view", "update", "delete").
func (s *TransactionService) owned(ctx context.Context, ownerID, id, verb string) (*entity.Transaction, error) {
	t, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFound(s.Kind.Title + " not found")
		}
		return nil, err
	}
	if !sameID(t.OwnerID, ownerID) {
		return nil, Forbidden("Not authorized to " + verb + " this " + s.Kind.Name)
	}
	return t, nil
}

// List returns the owner's records, newest date first.
func (s *TransactionService) List(ctx context.Context, ownerID string) ([]entity.Transaction, error) {
	return s.Repo.ListByOwner(ctx, ownerID)
}

func (s *TransactionService) ListRecurring(ctx context.Context, ownerID string) ([]entity.Transaction, error) {
	return s.Repo.ListRecurring(ctx, ownerID)
}

// Summary totals the owner's records dated within [from, to].
func (s *TransactionService) Summary(ctx context.Context, ownerID string, from, to time.Time) (entity.Summary, error) {
	if to.Before(from) {
		return entity.Summary{}, BadRequest("from must not be after to")
	}
	return s.Repo.Summarize(ctx, ownerID, from, to)
}

func (s *TransactionService) Get(ctx context.Context, ownerID, id string) (*entity.Transaction, error) {
	return s.owned(ctx, ownerID, id, "view")
}

// Create validates in and stores a new record owned by ownerID.
func (s *TransactionService) Create(ctx context.Context, ownerID string, in TransactionInput) (*entity.Transaction, error) {
	t, err := s.Policy.Build(ownerID, in, s.Now())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.index(ctx, t)
	return t, nil
}

// Update applies a partial update to a record the owner holds. The owner
// itself is never changed.
func (s *TransactionService) Update(ctx context.Context, ownerID, id string, in TransactionInput) (*entity.Transaction, error) {
	t, err := s.owned(ctx, ownerID, id, "update")
	if err != nil {
		return nil, err
	}
	if err := s.Policy.Apply(t, in); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFound(s.Kind.Title + " not found")
		}
		return nil, err
	}
	s.index(ctx, t)
	return t, nil
}

// Delete removes a record the owner holds.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id string) error {
	t, err := s.owned(ctx, ownerID, id, "delete")
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, t.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound(s.Kind.Title + " not found")
		}
		return err
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, s.Kind, t.ID); err != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"kind": s.Kind.Name, "id": t.ID}).Warn("search index remove failed")
		}
	}
	return nil
}

// Search runs a full-text query over the owner's records. Hits that no
// longer exist or belong to someone else are skipped.
func (s *TransactionService) Search(ctx context.Context, ownerID, query string, size int) ([]entity.Transaction, error) {
	if s.Index == nil {
		return nil, ErrSearchUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, BadRequest("Search query is required")
	}
	if size <= 0 || size > maxSearchResults {
		size = 10
	}
	ids, err := s.Index.Search(ctx, s.Kind, ownerID, query, size)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Transaction, 0, len(ids))
	for _, id := range ids {
		t, err := s.Repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if sameID(t.OwnerID, ownerID) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *TransactionService) index(ctx context.Context, t *entity.Transaction) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, s.Kind, t); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"kind": s.Kind.Name, "id": t.ID}).Warn("search index failed")
	}
}
