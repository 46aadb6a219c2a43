package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
)

// TransactionRepository stores the records of a single kind.
// GetByID returns ErrNotFound for unknown and malformed ids alike.
type TransactionRepository interface {
	Create(ctx context.Context, t *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Transaction, error)
	ListRecurring(ctx context.Context, ownerID string) ([]entity.Transaction, error)
	Update(ctx context.Context, t *entity.Transaction) error
	Delete(ctx context.Context, id string) error
	Summarize(ctx context.Context, ownerID string, from, to time.Time) (entity.Summary, error)
}
