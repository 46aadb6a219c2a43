package repository

import (
	"context"

	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
)

type AuditRepository interface {
	Insert(ctx context.Context, e entity.AuditEntry) error
}
