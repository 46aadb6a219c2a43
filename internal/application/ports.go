package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
)

// TokenIssuer mints bearer tokens; satisfied by *helpers.JWTManager.
type TokenIssuer interface {
	Issue(subjectID string) (string, time.Time, error)
}

// IdentityCache holds password-free identities for the authentication gate.
type IdentityCache interface {
	Get(ctx context.Context, id string) (*entity.SafeUser, bool)
	Set(ctx context.Context, u *entity.SafeUser)
	Invalidate(ctx context.Context, id string)
}

// Publisher enqueues notification jobs; satisfied by *helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// TransactionIndex is the full-text index over an owner's transactions.
type TransactionIndex interface {
	Index(ctx context.Context, kind entity.Kind, t *entity.Transaction) error
	Remove(ctx context.Context, kind entity.Kind, id string) error
	Search(ctx context.Context, kind entity.Kind, ownerID, query string, size int) ([]string, error)
}

// ClientInfo is request metadata recorded in the audit trail.
type ClientInfo struct {
	IP        string
	UserAgent string
}
