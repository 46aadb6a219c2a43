package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
	repo "github.com/oksasatya/go-finance-tracker/internal/domain/repository"
	"github.com/oksasatya/go-finance-tracker/pkg/helpers"
	"github.com/oksasatya/go-finance-tracker/pkg/mailer"
	tpl "github.com/oksasatya/go-finance-tracker/pkg/mailer/templates"
)

// AuthService owns identities: registration, login, profile reads and
// updates, and identity resolution for the authentication gate.
// Cache, Audit and Notifier are optional.
type AuthService struct {
	Repo     repo.UserRepository
	Tokens   TokenIssuer
	Cache    IdentityCache
	Audit    repo.AuditRepository
	Notifier Publisher
	Logger   *logrus.Logger
	AppName  string
	AppURL   string
}

func NewAuthService(users repo.UserRepository, tokens TokenIssuer, cache IdentityCache, audit repo.AuditRepository, notifier Publisher, logger *logrus.Logger, appName, appURL string) *AuthService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &AuthService{
		Repo:     users,
		Tokens:   tokens,
		Cache:    cache,
		Audit:    audit,
		Notifier: notifier,
		Logger:   logger,
		AppName:  appName,
		AppURL:   appURL,
	}
}

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	University string
	Address    string
}

// UpdateProfileInput carries only the fields the client sent. Empty Name,
// Email and Password keep the stored value; University and Address may be
// cleared with an explicit empty string.
type UpdateProfileInput struct {
	Name       *string
	Email      *string
	University *string
	Address    *string
	Password   *string
}

// AuthResult is an identity plus a freshly minted token.
type AuthResult struct {
	User           *entity.SafeUser
	Token          string
	TokenExpiresAt time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnCompare spends the same bcrypt work as a real comparison so unknown
// emails and wrong passwords take similar time.
func burnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = helpers.HashPassword("not-a-real-password")
	})
	_ = helpers.CompareHashAndPassword(dummyHash, password)
}

// Register creates an identity and returns it with a token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, client ClientInfo) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	existing, err := s.Repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Name:       strings.TrimSpace(in.Name),
		Email:      email,
		Password:   hash,
		University: in.University,
		Address:    in.Address,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, entity.AuditEntry{UserID: u.ID, Email: u.Email, Action: entity.AuditRegister}, client)
	s.notify(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: tpl.Welcome,
		Data:     tpl.NewWelcomeData(s.AppName, s.AppURL, u.Name, u.Email, tpl.WithTime(time.Now())),
	})
	return res, nil
}

// Login checks the credentials. Unknown email and wrong password produce the
// same error.
func (s *AuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	email = normalizeEmail(email)
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if u == nil {
		burnCompare(password)
		s.audit(ctx, entity.AuditEntry{Email: email, Action: entity.AuditLoginFailed, Metadata: map[string]any{"reason": "unknown_email"}}, client)
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		s.audit(ctx, entity.AuditEntry{UserID: u.ID, Email: email, Action: entity.AuditLoginFailed, Metadata: map[string]any{"reason": "bad_password"}}, client)
		return nil, ErrInvalidCredentials
	}
	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, entity.AuditEntry{UserID: u.ID, Email: u.Email, Action: entity.AuditLoginSuccess}, client)
	return res, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.SafeUser, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u.Safe(), nil
}

// UpdateProfile applies in to the identity and returns it with a new token.
// The password is hashed only when a new one is supplied.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput, client ClientInfo) (*AuthResult, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	changes := map[string]string{}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" && name != u.Name {
			u.Name = name
			changes["name"] = name
		}
	}
	if in.Email != nil {
		if email := normalizeEmail(*in.Email); email != "" && email != u.Email {
			other, err := s.Repo.GetByEmail(ctx, email)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return nil, err
			}
			if other != nil && other.ID != u.ID {
				return nil, ErrUserExists
			}
			changes["email"] = email
			u.Email = email
		}
	}
	if in.University != nil && *in.University != u.University {
		u.University = *in.University
		changes["university"] = u.University
	}
	if in.Address != nil && *in.Address != u.Address {
		u.Address = *in.Address
		changes["address"] = u.Address
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := helpers.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
		changes["password"] = "changed"
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateEmail):
			return nil, ErrUserExists
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, u.ID)
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		fields := make([]string, 0, len(changes))
		for k := range changes {
			fields = append(fields, k)
		}
		s.audit(ctx, entity.AuditEntry{UserID: u.ID, Email: u.Email, Action: entity.AuditProfileUpdate, Metadata: map[string]any{"fields": fields}}, client)
		s.notify(ctx, mailer.EmailJob{
			To:       u.Email,
			Template: tpl.ProfileUpdated,
			Data: tpl.NewProfileUpdatedData(s.AppName, s.AppURL, u.Name, u.Email, changes,
				tpl.WithTime(time.Now()), tpl.WithIP(client.IP), tpl.WithUserAgent(client.UserAgent)),
		})
	}
	return res, nil
}

// ResolveIdentity loads the password-free identity for a verified token
// subject, consulting the cache first. Returns ErrUserNotFound when the
// subject no longer exists.
func (s *AuthService) ResolveIdentity(ctx context.Context, userID string) (*entity.SafeUser, error) {
	if s.Cache != nil {
		if u, ok := s.Cache.Get(ctx, userID); ok {
			return u, nil
		}
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	safe := u.Safe()
	if s.Cache != nil {
		s.Cache.Set(ctx, safe)
	}
	return safe, nil
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		return nil, err
	}
	return &AuthResult{User: u.Safe(), Token: token, TokenExpiresAt: exp}, nil
}

func (s *AuthService) audit(ctx context.Context, e entity.AuditEntry, client ClientInfo) {
	if s.Audit == nil {
		return
	}
	e.IP = client.IP
	e.UserAgent = client.UserAgent
	if err := s.Audit.Insert(ctx, e); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"action": e.Action, "user_id": e.UserID}).Warn("audit insert failed")
	}
}

func (s *AuthService) notify(ctx context.Context, job mailer.EmailJob) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("template", job.Template).Warn("failed to publish email job")
	}
}
