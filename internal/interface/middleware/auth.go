package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-finance-tracker/internal/application"
	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
	"github.com/oksasatya/go-finance-tracker/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxUserKey   = "authUser"
	bearerPrefix = "Bearer "
)

// TokenVerifier is satisfied by *helpers.JWTManager.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// IdentityResolver is satisfied by *application.AuthService.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID string) (*entity.SafeUser, error)
}

// Auth is the authentication gate. It reads the bearer token from the
// Authorization header, verifies it, loads the identity without its password
// hash and stores it in the Gin context under CtxUserKey (and its id under
// CtxUserIDKey). Every verification failure gets the same 401 message.
func Auth(tokens TokenVerifier, identities IdentityResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			response.Error[any](c, http.StatusUnauthorized, application.MsgNoToken, nil)
			c.Abort()
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))

		userID, err := tokens.Verify(token)
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString("request_id")).Debug("token verification failed")
			}
			response.Error[any](c, http.StatusUnauthorized, application.MsgTokenFailed, nil)
			c.Abort()
			return
		}

		user, err := identities.ResolveIdentity(c.Request.Context(), userID)
		if err != nil {
			if application.CodeOf(err) == application.CodeNotFound {
				response.Error[any](c, http.StatusUnauthorized, application.MsgUserNotFound, nil)
				c.Abort()
				return
			}
			if logger != nil {
				logger.WithError(err).WithField("user_id", userID).Error("resolve identity failed")
			}
			response.Error[any](c, http.StatusInternalServerError, err.Error(), nil)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, user.ID)
		c.Set(CtxUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the identity attached by Auth.
func CurrentUser(c *gin.Context) (*entity.SafeUser, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.SafeUser)
	return u, ok && u != nil
}
