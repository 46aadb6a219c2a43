package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-finance-tracker/internal/application"
	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
	"github.com/oksasatya/go-finance-tracker/internal/interface/middleware"
	"github.com/oksasatya/go-finance-tracker/pkg/response"
	"github.com/oksasatya/go-finance-tracker/pkg/validation"
)

// AuthService is the subset of *application.AuthService the handler needs.
type AuthService interface {
	Register(ctx context.Context, in application.RegisterInput, client application.ClientInfo) (*application.AuthResult, error)
	Login(ctx context.Context, email, password string, client application.ClientInfo) (*application.AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*entity.SafeUser, error)
	UpdateProfile(ctx context.Context, userID string, in application.UpdateProfileInput, client application.ClientInfo) (*application.AuthResult, error)
}

type AuthHandler struct {
	Svc    AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name       string `json:"name" binding:"required,personname"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,pwd"`
	University string `json:"university" binding:"max=200"`
	Address    string `json:"address" binding:"max=300"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name       *string `json:"name" binding:"omitempty,max=120"`
	Email      *string `json:"email" binding:"omitempty,email"`
	University *string `json:"university" binding:"omitempty,max=200"`
	Address    *string `json:"address" binding:"omitempty,max=300"`
	Password   *string `json:"password" binding:"omitempty,pwd"`
}

// authView is an identity plus its bearer token.
type authView struct {
	*entity.SafeUser
	Token          string    `json:"token"`
	TokenExpiresAt time.Time `json:"tokenExpiresAt"`
}

func toAuthView(r *application.AuthResult) authView {
	return authView{SafeUser: r.User, Token: r.Token, TokenExpiresAt: r.TokenExpiresAt}
}

func clientInfo(c *gin.Context) application.ClientInfo {
	return application.ClientInfo{IP: middleware.ClientIP(c), UserAgent: c.GetHeader("User-Agent")}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		University: req.University,
		Address:    req.Address,
	}, clientInfo(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toAuthView(res), "registration successful", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toAuthView(res), "login successful", nil)
}

// GetProfile GET /api/auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile", nil)
}

// UpdateProfile PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), application.UpdateProfileInput{
		Name:       req.Name,
		Email:      req.Email,
		University: req.University,
		Address:    req.Address,
		Password:   req.Password,
	}, clientInfo(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toAuthView(res), "profile updated", nil)
}
