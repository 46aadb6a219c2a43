package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-finance-tracker/internal/application"
	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
	"github.com/oksasatya/go-finance-tracker/internal/interface/middleware"
	"github.com/oksasatya/go-finance-tracker/pkg/helpers"
	"github.com/oksasatya/go-finance-tracker/pkg/validation"
)

// ---- mock implementation ----

type mockAuthService struct {
	registerFn      func(application.RegisterInput) (*application.AuthResult, error)
	loginFn         func(email, password string) (*application.AuthResult, error)
	getProfileFn    func(userID string) (*entity.SafeUser, error)
	updateProfileFn func(userID string, in application.UpdateProfileInput) (*application.AuthResult, error)
}

func (m *mockAuthService) Register(_ context.Context, in application.RegisterInput, _ application.ClientInfo) (*application.AuthResult, error) {
	if m.registerFn != nil {
		return m.registerFn(in)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAuthService) Login(_ context.Context, email, password string, _ application.ClientInfo) (*application.AuthResult, error) {
	if m.loginFn != nil {
		return m.loginFn(email, password)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAuthService) GetProfile(_ context.Context, userID string) (*entity.SafeUser, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(userID)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAuthService) UpdateProfile(_ context.Context, userID string, in application.UpdateProfileInput, _ application.ClientInfo) (*application.AuthResult, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(userID, in)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

// fakeGate stands in for the authentication gate.
func fakeGate(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserIDKey, userID)
		c.Next()
	}
}

func newAuthTestRouter(svc AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()
	r := gin.New()
	h := NewAuthHandler(svc, helpers.NewDiscardLogger())
	g := r.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/profile", fakeGate("user-1"), h.GetProfile)
	g.PUT("/profile", fakeGate("user-1"), h.UpdateProfile)
	return r
}

func doRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		var raw string
		if s, ok := body.(string); ok {
			raw = s
		} else {
			b, _ := json.Marshal(body)
			raw = string(b)
		}
		req, _ = http.NewRequest(method, url, strings.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func authResult(id string) *application.AuthResult {
	return &application.AuthResult{
		User:           &entity.SafeUser{ID: id, Name: "Alice", Email: "alice@example.com"},
		Token:          "signed.jwt.token",
		TokenExpiresAt: time.Now().Add(helpers.TokenTTL),
	}
}

// ---- tests ----

func TestRegister(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		registerFn     func(application.RegisterInput) (*application.AuthResult, error)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "success - returns identity and token",
			body: map[string]string{"name": "Alice", "email": "alice@example.com", "password": "secret123"},
			registerFn: func(in application.RegisterInput) (*application.AuthResult, error) {
				return authResult("user-1"), nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "conflict - email taken is a 400",
			body: map[string]string{"name": "Alice", "email": "alice@example.com", "password": "secret123"},
			registerFn: func(application.RegisterInput) (*application.AuthResult, error) {
				return nil, application.ErrUserExists
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "User already exists",
		},
		{
			name:           "bad request - missing name",
			body:           map[string]string{"email": "alice@example.com", "password": "secret123"},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid payload",
		},
		{
			name:           "bad request - short password",
			body:           map[string]string{"name": "Alice", "email": "alice@example.com", "password": "123"},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid payload",
		},
		{
			name:           "bad request - malformed json",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid payload",
		},
		{
			name: "storage failure passes message through",
			body: map[string]string{"name": "Alice", "email": "alice@example.com", "password": "secret123"},
			registerFn: func(application.RegisterInput) (*application.AuthResult, error) {
				return nil, errors.New("server selection timeout")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "server selection timeout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthTestRouter(&mockAuthService{registerFn: tt.registerFn})
			w := doRequest(router, http.MethodPost, "/api/auth/register", tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			env := decode(t, w)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, env.Message)
			}
		})
	}
}

func TestRegister_ResponseHasTokenAndNoPassword(t *testing.T) {
	router := newAuthTestRouter(&mockAuthService{registerFn: func(application.RegisterInput) (*application.AuthResult, error) {
		return authResult("user-1"), nil
	}})
	w := doRequest(router, http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Alice", "email": "alice@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code)

	var data map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, "user-1", data["id"])
	assert.Equal(t, "Alice", data["name"])
	assert.Equal(t, "alice@example.com", data["email"])
	assert.Equal(t, "signed.jwt.token", data["token"])
	assert.NotContains(t, data, "password")
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		loginFn        func(email, password string) (*application.AuthResult, error)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "success - valid credentials return JWT",
			body: map[string]string{"email": "alice@example.com", "password": "secret123"},
			loginFn: func(string, string) (*application.AuthResult, error) {
				return authResult("user-1"), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unauthorised - invalid credentials",
			body: map[string]string{"email": "alice@example.com", "password": "wrongpass"},
			loginFn: func(string, string) (*application.AuthResult, error) {
				return nil, application.ErrInvalidCredentials
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "bad request - missing password",
			body:           map[string]string{"email": "alice@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unauthorised - malformed email gets the generic message",
			body: map[string]string{"email": "not-an-email", "password": "secret123"},
			loginFn: func(string, string) (*application.AuthResult, error) {
				return nil, application.ErrInvalidCredentials
			},
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Invalid email or password",
		},
		{
			name:           "bad request - missing email",
			body:           map[string]string{"password": "secret123"},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthTestRouter(&mockAuthService{loginFn: tt.loginFn})
			w := doRequest(router, http.MethodPost, "/api/auth/login", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, decode(t, w).Message)
			}
		})
	}
}

func TestGetProfile(t *testing.T) {
	var gotID string
	router := newAuthTestRouter(&mockAuthService{getProfileFn: func(userID string) (*entity.SafeUser, error) {
		gotID = userID
		return &entity.SafeUser{ID: userID, Name: "Alice", Email: "alice@example.com", University: "State"}, nil
	}})
	w := doRequest(router, http.MethodGet, "/api/auth/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", gotID)

	var data map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, "State", data["university"])
	assert.NotContains(t, data, "password")
}

func TestUpdateProfile(t *testing.T) {
	var got application.UpdateProfileInput
	router := newAuthTestRouter(&mockAuthService{updateProfileFn: func(userID string, in application.UpdateProfileInput) (*application.AuthResult, error) {
		got = in
		return authResult(userID), nil
	}})

	w := doRequest(router, http.MethodPut, "/api/auth/profile", `{"name":"Alice B","address":""}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, got.Name)
	assert.Equal(t, "Alice B", *got.Name)
	require.NotNil(t, got.Address, "explicit empty is forwarded")
	assert.Equal(t, "", *got.Address)
	assert.Nil(t, got.Email)
	assert.Nil(t, got.Password)

	w = doRequest(router, http.MethodPut, "/api/auth/profile", map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
