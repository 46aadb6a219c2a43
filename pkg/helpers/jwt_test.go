package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_IssueVerify(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewJWTManager("test-secret").WithClock(func() time.Time { return now })

	tok, exp, err := m.Issue("65f1c0ffee0000000000abcd")
	require.NoError(t, err)
	assert.Equal(t, now.Add(TokenTTL), exp)
	assert.Equal(t, 30*24*time.Hour, TokenTTL)

	sub, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "65f1c0ffee0000000000abcd", sub)
}

func TestJWTManager_VerifyFailures(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewJWTManager("test-secret").WithClock(func() time.Time { return issuedAt })
	tok, _, err := m.Issue("user-1")
	require.NoError(t, err)

	other, _, err := NewJWTManager("another-secret").Issue("user-1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		mgr   *JWTManager
		token string
		want  error
	}{
		{
			name:  "expired after thirty days",
			mgr:   NewJWTManager("test-secret").WithClock(func() time.Time { return issuedAt.Add(TokenTTL + time.Minute) }),
			token: tok,
			want:  ErrTokenExpired,
		},
		{
			name:  "signed with another key",
			mgr:   NewJWTManager("test-secret"),
			token: other,
			want:  ErrTokenInvalid,
		},
		{
			name:  "tampered signature",
			mgr:   m,
			token: tok[:len(tok)-4] + "abcd",
			want:  ErrTokenInvalid,
		},
		{
			name:  "not a jwt",
			mgr:   m,
			token: "not-a-token",
			want:  ErrTokenMalformed,
		},
		{
			name:  "empty",
			mgr:   m,
			token: "",
			want:  ErrTokenMalformed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := tt.mgr.Verify(tt.token)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, sub)
		})
	}
}

func TestJWTManager_StillValidJustBeforeExpiry(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tok, _, err := NewJWTManager("k").WithClock(func() time.Time { return issuedAt }).Issue("u")
	require.NoError(t, err)

	m := NewJWTManager("k").WithClock(func() time.Time { return issuedAt.Add(TokenTTL - time.Minute) })
	sub, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u", sub)
}
