package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	data := NewWelcomeData("Finance Tracker", "https://app.example.com", "Alice", "alice@example.com",
		WithTime(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))

	subject, text, html, err := Render(Welcome, data)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Finance Tracker", subject)
	assert.Contains(t, text, "Alice")
	assert.Contains(t, html, "Alice")
}

func TestRenderProfileUpdatedEscapesHTML(t *testing.T) {
	data := NewProfileUpdatedData("", "", "<b>Mallory</b>", "m@example.com",
		map[string]string{"name": "<b>Mallory</b>", "password": "changed"},
		WithIP("203.0.113.7"), WithUserAgent("curl/8"))

	subject, text, html, err := Render(ProfileUpdated, data)
	require.NoError(t, err)
	assert.NotEmpty(t, subject)
	assert.Contains(t, text, "password: changed")
	assert.Contains(t, text, "203.0.113.7")
	assert.NotContains(t, html, "<b>Mallory</b>")
	assert.Contains(t, html, "&lt;b&gt;Mallory&lt;/b&gt;")
	assert.Contains(t, text, "Finance Tracker", "default app name")
}

func TestRenderUnknown(t *testing.T) {
	assert.False(t, Known("verify_email"))
	_, _, _, err := Render("verify_email", map[string]any{})
	assert.Error(t, err)
}

func TestDefaultFn(t *testing.T) {
	assert.Equal(t, "x", defaultFn("x", ""))
	assert.Equal(t, "x", defaultFn("x", nil))
	assert.Equal(t, "x", defaultFn("x", 0))
	assert.Equal(t, "v", defaultFn("x", "v"))
	assert.Equal(t, 3, defaultFn("x", 3))
}
