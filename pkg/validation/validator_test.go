package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type signup struct {
	Name     string `json:"name" binding:"required,personname"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

func TestToDetails(t *testing.T) {
	Init()
	Init()

	err := binding.Validator.ValidateStruct(&signup{Email: "nope", Password: "123"})
	details := ToDetails(err)
	assert.Equal(t, map[string]string{
		"name":     "is required",
		"email":    "must be a valid email",
		"password": "must be between 6 and 72 characters long",
	}, details)

	assert.NoError(t, binding.Validator.ValidateStruct(&signup{Name: "A", Email: "a@example.com", Password: "secret123"}))
	assert.Nil(t, ToDetails(nil))
}
