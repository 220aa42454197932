package validators

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timingInput struct {
	Day   string `validate:"required,weekday"`
	Start string `validate:"required,clock"`
	On    string `validate:"omitempty,civildate"`
}

func TestRegisterOn(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterOn(v))

	assert.NoError(t, v.Struct(timingInput{Day: "Monday", Start: "09:30", On: "2024-06-03"}))
	assert.NoError(t, v.Struct(timingInput{Day: "Sunday", Start: "23:59"}))

	assert.Error(t, v.Struct(timingInput{Day: "monday", Start: "09:30"}))
	assert.Error(t, v.Struct(timingInput{Day: "Funday", Start: "09:30"}))
	assert.Error(t, v.Struct(timingInput{Day: "Monday", Start: "25:00"}))
	assert.Error(t, v.Struct(timingInput{Day: "Monday", Start: "09:30", On: "03/06/2024"}))
}

func TestIsEmailDomainValid_Malformed(t *testing.T) {
	assert.False(t, IsEmailDomainValid("no-at-sign"))
	assert.False(t, IsEmailDomainValid("trailing@"))
}
