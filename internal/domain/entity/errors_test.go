package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "invalid tone: unsupported tone \"loud\"", invalid("tone", "unsupported tone %q", "loud").Error())
	assert.Equal(t, "invalid input: nothing to do", (&ValidationError{Message: "nothing to do"}).Error())
}

func TestValidationError_MatchesSentinel(t *testing.T) {
	wrapped := fmt.Errorf("parse request: %w", invalid("tone", "unsupported"))

	assert.ErrorIs(t, wrapped, ErrValidationFailed)
	assert.NotErrorIs(t, errors.New("validation failed"), ErrValidationFailed)

	var verr *ValidationError
	require.ErrorAs(t, wrapped, &verr)
	assert.Equal(t, "tone", verr.Field)
}
