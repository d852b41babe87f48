package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessRuleMatchesReason(t *testing.T) {
	err := fmt.Errorf("create order: %w", BusinessRule(ErrDiscountBelowMinimum, "minimum is 1000"))

	assert.ErrorIs(t, err, ErrDiscountBelowMinimum)
	assert.NotErrorIs(t, err, ErrDiscountExhausted)
	assert.Equal(t, "create order: order amount below minimum for discount: minimum is 1000", err.Error())

	var businessErr *BusinessRuleError
	require.ErrorAs(t, err, &businessErr)
}

func TestInfraKeepsClassifiedErrors(t *testing.T) {
	notFound := NotFound("service", 42)

	assert.Same(t, notFound, Infra("load service", notFound))
	assert.Nil(t, Infra("noop", nil))

	raw := errors.New("connection reset")
	wrapped := Infra("insert order", raw)

	var infraErr *InfrastructureError
	require.ErrorAs(t, wrapped, &infraErr)
	assert.Equal(t, "insert order", infraErr.Op)
	assert.ErrorIs(t, wrapped, raw)
}

func TestValidationErrorListsAll(t *testing.T) {
	err := Validation("Field 'customer_name' is required", "Field 'items' is required")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Errors, 2)
	assert.Contains(t, err.Error(), "customer_name")
	assert.Contains(t, err.Error(), "items")
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "service 7 not found", NotFound("service", int64(7)).Error())
	assert.True(t, IsClassified(NotFound("order", "BGXYZ")))
	assert.False(t, IsClassified(errors.New("plain")))
}
