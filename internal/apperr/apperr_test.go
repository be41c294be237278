package apperr

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindInvalidCredentials, fiber.StatusUnauthorized},
		{KindForbidden, fiber.StatusForbidden},
		{KindNotFound, fiber.StatusNotFound},
		{KindValidation, fiber.StatusBadRequest},
		{KindInvalidState, fiber.StatusConflict},
		{KindInsufficientStock, fiber.StatusConflict},
		{KindConflict, fiber.StatusConflict},
		{Kind("something_else"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestInsufficientStockCarriesItem(t *testing.T) {
	err := InsufficientStock(17)
	require.True(t, IsKind(err, KindInsufficientStock))
	assert.Equal(t, uint(17), err.StockItemID)
	assert.Contains(t, err.Message, "17")
}

func TestIsKindThroughWrapping(t *testing.T) {
	inner := NotFound("Branch")
	wrapped := fmt.Errorf("loading profile: %w", inner)

	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindForbidden))

	appErr, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, appErr.Kind)
}

func TestInvalidCredentialsSingleMessage(t *testing.T) {
	// Unknown email and wrong password must produce the same message.
	assert.Equal(t, InvalidCredentials().Message, InvalidCredentials().Message)
	assert.Equal(t, "Invalid email or password", InvalidCredentials().Message)
}
