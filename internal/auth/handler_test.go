package auth

import (
	"testing"

	"franchise-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantOK   bool
	}{
		{"valid mixed password", "Sup3rSecret", true},
		{"too short", "Ab1", false},
		{"no uppercase", "lowercase123", false},
		{"no lowercase", "UPPERCASE123", false},
		{"no digit", "NoDigitsHere", false},
		{"exactly eight chars", "Abcdef12", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperr.IsKind(err, apperr.KindValidation))
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("owner@branch.example"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("spaces in@address.example"))
	assert.Error(t, ValidateEmail(""))
}

func TestSanitizePhone(t *testing.T) {
	assert.Equal(t, "905551234567", SanitizePhone("+90 (555) 123-45-67"))
	assert.Equal(t, "", SanitizePhone("no digits"))
	assert.Equal(t, "123", SanitizePhone("123"))
}
