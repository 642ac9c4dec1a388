package accounts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		pw   string
		want bool
	}{
		{"Abc12345!", true},
		{"abc123", false},
		{"ALLCAPS123!", false},
		{"alllower123!", false},
		{"NoDigits!!x", false},
		{"NoSymbol123", false},
		{"Abc1234!", true},
		{"Abc123!", false},
		{"Пароль123!Aa", false},
		{"Abc 12345!", false},
		{"Abc12345#", true},
		{"Aa1!" + strings.Repeat("a", 68), true},
		{"Aa1!" + strings.Repeat("a", 69), false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.16s/%d", tt.pw, len(tt.pw)), func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePassword(tt.pw))
		})
	}
}

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash("Abc12345!")
	require.NoError(t, err)
	assert.NotEqual(t, "Abc12345!", hash)

	ok, err := h.Check(hash, "Abc12345!")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Check(hash, "Abc12345?")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Check("not-a-hash", "Abc12345!")
	assert.Error(t, err)
}

func TestNewHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).Cost)
	assert.Equal(t, 12, NewHasher(12).Cost)
}
