package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointer/shared/password"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid", "correct-horse", nil},
		{"empty", "", password.ErrEmptyPassword},
		{"too short", "short", password.ErrPasswordLength},
		{"too long", strings.Repeat("a", password.MaxLength+1), password.ErrPasswordLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := password.Hash(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hash)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, tt.input, hash)
		})
	}
}

func TestVerify(t *testing.T) {
	hash, err := password.Hash("correct-horse")
	require.NoError(t, err)

	assert.NoError(t, password.Verify("correct-horse", hash))
	assert.ErrorIs(t, password.Verify("wrong-horse", hash), password.ErrInvalidPassword)
	assert.ErrorIs(t, password.Verify("", hash), password.ErrInvalidPassword)
	assert.ErrorIs(t, password.Verify("correct-horse", ""), password.ErrInvalidPassword)
	assert.Error(t, password.Verify("correct-horse", "not-a-bcrypt-hash"))
}
