package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	for _, algo := range []string{"argon2id", "bcrypt"} {
		algo := algo
		t.Run(algo, func(t *testing.T) {
			t.Parallel()
			hash, err := HashPassword("geheim", algo)
			require.NoError(t, err)

			ok, err := CheckPassword(hash, "geheim")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = CheckPassword(hash, "falsch")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestCheckPasswordRejectsMalformedHashes(t *testing.T) {
	t.Parallel()

	tests := []string{
		"plaintext",
		"$argon2id$v=19$m=65536,t=1,p=4$onlysalt",
		"$argon2id$v=99$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
	}
	for _, hash := range tests {
		ok, err := CheckPassword(hash, "geheim")
		assert.Error(t, err, hash)
		assert.False(t, ok)
	}

	_, err := HashPassword("x", "md5")
	assert.Error(t, err)
}
