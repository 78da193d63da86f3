package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_FormatAndVerify(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("p@ssw0rd")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"), "expected PHC prefix, got %q", hash)

	ok, err := VerifyPassword("p@ssw0rd", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashPassword_SaltedHashesDiffer(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b, "salts must make equal passwords hash differently")
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$not-base64!$aGFzaA",
		"$argon2id$bogus",
	}

	for _, h := range tests {
		_, err := VerifyPassword("p", h)
		require.Error(t, err, "hash %q should be rejected", h)
	}
}
