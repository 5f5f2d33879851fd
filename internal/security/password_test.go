package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-passphrase")
	require.NoError(t, err)
	require.Contains(t, string(hash), "$argon2id$v=19$")

	ok, err := VerifyPassword("s3cret-passphrase", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("wrong-passphrase", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("same-password")
	require.NoError(t, err)
	second, err := HashPassword("same-password")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	_, err := VerifyPassword("anything", []byte("not-an-argon2-hash"))
	require.Error(t, err)
}

func TestDecoyHashVerifiable(t *testing.T) {
	decoy := DecoyHash()

	ok, err := VerifyPassword("any-guess", decoy)
	require.NoError(t, err)
	require.False(t, ok)
}
