package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	h, err := HashPassword("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", h)

	require.True(t, CheckPassword(h, "secret1"))
	require.False(t, CheckPassword(h, "secret2"))
	require.False(t, CheckPassword("not-a-bcrypt-hash", "secret1"))
}
