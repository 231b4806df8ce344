package sessionx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// signedToken mints an HS256 JWT expiring at exp. The signature is never
// verified, only the exp claim is read.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	got, ok := tokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	require.True(t, got.Equal(exp), "want %v, got %v", exp, got)
}

func TestTokenExpiryOpaque(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"", "T-OPAQUE", "a.b.c"} {
		_, ok := tokenExpiry(token)
		require.False(t, ok, "token %q should have no readable expiry", token)
	}
}

func TestTokenExpiryNoExpClaim(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, ok := tokenExpiry(s)
	require.False(t, ok)
}
