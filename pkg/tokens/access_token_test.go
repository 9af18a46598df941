package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-jwt-secret")

func TestSignAccessToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	token, exp, err := SignAccessToken(42, "ana@x.com", secret, now)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, now.Add(7*24*time.Hour), exp, time.Second)

	claims, err := AccessClaimsFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "ana@x.com", claims.Email)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	expired, _, err := SignAccessToken(1, "", secret, time.Now().Add(-8*24*time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret []byte
	}{
		{name: "garbage", token: "not-a-jwt", secret: secret},
		{name: "wrong secret", token: mustSign(t, 1), secret: []byte("other")},
		{name: "expired", token: expired, secret: secret},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := AccessClaimsFromToken(tt.token, tt.secret)
			require.Error(t, err)
			assert.Nil(t, claims)
		})
	}

	_, err = AccessClaimsFromToken(expired, secret)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestAccessClaimsFromToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := AccessClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(token, secret)
	require.Error(t, err)
}

func TestUserID_InvalidSubject(t *testing.T) {
	t.Parallel()

	c := &AccessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	_, err := c.UserID()
	assert.ErrorIs(t, err, ErrInvalidSubject)
}

func mustSign(t *testing.T, id uint) string {
	t.Helper()
	token, _, err := SignAccessToken(id, "", secret, time.Now())
	require.NoError(t, err)
	return token
}
