package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	tok, err := issuer.GenerateToken(42, "a@example.com")
	require.NoError(t, err)

	claims, err := issuer.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)

	uid, err := UserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)
}

func TestTokenExpiresAfterTTL(t *testing.T) {
	issuer := NewTokenIssuer("secret", 60*time.Minute)
	base := time.Now()
	issuer.now = func() time.Time { return base }

	tok, err := issuer.GenerateToken(1, "a@example.com")
	require.NoError(t, err)

	issuer.now = func() time.Time { return base.Add(59 * time.Minute) }
	_, err = issuer.VerifyToken(tok)
	assert.NoError(t, err)

	issuer.now = func() time.Time { return base.Add(61 * time.Minute) }
	_, err = issuer.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsWrongSecretAndAlgorithm(t *testing.T) {
	tok, err := NewTokenIssuer("one", time.Hour).GenerateToken(1, "a@example.com")
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour).VerifyToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{UserID: "1"})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewTokenIssuer("one", time.Hour).VerifyToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour).GenerateToken(1, "a@example.com")
	assert.Error(t, err)
}
