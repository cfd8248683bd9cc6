package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testKey = "test-secret-key-for-unit-tests"

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestTokenIssueVerifyRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer([]byte(testKey), 0, WithIssuer("udata-test"))
	require.NoError(t, err)
	require.Equal(t, DefaultTokenTTL, issuer.DefaultTTL())

	token, err := issuer.Issue("7f1c9a52-3f3e-4d1f-9a57-2a5f6f3c2b10", 0)
	require.NoError(t, err)

	subject, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "7f1c9a52-3f3e-4d1f-9a57-2a5f6f3c2b10", subject)
}

func TestTokenVerifyExpiredAtExactBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	minting, err := NewTokenIssuer([]byte(testKey), time.Minute, WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)

	token, err := minting.Issue("user-1", time.Minute)
	require.NoError(t, err)

	justBefore, err := NewTokenIssuer([]byte(testKey), time.Minute, WithClock(fixedClock(issuedAt.Add(59*time.Second))))
	require.NoError(t, err)
	_, err = justBefore.Verify(token)
	require.NoError(t, err)

	atExpiry, err := NewTokenIssuer([]byte(testKey), time.Minute, WithClock(fixedClock(issuedAt.Add(time.Minute))))
	require.NoError(t, err)
	_, err = atExpiry.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenVerifyRejectsForeignSignature(t *testing.T) {
	signer, err := NewTokenIssuer([]byte("other-key"), time.Hour)
	require.NoError(t, err)
	token, err := signer.Issue("user-1", time.Hour)
	require.NoError(t, err)

	verifier, err := NewTokenIssuer([]byte(testKey), time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenVerifyRequiresSubjectAndExpiry(t *testing.T) {
	verifier, err := NewTokenIssuer([]byte(testKey), time.Hour)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testKey))
	require.NoError(t, err)
	_, err = verifier.Verify(noSubject)
	require.ErrorIs(t, err, ErrTokenMalformed)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-1",
	}).SignedString([]byte(testKey))
	require.NoError(t, err)
	_, err = verifier.Verify(noExpiry)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenVerifyRejectsGarbageAndOtherAlgorithms(t *testing.T) {
	verifier, err := NewTokenIssuer([]byte(testKey), time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify("not-a-jwt")
	require.ErrorIs(t, err, ErrTokenMalformed)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testKey))
	require.NoError(t, err)
	_, err = verifier.Verify(hs512)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestNewTokenIssuerRequiresKey(t *testing.T) {
	_, err := NewTokenIssuer(nil, time.Hour)
	require.ErrorIs(t, err, ErrEmptySigningKey)
}
