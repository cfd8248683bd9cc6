package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var fastParams = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestPasswordHasherRoundTrip(t *testing.T) {
	hasher := NewPasswordHasher(fastParams)

	hash, err := hasher.Hash("pw123456")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$"))

	ok, rehash, err := hasher.Verify("pw123456", hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, rehash)

	ok, _, err = hasher.Verify("pw1234567", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPasswordHasherUsesFreshSalt(t *testing.T) {
	hasher := NewPasswordHasher(fastParams)

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestPasswordHasherRejectsEmpty(t *testing.T) {
	_, err := NewPasswordHasher(fastParams).Hash("")
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestPasswordHasherTruncatesAtLimit(t *testing.T) {
	hasher := NewPasswordHasher(fastParams)
	base := strings.Repeat("a", MaxPasswordBytes)

	hash, err := hasher.Hash(base + "tail-one")
	require.NoError(t, err)

	ok, _, err := hasher.Verify(base+"different-tail", hash)
	require.NoError(t, err)
	require.True(t, ok, "bytes past the limit are ignored on both sides")

	ok, _, err = hasher.Verify(base[:MaxPasswordBytes-1], hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPasswordHasherAcceptsLegacyBcrypt(t *testing.T) {
	hasher := NewPasswordHasher(fastParams)

	legacy, err := LegacyHash("legacy-secret")
	require.NoError(t, err)

	ok, rehash, err := hasher.Verify("legacy-secret", legacy)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, rehash)

	ok, rehash, err = hasher.Verify("wrong", legacy)
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, rehash)
}

func TestPasswordHasherFlagsOutdatedParams(t *testing.T) {
	old := NewPasswordHasher(fastParams)
	hash, err := old.Hash("pw123456")
	require.NoError(t, err)

	current := NewPasswordHasher(Argon2Params{Time: 2, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	ok, rehash, err := current.Verify("pw123456", hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, rehash)
}

func TestPasswordHasherUnsupportedFormat(t *testing.T) {
	hasher := NewPasswordHasher(fastParams)

	_, _, err := hasher.Verify("pw", "plaintext-password")
	require.ErrorIs(t, err, ErrUnsupportedHash)

	_, _, err = hasher.Verify("pw", "$argon2id$v=19$m=8192$broken")
	require.ErrorIs(t, err, ErrUnsupportedHash)
}

func TestPasswordHasherRejectsOutOfBoundsParams(t *testing.T) {
	hasher := NewPasswordHasher(fastParams)

	cases := map[string]string{
		"zero threads":   "$argon2id$v=19$m=8192,t=1,p=0$c2FsdHNhbHQ$a2V5a2V5",
		"zero time":      "$argon2id$v=19$m=8192,t=0,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"memory too low": "$argon2id$v=19$m=8,t=1,p=4$c2FsdHNhbHQ$a2V5a2V5",
		"memory too big": "$argon2id$v=19$m=4194304,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			require.NotPanics(t, func() {
				ok, rehash, err := hasher.Verify("x", encoded)
				require.ErrorIs(t, err, ErrUnsupportedHash)
				require.False(t, ok)
				require.False(t, rehash)
			})
		})
	}
}
