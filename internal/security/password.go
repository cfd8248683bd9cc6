// Package security hashes passwords and mints/verifies bearer tokens.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the plaintext limit applied identically at hash and verify time.
const MaxPasswordBytes = 72

// maxArgon2Memory caps the KiB a stored hash may ask Verify to allocate (1 GiB).
const maxArgon2Memory = 1024 * 1024

var (
	// ErrEmptyPassword is returned when hashing an empty plaintext.
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrUnsupportedHash is returned when the stored hash matches neither scheme.
	ErrUnsupportedHash = errors.New("unsupported password hash format")
)

// Argon2Params tunes the primary hashing scheme.
type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultArgon2Params keeps a single hash well under a second on server hardware.
var DefaultArgon2Params = Argon2Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 2,
	KeyLen:  32,
	SaltLen: 16,
}

// PasswordHasher hashes with argon2id and still accepts legacy bcrypt hashes.
type PasswordHasher struct {
	params Argon2Params
}

// NewPasswordHasher builds a hasher. Zero-valued params fall back to the defaults.
func NewPasswordHasher(params Argon2Params) *PasswordHasher {
	if params.Time == 0 || params.Memory == 0 || params.Threads == 0 || params.KeyLen == 0 || params.SaltLen == 0 {
		params = DefaultArgon2Params
	}
	return &PasswordHasher{params: params}
}

// Hash returns the argon2id PHC encoding of the (truncated) plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey(truncate(plaintext), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks plaintext against an encoded hash. needsRehash is true when the
// match came from the legacy scheme or from outdated argon2 parameters.
func (h *PasswordHasher) Verify(plaintext, encoded string) (ok bool, needsRehash bool, err error) {
	candidate := truncate(plaintext)

	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		salt, key, params, err := decodeArgon2(encoded)
		if err != nil {
			return false, false, err
		}
		computed := argon2.IDKey(candidate, salt, params.Time, params.Memory, params.Threads, uint32(len(key)))
		if subtle.ConstantTimeCompare(key, computed) != 1 {
			return false, false, nil
		}
		return true, params.Time != h.params.Time || params.Memory != h.params.Memory || params.Threads != h.params.Threads, nil
	case isBcrypt(encoded):
		err := bcrypt.CompareHashAndPassword([]byte(encoded), candidate)
		if err == nil {
			return true, true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("%w: %v", ErrUnsupportedHash, err)
	default:
		return false, false, ErrUnsupportedHash
	}
}

// LegacyHash produces a bcrypt hash. It exists for migrations and tests only.
func LegacyHash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword(truncate(plaintext), bcrypt.MinCost)
	return string(hash), err
}

func truncate(plaintext string) []byte {
	raw := []byte(plaintext)
	if len(raw) > MaxPasswordBytes {
		raw = raw[:MaxPasswordBytes]
	}
	return raw
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") || strings.HasPrefix(encoded, "$2b$") || strings.HasPrefix(encoded, "$2y$")
}

func decodeArgon2(encoded string) (salt, key []byte, params Argon2Params, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, nil, params, ErrUnsupportedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, params, ErrUnsupportedHash
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Threads); err != nil {
		return nil, nil, params, ErrUnsupportedHash
	}
	// argon2.IDKey panics below these bounds.
	if params.Time == 0 || params.Threads == 0 || params.Memory < 8*uint32(params.Threads) || params.Memory > maxArgon2Memory {
		return nil, nil, params, ErrUnsupportedHash
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, ErrUnsupportedHash
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, nil, params, ErrUnsupportedHash
	}

	return salt, key, params, nil
}
