package auth

import (
	"chat-hub/errors"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for new hashes, OWASP baseline
const (
	Memory      = 64 * 1024 // KiB
	Iterations  = 3
	Parallelism = 2
	SaltLength  = 16
	KeyLength   = 32
)

// ErrMalformedHash is returned when a stored hash cannot be decoded.
var ErrMalformedHash = fmt.Errorf("%w: malformed password hash", errors.ErrInternalInvariant)

type hashParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

var encoding = base64.RawStdEncoding

// HashPassword returns a self-describing PHC string:
// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
func HashPassword(password string) (string, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt generation: %w", err)
	}
	p := hashParams{
		memory:      Memory,
		iterations:  Iterations,
		parallelism: Parallelism,
		salt:        salt,
	}
	p.key = p.derive(password, KeyLength)
	return p.encode(), nil
}

// ComparePassword re-derives the key with the parameters stored in the hash,
// so hashes made with older parameters keep verifying.
func ComparePassword(password, encodedHash string) (bool, error) {
	p, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}
	candidate := p.derive(password, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(p.key, candidate) == 1, nil
}

func (p hashParams) derive(password string, keyLength uint32) []byte {
	return argon2.IDKey([]byte(password), p.salt, p.iterations, p.memory, p.parallelism, keyLength)
}

func (p hashParams) encode() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.iterations, p.parallelism,
		encoding.EncodeToString(p.salt), encoding.EncodeToString(p.key))
}

func decodeHash(encodedHash string) (hashParams, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return hashParams{}, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return hashParams{}, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, parts[2])
	}

	var p hashParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return hashParams{}, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	var err error
	if p.salt, err = encoding.DecodeString(parts[4]); err != nil {
		return hashParams{}, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	if p.key, err = encoding.DecodeString(parts[5]); err != nil || len(p.key) == 0 {
		return hashParams{}, fmt.Errorf("%w: key", ErrMalformedHash)
	}
	return p, nil
}
