package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"portal/internal/configuration"

	"github.com/alexedwards/argon2id"
)

var argonParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  32,
	KeyLength:   32,
}

// CreateHash hashes passwords and reset tokens alike.
func CreateHash(secret string) (string, error) {
	hash, err := argon2id.CreateHash(secret, argonParams)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return hash, nil
}

// CompareHash treats a malformed hash as a mismatch.
func CompareHash(secret string, hash string) bool {
	match, err := argon2id.ComparePasswordAndHash(secret, hash)
	return err == nil && match
}

// GenerateResetToken returns the hex form of ResetTokenBytes random bytes.
func GenerateResetToken() (string, error) {
	raw := make([]byte, configuration.ResetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
