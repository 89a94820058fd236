package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

type argon2Params struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen uint32
}

var passwordParams = argon2Params{
	time:    3,
	memory:  64 * 1024,
	threads: 2,
	keyLen:  32,
	saltLen: 16,
}

// HashPassword derives an argon2id hash in the self-describing
// $argon2id$v=19$t,m,p$salt$hash format. Plaintext is never persisted.
func HashPassword(password string) ([]byte, error) {
	salt := make([]byte, passwordParams.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt,
		passwordParams.time, passwordParams.memory, passwordParams.threads, passwordParams.keyLen)

	encoded := fmt.Sprintf("$argon2id$v=19$t=%d,m=%d,p=%d$%s$%s",
		passwordParams.time, passwordParams.memory, passwordParams.threads,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key))

	return []byte(encoded), nil
}

// VerifyPassword re-derives the key with the parameters embedded in the
// stored hash and compares in constant time.
func VerifyPassword(password string, encodedHash []byte) (bool, error) {
	var (
		t       uint32
		memory  uint32
		threads uint8
		saltB64 string
		hashB64 string
	)

	if _, err := fmt.Sscanf(string(encodedHash), "$argon2id$v=19$t=%d,m=%d,p=%d$%s$%s",
		&t, &memory, &threads, &saltB64, &hashB64); err != nil {
		return false, fmt.Errorf("parse hash: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}
	stored, err := base64.StdEncoding.DecodeString(hashB64)
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(password), salt, t, memory, threads, uint32(len(stored)))

	return subtle.ConstantTimeCompare(stored, computed) == 1, nil
}
