// Package cryptox hashes and verifies identity passwords with argon2id.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	keySize  = 32
)

// NewSalt returns a fresh random salt for HashPassword.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

// VerifyPassword compares in constant time.
func VerifyPassword(password, salt, hash []byte) bool {
	candidate := HashPassword(password, salt)
	defer common.WipeByteArray(candidate)
	return subtle.ConstantTimeCompare(candidate, hash) == 1
}
