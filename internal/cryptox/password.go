// Package cryptox holds the password primitives of the local credential
// store: a deterministic digest used for equality checks and a generator for
// temporary reset passwords.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/dmitrijs2005/eden/internal/common"
)

const (
	// TemporaryPasswordLength is the length of passwords issued by a local reset.
	TemporaryPasswordLength = 10

	temporaryPasswordAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// HashPassword returns the hex encoded SHA-256 digest of password.
//
// The digest is unsalted and deterministic: the same password always yields
// the same 64-character string. Records written by earlier app versions use
// exactly this format, so it must not change.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether password hashes to hash.
func VerifyPassword(hash, password string) bool {
	candidate := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(candidate)) == 1
}

// TemporaryPassword returns a random lowercase alphanumeric password of
// TemporaryPasswordLength characters.
func TemporaryPassword() (string, error) {
	return common.RandString(TemporaryPasswordLength, temporaryPasswordAlphabet)
}
