package auth

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// CodeChecker compares a submitted access code with the configured one,
// held either as plain text or as a bcrypt hash. The hash wins when both
// are set.
type CodeChecker struct {
	plainSum [sha256.Size]byte
	hasPlain bool
	hash     []byte
}

func NewCodeChecker(plain, bcryptHash string) *CodeChecker {
	c := &CodeChecker{}
	if plain != "" {
		c.plainSum = sha256.Sum256([]byte(plain))
		c.hasPlain = true
	}
	if bcryptHash != "" {
		c.hash = []byte(bcryptHash)
	}
	return c
}

// Configured reports whether any access code is set.
func (c *CodeChecker) Configured() bool {
	return c.hasPlain || len(c.hash) > 0
}

// Check reports whether code matches. Plain codes are compared in
// constant time over their digests.
func (c *CodeChecker) Check(code string) bool {
	if len(c.hash) > 0 {
		return bcrypt.CompareHashAndPassword(c.hash, []byte(code)) == nil
	}
	if !c.hasPlain {
		return false
	}
	sum := sha256.Sum256([]byte(code))
	return subtle.ConstantTimeCompare(sum[:], c.plainSum[:]) == 1
}
