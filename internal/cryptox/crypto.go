// Package cryptox holds the password hashing and one-time code helpers used
// by the authentication flow.
package cryptox

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// randReader is a seam for tests.
var randReader io.Reader = rand.Reader

// HashPassword returns a salted bcrypt hash of password. A zero cost selects
// bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword reports whether password matches the stored bcrypt hash.
// The salt and cost are read from the hash itself.
func ComparePassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NumericCode returns a zero-padded decimal code of exactly digits digits,
// drawn uniformly from a cryptographically secure source.
func NumericCode(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("invalid code width: %d", digits)
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(randReader, limit)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	s := n.String()
	for len(s) < digits {
		s = "0" + s
	}
	return s, nil
}
