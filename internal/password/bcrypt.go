// Package password implements one-way hashing and verification of user
// passwords. Digests are bcrypt: salted per call, cost-parameterized, and
// compared in constant time, so equal plaintexts never share a digest and a
// wrong password is just `false`, never an error kind of its own.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is used when the codec is constructed with a zero cost.
const DefaultCost = bcrypt.DefaultCost

// Codec hashes and verifies passwords with a fixed cost.
//
// Codec is immutable after construction and safe for concurrent use.
type Codec struct {
	cost int
}

// NewCodec returns a Codec with the given bcrypt cost. A cost of 0 selects
// DefaultCost; out-of-range costs are rejected.
func NewCodec(cost int) (*Codec, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Codec{cost: cost}, nil
}

// Hash returns the digest of plaintext. Each call salts independently, so
// hashing the same plaintext twice yields different digests.
func (c *Codec) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), c.cost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch, an empty
// digest, and a digest that is not valid bcrypt all report false.
func (c *Codec) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
