package couponcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Alphabet is the character set coupon codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the fixed length of every generated code.
const Length = 12

// Generate returns a random fixed-length code over Alphabet. Uniqueness is
// not checked here; the store's unique index rejects the rare collision.
func Generate() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))
	code := make([]byte, Length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate coupon code: %s", err)
		}
		code[i] = Alphabet[n.Int64()]
	}
	return string(code), nil
}

// Validate checks that s has the shape of a generated coupon code.
func Validate(s string) error {
	if len(s) != Length {
		return fmt.Errorf("invalid code length: expected %d characters, got %d", Length, len(s))
	}
	for _, r := range s {
		if !strings.ContainsRune(Alphabet, r) {
			return fmt.Errorf("invalid code character: %q", r)
		}
	}
	return nil
}
