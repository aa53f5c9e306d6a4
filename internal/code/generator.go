// Package code produces the short identifiers entries and rooms live under.
package code

import (
	"crypto/rand"
	"fmt"
)

// Length of every generated code.
const Length = 6

// Uppercase letters and digits with the easily confused characters
// (O/0, I/1) removed.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Generate returns a fixed-length uppercase code. Collisions are possible;
// callers treat a duplicate-code error from the store as retryable.
func Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
