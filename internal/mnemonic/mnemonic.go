// Package mnemonic generates and canonicalizes the seed phrases used as
// account-recovery secrets.
package mnemonic

import (
	"errors"
	"math/rand/v2"
	"strings"
)

// Lengths enumerates the phrase sizes offered at signup.
var Lengths = []int{12, 16, 24}

// ErrInvalidLength occurs when a requested phrase length is non-positive or
// exceeds the wordlist.
var ErrInvalidLength = errors.New("invalid seed phrase length")

// Generate draws n distinct words by uniformly shuffling the full wordlist
// and keeping the first n in shuffle order. Word order is part of the secret.
func Generate(n int) ([]string, error) {
	if n < 1 || n > len(Wordlist) {
		return nil, ErrInvalidLength
	}
	shuffled := make([]string, len(Wordlist))
	copy(shuffled, Wordlist)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n:n], nil
}

// ValidLength reports whether n is one of the supported signup lengths.
func ValidLength(n int) bool {
	for _, l := range Lengths {
		if n == l {
			return true
		}
	}
	return false
}

// Canonical renders a phrase as its words joined by single spaces, with no
// leading or trailing space. The canonical form is what gets persisted and
// compared during recovery.
func Canonical(words []string) string {
	return strings.Join(words, " ")
}

// Normalize trims leading and trailing whitespace from a user-supplied
// phrase. Interior whitespace is kept as-is, so a phrase pasted with doubled
// spaces between words will not match its canonical form.
func Normalize(s string) string {
	return strings.TrimSpace(s)
}
