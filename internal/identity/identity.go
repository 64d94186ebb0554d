// Package identity defines wallet account records and generates their
// opaque identifiers.
package identity

import (
	"math/rand/v2"
	"time"
)

// Identity is a user account record. ID and SeedPhrase are immutable after
// signup; Password may only rotate through a flow that re-verifies the seed
// phrase.
type Identity struct {
	ID         string
	Password   string
	SeedPhrase []string
	CreatedAt  time.Time
}

// IDLength is the fixed size of generated identifiers.
const IDLength = 10

// alphabet holds every character an identifier may contain: digits, upper
// and lower case letters, and symbols.
var alphabet = []byte("0123456789" +
	"abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"!@#$%^&*()_+={}[]|\\:;\"'<>,.?/")

// NewID returns a random opaque identifier: the alphabet is shuffled and the
// first IDLength characters are kept. Uniqueness is not checked here; the
// ledger engine retries the insert on collision.
func NewID() string {
	shuffled := make([]byte, len(alphabet))
	copy(shuffled, alphabet)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return string(shuffled[:IDLength])
}
