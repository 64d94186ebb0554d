package mnemonic

import (
	"testing"
)

func TestGenerateLengthAndDistinctWords(t *testing.T) {
	for _, n := range Lengths {
		words, err := Generate(n)
		if err != nil {
			t.Fatalf("generate %d: %v", n, err)
		}
		if len(words) != n {
			t.Fatalf("expected %d words, got %d", n, len(words))
		}
		seen := make(map[string]bool, n)
		for _, w := range words {
			if seen[w] {
				t.Fatalf("word %q repeated in phrase", w)
			}
			seen[w] = true
		}
	}
}

func TestGenerateInvalidLength(t *testing.T) {
	for _, n := range []int{0, -1, len(Wordlist) + 1} {
		if _, err := Generate(n); err != ErrInvalidLength {
			t.Fatalf("expected ErrInvalidLength for n=%d, got %v", n, err)
		}
	}

	// The full wordlist is still a valid draw.
	if _, err := Generate(len(Wordlist)); err != nil {
		t.Fatalf("generate full wordlist: %v", err)
	}
}

// TestGenerateUniformPositions checks that every word lands in the first,
// middle and last position of a 12-word phrase with frequency consistent
// with a uniform permutation, using a chi-square statistic per position.
func TestGenerateUniformPositions(t *testing.T) {
	const trialsPerWord = 200
	trials := trialsPerWord * len(Wordlist)
	positions := []int{0, 5, 11}

	counts := make(map[int]map[string]int, len(positions))
	for _, pos := range positions {
		counts[pos] = make(map[string]int, len(Wordlist))
	}
	for i := 0; i < trials; i++ {
		words, err := Generate(12)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		for _, pos := range positions {
			counts[pos][words[pos]]++
		}
	}

	expected := float64(trialsPerWord)
	for _, pos := range positions {
		var chi2 float64
		for _, w := range Wordlist {
			diff := float64(counts[pos][w]) - expected
			chi2 += diff * diff / expected
		}

		// 77 degrees of freedom; the p=0.001 critical value is ~122. A
		// uniform shuffle fails this less than once in a thousand runs.
		if chi2 > 122 {
			t.Errorf("position %d distribution not uniform: chi2=%.1f", pos, chi2)
		}
	}
}

func TestCanonical(t *testing.T) {
	got := Canonical([]string{"abandon", "baby", "cable"})
	if got != "abandon baby cable" {
		t.Fatalf("unexpected canonical form %q", got)
	}

	// Order is the secret: a reordering must produce a different canonical.
	other := Canonical([]string{"baby", "abandon", "cable"})
	if got == other {
		t.Fatal("reordered phrase produced the same canonical form")
	}
}

func TestNormalize(t *testing.T) {
	canonical := "abandon baby cable"
	for _, input := range []string{canonical, "  " + canonical, canonical + "\t\n", "  " + canonical + "  "} {
		if Normalize(input) != canonical {
			t.Fatalf("normalize(%q) = %q, want %q", input, Normalize(input), canonical)
		}
	}

	// Interior whitespace is deliberately preserved.
	if Normalize("abandon  baby") == "abandon baby" {
		t.Fatal("normalize must not collapse interior whitespace")
	}
}
