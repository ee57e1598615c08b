// internal/words/words.go
//
// Word-level helpers shared by the validation pipeline and the game engine.
// Responsibilities:
//   - Normalize player input (trim + lowercase) and reject non-words early.
//   - Count shared letters for the letter-overlap fallback.
//   - Tokenize free text (dictionary definitions) into normalized words.
//
// Constraints:
//   • A word is a non-empty run of ASCII letters, lowercased by Normalize.
//   • Letter overlap is set-based: repeated letters count once.

package words

import (
	"errors"
	"strings"
)

var (
	// ErrEmpty is returned for blank input.
	ErrEmpty = errors.New("word cannot be empty")
	// ErrNotAlpha is returned when input contains anything but letters.
	ErrNotAlpha = errors.New("word must contain only letters")
)

// MinSharedLetters is the letter-overlap threshold for a valid link.
const MinSharedLetters = 4

// Normalize trims s, checks it is a single word of ASCII letters and
// lowercases it. The check runs on the raw input so that letters which only
// fold to ASCII (the Kelvin sign) are rejected.
func Normalize(s string) (string, error) {
	w := strings.TrimSpace(s)
	if w == "" {
		return "", ErrEmpty
	}
	if !isASCIILetters(w) {
		return "", ErrNotAlpha
	}
	return strings.ToLower(w), nil
}

// Equal reports whether a and b are the same word ignoring case and padding.
func Equal(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// SharedLetters counts distinct letters that occur in both words.
func SharedLetters(a, b string) int {
	var seen [26]bool
	for _, r := range strings.ToLower(a) {
		if i := idx(r); i >= 0 {
			seen[i] = true
		}
	}
	var counted [26]bool
	n := 0
	for _, r := range strings.ToLower(b) {
		i := idx(r)
		if i < 0 || !seen[i] || counted[i] {
			continue
		}
		counted[i] = true
		n++
	}
	return n
}

// Tokens splits text into lowercase alphabetic words.
func Tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return idx(r) < 0
	})
}

// ContainsToken reports whether word occurs as a whole token in text.
func ContainsToken(text, word string) bool {
	for _, t := range Tokens(text) {
		if t == word {
			return true
		}
	}
	return false
}

// idx maps a lowercase ASCII letter to 0..25, anything else to -1.
func idx(r rune) int {
	if r < 'a' || r > 'z' {
		return -1
	}
	return int(r - 'a')
}

// isASCIILetters reports whether s is all ASCII letters, either case.
func isASCIILetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
