package xlate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// inline markup: opening, closing, and self-closing tags
	reTag = regexp.MustCompile(`<[^>]+>`)

	// platform placeholders: {{name}}, {name}, %s, %1$s
	rePlaceholder = regexp.MustCompile(`\{\{[^}]+\}\}|\{[^}]+\}|%(?:\d+\$)?[sdvfq]`)

	reSpace = regexp.MustCompile(`\s+`)
)

// Normalize produces the canonical form of a source fragment used for
// fingerprinting and similarity scoring: NFC-normalized, case-folded,
// whitespace-collapsed, with inline markers and placeholders reduced to
// indexed tokens so that marker attribute noise never splits memory keys.
func Normalize(text string) string {
	s := norm.NFC.String(text)

	n := 0
	s = reTag.ReplaceAllStringFunc(s, func(string) string {
		tok := fmt.Sprintf("⟦%d⟧", n)
		n++
		return tok
	})
	s = rePlaceholder.ReplaceAllStringFunc(s, func(string) string {
		tok := fmt.Sprintf("⟦%d⟧", n)
		n++
		return tok
	})

	s = strings.ToLower(s)
	s = reSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Fingerprint computes the SHA-256 hex digest of the normalized text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// MemoryKey builds the translation-memory key for a normalized source
// fragment, target language, and content role.
func MemoryKey(fingerprint, targetLang string, role ContentRole) string {
	return fingerprint + ":" + targetLang + ":" + string(role)
}
