// Package translate wraps the Azure Translator v3 REST API behind a small
// Translator interface so the relay can be tested without network access.
package translate

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Result is one successful translation.
type Result struct {
	SourceLanguage string
	TargetLanguage string
	TranslatedText string
}

// Translator converts text from a detected source language into the
// configured target language.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang string) (Result, error)
}

// IsRedundant reports whether a translation is effectively identical to the
// original (case- and accent-insensitive). Relaying those is pure noise.
func IsRedundant(original, translated string) bool {
	return foldForCompare(original) == foldForCompare(translated)
}

func foldForCompare(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
