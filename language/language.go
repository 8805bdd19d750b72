// Package language provides language detection and the allowed-language filter
// that decides which chat messages are eligible for translation.
package language

import (
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Detector resolves the language of a piece of text to an ISO 639-1 code.
type Detector interface {
	Detect(text string) (string, error)
}

// WhatlangDetector detects languages with the whatlanggo trigram model.
type WhatlangDetector struct{}

func NewDetector() WhatlangDetector { return WhatlangDetector{} }

func (WhatlangDetector) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty text")
	}
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return "", fmt.Errorf("language detection failed for %q", truncate(text, 32))
	}
	return code, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// AllowedSet is the set of language codes eligible for translation.
// Membership uses base-language matching so "zh" covers "zh-cn" and "zh-tw".
type AllowedSet map[string]struct{}

func NewAllowedSet(codes []string) AllowedSet {
	s := make(AllowedSet, len(codes))
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			s[c] = struct{}{}
		}
	}
	return s
}

// Contains reports whether detected matches one of the allowed codes, either
// exactly or as a regional variant of it.
func (s AllowedSet) Contains(detected string) bool {
	detected = strings.ToLower(detected)
	for code := range s {
		if detected == code || strings.HasPrefix(detected, code+"-") {
			return true
		}
	}
	return false
}

// Codes returns the sorted-insensitive list of allowed codes, for logging.
func (s AllowedSet) Codes() []string {
	out := make([]string, 0, len(s))
	for code := range s {
		out = append(out, code)
	}
	return out
}
