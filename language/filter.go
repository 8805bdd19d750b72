package language

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
)

// Skip reasons reported by Filter.ShouldSkip. They double as metric label values.
const (
	SkipOwnMessage    = "own_message"
	SkipKnownBot      = "known_bot"
	SkipCommand       = "command"
	SkipEmoteOnly     = "emote_only"
	SkipCommonEnglish = "common_english"
	SkipTooShort      = "too_short"
	SkipNoLetters     = "no_letters"
)

// commonEnglishWords are chat phrases that trip language detectors but never
// need translating. A message made entirely of these is skipped.
var commonEnglishWords = map[string]struct{}{
	"lol": {}, "gg": {}, "wp": {}, "ez": {}, "kekw": {}, "pog": {}, "poggers": {},
	"omegalul": {}, "lul": {}, "xd": {}, "lmao": {}, "rofl": {}, "wtf": {}, "brb": {},
	"afk": {}, "hi": {}, "hii": {}, "hiii": {}, "hello": {}, "bye": {}, "thanks": {},
	"thank": {}, "you": {}, "ok": {}, "okay": {}, "nice": {}, "good": {}, "bad": {},
	"cool": {}, "great": {}, "awesome": {}, "amazing": {}, "wow": {}, "yes": {},
	"yeah": {}, "no": {}, "nah": {}, "nope": {}, "yo": {}, "sup": {},
}

// knownBotUsernames are chat bots whose messages are never worth translating.
var knownBotUsernames = map[string]struct{}{
	"streamelements": {}, "nightbot": {}, "moobot": {}, "wizebot": {},
	"streamlabs": {}, "fossabot": {},
}

var (
	// Matches messages that are nothing but [emote:id:name] tokens.
	getEmoteOnlyPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(`^(\s*\[emote:\d+:[^\]]+\]\s*)+$`)
	})
	getWordPattern = sync.OnceValue(func() *regexp.Regexp {
		return regexp.MustCompile(`[\p{L}\p{N}]+`)
	})
)

// Filter holds the cheap pre-detection checks applied to every message.
// All checks run before any detection or API call.
type Filter struct {
	// MinLength is the minimum trimmed message length worth detecting.
	MinLength int
	// BotUsername, when set, causes the bot's own messages to be skipped.
	BotUsername string
}

// ShouldSkip returns a skip reason and true when the message must not reach
// the detector, or ("", false) when processing should continue.
func (f Filter) ShouldSkip(author, text string) (string, bool) {
	author = strings.ToLower(author)
	if f.BotUsername != "" && author == strings.ToLower(f.BotUsername) {
		return SkipOwnMessage, true
	}
	if _, ok := knownBotUsernames[author]; ok {
		return SkipKnownBot, true
	}

	clean := strings.TrimSpace(text)
	if strings.HasPrefix(clean, "!") {
		return SkipCommand, true
	}
	if clean != "" && getEmoteOnlyPattern().MatchString(clean) {
		return SkipEmoteOnly, true
	}
	if isAllCommonEnglish(clean) {
		return SkipCommonEnglish, true
	}
	if len(clean) < f.MinLength {
		return SkipTooShort, true
	}
	if !hasLetter(clean) {
		return SkipNoLetters, true
	}
	return "", false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func isAllCommonEnglish(s string) bool {
	words := getWordPattern().FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if _, ok := commonEnglishWords[w]; !ok {
			return false
		}
	}
	return true
}
