package generation

import (
	"strings"
	"unicode/utf8"

	"github.com/phrazzld/microlesson-api/internal/domain"
	"golang.org/x/net/html"
)

// MaxTopicRunes bounds the sanitized topic embedded in a prompt.
const MaxTopicRunes = 200

// Input is a topic and level that are safe to embed in a prompt.
type Input struct {
	Topic string
	Level domain.Level
}

// quoteChars are removed from topics so they cannot close the quoted span
// the prompt wraps them in. Includes curly quotes, primes, modifier letters,
// accents and fullwidth forms.
const quoteChars = "\"'`\u00b4\u02bb\u02bc\u02bd\u2018\u2019\u201a\u201b\u201c\u201d\u201e\u201f\u2032\u2033\u2035\u2036\u275b\u275c\u275d\u275e\uff02\uff07\uff40"

// Sanitize normalizes a raw topic and level. It never fails, and applying it
// to its own output returns the same value.
func Sanitize(rawTopic, rawLevel string) Input {
	return Input{
		Topic: SanitizeTopic(rawTopic),
		Level: SanitizeLevel(rawLevel),
	}
}

// SanitizeTopic strips control characters, markup and quote characters,
// collapses whitespace and caps the result at MaxTopicRunes.
func SanitizeTopic(raw string) string {
	s := dropControl(raw)
	s = stripMarkup(s)
	s = dropQuotes(s)
	s = strings.Join(strings.Fields(s), " ")
	s = truncateRunes(s, MaxTopicRunes)
	return strings.TrimSpace(s)
}

// SanitizeLevel maps a free-form level onto a known level, defaulting to
// beginner.
func SanitizeLevel(raw string) domain.Level {
	level := domain.Level(strings.ToLower(strings.TrimSpace(raw)))
	if !level.IsValid() {
		return domain.LevelBeginner
	}
	return level
}

func dropControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, s)
}

// stripMarkup keeps the raw bytes of text tokens and drops tags, comments and
// doctypes. Entities are left encoded. A tag left open at the end of the
// input is not markup and is kept as text.
func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}

	var b strings.Builder
	consumed := 0
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := z.Raw()
		consumed += len(raw)
		if tt == html.TextToken {
			b.Write(raw)
		}
	}
	if consumed < len(s) {
		b.WriteString(s[consumed:])
	}

	return strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, b.String())
}

func dropQuotes(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(quoteChars, r) {
			return -1
		}
		return r
	}, s)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
