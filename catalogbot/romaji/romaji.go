// Package romaji turns mixed-script display names and user queries into lowercase ASCII word
// sequences so they can be compared by the fuzzy matcher.
package romaji

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var (
	apostrophes   = strings.NewReplacer("'", "", "’", "", "‘", "")
	asciiLetters  = regexp.MustCompile(`[A-Za-z]+`)
	invalidSymbol = regexp.MustCompile(`[^a-z0-9_ ]`)

	tokenizerOnce sync.Once
	kanjiReader   *tokenizer.Tokenizer
)

// Romanize converts s into its romanized words and their concatenation.
// The output of Romanize is a fixed point: romanizing strings.Join(words, " ") again yields
// the same words.
func Romanize(s string) (string, []string) {
	s = apostrophes.Replace(s)
	s = foldLatin(s)
	s = asciiLetters.ReplaceAllString(s, " $0 ")

	var converted strings.Builder
	for _, token := range strings.Fields(s) {
		converted.WriteString(transliterate(token))
		converted.WriteByte(' ')
	}

	cleaned := invalidSymbol.ReplaceAllString(strings.ToLower(converted.String()), "")
	words := strings.Fields(cleaned)
	return strings.Join(words, ""), words
}

// Words is Romanize without the joined form.
func Words(s string) []string {
	_, words := Romanize(s)
	return words
}

func transliterate(token string) string {
	switch {
	case isASCII(token):
		return strings.ToLower(token)
	case hasKanji(token):
		return romanizeKanaRuns(readings(token))
	case hasKana(token):
		return romanizeKanaRuns(token)
	default:
		return strings.ToLower(token)
	}
}

// romanizeKanaRuns converts every kana run in s and folds the remainder.
func romanizeKanaRuns(s string) string {
	var out strings.Builder
	var run []rune
	flush := func() {
		if len(run) > 0 {
			out.WriteString(KanaToRomaji(string(run)))
			out.WriteByte(' ')
			run = run[:0]
		}
	}
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana) || r == 'ー' {
			run = append(run, r)
			continue
		}
		flush()
		out.WriteRune(r)
	}
	flush()
	return out.String()
}

// readings replaces every kanji-bearing morpheme of s with its katakana reading.
func readings(s string) string {
	tokenizerOnce.Do(func() {
		t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
		if err == nil {
			kanjiReader = t
		}
	})
	if kanjiReader == nil {
		return s
	}

	var out strings.Builder
	for _, token := range kanjiReader.Tokenize(s) {
		if reading, ok := token.Reading(); ok && hasKanji(token.Surface) && reading != "*" {
			out.WriteString(reading)
		} else {
			out.WriteString(token.Surface)
		}
		out.WriteByte(' ')
	}
	return out.String()
}

// foldLatin maps full-width forms to their narrow equivalents and strips combining marks
// from Latin runs ("Café" -> "Cafe"). Kana keep their voicing marks.
func foldLatin(s string) string {
	t := transform.Chain(
		width.Fold,
		runes.If(runes.In(unicode.Latin), transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), nil),
	)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= unicode.MaxASCII {
			return false
		}
	}
	return true
}

func hasKanji(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func hasKana(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana) {
			return true
		}
	}
	return false
}
