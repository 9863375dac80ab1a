package romaji

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRomanize(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantJoined string
		wantWords  []string
	}{
		{
			name:       "ascii words are lowercased",
			input:      "Peaky P-key",
			wantJoined: "peakypkey",
			wantWords:  []string{"peaky", "p", "key"},
		},
		{
			name:       "apostrophes are dropped",
			input:      "Don't Stop",
			wantJoined: "dontstop",
			wantWords:  []string{"dont", "stop"},
		},
		{
			name:       "letter runs are split from digits",
			input:      "Level14+",
			wantJoined: "level14",
			wantWords:  []string{"level", "14"},
		},
		{
			name:       "diacritics and full width forms fold to ascii",
			input:      "Café ＡＢＣ",
			wantJoined: "cafeabc",
			wantWords:  []string{"cafe", "abc"},
		},
		{
			name:       "hiragana",
			input:      "さくら",
			wantJoined: "sakura",
			wantWords:  []string{"sakura"},
		},
		{
			name:       "empty",
			input:      "  ",
			wantJoined: "",
			wantWords:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			joined, words := Romanize(tt.input)
			assert.Equal(t, tt.wantJoined, joined)
			assert.Equal(t, tt.wantWords, words)
		})
	}
}

func TestRomanizeIsFixedPoint(t *testing.T) {
	inputs := []string{
		"Peaky P-key",
		"Photon Maiden 1st",
		"Lyrical Lily!!",
		"さくら 2024",
		"Café ＡＢＣ",
		"a_b c__d",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			joined, words := Romanize(input)
			again, againWords := Romanize(strings.Join(words, " "))
			assert.Equal(t, joined, again)
			assert.Equal(t, words, againWords)
		})
	}
}

func TestKanaToRomaji(t *testing.T) {
	tests := map[string]string{
		"さくら":    "sakura",
		"ハッピー":   "happi",
		"きょう":    "kyou",
		"マッチ":    "matchi",
		"フォトン":   "foton",
		"ヴァイオリン": "vaiorin",
		"しんぶん":   "shinbun",
		"abc":    "abc",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, KanaToRomaji(in))
		})
	}
}
