package arguments

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	a := Parse(`name="foo bar",baz $!hidden sort<date disp=level`)

	assert.Equal(t, []Value{{Values: []string{"foo bar", "baz"}, Operator: Equal}}, a.Named("name"))
	assert.Equal(t, []Value{{Values: []string{"date"}, Operator: Less}}, a.Named("sort"))
	assert.Equal(t, []Value{{Values: []string{"level"}, Operator: Equal}}, a.Named("disp"))
	assert.Equal(t, []string{"!hidden"}, a.AllTags())
	assert.Equal(t, "", a.Text())
	assert.Empty(t, a.AllWords())
}

func TestParseOperators(t *testing.T) {
	tests := []struct {
		input string
		name  string
		want  Operator
	}{
		{"level=5", "level", Equal},
		{"level==5", "level", StrictEqual},
		{"level!=5", "level", NotEqual},
		{"level>5", "level", Greater},
		{"level<5", "level", Less},
		{"level>=5", "level", GreaterOrEqual},
		{"level<=5", "level", LessOrEqual},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			a := Parse(tt.input)
			got := a.Named(tt.name)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Operator)
			assert.Equal(t, []string{"5"}, got[0].Values)
		})
	}
}

func TestParseQuotedValues(t *testing.T) {
	a := Parse(`title="say \"hi\"" artist='a b' plain`)
	assert.Equal(t, []string{`say "hi"`}, a.Named("title")[0].Values)
	assert.Equal(t, []string{"a b"}, a.Named("artist")[0].Values)
	assert.Equal(t, "plain", a.Text())
}

func TestParseKeepsTextAndLowercasesTokens(t *testing.T) {
	a := Parse("Peaky P-Key $PKP Level>=14 expert")
	assert.Equal(t, "Peaky P-Key expert", a.Text())
	assert.Equal(t, []string{"peaky", "p-key", "expert"}, a.AllWords())
	assert.Equal(t, []string{"pkp"}, a.AllTags())
	assert.True(t, a.HasNamed("level"))
}

func TestWordRemovesFromText(t *testing.T) {
	a := Parse("photon reverse maiden")
	assert.True(t, a.Word("REVERSE"))
	assert.False(t, a.Word("missing"))
	assert.Equal(t, "photon maiden", a.Text())
}

func TestWordsWithAliases(t *testing.T) {
	a := Parse("ex master song")
	got := a.Words([]string{"hard"}, map[string]string{"ex": "expert", "master": "expert"})
	assert.Equal(t, []string{"expert", "expert"}, got)
	assert.Equal(t, "song", a.Text())
}

func TestSingle(t *testing.T) {
	a := Parse("sort=level sort=name start=foo")

	_, err := a.Single([]string{"sort"}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRepeatedSingle))

	v, err := a.Single([]string{"start"}, Options{})
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, []any{"foo"}, v.Values)

	v, err = a.Single([]string{"missing"}, Options{})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSingleString(t *testing.T) {
	a := Parse("start=special")
	got, err := a.SingleString([]string{"start"}, "")
	require.NoError(t, err)
	assert.Equal(t, "special", got)

	got, err = a.SingleString([]string{"other"}, "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
}

func TestRepeatableConverts(t *testing.T) {
	a := Parse("level>=14 level<20 lv=3")
	got, err := a.Repeatable([]string{"level", "lv"}, Options{Numeric: true})
	require.NoError(t, err)
	assert.Equal(t, []Converted{
		{Values: []any{14.0}, Operator: GreaterOrEqual},
		{Values: []any{20.0}, Operator: Less},
		{Values: []any{3.0}, Operator: Equal},
	}, got)
}

func TestRepeatableErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  Options
		want  error
	}{
		{
			name:  "operator not allowed",
			input: "unit>3",
			opts:  Options{AllowedOperators: EqualityOperators},
			want:  ErrDisallowedOperator,
		},
		{
			name:  "list on scalar",
			input: "unit=1,2",
			opts:  Options{},
			want:  ErrListNotAllowed,
		},
		{
			name:  "numeric conversion",
			input: "unit=abc",
			opts:  Options{Numeric: true},
			want:  ErrConverterFailure,
		},
		{
			name:  "converter returning an argument error keeps its kind",
			input: "unit=abc",
			opts: Options{Converter: func(s string) (any, error) {
				return nil, UnknownValue("unit", s)
			}},
			want: ErrUnknownArgument,
		},
		{
			name:  "plain converter error",
			input: "unit=abc",
			opts: Options{Converter: func(s string) (any, error) {
				return strconv.Atoi(s)
			}},
			want: ErrConverterFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input).Repeatable([]string{"unit"}, tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRequireAllArgumentsUsed(t *testing.T) {
	a := Parse("photon $pkp $!ha level>=14 bogus=1")

	a.Tag("pkp")
	_, err := a.Repeatable([]string{"level"}, Options{Numeric: true})
	require.NoError(t, err)

	err = a.RequireAllArgumentsUsed()
	require.Error(t, err)
	argErr, ok := AsArgumentError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnknownArgument, argErr.Kind)
	assert.Equal(t, []string{"bogus", "$!ha"}, argErr.Tokens)

	a.Tag("!ha")
	_, err = a.Repeatable([]string{"bogus"}, Options{})
	require.NoError(t, err)
	assert.NoError(t, a.RequireAllArgumentsUsed())
}

func TestRequireAllArgumentsUsedIgnoresWords(t *testing.T) {
	a := Parse("just some words")
	assert.NoError(t, a.RequireAllArgumentsUsed())
}

func TestTagInsideNamedPredicateIsATag(t *testing.T) {
	a := Parse("$foo=bar")
	assert.False(t, a.HasNamed("foo"))
	assert.Equal(t, []string{"foo=bar"}, a.AllTags())
}

func TestParseBareValuesKeepQuoteCharacters(t *testing.T) {
	a := Parse(`title=don't stop`)
	assert.Equal(t, []Value{{Values: []string{"don't"}, Operator: Equal}}, a.Named("title"))
	assert.Equal(t, "stop", a.Text())

	a = Parse(`artist=ki"ra,'x y' encore`)
	assert.Equal(t, []Value{{Values: []string{`ki"ra`, "x y"}, Operator: Equal}}, a.Named("artist"))
	assert.Equal(t, "encore", a.Text())
}
