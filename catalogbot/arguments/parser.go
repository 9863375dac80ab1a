// Package arguments parses free-form catalog queries such as
//
//	name text tag1 $tag2 name=value,value name>=42 $!excluded sort=field reverse
//
// into named predicates, tags and words, and tracks which of them were consumed.
package arguments

import (
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/cast"
)

// Operator is a comparison operator of a named predicate.
type Operator string

const (
	Equal          Operator = "="
	StrictEqual    Operator = "=="
	NotEqual       Operator = "!="
	Greater        Operator = ">"
	Less           Operator = "<"
	GreaterOrEqual Operator = ">="
	LessOrEqual    Operator = "<="
)

// EqualityOperators are the operators valid for attributes that cannot be ordered.
var EqualityOperators = []Operator{Equal, StrictEqual, NotEqual}

// AllOperators lists every operator in grammar order.
var AllOperators = []Operator{Equal, StrictEqual, NotEqual, Greater, Less, GreaterOrEqual, LessOrEqual}

// valuePattern tries the quoted forms first; a bare value runs to the next space or comma.
const valuePattern = `(?:"(?:\\.|[^"\\])*"|'[^']*'|[^\s,]+)`

var (
	namedPattern  = regexp.MustCompile(`([a-zA-Z]+)(!=|==|=|>=|<=|>|<)(` + valuePattern + `(?:,` + valuePattern + `)*)`)
	valueRe       = regexp.MustCompile(valuePattern)
	tagPattern    = regexp.MustCompile(`\$(\S+)`)
	escapePattern = regexp.MustCompile(`\\(.)`)
)

// Value is one occurrence of a named predicate.
type Value struct {
	Values   []string
	Operator Operator
}

// Converted is a Value whose right-hand side went through a converter.
type Converted struct {
	Values   []any
	Operator Operator
}

// ParsedArguments holds one parsed query. Accessors record usage, so a ParsedArguments must
// only be used from one goroutine.
type ParsedArguments struct {
	Original string

	text  string
	words []string
	tags  []string
	named map[string][]Value
	names []string

	usedWords map[string]struct{}
	usedTags  map[string]struct{}
	usedNames map[string]struct{}
}

// Parse tokenizes s. Named predicates are removed first, then tags; what remains is the text.
func Parse(s string) *ParsedArguments {
	a := &ParsedArguments{
		Original:  strings.TrimSpace(s),
		named:     make(map[string][]Value),
		usedWords: make(map[string]struct{}),
		usedTags:  make(map[string]struct{}),
		usedNames: make(map[string]struct{}),
	}

	var residual strings.Builder
	last := 0
	for _, m := range namedPattern.FindAllStringSubmatchIndex(s, -1) {
		// "$name=value" is a tag, not a predicate
		if m[0] > 0 && s[m[0]-1] == '$' {
			continue
		}
		residual.WriteString(s[last:m[0]])
		residual.WriteByte(' ')
		last = m[1]

		name := strings.ToLower(s[m[2]:m[3]])
		value := Value{Operator: Operator(s[m[4]:m[5]])}
		for _, v := range valueRe.FindAllString(s[m[6]:m[7]], -1) {
			value.Values = append(value.Values, unquote(v))
		}
		if _, ok := a.named[name]; !ok {
			a.names = append(a.names, name)
		}
		a.named[name] = append(a.named[name], value)
	}
	residual.WriteString(s[last:])

	rest := residual.String()
	for _, m := range tagPattern.FindAllStringSubmatch(rest, -1) {
		tag := strings.ToLower(m[1])
		if !slices.Contains(a.tags, tag) {
			a.tags = append(a.tags, tag)
		}
	}
	rest = tagPattern.ReplaceAllString(rest, " ")

	fields := strings.Fields(rest)
	a.text = strings.Join(fields, " ")
	for _, f := range fields {
		word := strings.ToLower(f)
		if !slices.Contains(a.words, word) {
			a.words = append(a.words, word)
		}
	}
	return a
}

func unquote(v string) string {
	switch {
	case len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"':
		return escapePattern.ReplaceAllString(v[1:len(v)-1], "$1")
	case len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'':
		return v[1 : len(v)-1]
	default:
		return v
	}
}

// Word reports whether v was given as a word and marks it used.
func (a *ParsedArguments) Word(v string) bool {
	v = strings.ToLower(v)
	if slices.Contains(a.words, v) {
		a.usedWords[v] = struct{}{}
		return true
	}
	return false
}

// Words returns the words found in allowed or among the keys of aliases, translated through
// aliases, and marks them used. With neither, every word is returned.
func (a *ParsedArguments) Words(allowed []string, aliases map[string]string) []string {
	var found []string
	for _, w := range a.words {
		canonical, aliased := aliases[w]
		switch {
		case aliased:
			found = append(found, canonical)
		case slices.Contains(allowed, w), allowed == nil && aliases == nil:
			found = append(found, w)
		default:
			continue
		}
		a.usedWords[w] = struct{}{}
	}
	return found
}

// AllWords returns every word without marking any of them used.
func (a *ParsedArguments) AllWords() []string {
	return slices.Clone(a.words)
}

// Tag reports whether $v was given and marks it used. Inverted tags are requested as "!v".
func (a *ParsedArguments) Tag(v string) bool {
	v = strings.ToLower(v)
	if slices.Contains(a.tags, v) {
		a.usedTags[v] = struct{}{}
		return true
	}
	return false
}

// Tags returns the members of values that were given as tags and marks them used.
func (a *ParsedArguments) Tags(values []string) []string {
	var found []string
	for _, v := range values {
		if a.Tag(v) {
			found = append(found, strings.ToLower(v))
		}
	}
	return found
}

// AllTags returns every tag, inverted ones included, without marking them used.
func (a *ParsedArguments) AllTags() []string {
	return slices.Clone(a.tags)
}

// HasNamed reports whether any of names was given, without marking it used.
func (a *ParsedArguments) HasNamed(names ...string) bool {
	for _, n := range names {
		if _, ok := a.named[strings.ToLower(n)]; ok {
			return true
		}
	}
	return false
}

// Named returns the raw occurrences of name without marking it used.
func (a *ParsedArguments) Named(name string) []Value {
	return slices.Clone(a.named[strings.ToLower(name)])
}

// Options controls how named predicate values are validated and converted.
type Options struct {
	// AllowedOperators defaults to every operator.
	AllowedOperators []Operator
	// Converter turns each raw value into a typed one. Numeric implies a float converter.
	Converter func(string) (any, error)
	Numeric   bool
	// List permits comma-separated values.
	List bool
}

func (o Options) convert(name, raw string) (any, error) {
	switch {
	case o.Converter != nil:
		v, err := o.Converter(raw)
		if err != nil {
			if argErr, ok := AsArgumentError(err); ok {
				return nil, argErr
			}
			return nil, ConverterFailure(name, raw, err)
		}
		return v, nil
	case o.Numeric:
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, ConverterFailure(name, raw, err)
		}
		return v, nil
	default:
		return raw, nil
	}
}

func (a *ParsedArguments) collect(names []string) (string, []Value) {
	var first string
	var values []Value
	for _, n := range names {
		n = strings.ToLower(n)
		vs, ok := a.named[n]
		if !ok {
			continue
		}
		a.usedNames[n] = struct{}{}
		if first == "" {
			first = n
		}
		values = append(values, vs...)
	}
	return first, values
}

func (a *ParsedArguments) convertAll(name string, values []Value, opts Options) ([]Converted, error) {
	allowed := opts.AllowedOperators
	if allowed == nil {
		allowed = AllOperators
	}

	out := make([]Converted, 0, len(values))
	for _, v := range values {
		if !slices.Contains(allowed, v.Operator) {
			return nil, DisallowedOperator(name, v.Operator, allowed)
		}
		if len(v.Values) > 1 && !opts.List {
			return nil, ListNotAllowed(name)
		}
		c := Converted{Operator: v.Operator, Values: make([]any, 0, len(v.Values))}
		for _, raw := range v.Values {
			converted, err := opts.convert(name, raw)
			if err != nil {
				return nil, err
			}
			c.Values = append(c.Values, converted)
		}
		out = append(out, c)
	}
	return out, nil
}

// Single returns the only occurrence of any of names, or nil when none was given.
func (a *ParsedArguments) Single(names []string, opts Options) (*Converted, error) {
	name, values := a.collect(names)
	if len(values) == 0 {
		return nil, nil
	}
	if len(values) > 1 {
		return nil, RepeatedSingle(name)
	}
	converted, err := a.convertAll(name, values, opts)
	if err != nil {
		return nil, err
	}
	return &converted[0], nil
}

// SingleString returns the single raw value of names, or def.
func (a *ParsedArguments) SingleString(names []string, def string) (string, error) {
	v, err := a.Single(names, Options{AllowedOperators: []Operator{Equal}})
	if err != nil || v == nil {
		return def, err
	}
	return v.Values[0].(string), nil
}

// Repeatable returns every occurrence of any of names.
func (a *ParsedArguments) Repeatable(names []string, opts Options) ([]Converted, error) {
	name, values := a.collect(names)
	if len(values) == 0 {
		return nil, nil
	}
	return a.convertAll(name, values, opts)
}

// Text is the positional text with every used word removed.
func (a *ParsedArguments) Text() string {
	fields := strings.Fields(a.text)
	kept := fields[:0:0]
	for _, f := range fields {
		if _, used := a.usedWords[strings.ToLower(f)]; !used {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// RequireAllArgumentsUsed fails when a named predicate or tag was never consumed.
func (a *ParsedArguments) RequireAllArgumentsUsed() error {
	var unknown []string
	for _, n := range a.names {
		if _, ok := a.usedNames[n]; !ok {
			unknown = append(unknown, n)
		}
	}
	for _, t := range a.tags {
		if _, ok := a.usedTags[t]; !ok {
			unknown = append(unknown, "$"+t)
		}
	}
	if len(unknown) > 0 {
		return UnknownArgument(unknown...)
	}
	return nil
}
