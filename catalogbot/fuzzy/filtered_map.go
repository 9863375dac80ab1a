package fuzzy

import (
	"math"
	"slices"

	"github.com/gohye/catalogbot/catalogbot/romaji"
	sfuzzy "github.com/sahilm/fuzzy"
)

// Visibility reports whether a value may be shown. A nil Visibility shows everything.
type Visibility[T any] func(T) bool

func (v Visibility[T]) allows(value T) bool {
	return v == nil || v(value)
}

type entry[T any] struct {
	name   string
	joined string
	words  []string
	value  T
}

// FilteredMap indexes values by the romanized form of their display names.
// It is built once and then only read, so it is safe for concurrent readers.
type FilteredMap[T any] struct {
	entries   []entry[T]
	maxLength int
}

// NewFilteredMap creates an empty index.
func NewFilteredMap[T any]() *FilteredMap[T] {
	return &FilteredMap[T]{}
}

// Insert adds value under name. Callers reject names for which HasExact is already true.
func (m *FilteredMap[T]) Insert(name string, value T) {
	joined, words := romaji.Romanize(name)
	m.entries = append(m.entries, entry[T]{name: name, joined: joined, words: words, value: value})
	m.maxLength = max(m.maxLength, len(joined))
}

// HasExact reports whether name romanizes to an already indexed key.
func (m *FilteredMap[T]) HasExact(name string) bool {
	joined, _ := romaji.Romanize(name)
	for _, e := range m.entries {
		if e.joined == joined {
			return true
		}
	}
	return false
}

// Len returns the number of indexed values.
func (m *FilteredMap[T]) Len() int {
	return len(m.entries)
}

// MaxLength is the length of the longest indexed key.
func (m *FilteredMap[T]) MaxLength() int {
	return m.maxLength
}

// GetBest returns the closest visible match for query, if any scores within 1.
func (m *FilteredMap[T]) GetBest(query string, visible Visibility[T]) (T, bool) {
	var zero T
	joined, _ := romaji.Romanize(query)
	if float64(len(joined)) > 1.1*float64(m.maxLength) {
		return zero, false
	}

	best, bestScore := -1, math.Inf(1)
	for i, e := range m.entries {
		if !visible.allows(e.value) {
			continue
		}
		score := Score(joined, e.joined, e.words, 1)
		if score < bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore > 1 {
		return zero, false
	}
	return m.entries[best].value, true
}

// SortedByRelevance returns every visible value ordered by ascending score against query.
// Equal scores keep insertion order.
func (m *FilteredMap[T]) SortedByRelevance(query string, visible Visibility[T]) []T {
	joined, _ := romaji.Romanize(query)

	type scored struct {
		index int
		score float64
	}
	candidates := make([]scored, 0, len(m.entries))
	for i, e := range m.entries {
		if !visible.allows(e.value) {
			continue
		}
		candidates = append(candidates, scored{index: i, score: Score(joined, e.joined, e.words, math.Inf(1))})
	}
	slices.SortStableFunc(candidates, func(a, b scored) int {
		switch {
		case a.score < b.score:
			return -1
		case a.score > b.score:
			return 1
		default:
			return 0
		}
	})

	values := make([]T, len(candidates))
	for i, c := range candidates {
		values[i] = m.entries[c.index].value
	}
	return values
}

// Values returns the visible values in insertion order.
func (m *FilteredMap[T]) Values(visible Visibility[T]) []T {
	values := make([]T, 0, len(m.entries))
	for _, e := range m.entries {
		if visible.allows(e.value) {
			values = append(values, e.value)
		}
	}
	return values
}

// Suggestion is an autocomplete candidate.
type Suggestion[T any] struct {
	Name  string
	Value T
}

type suggestionSource[T any] []entry[T]

func (s suggestionSource[T]) String(i int) string { return s[i].name }
func (s suggestionSource[T]) Len() int            { return len(s) }

// Suggest ranks visible display names with subsequence matching, which suits the partial
// input of autocomplete better than the edit distance. Empty queries fall back to insertion
// order.
func (m *FilteredMap[T]) Suggest(query string, visible Visibility[T], limit int) []Suggestion[T] {
	source := make(suggestionSource[T], 0, len(m.entries))
	for _, e := range m.entries {
		if visible.allows(e.value) {
			source = append(source, e)
		}
	}

	suggestions := make([]Suggestion[T], 0, limit)
	if query == "" {
		for _, e := range source {
			if len(suggestions) == limit {
				break
			}
			suggestions = append(suggestions, Suggestion[T]{Name: e.name, Value: e.value})
		}
		return suggestions
	}

	for _, match := range sfuzzy.FindFrom(query, source) {
		if len(suggestions) == limit {
			break
		}
		e := source[match.Index]
		suggestions = append(suggestions, Suggestion[T]{Name: e.name, Value: e.value})
	}
	return suggestions
}
