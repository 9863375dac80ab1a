// Package catalog declares the typed attributes of an entity kind, builds per-kind registries
// over server snapshots and evaluates parsed queries against them.
package catalog

import (
	"maps"
	"regexp"
	"slices"

	"github.com/disgoorg/disgo/discord"
)

// Entity is a catalog record with a stable id shared across servers.
type Entity interface {
	EntityID() int
}

// DataAttribute is a named projection of an entity used for filtering, sorting or display.
type DataAttribute[T Entity] struct {
	Name        string
	Aliases     []string
	Description string

	// Accessor returns a comparable value. Plural attributes return []any.
	Accessor  func(ctx *Context, v T) any
	Formatter func(ctx *Context, v T) string

	// ValueMapping translates user tokens into accessor values for tags, keywords and
	// equality predicates. Init may populate it.
	ValueMapping map[string]any

	Flag           bool
	Tag            bool
	Keyword        bool
	Sortable       bool
	Comparable     bool
	Eq             bool
	Plural         bool
	DefaultSort    bool
	DefaultDisplay bool
	ReverseSort    bool

	// FlagCallback replaces the whole candidate list when the flag is present.
	FlagCallback func(ctx *Context, r *Registry[T], values []T) []T
	// CompareConverter parses a predicate value into the accessor's value type.
	CompareConverter func(ctx *Context, s string) (any, error)

	// Regex makes the attribute match a family of names. The full match and its groups are
	// passed to RegexAccessor and RegexFormatter.
	Regex          *regexp.Regexp
	RegexAccessor  func(ctx *Context, v T, match []string) any
	RegexFormatter func(ctx *Context, v T, match []string) string

	// Init runs once when the registry is built, after the alias tables are loaded.
	Init func(a *DataAttribute[T], r *Registry[T])
}

// Tokens returns the lowercase name followed by the aliases.
func (a *DataAttribute[T]) Tokens() []string {
	return append([]string{a.Name}, a.Aliases...)
}

// Roles lists the role names of a, for help output.
func (a *DataAttribute[T]) Roles() []string {
	var roles []string
	for _, r := range []struct {
		set  bool
		name string
	}{
		{a.Flag, "flag"},
		{a.Tag, "tag"},
		{a.Keyword, "keyword"},
		{a.Sortable, "sort"},
		{a.Comparable, "compare"},
		{a.Eq, "eq"},
		{a.Plural, "plural"},
		{a.Formatter != nil || a.RegexFormatter != nil, "display"},
	} {
		if r.set {
			roles = append(roles, r.name)
		}
	}
	return roles
}

func (a *DataAttribute[T]) clone() *DataAttribute[T] {
	c := *a
	c.Aliases = slices.Clone(a.Aliases)
	c.ValueMapping = maps.Clone(a.ValueMapping)
	return &c
}

// bind fixes a regex family member into a plain attribute.
func (a *DataAttribute[T]) bind(match []string) *DataAttribute[T] {
	c := a.clone()
	c.Name = match[0]
	c.Regex = nil
	if a.RegexAccessor != nil {
		c.Accessor = func(ctx *Context, v T) any { return a.RegexAccessor(ctx, v, match) }
	}
	if a.RegexFormatter != nil {
		c.Formatter = func(ctx *Context, v T) string { return a.RegexFormatter(ctx, v, match) }
	}
	return c
}

// Navigation points a shortcut at another catalog entry.
type Navigation struct {
	Kind   string
	ID     int
	Server Server
}

// Shortcut is a button that jumps from the current entity to a related one.
type Shortcut[T Entity] struct {
	Emoji  string
	Label  string
	Check  func(ctx *Context, v T) bool
	Action func(ctx *Context, v T, server Server) (Navigation, bool)
}

// CommandSource is one way of presenting an entity kind.
type CommandSource[T Entity] struct {
	Name        string
	EmbedSource func(ctx *Context, v T, tab int, server Server) discord.Embed
	Tabs        []string
	DefaultTab  int
	// SuffixTabAliases select a tab when they end the text query.
	SuffixTabAliases map[string]int
	// DefaultSort and DefaultDisplay name attributes overriding the registry defaults.
	DefaultSort    string
	DefaultDisplay string
	ListFormatter  func(ctx *Context, v T) string
	Shortcuts      []Shortcut[T]
}

// Declaration describes one entity kind.
type Declaration[T Entity] struct {
	Kind     string
	Name     func(v T) string
	Released func(ctx *Context, v T) bool
	// Current returns the entity "+N" and "-N" are relative to.
	Current    func(ctx *Context, r *Registry[T]) (T, bool)
	Attributes []DataAttribute[T]
	Sources    []CommandSource[T]
}

// FilterResult is the outcome of one query. It is not modified after Evaluate returns.
type FilterResult[T Entity] struct {
	Values     []T
	Server     Server
	StartIndex int
	StartTab   int
	Source     int
	// Display renders the fixed-width column shown next to each list entry. It may be nil.
	Display func(v T) string
}

func (r *FilterResult[T]) Empty() bool {
	return len(r.Values) == 0
}
