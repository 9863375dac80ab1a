package catalog

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/gohye/catalogbot/catalogbot/aliases"
	"github.com/gohye/catalogbot/catalogbot/fuzzy"
)

// ReservedWords cannot name an attribute because the evaluator reads them itself.
var ReservedWords = []string{"sort", "display", "disp", "start", "reverse"}

var ErrInvalidDeclaration = errors.New("invalid registry declaration")

// Registry is the built, read-only form of a Declaration over one snapshot.
type Registry[T Entity] struct {
	decl    Declaration[T]
	aliases *aliases.Tables

	attributes []*DataAttribute[T]
	byToken    map[string]*DataAttribute[T]

	flags      []*DataAttribute[T]
	tags       []*DataAttribute[T]
	keywords   []*DataAttribute[T]
	sortable   []*DataAttribute[T]
	comparable []*DataAttribute[T]
	eqOnly     []*DataAttribute[T]
	regex      []*DataAttribute[T]

	defaultSort    *DataAttribute[T]
	defaultDisplay *DataAttribute[T]

	servers []Server
	data    map[Server]map[int]T
	indexes map[Server]*fuzzy.FilteredMap[T]
}

// NewRegistry copies the declaration, runs the Init hooks, validates attribute tokens and
// indexes every server's entities by display name.
func NewRegistry[T Entity](decl Declaration[T], tables *aliases.Tables, data map[Server]map[int]T) (*Registry[T], error) {
	if decl.Name == nil {
		return nil, fmt.Errorf("%w: %s has no name function", ErrInvalidDeclaration, decl.Kind)
	}
	if tables == nil {
		tables = &aliases.Tables{}
	}
	r := &Registry[T]{
		decl:    decl,
		aliases: tables,
		byToken: make(map[string]*DataAttribute[T]),
		data:    data,
		indexes: make(map[Server]*fuzzy.FilteredMap[T], len(data)),
	}
	r.decl.Sources = slices.Clone(decl.Sources)
	if len(r.decl.Sources) == 0 {
		r.decl.Sources = []CommandSource[T]{{Name: decl.Kind}}
	}

	for i := range decl.Attributes {
		r.attributes = append(r.attributes, decl.Attributes[i].clone())
	}
	for _, a := range r.attributes {
		if a.Init != nil {
			a.Init(a, r)
		}
	}
	if err := r.categorize(); err != nil {
		return nil, err
	}

	for _, s := range KnownServers {
		if _, ok := data[s]; ok {
			r.servers = append(r.servers, s)
		}
	}
	for server, entities := range data {
		r.indexes[server] = r.buildIndex(entities)
	}
	return r, nil
}

func (r *Registry[T]) categorize() error {
	for _, a := range r.attributes {
		if a.Name == "" {
			return fmt.Errorf("%w: %s has an unnamed attribute", ErrInvalidDeclaration, r.decl.Kind)
		}
		if a.Regex == nil && a.Accessor == nil {
			return fmt.Errorf("%w: %s attribute %s has no accessor", ErrInvalidDeclaration, r.decl.Kind, a.Name)
		}
		for _, token := range a.Tokens() {
			token = strings.ToLower(token)
			if slices.Contains(ReservedWords, token) {
				return fmt.Errorf("%w: %s attribute token %q is reserved", ErrInvalidDeclaration, r.decl.Kind, token)
			}
			if other, ok := r.byToken[token]; ok {
				return fmt.Errorf("%w: %s attribute token %q is used by %s and %s",
					ErrInvalidDeclaration, r.decl.Kind, token, other.Name, a.Name)
			}
			r.byToken[token] = a
		}

		if a.Regex != nil {
			r.regex = append(r.regex, a)
		}
		if a.Flag {
			r.flags = append(r.flags, a)
		}
		if a.Tag {
			r.tags = append(r.tags, a)
		}
		if a.Keyword {
			r.keywords = append(r.keywords, a)
		}
		if a.Sortable {
			r.sortable = append(r.sortable, a)
		}
		if a.Comparable {
			r.comparable = append(r.comparable, a)
		}
		if a.Eq && !a.Comparable {
			r.eqOnly = append(r.eqOnly, a)
		}
		if a.DefaultSort {
			if r.defaultSort != nil {
				return fmt.Errorf("%w: %s has two default sort attributes", ErrInvalidDeclaration, r.decl.Kind)
			}
			r.defaultSort = a
		}
		if a.DefaultDisplay {
			if r.defaultDisplay != nil {
				return fmt.Errorf("%w: %s has two default display attributes", ErrInvalidDeclaration, r.decl.Kind)
			}
			r.defaultDisplay = a
		}
	}

	for _, s := range r.decl.Sources {
		for _, name := range []string{s.DefaultSort, s.DefaultDisplay} {
			if name == "" {
				continue
			}
			if _, ok := r.byToken[strings.ToLower(name)]; !ok {
				return fmt.Errorf("%w: %s source %s names unknown attribute %s", ErrInvalidDeclaration, r.decl.Kind, s.Name, name)
			}
		}
	}
	return nil
}

// buildIndex inserts entities in id order. Names that collide after romanization get the
// id appended so every entity stays reachable.
func (r *Registry[T]) buildIndex(entities map[int]T) *fuzzy.FilteredMap[T] {
	index := fuzzy.NewFilteredMap[T]()
	for _, id := range slices.Sorted(maps.Keys(entities)) {
		v := entities[id]
		name := r.decl.Name(v)
		if name == "" {
			name = strconv.Itoa(id)
		}
		if index.HasExact(name) {
			name = fmt.Sprintf("%s %d", name, id)
		}
		index.Insert(name, v)
	}
	return index
}

func (r *Registry[T]) Kind() string             { return r.decl.Kind }
func (r *Registry[T]) Aliases() *aliases.Tables { return r.aliases }
func (r *Registry[T]) Servers() []Server        { return slices.Clone(r.servers) }

// Attributes returns the attributes in declaration order.
func (r *Registry[T]) Attributes() []*DataAttribute[T] {
	return slices.Clone(r.attributes)
}

// Attribute looks an attribute up by name or alias.
func (r *Registry[T]) Attribute(token string) (*DataAttribute[T], bool) {
	a, ok := r.byToken[strings.ToLower(token)]
	return a, ok
}

func (r *Registry[T]) DefaultSort() *DataAttribute[T]    { return r.defaultSort }
func (r *Registry[T]) DefaultDisplay() *DataAttribute[T] { return r.defaultDisplay }

// Sources returns the command sources, never empty.
func (r *Registry[T]) Sources() []CommandSource[T] {
	return r.decl.Sources
}

// Source returns the source at i, wrapping out-of-range indices.
func (r *Registry[T]) Source(i int) CommandSource[T] {
	return r.decl.Sources[r.sourceIndex(i)]
}

func (r *Registry[T]) sourceIndex(i int) int {
	n := len(r.decl.Sources)
	return ((i % n) + n) % n
}

// DisplayName is the declared name of v.
func (r *Registry[T]) DisplayName(v T) string {
	return r.decl.Name(v)
}

// Released reports whether v is visible without AllowUnreleased.
func (r *Registry[T]) Released(ctx *Context, v T) bool {
	return r.decl.Released == nil || r.decl.Released(ctx, v)
}

func (r *Registry[T]) visibility(ctx *Context) fuzzy.Visibility[T] {
	if ctx.AllowUnreleased || r.decl.Released == nil {
		return nil
	}
	return func(v T) bool { return r.decl.Released(ctx, v) }
}

// Visible applies the context's release policy to v.
func (r *Registry[T]) Visible(ctx *Context, v T) bool {
	return ctx.AllowUnreleased || r.Released(ctx, v)
}

// Get returns the entity with id on server, regardless of visibility.
func (r *Registry[T]) Get(server Server, id int) (T, bool) {
	v, ok := r.data[server][id]
	return v, ok
}

// Len counts the entities loaded for server.
func (r *Registry[T]) Len(server Server) int {
	return len(r.data[server])
}

// Values returns the visible entities of the context's server in id order.
func (r *Registry[T]) Values(ctx *Context) []T {
	index, ok := r.indexes[ctx.Server]
	if !ok {
		return nil
	}
	return index.Values(r.visibility(ctx))
}

// GetBest returns the single closest visible match for text.
func (r *Registry[T]) GetBest(ctx *Context, text string) (T, bool) {
	if v, ok := r.byID(ctx, text); ok {
		return v, true
	}
	index, ok := r.indexes[ctx.Server]
	if !ok {
		var zero T
		return zero, false
	}
	return index.GetBest(text, r.visibility(ctx))
}

// GetByRelevance orders the visible entities by how well their names match text. A text
// that is a visible id puts that entity first. An empty text keeps id order.
func (r *Registry[T]) GetByRelevance(ctx *Context, text string) []T {
	index, ok := r.indexes[ctx.Server]
	if !ok {
		return nil
	}
	visible := r.visibility(ctx)

	var values []T
	if strings.TrimSpace(text) == "" {
		values = index.Values(visible)
	} else {
		values = index.SortedByRelevance(text, visible)
	}

	if match, ok := r.byID(ctx, text); ok {
		values = slices.DeleteFunc(values, func(v T) bool { return v.EntityID() == match.EntityID() })
		values = slices.Insert(values, 0, match)
	}
	return values
}

func (r *Registry[T]) byID(ctx *Context, text string) (T, bool) {
	var zero T
	id, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return zero, false
	}
	v, ok := r.data[ctx.Server][id]
	if !ok || !r.Visible(ctx, v) {
		return zero, false
	}
	return v, true
}

// Current returns the entity relative offsets are measured from, if the kind has one.
func (r *Registry[T]) Current(ctx *Context) (T, bool) {
	if r.decl.Current == nil {
		var zero T
		return zero, false
	}
	return r.decl.Current(ctx, r)
}

// Suggestion is an autocomplete choice.
type Suggestion struct {
	Name string
	ID   int
}

// Suggest returns up to limit autocomplete choices for a partially typed name.
func (r *Registry[T]) Suggest(ctx *Context, query string, limit int) []Suggestion {
	index, ok := r.indexes[ctx.Server]
	if !ok {
		return nil
	}
	matches := index.Suggest(query, r.visibility(ctx), limit)
	out := make([]Suggestion, len(matches))
	for i, m := range matches {
		out[i] = Suggestion{Name: m.Name, ID: m.Value.EntityID()}
	}
	return out
}

// AttributeInfo describes an attribute for help output.
type AttributeInfo struct {
	Name        string
	Aliases     []string
	Roles       []string
	Description string
	Values      []string
	Pattern     string
}

// Describe lists the attributes for help output.
func (r *Registry[T]) Describe() []AttributeInfo {
	infos := make([]AttributeInfo, 0, len(r.attributes))
	for _, a := range r.attributes {
		info := AttributeInfo{
			Name:        a.Name,
			Aliases:     slices.Clone(a.Aliases),
			Roles:       a.Roles(),
			Description: a.Description,
			Values:      slices.Sorted(maps.Keys(a.ValueMapping)),
		}
		if a.Regex != nil {
			info.Pattern = a.Regex.String()
		}
		infos = append(infos, info)
	}
	return infos
}

// Catalog is the kind-agnostic view of a registry.
type Catalog interface {
	Kind() string
	Servers() []Server
	Len(server Server) int
	Describe() []AttributeInfo
	Suggest(ctx *Context, query string, limit int) []Suggestion
}

var _ Catalog = (*Registry[Entity])(nil)
