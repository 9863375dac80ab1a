package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gohye/catalogbot/catalogbot/arguments"
)

// ErrInternal marks failures that are not the user's fault, such as an accessor panicking on
// malformed data.
var ErrInternal = errors.New("internal catalog error")

var (
	relativePattern = regexp.MustCompile(`^[+-]\d+$`)
	absolutePattern = regexp.MustCompile(`^~(\d+)$`)
)

// startCandidates bounds how many relevance matches of start= are tried.
const startCandidates = 5

type filter[T Entity] func(values []T) []T

// Evaluate runs a parsed query against the context's server snapshot using the command
// source at sourceIndex.
func (r *Registry[T]) Evaluate(ctx *Context, args *arguments.ParsedArguments, sourceIndex int) (result *FilterResult[T], err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = fmt.Errorf("%w: %s query %q: %v", ErrInternal, r.decl.Kind, args.Original, p)
		}
	}()

	source := r.Source(sourceIndex)

	sortAttr, sortOp, err := r.resolveAttribute(args, []string{"sort"}, true)
	if err != nil {
		return nil, err
	}
	displayAttr, _, err := r.resolveAttribute(args, []string{"display", "disp"}, false)
	if err != nil {
		return nil, err
	}
	reverse := args.Tag("reverse") || args.Word("reverse")
	if sortAttr != nil {
		reverse = reverse != (sortOp == arguments.Less) != sortAttr.ReverseSort
	}
	if displayAttr == nil {
		displayAttr = sortAttr
	}

	start, err := args.SingleString([]string{"start"}, "")
	if err != nil {
		return nil, err
	}

	filters, err := r.collectFilters(ctx, args)
	if err != nil {
		return nil, err
	}
	if err := args.RequireAllArgumentsUsed(); err != nil {
		return nil, err
	}

	current, hasCurrent := r.Current(ctx)
	var (
		text         string
		startIndex   int
		relative     int
		relativeOnly bool
	)
	if relativePattern.MatchString(args.Original) && hasCurrent {
		relative, _ = strconv.Atoi(args.Original)
		relativeOnly = true
	} else if m := absolutePattern.FindStringSubmatch(args.Text()); m != nil {
		n, _ := strconv.Atoi(m[1])
		startIndex = n - 1
	} else {
		text = args.Text()
	}

	startTab := source.DefaultTab
	if len(source.SuffixTabAliases) > 0 && text != "" {
		words := strings.Fields(text)
		if tab, ok := source.SuffixTabAliases[strings.ToLower(words[len(words)-1])]; ok {
			startTab = tab
			text = strings.Join(words[:len(words)-1], " ")
		}
	}

	values := r.GetByRelevance(ctx, text)
	for _, f := range filters {
		values = f(values)
	}

	defaultSort := r.defaultSort
	if source.DefaultSort != "" {
		defaultSort, _ = r.Attribute(source.DefaultSort)
	}
	// With a sort key, reversing is a descending stable sort so equal keys keep their
	// relevance order. Only a list without any sort key is reversed as a whole.
	useDefault := defaultSort != nil && text == ""
	switch {
	case sortAttr != nil:
		if useDefault {
			sortByAttribute(ctx, values, defaultSort, defaultSort.ReverseSort)
		}
		sortByAttribute(ctx, values, sortAttr, reverse)
	case useDefault:
		sortByAttribute(ctx, values, defaultSort, defaultSort.ReverseSort != reverse)
	case reverse:
		slices.Reverse(values)
	}

	switch {
	case relativeOnly:
		if i := indexOf(values, current); i >= 0 {
			startIndex = i - relative
		}
	case start != "":
		if text != "" {
			return nil, arguments.StartWithText()
		}
		startIndex = -1
		candidates := r.GetByRelevance(ctx, start)
		for _, c := range candidates[:min(startCandidates, len(candidates))] {
			if i := indexOf(values, c); i >= 0 {
				startIndex = i
				break
			}
		}
		if startIndex < 0 {
			return nil, arguments.StartNotFound(start)
		}
	}
	startIndex = max(0, min(startIndex, len(values)-1))

	display := r.defaultDisplay
	if source.DefaultDisplay != "" {
		display, _ = r.Attribute(source.DefaultDisplay)
	}
	if displayAttr != nil && displayAttr.Formatter != nil {
		display = displayAttr
	}
	var formatter func(T) string
	if display != nil && display.Formatter != nil {
		format := display.Formatter
		formatter = func(v T) string { return format(ctx, v) }
	}

	return &FilterResult[T]{
		Values:     values,
		Server:     ctx.Server,
		StartIndex: startIndex,
		StartTab:   startTab,
		Source:     r.sourceIndex(sourceIndex),
		Display:    formatter,
	}, nil
}

// resolveAttribute reads a sort or display argument. Names that match no attribute are tried
// against the regex families in declaration order.
func (r *Registry[T]) resolveAttribute(args *arguments.ParsedArguments, names []string, sorting bool) (*DataAttribute[T], arguments.Operator, error) {
	v, err := args.Single(names, arguments.Options{
		AllowedOperators: []arguments.Operator{arguments.Equal, arguments.Less, arguments.Greater},
	})
	if err != nil || v == nil {
		return nil, "", err
	}
	token := strings.ToLower(v.Values[0].(string))

	a, ok := r.byToken[token]
	if !ok || a.Accessor == nil {
		a = nil
		for _, family := range r.regex {
			if m := family.Regex.FindStringSubmatch(token); m != nil && m[0] == token {
				a = family.bind(m)
				break
			}
		}
	}
	if a == nil {
		return nil, "", arguments.InvalidSortField(token)
	}
	if sorting && !a.Sortable {
		return nil, "", arguments.InvalidSortField(token)
	}
	if !sorting && a.Formatter == nil {
		return nil, "", arguments.InvalidSortField(token)
	}
	return a, v.Operator, nil
}

// collectFilters consumes every tag, keyword, flag and predicate the registry understands and
// returns the filters in their fixed application order.
func (r *Registry[T]) collectFilters(ctx *Context, args *arguments.ParsedArguments) ([]filter[T], error) {
	var filters []filter[T]

	for _, a := range r.tags {
		if selected := selectTokens(a, args.AllTags(), "", args.Tag); len(selected) > 0 {
			filters = append(filters, membershipFilter(ctx, a, selected, false))
		}
	}
	for _, a := range r.tags {
		if selected := selectTokens(a, args.AllTags(), "!", args.Tag); len(selected) > 0 {
			filters = append(filters, membershipFilter(ctx, a, selected, true))
		}
	}
	for _, a := range r.keywords {
		if selected := selectTokens(a, args.AllWords(), "", args.Word); len(selected) > 0 {
			filters = append(filters, membershipFilter(ctx, a, selected, false))
		}
	}

	for _, a := range r.flags {
		if !flagPresent(args, a, "") {
			continue
		}
		if a.FlagCallback != nil {
			callback := a.FlagCallback
			filters = append(filters, func(values []T) []T {
				if replaced := callback(ctx, r, values); replaced != nil {
					return replaced
				}
				return values
			})
			continue
		}
		accessor := a.Accessor
		filters = append(filters, keep(func(v T) bool { return truthy(accessor(ctx, v)) }))
	}
	for _, a := range r.flags {
		if a.FlagCallback != nil || !flagPresent(args, a, "!") {
			continue
		}
		accessor := a.Accessor
		filters = append(filters, keep(func(v T) bool { return !truthy(accessor(ctx, v)) }))
	}

	for _, a := range append(slices.Clone(r.comparable), r.eqOnly...) {
		predicates, err := args.Repeatable(a.Tokens(), r.predicateOptions(ctx, a))
		if err != nil {
			return nil, err
		}
		for _, p := range predicates {
			if !a.Plural && len(p.Values) > 1 && p.Operator != arguments.Equal && p.Operator != arguments.NotEqual {
				return nil, arguments.ListNotAllowed(a.Name)
			}
			accessor, plural, predicate := a.Accessor, a.Plural, p
			filters = append(filters, keep(func(v T) bool {
				if plural {
					return matchPlural(accessor(ctx, v), predicate)
				}
				return matchScalar(accessor(ctx, v), predicate)
			}))
		}
	}
	return filters, nil
}

func (r *Registry[T]) predicateOptions(ctx *Context, a *DataAttribute[T]) arguments.Options {
	opts := arguments.Options{List: true}
	if a.Plural || !a.Comparable {
		opts.AllowedOperators = arguments.EqualityOperators
	}
	switch {
	case a.CompareConverter != nil:
		convert := a.CompareConverter
		opts.Converter = func(s string) (any, error) { return convert(ctx, s) }
	case a.ValueMapping != nil:
		mapping, name := a.ValueMapping, a.Name
		opts.Converter = func(s string) (any, error) {
			if v, ok := mapping[strings.ToLower(s)]; ok {
				return v, nil
			}
			return nil, arguments.UnknownValue(name, s)
		}
	case a.Comparable:
		opts.Numeric = true
	}
	return opts
}

// selectTokens maps the given tokens carrying prefix through a's value mapping, marking each
// one it consumes.
func selectTokens[T Entity](a *DataAttribute[T], tokens []string, prefix string, use func(string) bool) []any {
	var selected []any
	for _, token := range tokens {
		bare, ok := strings.CutPrefix(token, prefix)
		if !ok || (prefix == "" && strings.HasPrefix(token, "!")) {
			continue
		}
		if v, ok := a.ValueMapping[bare]; ok {
			use(token)
			if !containsValue(selected, v) {
				selected = append(selected, v)
			}
		}
	}
	return selected
}

func flagPresent[T Entity](args *arguments.ParsedArguments, a *DataAttribute[T], prefix string) bool {
	present := false
	for _, token := range a.Tokens() {
		if args.Tag(prefix + strings.ToLower(token)) {
			present = true
		}
	}
	return present
}

// membershipFilter keeps plural values containing every selected value, or scalar values
// equal to one of them. invert keeps the complement.
func membershipFilter[T Entity](ctx *Context, a *DataAttribute[T], selected []any, invert bool) filter[T] {
	accessor, plural := a.Accessor, a.Plural
	return keep(func(v T) bool {
		value := accessor(ctx, v)
		switch {
		case plural && invert:
			return !matchPlural(value, arguments.Converted{Values: selected, Operator: arguments.Equal})
		case plural:
			return matchPlural(value, arguments.Converted{Values: selected, Operator: arguments.StrictEqual})
		default:
			return containsValue(selected, value) != invert
		}
	})
}

func keep[T Entity](predicate func(v T) bool) filter[T] {
	return func(values []T) []T {
		kept := make([]T, 0, len(values))
		for _, v := range values {
			if predicate(v) {
				kept = append(kept, v)
			}
		}
		return kept
	}
}

// sortByAttribute sorts values in place by a's accessor. Equal keys keep their order.
func sortByAttribute[T Entity](ctx *Context, values []T, a *DataAttribute[T], descending bool) {
	type keyed struct {
		key   any
		value T
	}
	pairs := make([]keyed, len(values))
	for i, v := range values {
		pairs[i] = keyed{key: a.Accessor(ctx, v), value: v}
	}
	slices.SortStableFunc(pairs, func(x, y keyed) int {
		if descending {
			return compareValues(y.key, x.key)
		}
		return compareValues(x.key, y.key)
	})
	for i, p := range pairs {
		values[i] = p.value
	}
}

func indexOf[T Entity](values []T, target T) int {
	id := target.EntityID()
	return slices.IndexFunc(values, func(v T) bool { return v.EntityID() == id })
}
