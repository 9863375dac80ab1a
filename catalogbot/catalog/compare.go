package catalog

import (
	"cmp"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/gohye/catalogbot/catalogbot/arguments"
)

// compareValues orders accessor and predicate values. Numbers compare numerically whatever
// their Go type; nil sorts first.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(strings.ToLower(x), strings.ToLower(y))
		}
	case bool:
		if y, ok := b.(bool); ok {
			return cmp.Compare(boolRank(x), boolRank(y))
		}
	}

	if isNumber(a) && isNumber(b) {
		return cmp.Compare(cast.ToFloat64(a), cast.ToFloat64(b))
	}
	return strings.Compare(cast.ToString(a), cast.ToString(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func equalValues(a, b any) bool {
	return compareValues(a, b) == 0
}

// truthy decides flag membership for accessor values.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case time.Time:
		return !x.IsZero()
	}
	if isNumber(v) {
		return cast.ToFloat64(v) != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer:
		return !rv.IsNil()
	}
	return true
}

// asSet normalizes a plural accessor value.
func asSet(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}

func containsValue(set []any, v any) bool {
	for _, s := range set {
		if equalValues(s, v) {
			return true
		}
	}
	return false
}

// matchScalar applies a predicate to a single-valued attribute.
func matchScalar(value any, c arguments.Converted) bool {
	switch c.Operator {
	case arguments.Equal, arguments.StrictEqual:
		return containsValue(c.Values, value)
	case arguments.NotEqual:
		return !containsValue(c.Values, value)
	}

	order := compareValues(value, c.Values[0])
	switch c.Operator {
	case arguments.Greater:
		return order > 0
	case arguments.Less:
		return order < 0
	case arguments.GreaterOrEqual:
		return order >= 0
	case arguments.LessOrEqual:
		return order <= 0
	}
	return false
}

// matchPlural applies a predicate to a set-valued attribute: = intersects, == is a subset
// test and != is disjointness.
func matchPlural(value any, c arguments.Converted) bool {
	set := asSet(value)
	switch c.Operator {
	case arguments.Equal:
		for _, u := range c.Values {
			if containsValue(set, u) {
				return true
			}
		}
		return false
	case arguments.StrictEqual:
		for _, u := range c.Values {
			if !containsValue(set, u) {
				return false
			}
		}
		return true
	case arguments.NotEqual:
		for _, u := range c.Values {
			if containsValue(set, u) {
				return false
			}
		}
		return true
	}
	return false
}
