// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package thing

import (
	"cmp"
	"fmt"
	"reflect"
	"time"
)

// CloneMap deep-copies nested maps and slices. Scalars are shared.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies JSON-like values.
func CloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return CloneMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i := range tv {
			out[i] = CloneValue(tv[i])
		}
		return out
	case []string:
		out := make([]string, len(tv))
		copy(out, tv)
		return out
	default:
		return v
	}
}

// Equal reports whether two field values match exactly. Numbers compare by
// value regardless of their Go type, so 3 and 3.0 are equal; this keeps
// filters stable across a JSON round trip.
func Equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}

// Compare orders two field values. Missing values (nil) sort first, then
// booleans, numbers, strings, times and finally anything else by its
// formatted representation.
func Compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case rankNil:
		return 0
	case rankBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		default:
			return 1
		}
	case rankNumber:
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return cmp.Compare(fa, fb)
	case rankString:
		return cmp.Compare(a.(string), b.(string))
	case rankTime:
		return a.(time.Time).Compare(b.(time.Time))
	default:
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

const (
	rankNil = iota
	rankBool
	rankNumber
	rankString
	rankTime
	rankOther
)

func rank(v any) int {
	switch v.(type) {
	case nil:
		return rankNil
	case bool:
		return rankBool
	case string:
		return rankString
	case time.Time:
		return rankTime
	}
	if _, ok := toFloat(v); ok {
		return rankNumber
	}
	return rankOther
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
