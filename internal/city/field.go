package city

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// The helpers below are the only place that inspects the shape of loosely
// typed input. Each returns ok=false instead of failing so callers can skip
// the node and keep going.

// Field returns the member named key of an object node. It matches keys
// literally, so ids containing path characters ('.', '*', '?') are safe.
func Field(r gjson.Result, key string) (gjson.Result, bool) {
	if !r.IsObject() {
		return gjson.Result{}, false
	}
	var out gjson.Result
	found := false
	r.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			out, found = v, true
			return false
		}
		return true
	})
	return out, found
}

// Object returns the member named key when it is a JSON object.
func Object(r gjson.Result, key string) (gjson.Result, bool) {
	v, ok := Field(r, key)
	if !ok || !v.IsObject() {
		return gjson.Result{}, false
	}
	return v, true
}

// Array returns the member named key when it is a JSON array.
func Array(r gjson.Result, key string) (gjson.Result, bool) {
	v, ok := Field(r, key)
	if !ok || !v.IsArray() {
		return gjson.Result{}, false
	}
	return v, true
}

// String returns the member named key when it is a JSON string.
func String(r gjson.Result, key string) (string, bool) {
	v, ok := Field(r, key)
	if !ok || v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

// Int returns the member named key when it is an integral JSON number
// written without a fraction or exponent.
func Int(r gjson.Result, key string) (int, bool) {
	v, ok := Field(r, key)
	if !ok {
		return 0, false
	}
	return IntValue(v)
}

// IntValue is Int for a node already in hand.
func IntValue(v gjson.Result) (int, bool) {
	if v.Type != gjson.Number || strings.ContainsAny(v.Raw, ".eE") {
		return 0, false
	}
	n, err := strconv.Atoi(v.Raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FloatValue accepts JSON numbers and numeric strings.
func FloatValue(v gjson.Result) (float64, bool) {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		var err error
		f, err = strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Float returns the member named key via FloatValue.
func Float(r gjson.Result, key string) (float64, bool) {
	v, ok := Field(r, key)
	if !ok {
		return 0, false
	}
	return FloatValue(v)
}

// Flag reports whether the member named key is present and truthy: true,
// a non-zero number, a non-empty string, or a non-empty object or array.
func Flag(r gjson.Result, key string) bool {
	v, ok := Field(r, key)
	if !ok {
		return false
	}
	switch v.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	case gjson.JSON:
		empty := true
		v.ForEach(func(_, _ gjson.Result) bool {
			empty = false
			return false
		})
		return !empty
	}
	return false
}

// Each calls fn for every element of an array node, in order.
func Each(arr gjson.Result, fn func(gjson.Result)) {
	if !arr.IsArray() {
		return
	}
	arr.ForEach(func(_, v gjson.Result) bool {
		fn(v)
		return true
	})
}
