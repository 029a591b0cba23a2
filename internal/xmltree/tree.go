// Package xmltree turns RRService XML into a loosely-typed tree and offers the
// coercion helpers the field resolvers are built on. Nothing in this package
// returns an error for a shape it does not recognize; it yields zero values.
package xmltree

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/clbanning/mxj/v2"
)

// TextKey is the key under which element text lives when the element also
// carries attributes.
const TextKey = "#text"

// Parse decodes raw XML into a nested map. Repeated sibling elements become
// []any, single elements become map[string]any or string. Values are never
// cast to numbers so leading zeros and phone numbers survive.
func Parse(raw []byte) (map[string]any, error) {
	m, err := mxj.NewMapXml(raw)
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	return map[string]any(m), nil
}

// AsMap returns v as a map, or nil when v is not an object node.
func AsMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case mxj.Map:
		return map[string]any(m)
	}
	return nil
}

// TextOf extracts a scalar string from a node. It understands a plain scalar,
// an object with a #text key, and an object holding a scalar or #text one
// level down. Anything else yields "".
func TextOf(v any) string {
	if s, ok := scalar(v); ok {
		return s
	}
	m := AsMap(v)
	if m == nil {
		return ""
	}
	if t, ok := m[TextKey]; ok {
		s, _ := scalar(t)
		return s
	}
	for _, k := range sortedKeys(m) {
		child := m[k]
		if s, ok := scalar(child); ok {
			return s
		}
		if cm := AsMap(child); cm != nil {
			if t, ok := cm[TextKey]; ok {
				s, _ := scalar(t)
				return s
			}
		}
	}
	return ""
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// List normalizes a node into a slice: nil and empty text become an empty
// list, a single object becomes a one-element list.
func List(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
	}
	return []any{v}
}

// Get walks a path of object keys and returns the node at the end, or nil.
func Get(v any, path ...string) any {
	cur := v
	for _, k := range path {
		m := AsMap(cur)
		if m == nil {
			return nil
		}
		cur = m[k]
	}
	return cur
}

// First returns the first of keys whose value in v is present and non-empty.
func First(v any, keys ...string) any {
	m := AsMap(v)
	if m == nil {
		return nil
	}
	for _, k := range keys {
		if val, ok := m[k]; ok && Present(val) {
			return val
		}
	}
	return nil
}

// Has reports whether any of keys is defined on v, even with an empty value.
func Has(v any, keys ...string) bool {
	m := AsMap(v)
	if m == nil {
		return false
	}
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// Present reports whether a node carries something: nil, "" and false do not.
func Present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	}
	return true
}

// Int coerces a node's text to an integer. Surrounding spaces are allowed,
// anything else that is not a plain number yields 0.
func Int(v any) int {
	s := strings.TrimSpace(TextOf(v))
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// Number parses a formatted number such as "$36,000" or "1 250.5". Every
// character other than digits, '.' and '-' is dropped first; an unparsable
// remainder yields 0.
func Number(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	s := TextOf(v)
	if s == "" {
		return 0
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Keys returns the keys of an object node in a stable order.
func Keys(v any) []string {
	m := AsMap(v)
	if m == nil {
		return nil
	}
	return sortedKeys(m)
}
