// Package resolve maps normalized RRService trees onto schema records.
//
// The backend moves fields between releases, so each endpoint is described as
// an ordered list of extractors. Every extractor is one hypothesis about where
// the data lives; they are tried in order and the first non-empty result wins.
// A tree that matches no hypothesis resolves to empty values, never an error.
package resolve

import (
	"strings"

	"github.com/giftology/radar/internal/xmltree"
)

// MaxSearchDepth bounds every recursive search through a response tree.
const MaxSearchDepth = 10

// Extractor is one hypothesis about where an endpoint's records live.
type Extractor[T any] struct {
	Name string
	Find func(tree map[string]any) []T
}

// FirstMatch runs extractors in order and returns the first non-empty result
// together with the name of the extractor that produced it.
func FirstMatch[T any](tree map[string]any, extractors ...Extractor[T]) ([]T, string) {
	for _, ex := range extractors {
		if out := ex.Find(tree); len(out) > 0 {
			return out, ex.Name
		}
	}
	return []T{}, ""
}

// candidatePaths lists where a repeated record key may sit, in priority order.
func candidatePaths(key string) [][]string {
	lower := strings.ToLower(key)
	return [][]string{
		{"Selections", key},
		{"Selections", lower},
		{"selections", key},
		{"selections", lower},
		{"ResultInfo", "Selections", key},
		{key},
		{lower},
	}
}

// pathExtractors builds one extractor per candidate path for key, each mapping
// the located nodes through conv.
func pathExtractors[T any](key string, conv func(any) T) []Extractor[T] {
	var out []Extractor[T]
	for _, path := range candidatePaths(key) {
		path := path
		out = append(out, Extractor[T]{
			Name: strings.Join(path, "."),
			Find: func(tree map[string]any) []T {
				return mapList(xmltree.Get(tree, path...), conv)
			},
		})
	}
	return out
}

// mapList wraps a single node into a list and converts every element.
func mapList[T any](node any, conv func(any) T) []T {
	items := xmltree.List(node)
	out := make([]T, 0, len(items))
	for _, it := range items {
		out = append(out, conv(it))
	}
	return out
}

// objectAt returns the first object found under key at the root or inside
// Selections.
func objectAt(tree map[string]any, keys ...string) map[string]any {
	sel := xmltree.SelectionsOf(tree)
	for _, k := range keys {
		if m := xmltree.AsMap(tree[k]); m != nil {
			return m
		}
		if m := xmltree.AsMap(sel[k]); m != nil {
			return m
		}
	}
	return nil
}

func text(node any, keys ...string) string {
	return xmltree.TextOf(xmltree.First(node, keys...))
}

func integer(node any, keys ...string) int {
	return xmltree.Int(xmltree.First(node, keys...))
}

func number(node any, keys ...string) float64 {
	return xmltree.Number(xmltree.First(node, keys...))
}
