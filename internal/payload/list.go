// Package payload normalizes loosely shaped mutation fields into their stored form.
package payload

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
)

type listKind uint8

const (
	listAbsent listKind = iota
	listStructured
	listDelimited
)

// RawList is a list-valued field as received: either an already structured
// list of strings or a single string holding a JSON array or comma separated values.
type RawList struct {
	kind  listKind
	items []string
	text  string
}

// StructuredList wraps a list that arrived already split.
func StructuredList(items []string) RawList {
	return RawList{kind: listStructured, items: items}
}

// DelimitedString wraps a single encoded value such as `S, M, L` or `["S","M","L"]`.
func DelimitedString(s string) RawList {
	return RawList{kind: listDelimited, text: s}
}

// Present reports whether the field was supplied at all.
func (l RawList) Present() bool {
	return l.kind != listAbsent
}

// Normalize returns the stored form of the list. An absent field yields an empty list.
//
// Encoded strings are decoded as JSON first. An array keeps its elements, with
// scalars such as numbers stored as strings, and a JSON null is an empty list.
// Anything else falls back to comma splitting with entries trimmed and empties dropped.
func (l RawList) Normalize() []string {
	switch l.kind {
	case listStructured:
		out := make([]string, len(l.items))
		copy(out, l.items)
		return out
	case listDelimited:
		if items, ok := decodeJSONList(l.text); ok {
			return items
		}
		return splitComma(l.text)
	default:
		return []string{}
	}
}

func decodeJSONList(s string) ([]string, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}

	switch v := v.(type) {
	case nil:
		return []string{}, true
	case []any:
		items, err := cast.ToStringSliceE(v)
		if err != nil {
			return nil, false
		}
		if items == nil {
			items = []string{}
		}
		return items, true
	default:
		return nil, false
	}
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
