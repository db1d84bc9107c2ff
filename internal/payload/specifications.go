package payload

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

type specKind uint8

const (
	specAbsent specKind = iota
	specStructured
	specEncoded
)

// RawSpecifications is the specifications field as received: a structured
// key/value mapping or a JSON encoded object.
type RawSpecifications struct {
	kind   specKind
	values map[string]string
	text   string
}

func StructuredSpecifications(values map[string]string) RawSpecifications {
	return RawSpecifications{kind: specStructured, values: values}
}

func EncodedSpecifications(s string) RawSpecifications {
	return RawSpecifications{kind: specEncoded, text: s}
}

func (s RawSpecifications) Present() bool {
	return s.kind != specAbsent
}

// Normalize returns the stored mapping. Unlike RawList there is no fallback:
// an encoded value that is not a JSON object of scalars is an error.
func (s RawSpecifications) Normalize() (map[string]string, error) {
	switch s.kind {
	case specStructured:
		out := make(map[string]string, len(s.values))
		for k, v := range s.values {
			out[k] = v
		}
		return out, nil
	case specEncoded:
		if strings.TrimSpace(s.text) == "" {
			return map[string]string{}, nil
		}
		return decodeSpecifications(s.text)
	default:
		return map[string]string{}, nil
	}
}

func decodeSpecifications(text string) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decode specifications: %w", err)
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			out[k] = ""
			continue
		}
		str, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("specification %q: %w", k, err)
		}
		out[k] = str
	}
	return out, nil
}
