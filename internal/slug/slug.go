// Package slug builds URL-safe, globally unique product and category slugs.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tuanvumaihuynh/storefront-catalog/pkg/clock"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Base lowercases name, folds accented letters to ASCII, collapses every run of
// other characters to a single hyphen and trims hyphens at both ends.
func Base(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	s := nonAlphanumeric.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(s, "-")
}

// Generator appends a millisecond timestamp token to the base slug. Tokens are
// strictly increasing per Generator, so two slugs generated for the same name
// never collide even within the same millisecond.
type Generator struct {
	clock clock.Clock
	last  atomic.Int64
}

func NewGenerator(c clock.Clock) *Generator {
	return &Generator{clock: c}
}

// Generate returns `<base>-<token>`.
func (g *Generator) Generate(name string) string {
	return Base(name) + "-" + strconv.FormatInt(g.nextToken(), 10)
}

func (g *Generator) nextToken() int64 {
	now := g.clock.Now().UnixMilli()
	for {
		last := g.last.Load()
		next := now
		if next <= last {
			next = last + 1
		}
		if g.last.CompareAndSwap(last, next) {
			return next
		}
	}
}
