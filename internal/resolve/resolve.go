// Package resolve expands {name} and [name] tokens in reply templates.
package resolve

import (
	"regexp"
	"sort"
	"strings"
)

// Context maps token names to their current values. Casing variants of one logical field
// (say a name and its upper-case alias) are separate keys; the resolver does not normalize.
type Context map[string]string

// tokenPattern matches {name} and [name]; names never contain a delimiter or a line break.
var tokenPattern = regexp.MustCompile(`\{([^{}\[\]\r\n]+)\}|\[([^{}\[\]\r\n]+)\]`)

// Resolve replaces every {s} and [s] whose spelling s is a context key, its upper-case form or
// its lower-case form with that key's value. Tokens with an empty or missing value are left as
// written. Replacement text is not rescanned.
//
// When two keys produce the same spelling, the key spelled exactly that way wins; otherwise the
// lexicographically smallest key wins. Callers should not depend on this.
func Resolve(text string, ctx Context) string {
	if text == "" || len(ctx) == 0 {
		return text
	}
	lookup := spellings(ctx)
	if len(lookup) == 0 {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		if v, ok := lookup[tok[1:len(tok)-1]]; ok {
			return v
		}
		return tok
	})
}

// spellings builds spelling -> value for all non-empty context entries.
func spellings(ctx Context) map[string]string {
	keys := make([]string, 0, len(ctx))
	for k, v := range ctx {
		if k == "" || v == "" || strings.ContainsAny(k, "{}[]\r\n") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(keys)*3)
	for _, k := range keys {
		out[k] = ctx[k]
	}
	for _, k := range keys {
		for _, s := range []string{strings.ToUpper(k), strings.ToLower(k)} {
			if _, taken := out[s]; taken {
				continue
			}
			out[s] = ctx[k]
		}
	}
	return out
}

// Extract returns the distinct token names referenced by text in order of first appearance.
// Names are returned as written.
func Extract(text string) []string {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// ExtractSet is Extract as a set.
func ExtractSet(text string) map[string]struct{} {
	names := Extract(text)
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

// Missing returns the tokens in text that ctx cannot fill, in order of first appearance.
func Missing(text string, ctx Context) []string {
	lookup := spellings(ctx)
	var out []string
	for _, name := range Extract(text) {
		if _, ok := lookup[name]; ok {
			continue
		}
		out = append(out, name)
	}
	return out
}
