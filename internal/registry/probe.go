// Package registry queries external company and product registries.
// Provider payloads are loosely typed and vary between backends, so
// fields are resolved by probing an ordered list of candidate accessor
// paths instead of decoding into a fixed schema.
package registry

import (
	"strconv"
	"strings"
)

// probe walks doc along each dot-separated path in order and returns
// the first non-empty scalar it finds. Paths landing on objects or
// arrays are skipped.
func probe(doc map[string]any, paths ...string) string {
	for _, path := range paths {
		if v := probeOne(doc, path); v != "" {
			return v
		}
	}
	return ""
}

func probeOne(doc map[string]any, path string) string {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur, ok = m[part]
		if !ok {
			return ""
		}
	}
	return scalar(cur)
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
