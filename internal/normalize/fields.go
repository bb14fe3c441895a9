package normalize

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// keyIndex looks record fields up by a canonical key: lower-cased with
// underscores, dashes and spaces removed, so "first_name", "First Name" and
// "firstName" all resolve to the same entry.
type keyIndex map[string]any

func canonicalKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range strings.ToLower(k) {
		switch r {
		case '_', '-', ' ', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func indexKeys(rec map[string]any) keyIndex {
	idx := make(keyIndex, len(rec))
	// Sorted so colliding spellings resolve the same way on every run.
	for _, k := range slices.Sorted(maps.Keys(rec)) {
		ck := canonicalKey(k)
		if prev, dup := idx[ck]; dup && prev != nil {
			continue
		}
		idx[ck] = rec[k]
	}
	return idx
}

// lookup returns the first present, non-nil value among keys.
func (idx keyIndex) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := idx[canonicalKey(k)]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// str returns the first non-blank string form among keys.
func (idx keyIndex) str(keys ...string) string {
	for _, k := range keys {
		v, ok := idx[canonicalKey(k)]
		if !ok {
			continue
		}
		if s := toString(v); s != "" {
			return s
		}
	}
	return ""
}

// toString renders scalars as trimmed text. Objects and arrays yield "".
func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return cleanScalar(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return cleanScalar(t.String())
	default:
		return ""
	}
}

func cleanScalar(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "undefined", "null", "n/a":
		return ""
	}
	return s
}

// stringList accepts a JSON array of scalars or a comma/semicolon separated string.
func stringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		parts := strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == ';' })
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = cleanScalar(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		if s := toString(t); s != "" {
			return []string{s}
		}
		return nil
	}
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2006-01",
}

// parseDate reads a verification date. Unknown layouts return ok=false.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// splitName splits a display name on whitespace: the first token is the first
// name, the remainder the last name.
func splitName(full string) (first, last string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}
