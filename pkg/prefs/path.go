package prefs

import (
	"encoding/json"
	"strings"

	errs "github.com/matzehuels/gridboard/pkg/errors"
)

// GetPath returns the value at a dot-notation path.
func GetPath(prefs map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = prefs
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// SetPath stores v at a dot-notation path, creating intermediate objects and
// replacing non-object values in the way.
func SetPath(prefs map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	cur := prefs
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}

// DeletePath removes the value at a dot-notation path and reports whether
// it existed. Emptied parent objects are kept.
func DeletePath(prefs map[string]any, path string) bool {
	parts := strings.Split(path, ".")
	cur := prefs
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			return false
		}
		cur = next
	}
	last := parts[len(parts)-1]
	if _, ok := cur[last]; !ok {
		return false
	}
	delete(cur, last)
	return true
}

// Merge deep-merges src into dst and returns dst. Objects present on both
// sides are merged key by key; any other value in src replaces the one in
// dst. A nil dst is allocated.
func Merge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, sv := range src {
		sm, sok := sv.(map[string]any)
		dm, dok := dst[k].(map[string]any)
		if sok && dok {
			dst[k] = Merge(dm, sm)
			continue
		}
		dst[k] = sv
	}
	return dst
}

// Clone deep-copies a JSON-shaped value tree. Objects and arrays are copied;
// scalars are shared.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return cloneValue(m).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}

// Normalize converts any JSON-encodable object into a plain JSON value tree:
// nested objects become map[string]any, arrays []any and numbers float64.
// Every backend stores and returns this shape.
func Normalize(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "preferences are not valid JSON")
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "preferences must be a JSON object")
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
