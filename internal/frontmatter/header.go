// Package frontmatter reads and writes header+body text documents: a fenced
// block of typed key/value pairs followed by a free-form body.
package frontmatter

import (
	"math"
	"reflect"
	"strconv"
)

// Header is an insertion-ordered map of header entries.
//
// Values are one of: nil, string, int64, float64, bool, []any, or *Header.
// Lists hold scalars or flat *Header dicts; a *Header nested under a
// top-level key holds scalars only.
type Header struct {
	keys   []string
	values map[string]any
}

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{values: make(map[string]any)}
}

// Len returns the number of entries.
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.keys)
}

// Keys returns the keys in insertion order.
func (h *Header) Keys() []string {
	if h == nil {
		return nil
	}
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// Has reports whether key is present, including keys holding nil.
func (h *Header) Has(key string) bool {
	if h == nil {
		return false
	}
	_, ok := h.values[key]
	return ok
}

// Get returns the raw value for key.
func (h *Header) Get(key string) (any, bool) {
	if h == nil {
		return nil, false
	}
	v, ok := h.values[key]
	return v, ok
}

// Set stores value under key, keeping the original position of an
// existing key. Common Go types are normalized to the header value domain.
func (h *Header) Set(key string, value any) {
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = normalize(value)
}

// Delete removes key.
func (h *Header) Delete(key string) {
	if _, ok := h.values[key]; !ok {
		return
	}
	delete(h.values, key)
	for i, k := range h.keys {
		if k == key {
			h.keys = append(h.keys[:i], h.keys[i+1:]...)
			break
		}
	}
}

// String returns the value for key rendered as a string. Numbers and
// booleans are formatted; missing and nil values yield "".
func (h *Header) String(key string) string {
	v, _ := h.Get(key)
	return scalarString(v)
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// Int returns the value for key as an integer. Integral floats and numeric
// strings are accepted.
func (h *Header) Int(key string) (int64, bool) {
	v, _ := h.Get(key)
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		if x == math.Trunc(x) {
			return int64(x), true
		}
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

// Float returns the value for key as a float.
func (h *Header) Float(key string) (float64, bool) {
	v, _ := h.Get(key)
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}

// Bool returns the value for key, or def when the key is missing or not a
// boolean.
func (h *Header) Bool(key string, def bool) bool {
	v, _ := h.Get(key)
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// List returns the list stored under key.
func (h *Header) List(key string) []any {
	v, _ := h.Get(key)
	l, _ := v.([]any)
	return l
}

// Strings returns the scalar items of the list under key as strings.
func (h *Header) Strings(key string) []string {
	var out []string
	for _, item := range h.List(key) {
		if _, isDict := item.(*Header); isDict {
			continue
		}
		out = append(out, scalarString(item))
	}
	return out
}

// Dicts returns the dict items of the list under key.
func (h *Header) Dicts(key string) []*Header {
	var out []*Header
	for _, item := range h.List(key) {
		if d, ok := item.(*Header); ok {
			out = append(out, d)
		}
	}
	return out
}

// Dict returns the nested dict stored under key.
func (h *Header) Dict(key string) *Header {
	v, _ := h.Get(key)
	d, _ := v.(*Header)
	return d
}

// Clone returns a deep copy.
func (h *Header) Clone() *Header {
	if h == nil {
		return nil
	}
	out := NewHeader()
	for _, k := range h.keys {
		out.keys = append(out.keys, k)
		out.values[k] = cloneValue(h.values[k])
	}
	return out
}

// Equal reports whether both headers hold the same keys in the same order
// with equal values.
func (h *Header) Equal(o *Header) bool {
	if h.Len() != o.Len() {
		return false
	}
	for i, k := range h.Keys() {
		if o.keys[i] != k {
			return false
		}
		if !valueEqual(h.values[k], o.values[k]) {
			return false
		}
	}
	return true
}

// Map returns the header as plain Go maps and slices, suitable for JSON
// encoding.
func (h *Header) Map() map[string]any {
	out := make(map[string]any, h.Len())
	for _, k := range h.Keys() {
		out[k] = plain(h.values[k])
	}
	return out
}

func plain(v any) any {
	switch x := v.(type) {
	case *Header:
		return x.Map()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = plain(item)
		}
		return out
	}
	return v
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case *Header:
		return x.Clone()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}

func valueEqual(a, b any) bool {
	switch x := a.(type) {
	case *Header:
		y, ok := b.(*Header)
		return ok && x.Equal(y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valueEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case float32:
		return float64(x)
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case []*Header:
		out := make([]any, len(x))
		for i, d := range x {
			out[i] = d
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	case map[string]any:
		d := NewHeader()
		for _, k := range sortedKeys(x) {
			d.Set(k, x[k])
		}
		return d
	}
	return v
}
