package content

import (
	"strconv"

	"github.com/abhisek/coursesync/internal/frontmatter"
)

// Header keys shared by every kind.
const (
	KeyTitle     = "title"
	KeyRemoteID  = "remote_id"
	KeyPublished = "published"
)

// Item is one content unit in its local form. An item with a RemoteID is
// always treated as existing remotely.
type Item struct {
	Kind      Kind
	RemoteID  string
	LocalKey  string // file name without the kind's extension
	Title     string
	Body      string
	Published bool
	Meta      *frontmatter.Header
	Path      string
}

// SetRemoteID records id on the item and in its header.
func (it *Item) SetRemoteID(id string) {
	it.RemoteID = id
	if it.Meta == nil {
		it.Meta = frontmatter.NewHeader()
	}
	it.Meta.Set(KeyRemoteID, IDValue(id))
}

// IDValue returns id as it is stored in a header: numeric identifiers as
// integers, anything else as a string.
func IDValue(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

// Summary is one entry of a remote listing.
type Summary struct {
	ID        string
	Title     string
	Published bool
	UpdatedAt string
}

// Remote is the full remote representation of one item.
type Remote struct {
	ID        string
	Title     string
	Published bool
	UpdatedAt string
	Fields    Fields
}

// Fields is a remote attribute map as sent to or received from the
// platform.
type Fields map[string]any

// String returns the first present key rendered as a string.
func (f Fields) String(keys ...string) string {
	for _, k := range keys {
		switch v := f[k].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int64:
			return strconv.FormatInt(v, 10)
		case int:
			return strconv.Itoa(v)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

// Float returns the first numeric key.
func (f Fields) Float(keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := f[k].(type) {
		case float64:
			return v, true
		case int64:
			return float64(v), true
		case int:
			return float64(v), true
		case string:
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// Int returns key as an integer.
func (f Fields) Int(key string) (int64, bool) {
	n, ok := f.Float(key)
	return int64(n), ok
}

// Bool returns key as a boolean, or def.
func (f Fields) Bool(key string, def bool) bool {
	if b, ok := f[key].(bool); ok {
		return b
	}
	return def
}

// Has reports whether key holds a non-nil value.
func (f Fields) Has(key string) bool {
	return f[key] != nil
}

// Maps returns the list under key as attribute maps.
func (f Fields) Maps(key string) []Fields {
	var out []Fields
	switch v := f[key].(type) {
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, Fields(m))
			}
		}
	case []map[string]any:
		for _, m := range v {
			out = append(out, Fields(m))
		}
	case []Fields:
		out = v
	}
	return out
}
