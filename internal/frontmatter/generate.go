package frontmatter

import (
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrTooDeep is returned when a value nests deeper than the encoding allows.
var ErrTooDeep = errors.New("frontmatter: value nests deeper than two levels")

var validKey = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.\-]*$`)

// Generate renders doc as text: fence, header entries in insertion order,
// fence, blank line, then the body verbatim. Top-level nil values are
// omitted.
func Generate(doc Document) (string, error) {
	var b strings.Builder
	b.WriteString(Fence + "\n")
	if err := writeHeader(&b, doc.Header); err != nil {
		return "", err
	}
	b.WriteString(Fence + "\n\n")
	b.WriteString(doc.Body)
	return b.String(), nil
}

// Render is Generate for callers holding a header and body separately.
func Render(h *Header, body string) (string, error) {
	return Generate(Document{Header: h, Body: body})
}

func writeHeader(w io.Writer, h *Header) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range h.Keys() {
		v, _ := h.Get(k)
		if v == nil {
			continue
		}
		if !validKey.MatchString(k) {
			return fmt.Errorf("frontmatter: invalid key %q", k)
		}
		n, err := node(k, v, 1)
		if err != nil {
			return err
		}
		root.Content = append(root.Content, keyNode(k), n)
	}
	if len(root.Content) == 0 {
		return nil
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("frontmatter: encode header: %w", err)
	}
	return enc.Close()
}

func keyNode(k string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
}

// node builds the YAML node for v found at path. Lists and dicts are only
// allowed at depth 1, except that a list may hold flat dicts.
func node(path string, v any, depth int) (*yaml.Node, error) {
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(x)}, nil
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(x, 10)}, nil
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return nil, fmt.Errorf("frontmatter: %s: non-finite number", path)
		}
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}, nil
	case string:
		n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: x}
		if needsQuote(x) {
			n.Style = yaml.DoubleQuotedStyle
		}
		return n, nil
	case []any:
		if depth > 1 {
			return nil, fmt.Errorf("%w: %s", ErrTooDeep, path)
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		if len(x) == 0 {
			seq.Style = yaml.FlowStyle
		}
		for _, item := range x {
			var c *yaml.Node
			var err error
			if d, ok := item.(*Header); ok {
				c, err = dict(path, d)
			} else {
				c, err = node(path, item, depth+1)
			}
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, c)
		}
		return seq, nil
	case *Header:
		if depth > 1 {
			return nil, fmt.Errorf("%w: %s", ErrTooDeep, path)
		}
		return dict(path, x)
	}
	return nil, fmt.Errorf("frontmatter: %s: unsupported value type %T", path, v)
}

// dict builds a flat mapping. Empty dicts render in flow style as {}.
func dict(path string, d *Header) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	if d.Len() == 0 {
		m.Style = yaml.FlowStyle
	}
	for _, k := range d.Keys() {
		if !validKey.MatchString(k) {
			return nil, fmt.Errorf("frontmatter: invalid key %q under %q", k, path)
		}
		v, _ := d.Get(k)
		n, err := node(path+"."+k, v, 2)
		if err != nil {
			return nil, err
		}
		m.Content = append(m.Content, keyNode(k), n)
	}
	return m, nil
}

// needsQuote reports whether s written bare would read back as anything
// other than the same string.
func needsQuote(s string) bool {
	if s == "" || strings.ContainsAny(s, "\n\r\t") {
		return true
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil || len(doc.Content) != 1 {
		return true
	}
	n := doc.Content[0]
	return n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" || n.Style != 0 || n.Value != s
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
