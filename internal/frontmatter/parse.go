package frontmatter

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fence delimits the header block.
const Fence = "---"

// headerStart is the file line holding the first header line.
const headerStart = 2

// Document is a parsed header+body text.
type Document struct {
	Header *Header
	Body   string
}

// SyntaxError reports a header line that does not fit the grammar.
type SyntaxError struct {
	Line int // 1-based line number within the file
	Msg  string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("frontmatter: line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Parse splits text into header and body. Text that does not open with a
// fence, or whose fence is never closed, is returned whole as the body
// with an empty header.
//
// The header is YAML restricted to two levels: top-level scalars, lists of
// scalars or flat dicts, and flat dicts of scalars.
func Parse(text string) (Document, error) {
	headerLines, body, ok := split(text)
	if !ok {
		return Document{Header: NewHeader(), Body: text}, nil
	}
	h, err := parseHeader(strings.Join(headerLines, "\n"))
	if err != nil {
		return Document{}, err
	}
	return Document{Header: h, Body: body}, nil
}

// split locates the fenced block. The returned lines exclude both fences.
func split(text string) ([]string, string, bool) {
	if !strings.HasPrefix(text, Fence) {
		return nil, "", false
	}
	lines := strings.SplitAfter(text, "\n")
	if strings.TrimRight(lines[0], " \t\r\n") != Fence {
		return nil, "", false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t\r\n") == Fence {
			header := make([]string, 0, i-1)
			for _, l := range lines[1:i] {
				header = append(header, strings.TrimRight(l, "\r\n"))
			}
			body := strings.Join(lines[i+1:], "")
			body = strings.TrimLeft(body, "\r\n")
			return header, body, true
		}
	}
	return nil, "", false
}

func parseHeader(src string) (*Header, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, libraryError(err)
	}
	if len(doc.Content) == 0 {
		return NewHeader(), nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, syntaxErrorAt(root, "expected key: value entries", nil)
	}
	return mapping(root, 1)
}

// mapping decodes the entries of n. Depth 1 is the header itself; depth 2
// is a dict under a top-level key or inside a list, which holds scalars
// only.
func mapping(n *yaml.Node, depth int) (*Header, error) {
	h := NewHeader()
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode || !validKey.MatchString(k.Value) {
			return nil, syntaxErrorAt(k, fmt.Sprintf("invalid key %q", k.Value), nil)
		}
		if h.Has(k.Value) {
			return nil, syntaxErrorAt(k, fmt.Sprintf("duplicate key %q", k.Value), nil)
		}
		val, err := value(k.Value, v, depth)
		if err != nil {
			return nil, err
		}
		h.Set(k.Value, val)
	}
	return h, nil
}

func value(key string, n *yaml.Node, depth int) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return scalar(n)
	case yaml.SequenceNode:
		if depth > 1 {
			return nil, tooDeep(n, key)
		}
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			var v any
			var err error
			if item.Kind == yaml.MappingNode {
				v, err = mapping(item, depth+1)
			} else {
				v, err = value(key, item, depth+1)
			}
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		if depth > 1 {
			return nil, tooDeep(n, key)
		}
		return mapping(n, depth+1)
	case yaml.AliasNode:
		return nil, syntaxErrorAt(n, "aliases are not supported", nil)
	}
	return nil, syntaxErrorAt(n, fmt.Sprintf("unsupported value under %q", key), nil)
}

// scalar types a scalar by its resolved tag. Timestamps and non-finite
// floats stay strings.
func scalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, syntaxErrorAt(n, err.Error(), err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, syntaxErrorAt(n, fmt.Sprintf("integer %s out of range", n.Value), err)
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, syntaxErrorAt(n, err.Error(), err)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return n.Value, nil
		}
		return f, nil
	case "!!str", "!!timestamp":
		return n.Value, nil
	}
	return nil, syntaxErrorAt(n, fmt.Sprintf("unsupported tag %s", n.Tag), nil)
}

func syntaxErrorAt(n *yaml.Node, msg string, err error) *SyntaxError {
	return &SyntaxError{Line: n.Line + headerStart - 1, Msg: msg, Err: err}
}

func tooDeep(n *yaml.Node, key string) *SyntaxError {
	return syntaxErrorAt(n, fmt.Sprintf("value of %q nests deeper than two levels", key), ErrTooDeep)
}

var libraryLine = regexp.MustCompile(`^line (\d+): (.*)$`)

// libraryError maps a YAML syntax error onto file line numbers.
func libraryError(err error) *SyntaxError {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	line := 1
	if m := libraryLine.FindStringSubmatch(msg); m != nil {
		line, _ = strconv.Atoi(m[1])
		msg = m[2]
	}
	return &SyntaxError{Line: line + headerStart - 1, Msg: msg, Err: err}
}
