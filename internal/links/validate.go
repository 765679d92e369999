package links

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/frontmatter"
)

// Issue reasons.
const (
	ReasonMissingPage = "target page does not exist"
	ReasonBadHeader   = "header does not parse"
)

var markdownLink = regexp.MustCompile(`\[([^\[\]]+)\]\(([^)\s]+)\)`)

// Link is one link from a page file to another page.
type Link struct {
	File   string
	Line   int
	Text   string
	URL    string
	Target string
}

// Issue is a link whose target page is not in the directory, or a file
// that could not be read as a page.
type Issue struct {
	Link
	Reason     string
	Suggestion string
}

// Validation is the result of checking one page directory.
type Validation struct {
	Pages  []string
	Valid  []Link
	Issues []Issue
}

// Err returns a validation error when any issue was found.
func (v *Validation) Err() error {
	if len(v.Issues) == 0 {
		return nil
	}
	return content.Validationf("%d broken links in %d pages", len(v.Issues), len(v.Pages))
}

// Validate checks the page links of every .md file in dir against the
// pages the directory holds. A page is known by its remote_id, or by its
// file name when it has none. External links, images, anchors and links
// to other kinds or subdirectories are not checked.
func Validate(dir string) (*Validation, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrIO, err)
	}

	type page struct {
		path string
		text string
	}
	var pages []page
	known := make(map[string]bool)
	v := &Validation{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") || strings.Count(name, ".") > 1 {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", content.ErrIO, err)
		}
		text := string(data)
		id := strings.TrimSuffix(name, ".md")
		doc, err := frontmatter.Parse(text)
		var se *frontmatter.SyntaxError
		switch {
		case errors.As(err, &se):
			v.Issues = append(v.Issues, Issue{Link: Link{File: path, Line: se.Line}, Reason: ReasonBadHeader + ": " + se.Msg})
		case err != nil:
			v.Issues = append(v.Issues, Issue{Link: Link{File: path}, Reason: ReasonBadHeader + ": " + err.Error()})
		default:
			if rid := doc.Header.String(content.KeyRemoteID); rid != "" {
				id = rid
			}
		}
		known[id] = true
		v.Pages = append(v.Pages, id)
		pages = append(pages, page{path: path, text: text})
	}
	sort.Strings(v.Pages)

	for _, p := range pages {
		for _, l := range pageLinks(p.path, p.text) {
			if known[l.Target] {
				v.Valid = append(v.Valid, l)
				continue
			}
			v.Issues = append(v.Issues, Issue{Link: l, Reason: ReasonMissingPage, Suggestion: suggest(l.Target, v.Pages)})
		}
	}
	return v, nil
}

// pageLinks finds the links in text that address a page, with their
// 1-based line numbers.
func pageLinks(path, text string) []Link {
	var out []Link
	for _, m := range markdownLink.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > 0 && text[m[0]-1] == '!' {
			continue
		}
		url := text[m[4]:m[5]]
		target := url
		if i := strings.IndexByte(target, '#'); i >= 0 {
			target = target[:i]
		}
		if strings.Contains(target, ":") {
			continue
		}
		page, ok := pageOf(target)
		if !ok {
			continue
		}
		out = append(out, Link{
			File:   path,
			Line:   strings.Count(text[:m[0]], "\n") + 1,
			Text:   text[m[2]:m[3]],
			URL:    url,
			Target: page,
		})
	}
	return out
}

// suggest returns the known page target most likely meant: one that
// differs only in dashes, or else the closest within two edits.
func suggest(target string, pages []string) string {
	bare := strings.ReplaceAll(target, "-", "")
	for _, p := range pages {
		if strings.ReplaceAll(p, "-", "") == bare {
			return p
		}
	}
	best, bestDist := "", 3
	for _, p := range pages {
		if d := levenshtein.Distance(target, p, nil); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}
