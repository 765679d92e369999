package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/abhisek/coursesync/internal/links"
	"github.com/abhisek/coursesync/internal/ui/theme"
)

// LinkIssue is the serializable form of a broken link or unreadable page.
type LinkIssue struct {
	File       string `json:"file" yaml:"file"`
	Line       int    `json:"line,omitempty" yaml:"line,omitempty"`
	URL        string `json:"url,omitempty" yaml:"url,omitempty"`
	Target     string `json:"target,omitempty" yaml:"target,omitempty"`
	Reason     string `json:"reason" yaml:"reason"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// Validation is the serializable form of a link check over one directory.
type Validation struct {
	Dir        string      `json:"dir" yaml:"dir"`
	Pages      int         `json:"pages" yaml:"pages"`
	Links      int         `json:"links" yaml:"links"`
	ValidLinks int         `json:"valid_links" yaml:"valid_links"`
	Issues     []LinkIssue `json:"issues" yaml:"issues"`
}

// FromValidation converts a link check of dir.
func FromValidation(dir string, v *links.Validation) Validation {
	out := Validation{
		Dir:        dir,
		Pages:      len(v.Pages),
		ValidLinks: len(v.Valid),
		Issues:     make([]LinkIssue, 0, len(v.Issues)),
	}
	for _, is := range v.Issues {
		out.Issues = append(out.Issues, LinkIssue{
			File:       is.File,
			Line:       is.Line,
			URL:        is.URL,
			Target:     is.Target,
			Reason:     is.Reason,
			Suggestion: is.Suggestion,
		})
		if is.Target != "" {
			out.Links++
		}
	}
	out.Links += out.ValidLinks
	return out
}

// WriteValidation renders v as styled text.
func WriteValidation(w io.Writer, v Validation) {
	w = terminal(w)
	title := fmt.Sprintf("%s: %d pages, %d links, %d issues", v.Dir, v.Pages, v.Links, len(v.Issues))
	fmt.Fprintln(w, theme.Title.Render(title))
	for _, is := range v.Issues {
		where := filepath.Base(is.File)
		if is.Line > 0 {
			where = fmt.Sprintf("%s:%d", where, is.Line)
		}
		line := theme.Failed.Render(fmt.Sprintf("%-7s", "broken")) + " " + where
		if is.Target != "" {
			line += " -> " + is.Target
		}
		line += theme.Hint.Render(" (" + is.Reason + ")")
		if is.Suggestion != "" {
			line += theme.Hint.Render(" did you mean ") + is.Suggestion + "?"
		}
		fmt.Fprintln(w, theme.Indent.Render(line))
	}
	if len(v.Issues) == 0 {
		fmt.Fprintln(w, theme.Indent.Render(theme.Created.Render("all links resolve")))
	}
}
