// Package links rewrites page links between the platform's course URLs
// and relative links to local files.
package links

import (
	"regexp"
	"strings"
)

// Transformer rewrites links for one course.
type Transformer struct {
	CourseID string
	Domain   string
}

var localLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\((\./[^)\s]+\.md|[^/)\s][^)\s]*\.md|[A-Za-z0-9_-]+)\)`)

// ToLocal turns absolute and course-relative page URLs into "./<page>.md".
func (t Transformer) ToLocal(s string) string {
	if t.CourseID == "" {
		return s
	}
	course := regexp.QuoteMeta(t.CourseID)
	if t.Domain != "" {
		full := regexp.MustCompile(`https?://` + regexp.QuoteMeta(t.Domain) + `/courses/` + course + `/pages/([A-Za-z0-9_-]+)`)
		s = full.ReplaceAllString(s, "./${1}.md")
	}
	rel := regexp.MustCompile(`/courses/` + course + `/pages/([A-Za-z0-9_-]+)`)
	return rel.ReplaceAllString(s, "./${1}.md")
}

// ToRemote turns markdown links to local pages ("./page.md", "page.md",
// "page") into course-relative page URLs. Images, external links, anchors,
// paths into subdirectories and links to other kinds are left alone.
func (t Transformer) ToRemote(s string) string {
	if t.CourseID == "" {
		return s
	}
	matches := localLinkPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		text := s[m[2]:m[3]]
		target := s[m[4]:m[5]]
		b.WriteString(s[last:start])
		last = end
		if start > 0 && s[start-1] == '!' {
			b.WriteString(s[start:end])
			continue
		}
		page, ok := pageOf(target)
		if !ok {
			b.WriteString(s[start:end])
			continue
		}
		b.WriteString("[" + text + "](/courses/" + t.CourseID + "/pages/" + page + ")")
	}
	b.WriteString(s[last:])
	return b.String()
}

func pageOf(target string) (string, bool) {
	page := strings.TrimSuffix(strings.TrimPrefix(target, "./"), ".md")
	switch {
	case page == "",
		strings.HasPrefix(page, "http"),
		strings.HasPrefix(page, "#"),
		strings.Contains(page, "/"),
		strings.Contains(page, "."):
		return "", false
	}
	return page, true
}
