// Package rename moves a local file to the identifier the remote assigned
// and rewrites links to it in sibling files.
package rename

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/ctxlog"
)

// TargetExistsError reports that the rename target is already taken. The
// source file is left in place.
type TargetExistsError struct {
	From, To string
}

func (e *TargetExistsError) Error() string {
	return fmt.Sprintf("cannot rename %s: %s already exists", filepath.Base(e.From), filepath.Base(e.To))
}

func (e *TargetExistsError) Is(target error) bool { return target == content.ErrConflict }

// Result describes what a propagation changed.
type Result struct {
	From      string
	To        string
	Renamed   bool
	Rewritten []string
}

// Propagator renames files within one directory.
type Propagator struct {
	// Exts lists extensions whose files are scanned for links. Defaults to
	// ".md".
	Exts []string
}

// Apply renames <oldKey><ext> to <newKey><ext> inside dir and rewrites
// links to the old name in every other file. The caller has already
// recorded the new identifier in the file's header. Running Apply again
// after a successful rename changes nothing.
func (p *Propagator) Apply(ctx context.Context, dir, oldKey, newKey, ext string) (Result, error) {
	from := filepath.Join(dir, oldKey+ext)
	to := filepath.Join(dir, newKey+ext)
	res := Result{From: from, To: to}
	if oldKey == newKey {
		return res, nil
	}

	if _, err := os.Stat(from); errors.Is(err, fs.ErrNotExist) {
		return res, nil
	}
	if _, err := os.Stat(to); err == nil {
		return res, &TargetExistsError{From: from, To: to}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return res, fmt.Errorf("%w: stat %s: %w", content.ErrIO, to, err)
	}
	if err := os.Rename(from, to); err != nil {
		return res, fmt.Errorf("%w: %w", content.ErrIO, err)
	}
	res.Renamed = true

	rewritten, err := p.RewriteLinks(dir, oldKey, newKey, ext, to)
	res.Rewritten = rewritten
	if err != nil {
		return res, err
	}
	ctxlog.FromContext(ctx).Info("renamed local file",
		"from", filepath.Base(from), "to", filepath.Base(to), "rewritten", len(rewritten))
	return res, nil
}

// RewriteLinks replaces markdown link targets naming oldKey, with or
// without a leading "./" and with or without an extension, by newKey in
// every scanned file of dir except skip. Only files whose text changes are
// written. It returns the rewritten paths.
func (p *Propagator) RewriteLinks(dir, oldKey, newKey, ext, skip string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrIO, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	pattern := linkPattern(oldKey, ext)
	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !p.scans(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if path == skip {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return out, fmt.Errorf("%w: %w", content.ErrIO, err)
		}
		text := string(data)
		updated := pattern.ReplaceAllStringFunc(text, func(m string) string {
			sub := pattern.FindStringSubmatch(m)
			return sub[1] + sub[2] + newKey + sub[3] + sub[4] + sub[5]
		})
		if updated == text {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return out, fmt.Errorf("%w: %w", content.ErrIO, err)
		}
		if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
			return out, fmt.Errorf("%w: %w", content.ErrIO, err)
		}
		out = append(out, path)
	}
	return out, nil
}

func (p *Propagator) scans(name string) bool {
	exts := p.Exts
	if len(exts) == 0 {
		exts = []string{".md"}
	}
	for _, x := range exts {
		if strings.HasSuffix(name, x) {
			return true
		}
	}
	return false
}

// linkPattern matches "](old)", "](./old)", "](old.ext)" and friends, with
// an optional "#anchor".
func linkPattern(oldKey, ext string) *regexp.Regexp {
	exts := []string{regexp.QuoteMeta(ext)}
	if ext != ".md" {
		exts = append(exts, regexp.QuoteMeta(".md"))
	}
	return regexp.MustCompile(`(\]\(\s*)(\./)?` + regexp.QuoteMeta(oldKey) +
		`(` + strings.Join(exts, "|") + `)?(#[^)\s]*)?(\s*\))`)
}
