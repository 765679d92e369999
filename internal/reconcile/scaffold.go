package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/ctxlog"
	"github.com/abhisek/coursesync/internal/frontmatter"
)

// CreateNew creates an empty, unpublished item titled title on the
// platform and then writes its local file, named by the identifier the
// platform assigned.
func (e *Engine) CreateNew(ctx context.Context, kind content.Kind, dir, title string) (Entry, error) {
	ad, err := e.adapter(kind)
	if err != nil {
		return Entry{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Entry{}, content.Validationf("title must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("%w: %w", content.ErrIO, err)
	}

	it := &content.Item{Kind: kind, Title: title, Meta: frontmatter.NewHeader()}
	fields, err := ad.ToRemote(ctx, it)
	if err != nil {
		return Entry{}, err
	}
	r, err := e.Client.Create(ctx, kind, fields)
	if err != nil {
		return Entry{}, fmt.Errorf("create: %w", err)
	}

	entry := Entry{ID: r.ID, Title: title, Path: filepath.Join(dir, r.ID+ad.Ext())}
	found, err := exists(entry.Path)
	if err != nil {
		return entry, err
	}
	if found {
		return entry, fmt.Errorf("%w: created remotely as %s but %s already exists", content.ErrConflict, r.ID, entry.Path)
	}

	local, err := ad.FromRemote(ctx, r)
	if err != nil {
		return entry, err
	}
	local.Path = entry.Path
	data, err := ad.Encode(local)
	if err != nil {
		return entry, err
	}
	if err := writeFile(entry.Path, data); err != nil {
		return entry, err
	}
	ctxlog.FromContext(ctx).Info("created", "kind", kind.String(), "id", r.ID, "path", entry.Path)
	return entry, nil
}
