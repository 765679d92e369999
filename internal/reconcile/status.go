package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/ctxlog"
)

// StatusOptions controls Status.
type StatusOptions struct {
	// AllowMissing treats a missing directory as holding no files.
	AllowMissing bool
}

// StatusEntry is one item in a status partition.
type StatusEntry struct {
	ID    string
	Title string
	Path  string
}

// StatusReport partitions items by where they exist. Every identifier
// appears in exactly one partition.
type StatusReport struct {
	Kind       content.Kind
	Synced     []StatusEntry
	RemoteOnly []StatusEntry
	LocalOnly  []StatusEntry
	// Errors holds local files that could not be read. They are left out
	// of the partitions.
	Errors []Entry
}

// Status compares the remote listing of kind with the files in dir. It
// writes nothing. A local file is identified by its remote_id, or by its
// file name when it has none.
func (e *Engine) Status(ctx context.Context, kind content.Kind, dir string, opts StatusOptions) (*StatusReport, error) {
	ad, err := e.adapter(kind)
	if err != nil {
		return nil, err
	}
	files, err := localFiles(dir, ad.Ext())
	if err != nil && !(opts.AllowMissing && errors.Is(err, ErrDirNotFound)) {
		return nil, err
	}
	list, err := e.Client.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Dir(), err)
	}

	rep := &StatusReport{Kind: kind}
	local := make(map[string]StatusEntry)
	var localOrder []string
	for _, path := range files {
		data, err := readFile(path)
		if err != nil {
			rep.Errors = append(rep.Errors, Entry{Path: path, Err: err})
			continue
		}
		it, err := ad.Decode(path, data)
		if err != nil {
			rep.Errors = append(rep.Errors, Entry{Path: path, Err: err})
			continue
		}
		id := it.RemoteID
		if id == "" {
			id = it.LocalKey
		}
		if _, dup := local[id]; dup {
			continue
		}
		local[id] = StatusEntry{ID: id, Title: it.Title, Path: path}
		localOrder = append(localOrder, id)
	}

	seen := make(map[string]bool)
	for _, s := range list {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		if l, ok := local[s.ID]; ok {
			rep.Synced = append(rep.Synced, StatusEntry{ID: s.ID, Title: s.Title, Path: l.Path})
			continue
		}
		rep.RemoteOnly = append(rep.RemoteOnly, StatusEntry{ID: s.ID, Title: s.Title})
	}
	for _, id := range localOrder {
		if !seen[id] {
			rep.LocalOnly = append(rep.LocalOnly, local[id])
		}
	}

	ctxlog.FromContext(ctx).Info("status complete",
		"kind", kind.String(),
		"synced", len(rep.Synced),
		"remote_only", len(rep.RemoteOnly),
		"local_only", len(rep.LocalOnly))
	return rep, nil
}
