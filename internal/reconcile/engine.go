// Package reconcile runs pull, push and status between a content
// directory and the remote platform, one kind at a time.
package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/ctxlog"
	"github.com/abhisek/coursesync/internal/rename"
	"github.com/abhisek/coursesync/internal/schema"
	"github.com/abhisek/coursesync/internal/slug"
)

// PullOptions controls Pull.
type PullOptions struct {
	// Overwrite replaces existing local files.
	Overwrite bool
}

// PushOptions controls Push.
type PushOptions struct {
	CreateMissing  bool
	UpdateExisting bool
	// AllowRename lets a create proceed when the platform is expected to
	// assign an identifier other than the local file name.
	AllowRename bool
}

// DefaultPushOptions creates and updates, refusing renames.
func DefaultPushOptions() PushOptions {
	return PushOptions{CreateMissing: true, UpdateExisting: true}
}

// Engine reconciles local files with the remote platform. Items are
// processed one at a time; a failure on one item is recorded in the report
// and the batch moves on.
type Engine struct {
	Client     content.Client
	Adapters   map[content.Kind]content.Adapter
	Propagator *rename.Propagator
}

// New returns an engine over client and adapters.
func New(client content.Client, adapters map[content.Kind]content.Adapter) *Engine {
	return &Engine{
		Client:     client,
		Adapters:   adapters,
		Propagator: &rename.Propagator{},
	}
}

func (e *Engine) adapter(kind content.Kind) (content.Adapter, error) {
	a, ok := e.Adapters[kind]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for %s", kind)
	}
	return a, nil
}

// Pull writes one file per remote item into dir, named by the item's
// identifier. Existing files are skipped unless opts.Overwrite is set.
func (e *Engine) Pull(ctx context.Context, kind content.Kind, dir string, opts PullOptions) (*Report, error) {
	ad, err := e.adapter(kind)
	if err != nil {
		return nil, err
	}
	log := ctxlog.FromContext(ctx).With("kind", kind.String(), "op", OpPull)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrIO, err)
	}
	list, err := e.Client.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Dir(), err)
	}

	rep := newReport(kind, OpPull)
	for _, s := range list {
		e.pullOne(ctx, ad, dir, s, opts, rep)
	}
	summarize(ctx, rep)
	log.Debug("pull finished", "listed", len(list))
	return rep, nil
}

func (e *Engine) pullOne(ctx context.Context, ad content.Adapter, dir string, s content.Summary, opts PullOptions, rep *Report) {
	log := ctxlog.FromContext(ctx)
	path := filepath.Join(dir, s.ID+ad.Ext())
	entry := Entry{ID: s.ID, Title: s.Title, Path: path}

	found, err := exists(path)
	if err != nil {
		rep.fail(ctx, entry, err)
		return
	}
	if found && !opts.Overwrite {
		entry.Reason = ReasonFileExists
		rep.Skipped = append(rep.Skipped, entry)
		log.Debug("skipped", "id", s.ID, "reason", entry.Reason)
		return
	}

	r, err := e.Client.Get(ctx, ad.Kind(), s.ID)
	if err != nil {
		rep.fail(ctx, entry, fmt.Errorf("get: %w", err))
		return
	}
	it, err := ad.FromRemote(ctx, r)
	if err != nil {
		rep.fail(ctx, entry, err)
		return
	}
	it.Path = path
	data, err := ad.Encode(it)
	if err != nil {
		rep.fail(ctx, entry, err)
		return
	}
	if err := writeFile(path, data); err != nil {
		rep.fail(ctx, entry, err)
		return
	}

	entry.Title = it.Title
	if found {
		rep.Updated = append(rep.Updated, entry)
		log.Debug("overwrote", "id", s.ID, "path", path)
		return
	}
	rep.Created = append(rep.Created, entry)
	log.Debug("wrote", "id", s.ID, "path", path)
}

// Push sends every local file of kind in dir to the platform. Files with a
// remote identifier are updated, others created. A missing dir returns
// ErrDirNotFound.
func (e *Engine) Push(ctx context.Context, kind content.Kind, dir string, opts PushOptions) (*Report, error) {
	ad, err := e.adapter(kind)
	if err != nil {
		return nil, err
	}
	files, err := localFiles(dir, ad.Ext())
	if err != nil {
		return nil, err
	}

	rep := newReport(kind, OpPush)
	for _, path := range files {
		e.pushOne(ctx, ad, dir, path, opts, rep)
	}
	summarize(ctx, rep)
	return rep, nil
}

func (e *Engine) pushOne(ctx context.Context, ad content.Adapter, dir, path string, opts PushOptions, rep *Report) {
	entry := Entry{Path: path}
	data, err := readFile(path)
	if err != nil {
		rep.fail(ctx, entry, err)
		return
	}
	it, err := ad.Decode(path, data)
	if err != nil {
		rep.fail(ctx, entry, err)
		return
	}
	if err := schema.ValidateKind(ad.Kind(), it.Meta); err != nil {
		rep.fail(ctx, entryFor(it), err)
		return
	}

	if it.RemoteID != "" {
		e.update(ctx, ad, it, opts, rep)
		return
	}
	e.create(ctx, ad, dir, it, opts, rep)
}

func (e *Engine) update(ctx context.Context, ad content.Adapter, it *content.Item, opts PushOptions, rep *Report) {
	log := ctxlog.FromContext(ctx)
	entry := entryFor(it)
	if !opts.UpdateExisting {
		entry.Reason = ReasonUpdateDisabled
		rep.Skipped = append(rep.Skipped, entry)
		return
	}

	if ad.Kind() == content.KindQuiz {
		sc, ok := e.Client.(content.SubmissionChecker)
		if !ok {
			rep.fail(ctx, entry, fmt.Errorf("%w: cannot verify submissions for quiz %s", content.ErrConflict, it.RemoteID))
			return
		}
		has, err := sc.HasSubmissions(ctx, ad.Kind(), it.RemoteID)
		if err != nil {
			rep.fail(ctx, entry, fmt.Errorf("check submissions: %w", err))
			return
		}
		if has {
			entry.Reason = ReasonHasSubmissions
			entry.Err = &content.SubmissionsError{ID: it.RemoteID}
			rep.Skipped = append(rep.Skipped, entry)
			log.Warn("refusing to modify quiz with submissions", "id", it.RemoteID, "path", it.Path)
			return
		}
	}

	fields, err := ad.ToRemote(ctx, it)
	if err != nil {
		rep.fail(ctx, entry, err)
		return
	}
	r, err := e.Client.Update(ctx, ad.Kind(), it.RemoteID, fields)
	if err != nil {
		rep.fail(ctx, entry, fmt.Errorf("update: %w", err))
		return
	}

	if al, ok := ad.(content.Aligner); ok {
		changed, err := al.Align(it, r)
		if err != nil {
			rep.fail(ctx, entry, err)
			return
		}
		if changed {
			if err := e.write(ad, it); err != nil {
				rep.fail(ctx, entry, err)
				return
			}
		}
	}
	rep.Updated = append(rep.Updated, entry)
	log.Debug("updated", "id", it.RemoteID, "path", it.Path)
}

func (e *Engine) create(ctx context.Context, ad content.Adapter, dir string, it *content.Item, opts PushOptions, rep *Report) {
	log := ctxlog.FromContext(ctx)
	entry := entryFor(it)
	if !opts.CreateMissing {
		entry.Reason = ReasonCreateDisabled
		rep.Skipped = append(rep.Skipped, entry)
		return
	}

	if ad.SlugAddressed() {
		if predicted := slug.Predict(it.Title); predicted != it.LocalKey && !opts.AllowRename {
			rep.fail(ctx, entry, &content.SlugMismatchError{
				Title:     it.Title,
				Predicted: predicted,
				LocalKey:  it.LocalKey,
			})
			return
		}
	}

	fields, err := ad.ToRemote(ctx, it)
	if err != nil {
		rep.fail(ctx, entry, err)
		return
	}
	r, err := e.Client.Create(ctx, ad.Kind(), fields)
	if err != nil {
		rep.fail(ctx, entry, fmt.Errorf("create: %w", err))
		return
	}

	// From here on the item exists remotely, so the identifier must reach
	// the local file even when a later step fails.
	it.SetRemoteID(r.ID)
	entry.ID = r.ID
	var alignErr error
	if al, ok := ad.(content.Aligner); ok {
		_, alignErr = al.Align(it, r)
	}
	if err := e.write(ad, it); err != nil {
		rep.fail(ctx, entry, fmt.Errorf("created remotely as %s but could not record it: %w", r.ID, err))
		return
	}
	if alignErr != nil {
		rep.fail(ctx, entry, alignErr)
	}

	if r.ID != it.LocalKey && e.Propagator != nil {
		res, err := e.Propagator.Apply(ctx, dir, it.LocalKey, r.ID, ad.Ext())
		if err != nil {
			rep.Created = append(rep.Created, entry)
			rep.fail(ctx, entry, err)
			return
		}
		if res.Renamed {
			entry.Path = res.To
		}
	}
	rep.Created = append(rep.Created, entry)
	log.Debug("created", "id", r.ID, "path", entry.Path)
}

func (e *Engine) write(ad content.Adapter, it *content.Item) error {
	data, err := ad.Encode(it)
	if err != nil {
		return err
	}
	return writeFile(it.Path, data)
}

func (r *Report) fail(ctx context.Context, entry Entry, err error) {
	entry.Err = err
	r.Errors = append(r.Errors, entry)
	ctxlog.FromContext(ctx).Warn("item failed",
		"kind", r.Kind.String(), "op", r.Op, "id", entry.ID, "path", entry.Path,
		"category", content.Category(err), "error", err)
}

func summarize(ctx context.Context, r *Report) {
	ctxlog.FromContext(ctx).Info(string(r.Op)+" complete",
		"kind", r.Kind.String(),
		"created", len(r.Created),
		"updated", len(r.Updated),
		"skipped", len(r.Skipped),
		"errors", len(r.Errors))
}
