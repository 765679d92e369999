package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursesync/internal/canvas"
	"github.com/abhisek/coursesync/internal/config"
	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/ctxlog"
	"github.com/abhisek/coursesync/internal/kinds"
	"github.com/abhisek/coursesync/internal/links"
	"github.com/abhisek/coursesync/internal/markup"
	"github.com/abhisek/coursesync/internal/reconcile"
	"github.com/abhisek/coursesync/internal/store"
	"github.com/abhisek/coursesync/internal/ui/report"
)

// journalKeep is the number of runs kept in the journal.
const journalKeep = 500

// session bundles what a sync command needs: the course, an engine bound
// to its remote course and, when it can be opened, the journal.
type session struct {
	course  *config.Course
	engine  *reconcile.Engine
	journal *store.Store
}

// loadCourse finds and reads the course file above --dir.
func loadCourse(cmd *cobra.Command) (*config.Course, error) {
	dir, _ := cmd.Flags().GetString("dir")
	root, err := config.FindRoot(dir)
	if err != nil {
		return nil, err
	}
	return config.Load(root)
}

// openSession loads the course and credentials and builds the engine. The
// journal is optional: failing to open it is logged and the sync goes on.
func openSession(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	course, err := loadCourse(cmd)
	if err != nil {
		return nil, err
	}
	creds, err := config.LoadCredentials(course)
	if err != nil {
		return nil, err
	}

	conv, err := converter(cmd)
	if err != nil {
		return nil, err
	}
	loc, err := course.Location()
	if err != nil {
		return nil, err
	}
	client := canvas.New(creds.Domain, creds.Token, course.Canvas.CourseID)
	adapters := kinds.All(kinds.Options{
		Converter: conv,
		Links:     links.Transformer{CourseID: course.Canvas.CourseID, Domain: creds.Domain},
		Location:  loc,
	})

	s := &session{course: course, engine: reconcile.New(client, adapters)}

	dbPath, err := resolveDBPath(cmd)
	if err == nil {
		s.journal, err = store.Open(dbPath)
	}
	if err != nil {
		ctxlog.FromContext(ctx).Warn("sync journal unavailable", "error", err)
	}
	return s, nil
}

func converter(cmd *cobra.Command) (content.Converter, error) {
	if off, _ := cmd.Flags().GetBool("no-convert"); off {
		return markup.Passthrough{}, nil
	}
	p := markup.NewPandoc()
	if !p.Available() {
		return nil, fmt.Errorf("%w (or pass --no-convert to keep HTML bodies)", markup.ErrUnavailable)
	}
	return p, nil
}

func (s *session) Close() {
	if s.journal != nil {
		s.journal.Close()
	}
}

// record writes a finished batch to the journal. Journal failures never
// fail the sync.
func (s *session) record(ctx context.Context, b report.Batch, dir string, started time.Time) {
	if s.journal == nil {
		return
	}
	run := &store.Run{
		Kind:       b.Kind,
		Op:         b.Op,
		CourseID:   s.course.Canvas.CourseID,
		Dir:        dir,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Created:    len(b.Created),
		Updated:    len(b.Updated),
		Skipped:    len(b.Skipped),
		Errors:     len(b.Errors),
	}
	log := ctxlog.FromContext(ctx)
	repo := s.journal.Runs()
	if err := repo.Record(ctx, run, report.Journal(b)); err != nil {
		log.Warn("record sync run", "error", err)
		return
	}
	if err := repo.Prune(ctx, journalKeep); err != nil {
		log.Warn("prune sync journal", "error", err)
	}
}

// parseKinds maps kind arguments to kinds, defaulting to all of them in
// sync order.
func parseKinds(args []string) ([]content.Kind, error) {
	if len(args) == 0 {
		return content.AllKinds(), nil
	}
	seen := make(map[content.Kind]bool)
	var out []content.Kind
	for _, a := range args {
		k, err := content.ParseKind(a)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, nil
}

// errItemsFailed is returned when a command finished but some items did
// not sync, so the process exits non-zero.
var errItemsFailed = errors.New("some items failed to sync")

// runBatches runs op for each kind, renders the reports and records them.
// Batch-level failures stop that kind only.
func (s *session) runBatches(cmd *cobra.Command, ks []content.Kind, op reconcile.Op,
	run func(ctx context.Context, kind content.Kind, dir string) (*reconcile.Report, error)) error {
	ctx := cmd.Context()
	output, _ := cmd.Flags().GetString("output")
	out := cmd.OutOrStdout()

	var batches []report.Batch
	var failed []error
	for _, k := range ks {
		dir := s.course.Dir(k)
		started := time.Now()
		rep, err := run(ctx, k, dir)
		if err != nil {
			failed = append(failed, fmt.Errorf("%s %s: %w", op, k.Dir(), err))
			ctxlog.FromContext(ctx).Warn("batch failed", "kind", k.String(), "op", op,
				"category", content.Category(err), "error", err)
			continue
		}
		b := report.FromReport(rep)
		s.record(ctx, b, dir, started)
		batches = append(batches, b)
		if output == report.FormatText {
			report.WriteBatch(out, b)
		}
		if len(rep.Errors) > 0 {
			failed = append(failed, errItemsFailed)
		}
	}
	if output != report.FormatText {
		if err := report.Encode(out, output, batches); err != nil {
			return err
		}
	}

	if len(batches) > 0 {
		if err := s.course.MarkSynced(string(op), time.Now()); err != nil {
			ctxlog.FromContext(ctx).Warn("record sync time", "error", err)
		}
	}
	if len(failed) > 0 {
		return errors.Join(dedupe(failed)...)
	}
	return nil
}

func dedupe(errs []error) []error {
	var out []error
	itemFailures := false
	for _, err := range errs {
		if errors.Is(err, errItemsFailed) {
			if itemFailures {
				continue
			}
			itemFailures = true
		}
		out = append(out, err)
	}
	return out
}
