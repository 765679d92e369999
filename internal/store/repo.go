package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// Buckets an item row can belong to.
const (
	BucketCreated = "created"
	BucketUpdated = "updated"
	BucketSkipped = "skipped"
	BucketError   = "error"
)

// Run is one recorded pull or push of one content kind.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	Kind       string    `json:"kind" yaml:"kind"`
	Op         string    `json:"op" yaml:"op"`
	CourseID   string    `json:"course_id" yaml:"course_id"`
	Dir        string    `json:"dir" yaml:"dir"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Created    int       `json:"created" yaml:"created"`
	Updated    int       `json:"updated" yaml:"updated"`
	Skipped    int       `json:"skipped" yaml:"skipped"`
	Errors     int       `json:"errors" yaml:"errors"`
}

// Item is the recorded outcome for one item of a run.
type Item struct {
	Seq      int64  `json:"seq" yaml:"seq"`
	RunID    string `json:"run_id" yaml:"run_id"`
	Bucket   string `json:"bucket" yaml:"bucket"`
	ItemID   string `json:"item_id" yaml:"item_id"`
	Title    string `json:"title" yaml:"title"`
	Path     string `json:"path" yaml:"path"`
	Reason   string `json:"reason" yaml:"reason"`
	Category string `json:"category" yaml:"category"`
	Message  string `json:"message" yaml:"message"`
}

// QueryOpts filters run queries.
type QueryOpts struct {
	Limit    int    // max results (0 = unlimited)
	Kind     string // only runs of this kind
	Op       string // only runs of this operation
	CourseID string
}

// RunRepo records and lists sync runs.
type RunRepo interface {
	// Record stores run and its items. A missing run ID is generated.
	Record(ctx context.Context, run *Run, items []Item) error

	// Recent returns runs newest first.
	Recent(ctx context.Context, opts QueryOpts) ([]Run, error)

	// Items returns the items of one run in recorded order.
	Items(ctx context.Context, runID string) ([]Item, error)

	// Prune deletes all but the keep most recent runs.
	Prune(ctx context.Context, keep int) error
}

const timeLayout = time.RFC3339Nano

var (
	runColumns  = []string{"id", "kind", "op", "course_id", "dir", "started_at", "finished_at", "created", "updated", "skipped", "errors"}
	itemColumns = []string{"seq", "run_id", "bucket", "item_id", "title", "path", "reason", "category", "message"}
)

// runRepo implements RunRepo with ent's SQL builders over database/sql.
type runRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *runRepo) Record(ctx context.Context, run *Run, items []Item) (err error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args := builder().Insert("sync_runs").
		Columns(runColumns...).
		Values(run.ID, run.Kind, run.Op, run.CourseID, run.Dir,
			run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
			run.Created, run.Updated, run.Skipped, run.Errors).
		Query()
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(items) > 0 {
		first, err := r.seq.Reserve(ctx, tx, len(items))
		if err != nil {
			return err
		}
		ins := builder().Insert("sync_items").Columns(itemColumns...)
		for i := range items {
			it := &items[i]
			it.Seq = first + int64(i)
			it.RunID = run.ID
			ins.Values(it.Seq, it.RunID, it.Bucket, it.ItemID, it.Title, it.Path, it.Reason, it.Category, it.Message)
		}
		query, args := ins.Query()
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *runRepo) Recent(ctx context.Context, opts QueryOpts) ([]Run, error) {
	sel := builder().Select(runColumns...).From(entsql.Table("sync_runs"))
	var preds []*entsql.Predicate
	if opts.Kind != "" {
		preds = append(preds, entsql.EQ("kind", opts.Kind))
	}
	if opts.Op != "" {
		preds = append(preds, entsql.EQ("op", opts.Op))
	}
	if opts.CourseID != "" {
		preds = append(preds, entsql.EQ("course_id", opts.CourseID))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("started_at"), entsql.Desc("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.ID, &run.Kind, &run.Op, &run.CourseID, &run.Dir, &started, &finished,
			&run.Created, &run.Updated, &run.Skipped, &run.Errors); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *runRepo) Items(ctx context.Context, runID string) ([]Item, error) {
	query, args := builder().Select(itemColumns...).
		From(entsql.Table("sync_items")).
		Where(entsql.EQ("run_id", runID)).
		OrderBy("seq").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Seq, &it.RunID, &it.Bucket, &it.ItemID, &it.Title, &it.Path,
			&it.Reason, &it.Category, &it.Message); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *runRepo) Prune(ctx context.Context, keep int) error {
	query, args := builder().Select("id").
		From(entsql.Table("sync_runs")).
		OrderBy(entsql.Desc("started_at"), entsql.Desc("id")).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query runs for prune: %w", err)
	}
	var stale []any
	for n := 0; rows.Next(); n++ {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan run id: %w", err)
		}
		if n >= keep {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	for _, table := range []struct{ name, col string }{{"sync_items", "run_id"}, {"sync_runs", "id"}} {
		query, args := builder().Delete(table.name).Where(entsql.In(table.col, stale...)).Query()
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("prune %s: %w", table.name, err)
		}
	}
	return nil
}
