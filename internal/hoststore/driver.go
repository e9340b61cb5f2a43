package hoststore

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikbrunner/bmsort/internal/logger"
	"github.com/nikbrunner/bmsort/internal/model"
	"github.com/nikbrunner/bmsort/internal/reconcile"
)

// Outcome records what one action did against the host store.
type Outcome struct {
	Action      model.Action
	CreatedID   string
	TargetID    string
	Moved       []string
	Errors      []error
	Diagnostics []reconcile.Diagnostic
}

// OK reports whether the action completed without store errors.
func (o Outcome) OK() bool {
	return len(o.Errors) == 0
}

// Driver issues actions against a Store one at a time, in order.
type Driver struct {
	rec *reconcile.Reconciler
	log logger.Logger
}

// NewDriver creates a Driver.
func NewDriver(rec *reconcile.Reconciler, log logger.Logger) *Driver {
	if log == nil {
		log = logger.Nop()
	}
	if rec == nil {
		rec = reconcile.New(log)
	}
	return &Driver{rec: rec, log: log}
}

// Batch is one sequence of actions sharing a name index snapshot.
type Batch struct {
	store   Store
	session *reconcile.Session
	log     logger.Logger
}

// Begin snapshots the store's folder names and starts a batch.
func (d *Driver) Begin(ctx context.Context, store Store) (*Batch, error) {
	tree, err := store.GetTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("read bookmark tree: %w", err)
	}
	return &Batch{
		store:   store,
		session: d.rec.NewSession(NameIndex(tree)),
		log:     d.log,
	}, nil
}

// Preview starts a batch against an in-memory copy of lib. The returned
// store holds the result; lib itself is never changed.
func (d *Driver) Preview(ctx context.Context, lib *model.Library) (*Batch, *LibraryStore, error) {
	store := NewLibraryStore(lib)
	batch, err := d.Begin(ctx, store)
	if err != nil {
		return nil, nil, err
	}
	return batch, store, nil
}

// Run applies all actions in order. Failures are recorded per action and
// never stop the remaining actions.
func (d *Driver) Run(ctx context.Context, store Store, actions []model.Action) ([]Outcome, error) {
	batch, err := d.Begin(ctx, store)
	if err != nil {
		return nil, err
	}
	outcomes := make([]Outcome, 0, len(actions))
	for _, a := range actions {
		outcomes = append(outcomes, batch.Apply(ctx, a))
	}
	return outcomes, nil
}

// Apply issues one action and waits for the store to finish it.
func (b *Batch) Apply(ctx context.Context, action model.Action) Outcome {
	out := Outcome{Action: action}

	switch a := action.(type) {
	case model.CreateFolder:
		params := CreateParams{Title: a.Name}
		if a.ParentID != nil && strings.TrimSpace(*a.ParentID) != "" {
			params.ParentID, out.Diagnostics = b.session.Resolve(*a.ParentID)
		}
		id, err := b.store.Create(ctx, params)
		if err != nil {
			b.fail(&out, err)
			return out
		}
		b.session.RecordCreated(a.Name, id)
		out.CreatedID = id

	case model.MoveBookmarks:
		ref := strings.TrimSpace(a.TargetFolderID)
		if ref == "" {
			b.log.Warn("move has no target folder", logger.Strings("bookmarks", a.BookmarkIDs))
			out.Diagnostics = append(out.Diagnostics, reconcile.Diagnostic{
				Kind:    reconcile.KindEmptyTarget,
				Subject: strings.Join(a.BookmarkIDs, ","),
				Message: "move has no target folder",
			})
			return out
		}
		out.TargetID, out.Diagnostics = b.session.Resolve(ref)
		for _, id := range a.BookmarkIDs {
			if err := b.store.Move(ctx, id, out.TargetID); err != nil {
				b.fail(&out, err)
				continue
			}
			out.Moved = append(out.Moved, id)
		}
	}

	return out
}

func (b *Batch) fail(out *Outcome, err error) {
	b.log.Error("bookmark store action failed",
		logger.String("action", string(out.Action.Type())),
		logger.Error(err),
	)
	out.Errors = append(out.Errors, err)
}
