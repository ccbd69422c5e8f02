package reconcile

import (
	"context"
	"errors"
	"fmt"

	"roster-sync/core/ledger"

	"go.uber.org/zap"
)

// ErrEmptyName is wrapped in a ResolutionError when the resolver returns a blank name.
var ErrEmptyName = errors.New("resolver returned an empty display name")

// Reconcile aligns the ledger with the authoritative records, in order.
//
// A record whose external id already appears in the ledger is skipped. Otherwise its
// display name is resolved: when a row of the input ledger has that username, the
// first such row takes the new external id; when none does, a row is appended with every column set
// to opts.FalseValue except the verified column, which gets opts.TrueValue.
//
// The input set is never modified. The result is returned only when every record was
// processed; any resolver failure aborts the run with a *ResolutionError.
func Reconcile(ctx context.Context, records []AuthoritativeRecord, set *ledger.Set, resolver Resolver, opts Options) (*ledger.Set, *Report, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	for _, col := range []string{ledger.ColumnUsername, ledger.ColumnExternalID} {
		if !set.HasColumn(col) {
			return nil, nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	w := newWorkingSet(set)
	report := &Report{
		Actions: []Action{},
		Summary: Summary{Total: len(records)},
	}

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		if w.hasID(r.ExternalID) {
			report.Summary.Matched++
			continue
		}

		log.Info("External id not in ledger, resolving display name",
			zap.String("external_id", r.ExternalID),
			zap.String("key", r.ResolutionKey),
		)

		name, err := resolver.Resolve(ctx, r.ResolutionKey)
		report.Summary.Resolved++
		if err == nil && name == "" {
			err = ErrEmptyName
		}
		if err != nil {
			return nil, nil, &ResolutionError{ExternalID: r.ExternalID, Key: r.ResolutionKey, Err: err}
		}

		if row, ok := w.rowByName(name); ok {
			prev := w.repair(row, r.ExternalID)
			report.Summary.Repaired++
			report.Actions = append(report.Actions, Action{
				Type:       ActionRepair,
				ExternalID: r.ExternalID,
				Username:   name,
				PreviousID: prev,
				Row:        row,
			})
			log.Info("Username already in ledger under another id, repairing",
				zap.String("username", name),
				zap.String("previous_id", prev),
				zap.String("external_id", r.ExternalID),
			)
			continue
		}

		row := w.create(name, r.ExternalID, opts)
		report.Summary.Created++
		report.Actions = append(report.Actions, Action{
			Type:       ActionCreate,
			ExternalID: r.ExternalID,
			Username:   name,
			Row:        row,
		})
		log.Info("Adding member to ledger",
			zap.String("username", name),
			zap.String("external_id", r.ExternalID),
		)
	}

	return w.set, report, nil
}

func (o Options) withDefaults() Options {
	if o.TrueValue == "" {
		o.TrueValue = "true"
	}
	if o.FalseValue == "" {
		o.FalseValue = "false"
	}
	if o.VerifiedColumn == "" {
		o.VerifiedColumn = ledger.ColumnVerified
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// workingSet is a private copy of the ledger plus the indexes the algorithm consults.
// ids counts rows per external id so a repair only clears presence when the last
// row holding the old id moves away. names maps a username to its first row in the
// input ledger; rows appended during the run are never repair targets.
type workingSet struct {
	set   *ledger.Set
	ids   map[string]int
	names map[string]int
}

func newWorkingSet(src *ledger.Set) *workingSet {
	w := &workingSet{
		set:   src.Clone(),
		ids:   make(map[string]int, src.Len()),
		names: make(map[string]int, src.Len()),
	}
	for i, rec := range w.set.Records {
		w.ids[rec.Get(ledger.ColumnExternalID)]++
		if _, seen := w.names[rec.Get(ledger.ColumnUsername)]; !seen {
			w.names[rec.Get(ledger.ColumnUsername)] = i
		}
	}
	return w
}

func (w *workingSet) hasID(id string) bool {
	return w.ids[id] > 0
}

func (w *workingSet) rowByName(name string) (int, bool) {
	row, ok := w.names[name]
	return row, ok
}

func (w *workingSet) repair(row int, id string) string {
	rec := w.set.Records[row]
	prev := rec.Get(ledger.ColumnExternalID)

	w.ids[prev]--
	if w.ids[prev] <= 0 {
		delete(w.ids, prev)
	}
	rec[ledger.ColumnExternalID] = id
	w.ids[id]++

	return prev
}

func (w *workingSet) create(name, id string, opts Options) int {
	rec := w.set.NewRecord(opts.FalseValue)
	rec[ledger.ColumnUsername] = name
	rec[ledger.ColumnExternalID] = id
	if w.set.HasColumn(opts.VerifiedColumn) {
		rec[opts.VerifiedColumn] = opts.TrueValue
	}

	row := len(w.set.Records)
	w.set.Records = append(w.set.Records, rec)
	w.ids[id]++
	return row
}
