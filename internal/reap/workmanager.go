// Package reap reclaims infrastructure objects orphaned by an undeployed
// project: thread-pool work managers (with their min/max thread constraints)
// and messaging destinations (with their dead-letter destinations). Each
// reaper runs its own domain edit transaction, independent of the
// configuration sessions used for project changes, and rolls the whole
// transaction back on any failure, so a deletion is never partially
// committed.
package reap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osb-tools/osbctl/internal/metrics"
	"github.com/osb-tools/osbctl/internal/osb"
)

// WorkManagerReaper deletes a named work manager and its attached thread
// constraints.
type WorkManagerReaper struct {
	Editor osb.DomainEditor
	Logger *slog.Logger
}

// Delete removes the named work manager. The returned rows describe every
// object touched; they are valid regardless of success.
func (r *WorkManagerReaper) Delete(ctx context.Context, name string) []osb.Outcome {
	logger := r.logger()

	tx, err := r.Editor.StartEdit(ctx)
	if err != nil {
		logger.Error("starting edit for work manager failed", "work_manager", name, "err", err)
		return []osb.Outcome{{ObjectType: osb.ObjectWorkManager, Name: name, Status: osb.StatusFailed}}
	}

	rows, err := r.deleteInTx(ctx, tx, name)
	if err != nil {
		logger.Error("deleting work manager failed, undoing changes", "work_manager", name, "err", err)
		r.cancel(ctx, tx, "work_manager_error")
		return []osb.Outcome{{ObjectType: osb.ObjectWorkManager, Name: name, Status: osb.StatusFailed}}
	}
	return rows
}

func (r *WorkManagerReaper) deleteInTx(ctx context.Context, tx osb.EditTx, name string) ([]osb.Outcome, error) {
	logger := r.logger()

	wm, err := tx.LookupWorkManager(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup work manager %q: %w", name, err)
	}
	if wm == nil {
		logger.Warn("work manager not found", "work_manager", name)
		r.cancel(ctx, tx, "work_manager_missing")
		return []osb.Outcome{{ObjectType: osb.ObjectWorkManager, Name: name, Status: osb.StatusNotFound}}, nil
	}

	var rows []osb.Outcome

	// Constraints go first: destroying an object still referenced elsewhere
	// must fail, so every destruction is preceded by reference removal.
	if wm.MaxThreadsConstraintID != "" {
		logger.Info("deleting max threads constraint", "constraint", wm.MaxThreadsConstraint)
		if err := tx.RemoveReferences(ctx, wm.MaxThreadsConstraintID); err != nil {
			return nil, fmt.Errorf("remove references to %q: %w", wm.MaxThreadsConstraint, err)
		}
		if err := tx.DestroyMaxThreadsConstraint(ctx, wm); err != nil {
			return nil, fmt.Errorf("destroy max threads constraint %q: %w", wm.MaxThreadsConstraint, err)
		}
		rows = append(rows, osb.Outcome{ObjectType: osb.ObjectMaxThreadsConstraint, Name: wm.MaxThreadsConstraint, Status: osb.StatusDeleted})
	}
	if wm.MinThreadsConstraintID != "" {
		logger.Info("deleting min threads constraint", "constraint", wm.MinThreadsConstraint)
		if err := tx.RemoveReferences(ctx, wm.MinThreadsConstraintID); err != nil {
			return nil, fmt.Errorf("remove references to %q: %w", wm.MinThreadsConstraint, err)
		}
		if err := tx.DestroyMinThreadsConstraint(ctx, wm); err != nil {
			return nil, fmt.Errorf("destroy min threads constraint %q: %w", wm.MinThreadsConstraint, err)
		}
		rows = append(rows, osb.Outcome{ObjectType: osb.ObjectMinThreadsConstraint, Name: wm.MinThreadsConstraint, Status: osb.StatusDeleted})
	}

	logger.Info("deleting work manager", "work_manager", name)
	if err := tx.RemoveReferences(ctx, wm.ID); err != nil {
		return nil, fmt.Errorf("remove references to %q: %w", name, err)
	}
	if err := tx.DestroyWorkManager(ctx, wm); err != nil {
		return nil, fmt.Errorf("destroy work manager %q: %w", name, err)
	}
	rows = append(rows, osb.Outcome{ObjectType: osb.ObjectWorkManager, Name: name, Status: osb.StatusDeleted})

	if err := tx.Save(ctx); err != nil {
		return nil, fmt.Errorf("save edit: %w", err)
	}
	if err := tx.Activate(ctx); err != nil {
		return nil, fmt.Errorf("activate edit: %w", err)
	}
	logger.Info("work manager deleted", "work_manager", name)
	return rows, nil
}

func (r *WorkManagerReaper) cancel(ctx context.Context, tx osb.EditTx, reason string) {
	metrics.EditRollbacksTotal.WithLabelValues(reason).Inc()
	if err := tx.Cancel(ctx); err != nil {
		r.logger().Error("canceling edit failed", "reason", reason, "err", err)
	}
}

func (r *WorkManagerReaper) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
