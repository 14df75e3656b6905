package reap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/osb-tools/osbctl/internal/confirm"
	"github.com/osb-tools/osbctl/internal/metrics"
	"github.com/osb-tools/osbctl/internal/osb"
)

// QueueReaper locates a named messaging destination across all messaging
// modules and foreign-server registrations and removes it together with its
// configured dead-letter destination. Each queue name runs in its own edit
// transaction.
type QueueReaper struct {
	Editor  osb.DomainEditor
	Confirm confirm.Func
	Logger  *slog.Logger
}

// Delete finds and deletes the named destination. The search stops at the
// first match; a destination found but declined by the user rolls the
// transaction back.
func (r *QueueReaper) Delete(ctx context.Context, name string) []osb.Outcome {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	logger := r.logger()

	tx, err := r.Editor.StartEdit(ctx)
	if err != nil {
		logger.Error("starting edit for queue failed", "queue", name, "err", err)
		return []osb.Outcome{{ObjectType: osb.ObjectQueue, Name: name, Status: osb.StatusFailed}}
	}

	rows, err := r.deleteInTx(ctx, tx, name)
	if err != nil {
		logger.Error("deleting queue failed, undoing changes", "queue", name, "err", err)
		r.cancel(ctx, tx, "queue_error")
		return []osb.Outcome{{ObjectType: osb.ObjectQueue, Name: name, Status: osb.StatusFailed}}
	}
	return rows
}

func (r *QueueReaper) deleteInTx(ctx context.Context, tx osb.EditTx, name string) ([]osb.Outcome, error) {
	logger := r.logger()

	dest, err := r.find(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		logger.Warn("queue not found in any JMS module", "queue", name)
		r.cancel(ctx, tx, "queue_missing")
		return []osb.Outcome{{ObjectType: osb.ObjectQueue, Name: name, Status: osb.StatusNotFound}}, nil
	}
	logger.Info("destination found", "queue", name, "kind", dest.Kind, "module", dest.Module)

	ok, err := r.Confirm(fmt.Sprintf("Do you want to delete %s '%s'", dest.Kind, name))
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Info("queue deletion skipped by user", "queue", name)
		r.cancel(ctx, tx, "queue_declined")
		return []osb.Outcome{{ObjectType: string(dest.Kind), Name: name, Status: osb.StatusSkipped}}, nil
	}

	// The dead-letter destination must be resolved before the primary is
	// destroyed: destroying the primary can make the reference unreachable.
	var dmq *osb.Destination
	if dest.Kind != osb.DestForeignDestination {
		dmq, err = tx.ErrorDestination(ctx, dest)
		if err != nil {
			return nil, fmt.Errorf("resolve error destination of %q: %w", name, err)
		}
	}

	logger.Info("deleting destination", "queue", name, "kind", dest.Kind)
	if err := tx.DestroyDestination(ctx, dest); err != nil {
		return nil, fmt.Errorf("destroy %s %q: %w", dest.Kind, name, err)
	}
	rows := []osb.Outcome{{ObjectType: string(dest.Kind), Name: name, Status: osb.StatusDeleted}}

	if dmq != nil {
		logger.Info("destination used a dead-letter destination", "queue", name, "dmq", dmq.Name)
		ok, err := r.Confirm(fmt.Sprintf("Do you want to delete DMQ '%s'", dmq.Name))
		if err != nil {
			return nil, err
		}
		if ok {
			if err := tx.DestroyDestination(ctx, dmq); err != nil {
				return nil, fmt.Errorf("destroy DMQ %q: %w", dmq.Name, err)
			}
			rows = append(rows, osb.Outcome{ObjectType: osb.ObjectDMQ, Name: dmq.Name, Status: osb.StatusDeleted})
		} else {
			logger.Info("DMQ deletion skipped by user", "dmq", dmq.Name)
			rows = append(rows, osb.Outcome{ObjectType: osb.ObjectDMQ, Name: dmq.Name, Status: osb.StatusSkipped})
		}
	}

	if err := tx.Save(ctx); err != nil {
		return nil, fmt.Errorf("save edit: %w", err)
	}
	if err := tx.Activate(ctx); err != nil {
		return nil, fmt.Errorf("activate edit: %w", err)
	}
	logger.Info("destination deleted", "queue", name)
	return rows, nil
}

// find walks the modules in registry-defined order, checking distributed
// queues, then plain queues, then each module's foreign servers, stopping at
// the first match.
func (r *QueueReaper) find(ctx context.Context, tx osb.EditTx, name string) (*osb.Destination, error) {
	modules, err := tx.JMSModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list JMS modules: %w", err)
	}
	for _, module := range modules {
		d, err := tx.LookupDistributedQueue(ctx, module, name)
		if err != nil {
			return nil, fmt.Errorf("lookup distributed queue %q in %q: %w", name, module, err)
		}
		if d != nil {
			return d, nil
		}

		d, err = tx.LookupQueue(ctx, module, name)
		if err != nil {
			return nil, fmt.Errorf("lookup queue %q in %q: %w", name, module, err)
		}
		if d != nil {
			return d, nil
		}

		servers, err := tx.ForeignServers(ctx, module)
		if err != nil {
			return nil, fmt.Errorf("list foreign servers of %q: %w", module, err)
		}
		for _, server := range servers {
			d, err := tx.LookupForeignDestination(ctx, module, server, name)
			if err != nil {
				return nil, fmt.Errorf("lookup foreign destination %q in %q/%q: %w", name, module, server, err)
			}
			if d != nil {
				return d, nil
			}
		}
	}
	return nil, nil
}

func (r *QueueReaper) cancel(ctx context.Context, tx osb.EditTx, reason string) {
	metrics.EditRollbacksTotal.WithLabelValues(reason).Inc()
	if err := tx.Cancel(ctx); err != nil {
		r.logger().Error("canceling edit failed", "reason", reason, "err", err)
	}
}

func (r *QueueReaper) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
