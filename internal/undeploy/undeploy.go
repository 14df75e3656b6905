// Package undeploy removes deployed projects together with the
// infrastructure objects they privately own. Project deletion happens inside
// an atomic configuration session; orphaned messaging destinations and work
// managers are then reclaimed through independent edit transactions. A
// failure in one project, queue, or work manager never aborts the rest of
// the batch.
package undeploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/osb-tools/osbctl/internal/confirm"
	"github.com/osb-tools/osbctl/internal/metrics"
	"github.com/osb-tools/osbctl/internal/osb"
	"github.com/osb-tools/osbctl/internal/report"
	"github.com/osb-tools/osbctl/internal/session"
)

type dependencyResolver interface {
	Resolve(ctx context.Context, project string) (osb.DependencySet, error)
}

type reaper interface {
	Delete(ctx context.Context, name string) []osb.Outcome
}

// Orchestrator sequences dependency discovery, project deletion, and cascade
// cleanup for a batch of project names.
type Orchestrator struct {
	Resolver     dependencyResolver
	Sessions     osb.SessionManager
	Writer       osb.SessionWriter
	Queues       reaper
	WorkManagers reaper
	Confirm      confirm.Func
	Owner        string
	Logger       *slog.Logger
	// Details receives the per-project dependency report before deletion;
	// nil suppresses it.
	Details *report.Sink
}

// Run processes every project independently and returns the combined
// outcome rows. Every processed object contributes exactly one row.
func (o *Orchestrator) Run(ctx context.Context, projects []string) []osb.Outcome {
	var rows []osb.Outcome
	for _, name := range projects {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		rows = append(rows, o.processProject(ctx, name)...)
	}
	for _, row := range rows {
		metrics.UndeployOutcomesTotal.WithLabelValues(row.ObjectType, string(row.Status)).Inc()
	}
	return rows
}

func (o *Orchestrator) processProject(ctx context.Context, name string) []osb.Outcome {
	logger := o.logger().With("project", name)
	logger.Info("processing project")

	// The dependency snapshot is captured before deletion; once the project
	// is gone it can no longer be queried, so all cascade decisions below
	// work from this set.
	set, err := o.Resolver.Resolve(ctx, name)
	switch {
	case errors.Is(err, osb.ErrNotFound):
		logger.Warn("project not found")
		return []osb.Outcome{{ObjectType: osb.ObjectProject, Name: name, Status: osb.StatusNotFound}}
	case err != nil:
		logger.Error("resolving project dependencies failed", "err", err)
		return []osb.Outcome{{ObjectType: osb.ObjectProject, Name: name, Status: osb.StatusFailed}}
	}

	var rows []osb.Outcome
	if len(set) == 0 {
		logger.Warn("project exists but is empty")
		rows = append(rows, osb.Outcome{ObjectType: osb.ObjectProject, Name: name, Status: osb.StatusProjectEmpty})
	} else {
		o.renderDetails(name, set)
	}

	deleted, row := o.deleteProject(ctx, name, logger)
	rows = append(rows, row)
	if !deleted {
		// Skipped, raced, or failed projects keep their resources.
		return rows
	}

	for _, queue := range set.QueueNames() {
		logger.Info("project was using queue", "queue", queue)
		rows = append(rows, o.Queues.Delete(ctx, queue)...)
	}
	for _, wm := range set.WorkManagerNames() {
		ok, err := o.Confirm(fmt.Sprintf("The project was using Work Manager '%s'. Delete it", wm))
		if err != nil {
			logger.Error("work manager confirmation failed", "work_manager", wm, "err", err)
			rows = append(rows, osb.Outcome{ObjectType: osb.ObjectWorkManager, Name: wm, Status: osb.StatusFailed})
			continue
		}
		if !ok {
			logger.Info("work manager deletion skipped by user", "work_manager", wm)
			rows = append(rows, osb.Outcome{ObjectType: osb.ObjectWorkManager, Name: wm, Status: osb.StatusSkipped})
			continue
		}
		rows = append(rows, o.WorkManagers.Delete(ctx, wm)...)
	}
	return rows
}

// deleteProject removes the project inside its own configuration session.
// The session is guaranteed a terminal state on every path.
func (o *Orchestrator) deleteProject(ctx context.Context, name string, logger *slog.Logger) (deleted bool, row osb.Outcome) {
	row = osb.Outcome{ObjectType: osb.ObjectProject, Name: name}

	s, err := session.Open(ctx, o.Sessions, o.Owner, logger)
	if err != nil {
		logger.Error("creating session failed", "err", err)
		row.Status = osb.StatusFailed
		return false, row
	}
	defer s.Close(ctx)

	exists, err := o.Writer.ProjectExists(ctx, s.Name(), name)
	if err != nil {
		logger.Error("checking project in session failed", "session", s.Name(), "err", err)
		row.Status = osb.StatusFailed
		return false, row
	}
	if !exists {
		// Another actor removed it between discovery and session open.
		logger.Warn("project vanished before deletion", "session", s.Name())
		row.Status = osb.StatusNotFound
		return false, row
	}

	ok, err := o.Confirm(fmt.Sprintf("Do you really want to delete project '%s'", name))
	if err != nil {
		logger.Error("deletion confirmation failed", "err", err)
		row.Status = osb.StatusFailed
		return false, row
	}
	if !ok {
		logger.Info("project deletion skipped by user")
		row.Status = osb.StatusSkipped
		return false, row
	}

	logger.Info("deleting project", "session", s.Name())
	err = s.Mutate(func(sess string) error {
		return o.Writer.DeleteProject(ctx, sess, name)
	})
	if err != nil {
		logger.Error("deleting project failed, discarding session", "session", s.Name(), "err", err)
		row.Status = osb.StatusFailed
		return false, row
	}
	if err := s.Activate(ctx, fmt.Sprintf("Deleted '%s'", name)); err != nil {
		logger.Error("activating session failed, discarding session", "session", s.Name(), "err", err)
		row.Status = osb.StatusFailed
		return false, row
	}

	logger.Info("project deleted")
	row.Status = osb.StatusDeleted
	return true, row
}

func (o *Orchestrator) renderDetails(name string, set osb.DependencySet) {
	if o.Details == nil {
		return
	}
	tbl := &report.Table{
		Title:   fmt.Sprintf("REPORT: Project details for '%s'", name),
		Columns: []string{"SERVICE_PATH", "ENBLD#", "URI", "WORK_MANAGER"},
		Sorted:  true,
	}
	for _, d := range set {
		tbl.AddRow(d.Ref.FullPath(), osb.EnabledFlag(d.Enabled), d.ServiceURI, d.WorkManager)
	}
	if err := o.Details.Write(tbl); err != nil {
		o.logger().Error("rendering project details failed", "project", name, "err", err)
	}
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
