package main

import (
	"context"
	"fmt"

	"github.com/osb-tools/osbctl/internal/confirm"
	"github.com/osb-tools/osbctl/internal/osb"
	"github.com/osb-tools/osbctl/internal/reap"
	"github.com/osb-tools/osbctl/internal/report"
	"github.com/osb-tools/osbctl/internal/resolve"
	"github.com/osb-tools/osbctl/internal/toggle"
	"github.com/osb-tools/osbctl/internal/undeploy"
)

// The command and interactive-menu front ends share these workflow drivers;
// each one runs a registry operation and renders its report through the
// application sink.

func listProjectsReport(ctx context.Context, a *app) error {
	projects, err := a.client.ListProjects(ctx)
	if err != nil {
		return err
	}
	t := &report.Table{
		Title:   fmt.Sprintf("REPORT: OSB projects deployed on '%s'", a.env.URL),
		Columns: []string{"PROJECT_NAME"},
		Sorted:  true,
	}
	for _, p := range projects {
		t.AddRow(p)
	}
	return a.sink.Write(t)
}

func listEndpointsReport(ctx context.Context, a *app, kind osb.EndpointKind) error {
	refs, err := a.client.ListEndpoints(ctx, kind)
	if err != nil {
		return err
	}
	label := "Proxy"
	nameColumn := "PROXY_SERVICE_FULL_NAME"
	if kind == osb.KindBusiness {
		label = "Business"
		nameColumn = "BUSINESS_SERVICE_FULL_NAME"
	}
	t := &report.Table{
		Title:   fmt.Sprintf("REPORT: %s services deployed on '%s'", label, a.env.URL),
		Columns: []string{nameColumn, "ENBLD#", "SERVICE_URI"},
		Sorted:  true,
	}
	for _, ref := range refs {
		uri, err := endpointURI(ctx, a, kind, ref)
		if err != nil {
			return err
		}
		enabled, err := a.client.IsEnabled(ctx, ref)
		if err != nil {
			return err
		}
		t.AddRow(ref.FullPath(), osb.EnabledFlag(enabled), uri)
	}
	return a.sink.Write(t)
}

// endpointURI reads the externally visible URI of an endpoint. Business
// services embed it in a markup table that has to be unpacked.
func endpointURI(ctx context.Context, a *app, kind osb.EndpointKind, ref osb.Ref) (string, error) {
	if kind == osb.KindProxy {
		return a.client.EnvValue(ctx, ref, osb.AttrServiceURI)
	}
	table, err := a.client.EnvValue(ctx, ref, osb.AttrServiceURITable)
	if err != nil {
		return "", err
	}
	return resolve.ExtractFirstURI(table)
}

func projectDetailsReport(a *app, project string, set osb.DependencySet) error {
	t := &report.Table{
		Title:   fmt.Sprintf("REPORT: Project details for '%s'", project),
		Columns: []string{"SERVICE_PATH", "ENBLD#", "URI", "WORK_MANAGER"},
		Sorted:  true,
	}
	for _, d := range set {
		t.AddRow(d.Ref.FullPath(), osb.EnabledFlag(d.Enabled), d.ServiceURI, d.WorkManager)
	}
	return a.sink.Write(t)
}

func runUndeploy(ctx context.Context, a *app, ask confirm.Func, projects []string) error {
	o := &undeploy.Orchestrator{
		Resolver:     &resolve.Resolver{Reader: a.client},
		Sessions:     a.client,
		Writer:       a.client.SessionWriter(),
		Queues:       &reap.QueueReaper{Editor: a.client, Confirm: ask, Logger: a.logger},
		WorkManagers: &reap.WorkManagerReaper{Editor: a.client, Logger: a.logger},
		Confirm:      ask,
		Owner:        a.env.Username,
		Logger:       a.logger,
		Details:      a.sink,
	}
	rows := o.Run(ctx, projects)

	t := &report.Table{
		Title:   fmt.Sprintf("REPORT: Delete OSB projects from '%s'", a.env.URL),
		Columns: []string{"OBJECT_TYPE", "OBJECT_NAME", "STATUS"},
	}
	for _, row := range rows {
		t.AddRow(row.Row()...)
	}
	return a.sink.Write(t)
}

// runToggleBatch flips the target state for the given paths and renders the
// report. The partial report still goes out when the batch failed midway;
// the operator needs to see which services were reached.
func runToggleBatch(ctx context.Context, a *app, target toggle.Target, paths []string, enable bool) error {
	tg := &toggle.Toggler{
		Sessions: a.client,
		Writer:   a.client.SessionWriter(),
		Owner:    a.env.Username,
		Logger:   a.logger,
	}
	rows, runErr := tg.Run(ctx, target, paths, enable)

	if len(rows) > 0 {
		statusColumn := "STATUS"
		subject := "proxy services"
		if target == toggle.TargetMonitoring {
			statusColumn = "MONITORING"
			subject = "monitoring of proxy services"
		}
		action := "Disable"
		if enable {
			action = "Enable"
		}
		t := &report.Table{
			Title:   fmt.Sprintf("REPORT: %s %s on '%s'", action, subject, a.env.URL),
			Columns: []string{"SERVICE_FULL_NAME", statusColumn, "SERVICE_URI"},
		}
		for _, row := range rows {
			t.AddRow(row.Path, row.Status, row.ServiceURI)
		}
		if err := a.sink.Write(t); err != nil {
			return err
		}
	}
	return runErr
}
