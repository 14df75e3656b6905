package undeploy

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/osb-tools/osbctl/internal/confirm"
	"github.com/osb-tools/osbctl/internal/osb"
)

type fakeResolver struct {
	sets map[string]osb.DependencySet
	errs map[string]error
}

func (f *fakeResolver) Resolve(_ context.Context, project string) (osb.DependencySet, error) {
	if err := f.errs[project]; err != nil {
		return nil, err
	}
	set, ok := f.sets[project]
	if !ok {
		return nil, osb.ErrNotFound
	}
	return set, nil
}

type fakeSessions struct {
	created   []string
	activated []string
	discarded []string
	open      map[string]bool
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{open: make(map[string]bool)}
}

func (f *fakeSessions) Create(_ context.Context, name string) error {
	f.created = append(f.created, name)
	f.open[name] = true
	return nil
}

func (f *fakeSessions) Activate(_ context.Context, name, _ string) error {
	f.activated = append(f.activated, name)
	f.open[name] = false
	return nil
}

func (f *fakeSessions) Discard(_ context.Context, name string) error {
	f.discarded = append(f.discarded, name)
	f.open[name] = false
	return nil
}

func (f *fakeSessions) Exists(_ context.Context, name string) (bool, error) {
	return f.open[name], nil
}

func (f *fakeSessions) ListSessions(_ context.Context) ([]string, error) {
	var names []string
	for name, open := range f.open {
		if open {
			names = append(names, name)
		}
	}
	return names, nil
}

func (f *fakeSessions) anyOpen() bool {
	for _, open := range f.open {
		if open {
			return true
		}
	}
	return false
}

type fakeWriter struct {
	projects   map[string]bool
	deleted    []string
	failDelete string
}

func (f *fakeWriter) ProjectExists(_ context.Context, _, project string) (bool, error) {
	return f.projects[project], nil
}

func (f *fakeWriter) DeleteProject(_ context.Context, _, project string) error {
	if project != "" && project == f.failDelete {
		return errors.New("delete refused")
	}
	f.deleted = append(f.deleted, project)
	return nil
}

func (f *fakeWriter) FindEndpoints(context.Context, string, osb.EndpointKind, string, string) ([]osb.Ref, error) {
	return nil, nil
}

func (f *fakeWriter) EnvValue(context.Context, string, osb.Ref, osb.AttributeKind) (string, error) {
	return "", nil
}

func (f *fakeWriter) IsEnabled(context.Context, string, osb.Ref) (bool, error) { return false, nil }

func (f *fakeWriter) IsMonitoringEnabled(context.Context, string, osb.Ref) (bool, error) {
	return false, nil
}

func (f *fakeWriter) SetEnabled(context.Context, string, osb.Ref, bool) error { return nil }

func (f *fakeWriter) SetMonitoringEnabled(context.Context, string, osb.Ref, bool) error { return nil }

type fakeReaper struct {
	calls  []string
	result func(name string) []osb.Outcome
}

func (f *fakeReaper) Delete(_ context.Context, name string) []osb.Outcome {
	f.calls = append(f.calls, name)
	if f.result != nil {
		return f.result(name)
	}
	return []osb.Outcome{{ObjectType: osb.ObjectQueue, Name: name, Status: osb.StatusDeleted}}
}

func rowKeys(rows []osb.Outcome) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ObjectType + "/" + r.Name + "/" + string(r.Status)
	}
	return out
}

func newOrchestrator(res *fakeResolver, sess *fakeSessions, w *fakeWriter) (*Orchestrator, *fakeReaper, *fakeReaper) {
	queues := &fakeReaper{}
	wms := &fakeReaper{result: func(name string) []osb.Outcome {
		return []osb.Outcome{{ObjectType: osb.ObjectWorkManager, Name: name, Status: osb.StatusDeleted}}
	}}
	return &Orchestrator{
		Resolver:     res,
		Sessions:     sess,
		Writer:       w,
		Queues:       queues,
		WorkManagers: wms,
		Confirm:      confirm.Yes(),
		Owner:        "deployer",
	}, queues, wms
}

func TestRunProjectNotFound(t *testing.T) {
	sess := newFakeSessions()
	o, _, _ := newOrchestrator(&fakeResolver{sets: map[string]osb.DependencySet{}}, sess, &fakeWriter{})

	rows := o.Run(context.Background(), []string{"Ghost"})

	want := []string{"OSB project/Ghost/Not found"}
	if !reflect.DeepEqual(rowKeys(rows), want) {
		t.Fatalf("rows = %v, want %v", rowKeys(rows), want)
	}
	if len(sess.created) != 0 {
		t.Fatalf("session opened for a missing project: %v", sess.created)
	}
}

func TestRunEmptyProjectDeletedWithoutCascade(t *testing.T) {
	sess := newFakeSessions()
	w := &fakeWriter{projects: map[string]bool{"Empty": true}}
	o, queues, wms := newOrchestrator(&fakeResolver{sets: map[string]osb.DependencySet{"Empty": {}}}, sess, w)

	rows := o.Run(context.Background(), []string{"Empty"})

	want := []string{
		"OSB project/Empty/Project is empty",
		"OSB project/Empty/Deleted",
	}
	if !reflect.DeepEqual(rowKeys(rows), want) {
		t.Fatalf("rows = %v, want %v", rowKeys(rows), want)
	}
	if len(queues.calls) != 0 || len(wms.calls) != 0 {
		t.Fatalf("cascade ran for an empty project: queues=%v wms=%v", queues.calls, wms.calls)
	}
	if sess.anyOpen() {
		t.Fatal("session left open")
	}
}

func TestRunCascadeUsesUniqueNames(t *testing.T) {
	set := osb.DependencySet{
		{Ref: osb.Ref{Kind: osb.KindProxy, FolderPath: "P/Proxy", LocalName: "A"}, ServiceURI: "jms://h:7001/cf/jndi.Q_SHARED", WorkManager: "WM_P"},
		{Ref: osb.Ref{Kind: osb.KindProxy, FolderPath: "P/Proxy", LocalName: "B"}, ServiceURI: "jms://h:7001/cf/other.Q_SHARED", WorkManager: "WM_P"},
		{Ref: osb.Ref{Kind: osb.KindBusiness, FolderPath: "P/Business", LocalName: "C"}, ServiceURI: "jms://h:7001/cf/x.Q_SHARED", WorkManager: "default"},
	}
	sess := newFakeSessions()
	w := &fakeWriter{projects: map[string]bool{"P": true}}
	o, queues, wms := newOrchestrator(&fakeResolver{sets: map[string]osb.DependencySet{"P": set}}, sess, w)

	rows := o.Run(context.Background(), []string{"P"})

	// Three endpoints referencing the same queue produce one reaper call.
	if !reflect.DeepEqual(queues.calls, []string{"Q_SHARED"}) {
		t.Fatalf("queue reaper calls = %v", queues.calls)
	}
	if !reflect.DeepEqual(wms.calls, []string{"WM_P"}) {
		t.Fatalf("work manager reaper calls = %v", wms.calls)
	}
	want := []string{
		"OSB project/P/Deleted",
		"Queue/Q_SHARED/Deleted",
		"Work manager/WM_P/Deleted",
	}
	if !reflect.DeepEqual(rowKeys(rows), want) {
		t.Fatalf("rows = %v, want %v", rowKeys(rows), want)
	}
	if !reflect.DeepEqual(w.deleted, []string{"P"}) {
		t.Fatalf("deleted projects = %v", w.deleted)
	}
}

func TestRunDeclinedProjectSkipsCascade(t *testing.T) {
	set := osb.DependencySet{
		{Ref: osb.Ref{Kind: osb.KindProxy, FolderPath: "P/Proxy", LocalName: "A"}, ServiceURI: "jms://h/cf/jndi.Q1", WorkManager: "WM_P"},
	}
	sess := newFakeSessions()
	w := &fakeWriter{projects: map[string]bool{"P": true}}
	o, queues, wms := newOrchestrator(&fakeResolver{sets: map[string]osb.DependencySet{"P": set}}, sess, w)
	o.Confirm = confirm.No()

	rows := o.Run(context.Background(), []string{"P"})

	want := []string{"OSB project/P/Skipped"}
	if !reflect.DeepEqual(rowKeys(rows), want) {
		t.Fatalf("rows = %v, want %v", rowKeys(rows), want)
	}
	if len(queues.calls) != 0 || len(wms.calls) != 0 {
		t.Fatal("cascade ran for a skipped project")
	}
	if len(sess.discarded) != 1 || sess.anyOpen() {
		t.Fatalf("session not discarded: discarded=%v", sess.discarded)
	}
}

func TestRunDeclinedWorkManagerReportsSkipped(t *testing.T) {
	set := osb.DependencySet{
		{Ref: osb.Ref{Kind: osb.KindProxy, FolderPath: "P/Proxy", LocalName: "A"}, WorkManager: "WM_P"},
	}
	sess := newFakeSessions()
	w := &fakeWriter{projects: map[string]bool{"P": true}}
	o, _, wms := newOrchestrator(&fakeResolver{sets: map[string]osb.DependencySet{"P": set}}, sess, w)
	// Yes to the project, no to the work manager.
	o.Confirm = confirm.Scripted(true, false)

	rows := o.Run(context.Background(), []string{"P"})

	want := []string{
		"OSB project/P/Deleted",
		"Work manager/WM_P/Skipped",
	}
	if !reflect.DeepEqual(rowKeys(rows), want) {
		t.Fatalf("rows = %v, want %v", rowKeys(rows), want)
	}
	if len(wms.calls) != 0 {
		t.Fatalf("work manager reaper ran despite decline: %v", wms.calls)
	}
}

func TestRunDeleteFailureContinuesBatch(t *testing.T) {
	sets := map[string]osb.DependencySet{
		"Bad":  {{Ref: osb.Ref{Kind: osb.KindProxy, LocalName: "A"}, ServiceURI: "jms://h/cf/jndi.Q1"}},
		"Good": {},
	}
	sess := newFakeSessions()
	w := &fakeWriter{projects: map[string]bool{"Bad": true, "Good": true}, failDelete: "Bad"}
	o, queues, _ := newOrchestrator(&fakeResolver{sets: sets}, sess, w)

	rows := o.Run(context.Background(), []string{"Bad", "Good"})

	want := []string{
		"OSB project/Bad/Failed",
		"OSB project/Good/Project is empty",
		"OSB project/Good/Deleted",
	}
	if !reflect.DeepEqual(rowKeys(rows), want) {
		t.Fatalf("rows = %v, want %v", rowKeys(rows), want)
	}
	// Cascade must not run for the failed project.
	if len(queues.calls) != 0 {
		t.Fatalf("queue reaper calls = %v", queues.calls)
	}
	if sess.anyOpen() {
		t.Fatal("a session was left open")
	}
}

func TestRunRaceLostReportsNotFound(t *testing.T) {
	sess := newFakeSessions()
	// Discovery finds the project, the in-session view does not.
	w := &fakeWriter{projects: map[string]bool{}}
	o, _, _ := newOrchestrator(&fakeResolver{sets: map[string]osb.DependencySet{"P": {}}}, sess, w)

	rows := o.Run(context.Background(), []string{"P"})

	want := []string{
		"OSB project/P/Project is empty",
		"OSB project/P/Not found",
	}
	if !reflect.DeepEqual(rowKeys(rows), want) {
		t.Fatalf("rows = %v, want %v", rowKeys(rows), want)
	}
	if sess.anyOpen() {
		t.Fatal("session left open after race loss")
	}
}
