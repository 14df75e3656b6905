package toggle

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/osb-tools/osbctl/internal/osb"
)

type fakeSessions struct {
	created  []string
	comments []string
	discards int
	open     map[string]bool
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{open: make(map[string]bool)}
}

func (f *fakeSessions) Create(_ context.Context, name string) error {
	f.created = append(f.created, name)
	f.open[name] = true
	return nil
}

func (f *fakeSessions) Activate(_ context.Context, name, comment string) error {
	f.comments = append(f.comments, comment)
	f.open[name] = false
	return nil
}

func (f *fakeSessions) Discard(_ context.Context, name string) error {
	f.discards++
	f.open[name] = false
	return nil
}

func (f *fakeSessions) Exists(_ context.Context, name string) (bool, error) {
	return f.open[name], nil
}

func (f *fakeSessions) ListSessions(context.Context) ([]string, error) { return nil, nil }

func (f *fakeSessions) anyOpen() bool {
	for _, open := range f.open {
		if open {
			return true
		}
	}
	return false
}

// fakeWriter resolves paths to references and keeps a per-reference state
// map. State keys are ref.FullPath().
type fakeWriter struct {
	refs       map[string][]osb.Ref
	uris       map[string]string
	enabled    map[string]bool
	monitoring map[string]bool
	stateErr   error
}

func (f *fakeWriter) ProjectExists(context.Context, string, string) (bool, error) {
	return false, nil
}

func (f *fakeWriter) DeleteProject(context.Context, string, string) error { return nil }

func (f *fakeWriter) FindEndpoints(_ context.Context, _ string, _ osb.EndpointKind, folder, local string) ([]osb.Ref, error) {
	return f.refs[folder+"/"+local], nil
}

func (f *fakeWriter) EnvValue(_ context.Context, _ string, ref osb.Ref, _ osb.AttributeKind) (string, error) {
	return f.uris[ref.FullPath()], nil
}

func (f *fakeWriter) IsEnabled(_ context.Context, _ string, ref osb.Ref) (bool, error) {
	if f.stateErr != nil {
		return false, f.stateErr
	}
	return f.enabled[ref.FullPath()], nil
}

func (f *fakeWriter) IsMonitoringEnabled(_ context.Context, _ string, ref osb.Ref) (bool, error) {
	return f.monitoring[ref.FullPath()], nil
}

func (f *fakeWriter) SetEnabled(_ context.Context, _ string, ref osb.Ref, enabled bool) error {
	f.enabled[ref.FullPath()] = enabled
	return nil
}

func (f *fakeWriter) SetMonitoringEnabled(_ context.Context, _ string, ref osb.Ref, enabled bool) error {
	f.monitoring[ref.FullPath()] = enabled
	return nil
}

func proxyRef(path string) osb.Ref {
	folder, local := osb.SplitServicePath(path)
	return osb.Ref{Kind: osb.KindProxy, FolderPath: folder, LocalName: local}
}

func newWriter(paths ...string) *fakeWriter {
	w := &fakeWriter{
		refs:       make(map[string][]osb.Ref),
		uris:       make(map[string]string),
		enabled:    make(map[string]bool),
		monitoring: make(map[string]bool),
	}
	for _, p := range paths {
		ref := proxyRef(p)
		w.refs[p] = []osb.Ref{ref}
		w.uris[p] = "jms://host:7001/cf/jndi." + ref.LocalName
	}
	return w
}

func TestRunSinglePathActivatesImmediately(t *testing.T) {
	sess := newFakeSessions()
	w := newWriter("Prj1/Proxy/Proxy1")
	tg := &Toggler{Sessions: sess, Writer: w, Owner: "deployer"}

	rows, err := tg.Run(context.Background(), TargetEnablement, []string{"Prj1/Proxy/Proxy1"}, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []Row{{Path: "Prj1/Proxy/Proxy1", Status: "Enabled", ServiceURI: w.uris["Prj1/Proxy/Proxy1"]}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	if !w.enabled["Prj1/Proxy/Proxy1"] {
		t.Fatal("endpoint was not enabled")
	}
	if !reflect.DeepEqual(sess.comments, []string{"Proxy1 enabled"}) {
		t.Fatalf("activation comments = %v", sess.comments)
	}
	if sess.anyOpen() {
		t.Fatal("session left open")
	}
}

func TestRunAlreadyInStateDiscardsAndStars(t *testing.T) {
	sess := newFakeSessions()
	w := newWriter("Prj1/Proxy/Proxy1")
	w.enabled["Prj1/Proxy/Proxy1"] = true
	tg := &Toggler{Sessions: sess, Writer: w, Owner: "deployer"}

	rows, err := tg.Run(context.Background(), TargetEnablement, []string{"Prj1/Proxy/Proxy1"}, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(rows) != 1 || rows[0].Status != "Enabled*" {
		t.Fatalf("rows = %v, want a single starred row", rows)
	}
	if len(sess.comments) != 0 {
		t.Fatalf("session activated for a no-op batch: %v", sess.comments)
	}
	if sess.discards != 1 {
		t.Fatalf("discards = %d, want 1", sess.discards)
	}
}

func TestRunMultiPathAggregateActivation(t *testing.T) {
	sess := newFakeSessions()
	w := newWriter("P1/Proxy/A", "P2/Proxy/B", "P3/Proxy/C")
	w.enabled["P1/Proxy/A"] = true
	w.enabled["P2/Proxy/B"] = true
	w.enabled["P3/Proxy/C"] = true
	tg := &Toggler{Sessions: sess, Writer: w, Owner: "deployer"}

	// C is already disabled, so only two modifications happen.
	w.enabled["P3/Proxy/C"] = false
	rows, err := tg.Run(context.Background(), TargetEnablement, []string{"P1/Proxy/A", "P2/Proxy/B", "P3/Proxy/C"}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	statuses := make([]string, len(rows))
	for i, r := range rows {
		statuses[i] = r.Status
	}
	if !reflect.DeepEqual(statuses, []string{"Disabled", "Disabled", "Disabled*"}) {
		t.Fatalf("statuses = %v", statuses)
	}
	if !reflect.DeepEqual(sess.comments, []string{"2 proxy services disabled"}) {
		t.Fatalf("activation comments = %v", sess.comments)
	}
}

func TestRunMultiPathZeroModificationsDiscards(t *testing.T) {
	sess := newFakeSessions()
	w := newWriter("P1/Proxy/A", "P2/Proxy/B")
	w.enabled["P1/Proxy/A"] = true
	w.enabled["P2/Proxy/B"] = true
	tg := &Toggler{Sessions: sess, Writer: w, Owner: "deployer"}

	rows, err := tg.Run(context.Background(), TargetEnablement, []string{"P1/Proxy/A", "P2/Proxy/B"}, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, r := range rows {
		if r.Status != "Enabled*" {
			t.Fatalf("row %v, want every row starred", r)
		}
	}
	if len(sess.comments) != 0 {
		t.Fatalf("empty change set was activated: %v", sess.comments)
	}
	if sess.discards != 1 {
		t.Fatalf("discards = %d, want 1", sess.discards)
	}
}

func TestRunNotFoundRowContinuesBatch(t *testing.T) {
	sess := newFakeSessions()
	w := newWriter("P2/Proxy/B")
	tg := &Toggler{Sessions: sess, Writer: w, Owner: "deployer"}

	rows, err := tg.Run(context.Background(), TargetEnablement, []string{"P1/Proxy/Ghost", "P2/Proxy/B"}, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []Row{
		{Path: "P1/Proxy/Ghost", Status: "Not found", ServiceURI: "N/A"},
		{Path: "P2/Proxy/B", Status: "Enabled", ServiceURI: w.uris["P2/Proxy/B"]},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	// Two input paths, one modification: the aggregate branch commits.
	if !reflect.DeepEqual(sess.comments, []string{"1 proxy services enabled"}) {
		t.Fatalf("activation comments = %v", sess.comments)
	}
}

func TestRunMonitoringTarget(t *testing.T) {
	sess := newFakeSessions()
	w := newWriter("P1/Proxy/A", "P2/Proxy/B")
	// Enablement state must stay untouched by a monitoring run.
	w.enabled["P1/Proxy/A"] = true
	tg := &Toggler{Sessions: sess, Writer: w, Owner: "deployer"}

	rows, err := tg.Run(context.Background(), TargetMonitoring, []string{"P1/Proxy/A", "P2/Proxy/B"}, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, r := range rows {
		if r.Status != "Enabled" {
			t.Fatalf("row %v, want monitoring enabled", r)
		}
	}
	if !w.monitoring["P1/Proxy/A"] || !w.monitoring["P2/Proxy/B"] {
		t.Fatal("monitoring state not applied")
	}
	if !w.enabled["P1/Proxy/A"] || w.enabled["P2/Proxy/B"] {
		t.Fatal("enablement state changed by a monitoring run")
	}
	if !reflect.DeepEqual(sess.comments, []string{"Monitoring of 2 proxy services enabled"}) {
		t.Fatalf("activation comments = %v", sess.comments)
	}
}

func TestRunErrorReturnsPartialRowsAndDiscards(t *testing.T) {
	sess := newFakeSessions()
	w := newWriter("P1/Proxy/A", "P2/Proxy/B")
	tg := &Toggler{Sessions: sess, Writer: w, Owner: "deployer"}

	// First path resolves but its state read fails.
	w.refs["P1/Proxy/Ghost"] = nil
	w.stateErr = errors.New("registry unavailable")

	rows, err := tg.Run(context.Background(), TargetEnablement, []string{"P1/Proxy/Ghost", "P1/Proxy/A"}, true)
	if err == nil {
		t.Fatal("Run succeeded, want error")
	}
	if !strings.Contains(err.Error(), "registry unavailable") {
		t.Fatalf("err = %v", err)
	}

	// The not-found row collected before the failure survives.
	want := []Row{{Path: "P1/Proxy/Ghost", Status: "Not found", ServiceURI: "N/A"}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	if sess.anyOpen() {
		t.Fatal("session left open after error")
	}
	if sess.discards != 1 {
		t.Fatalf("discards = %d, want 1", sess.discards)
	}
}
