package osb

import (
	"reflect"
	"testing"
)

func TestQueueNameFromURI(t *testing.T) {
	t.Parallel()

	cases := []struct {
		uri  string
		want string
		ok   bool
	}{
		{"jms://wls01:7001/weblogic.jms.XAConnectionFactory/jms.queue.ORDERS_IN", "ORDERS_IN", true},
		{"jms://wls01:7001/cf/PLAIN", "PLAIN", true},
		{"http://svc.example.test/orders", "", false},
		{"", "", false},
		{"jms://wls01:7001/cf/", "", false},
	}
	for _, tc := range cases {
		got, ok := QueueNameFromURI(tc.uri)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("QueueNameFromURI(%q) = %q, %v; want %q, %v", tc.uri, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDependencySetQueueNamesUnique(t *testing.T) {
	t.Parallel()

	set := DependencySet{
		{ServiceURI: "jms://h:7001/cf/jndi.Q_ONE"},
		{ServiceURI: "jms://h:7001/cf/jndi.Q_TWO"},
		{ServiceURI: "jms://h:7001/otherCf/other.Q_ONE"},
		{ServiceURI: "http://h/rest"},
		{ServiceURI: "jms://h:7001/cf/jndi.Q_ONE"},
	}
	got := set.QueueNames()
	want := []string{"Q_ONE", "Q_TWO"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("QueueNames() = %v, want %v", got, want)
	}
}

func TestDependencySetWorkManagerNamesExcludesDefaults(t *testing.T) {
	t.Parallel()

	set := DependencySet{
		{WorkManager: "WM_Orders"},
		{WorkManager: "SBDefaultResponseWorkManager"},
		{WorkManager: "default"},
		{WorkManager: "None"},
		{WorkManager: ""},
		{WorkManager: "WM_Billing"},
		{WorkManager: "WM_Orders"},
	}
	got := set.WorkManagerNames()
	want := []string{"WM_Orders", "WM_Billing"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("WorkManagerNames() = %v, want %v", got, want)
	}
}

func TestSplitServicePath(t *testing.T) {
	t.Parallel()

	folder, local := SplitServicePath("Prj1/Proxy/Proxy1")
	if folder != "Prj1/Proxy" || local != "Proxy1" {
		t.Fatalf("got (%q, %q)", folder, local)
	}
	folder, local = SplitServicePath("Lonely")
	if folder != "" || local != "Lonely" {
		t.Fatalf("got (%q, %q)", folder, local)
	}
}

func TestRefFullPath(t *testing.T) {
	t.Parallel()

	r := Ref{Kind: KindProxy, FolderPath: "Prj1/Proxy", LocalName: "Proxy1"}
	if got := r.FullPath(); got != "Prj1/Proxy/Proxy1" {
		t.Fatalf("FullPath() = %q", got)
	}
	r = Ref{Kind: KindProxy, LocalName: "Proxy1"}
	if got := r.FullPath(); got != "Proxy1" {
		t.Fatalf("FullPath() = %q", got)
	}
}
