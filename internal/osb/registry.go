// Package osb defines the domain model of the managed service-bus registry
// and the boundary interfaces the workflows operate against. The interfaces
// are implemented by the REST client in osb/rest; tests supply in-memory
// fakes.
package osb

import (
	"context"
	"errors"
)

// AttributeKind selects which environment value to read for an endpoint.
type AttributeKind string

const (
	AttrServiceURI      AttributeKind = "Service URI"
	AttrServiceURITable AttributeKind = "Service URI Table"
	AttrWorkManager     AttributeKind = "Work Manager"
)

// ErrNotFound reports that a referenced registry object is absent. It is a
// terminal outcome for the affected item, not a failure.
var ErrNotFound = errors.New("object not found")

// Reader provides read-only queries against the deployed configuration
// graph outside any session.
type Reader interface {
	ListProjects(ctx context.Context) ([]string, error)
	ProjectExists(ctx context.Context, project string) (bool, error)
	// ProjectRefs enumerates the endpoint references owned by a project.
	ProjectRefs(ctx context.Context, project string) ([]Ref, error)
	// ListEndpoints enumerates all deployed endpoints of one kind.
	ListEndpoints(ctx context.Context, kind EndpointKind) ([]Ref, error)
	// EnvValue reads an attribute of a reference. The returned value is
	// opaque: a plain string for most attributes, a markup document for
	// AttrServiceURITable.
	EnvValue(ctx context.Context, ref Ref, attr AttributeKind) (string, error)
	IsEnabled(ctx context.Context, ref Ref) (bool, error)
	IsMonitoringEnabled(ctx context.Context, ref Ref) (bool, error)
}

// SessionManager wraps the registry's atomic change-session protocol used
// for project and endpoint-state changes.
type SessionManager interface {
	Create(ctx context.Context, name string) error
	// Activate commits the session. It blocks until the change is fully
	// propagated.
	Activate(ctx context.Context, name, comment string) error
	Discard(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	ListSessions(ctx context.Context) ([]string, error)
}

// SessionWriter performs queries and mutations scoped to an open session.
// Reads within a session see that session's uncommitted view.
type SessionWriter interface {
	ProjectExists(ctx context.Context, session, project string) (bool, error)
	DeleteProject(ctx context.Context, session, project string) error
	// FindEndpoints resolves (kind, folder path, local name) to zero or
	// more matching references.
	FindEndpoints(ctx context.Context, session string, kind EndpointKind, folderPath, localName string) ([]Ref, error)
	EnvValue(ctx context.Context, session string, ref Ref, attr AttributeKind) (string, error)
	IsEnabled(ctx context.Context, session string, ref Ref) (bool, error)
	IsMonitoringEnabled(ctx context.Context, session string, ref Ref) (bool, error)
	SetEnabled(ctx context.Context, session string, ref Ref, enabled bool) error
	SetMonitoringEnabled(ctx context.Context, session string, ref Ref, enabled bool) error
}

// DestinationKind is one of the three messaging destination kinds the queue
// reaper understands.
type DestinationKind string

const (
	DestDistributedQueue   DestinationKind = "UniformDistributedQueue"
	DestQueue              DestinationKind = "Queue"
	DestForeignDestination DestinationKind = "ForeignDestination"
)

// Destination describes a messaging destination resolved from the live
// registry at cleanup time. It is transient; nothing persists it.
type Destination struct {
	ID            string
	Kind          DestinationKind
	Name          string
	Module        string
	ForeignServer string
	// ErrorDestinationID refers to the configured dead-letter destination,
	// empty when none is configured.
	ErrorDestinationID string
}

// WorkManagerInfo describes a thread-pool policy and its optional
// constraints, resolved from the live registry at cleanup time.
type WorkManagerInfo struct {
	ID                     string
	Name                   string
	MaxThreadsConstraintID string
	MaxThreadsConstraint   string
	MinThreadsConstraintID string
	MinThreadsConstraint   string
}

// DomainEditor opens edit transactions against the server's domain
// configuration. This transaction boundary is distinct from the
// SessionManager session concept: work-manager and queue mutations go
// through edits, project and endpoint mutations through sessions.
type DomainEditor interface {
	StartEdit(ctx context.Context) (EditTx, error)
}

// EditTx is one open edit transaction. Every transaction must reach Activate
// or Cancel before the caller returns; an abandoned edit blocks other actors.
type EditTx interface {
	// JMSModules lists the messaging modules in registry-defined order.
	JMSModules(ctx context.Context) ([]string, error)
	LookupDistributedQueue(ctx context.Context, module, name string) (*Destination, error)
	LookupQueue(ctx context.Context, module, name string) (*Destination, error)
	ForeignServers(ctx context.Context, module string) ([]string, error)
	LookupForeignDestination(ctx context.Context, module, server, name string) (*Destination, error)
	// ErrorDestination resolves the dead-letter destination configured on d,
	// or nil when none is configured.
	ErrorDestination(ctx context.Context, d *Destination) (*Destination, error)
	DestroyDestination(ctx context.Context, d *Destination) error

	LookupWorkManager(ctx context.Context, name string) (*WorkManagerInfo, error)
	// RemoveReferences drops all configuration references to the object so
	// that destroying it cannot orphan referents.
	RemoveReferences(ctx context.Context, objectID string) error
	DestroyMaxThreadsConstraint(ctx context.Context, wm *WorkManagerInfo) error
	DestroyMinThreadsConstraint(ctx context.Context, wm *WorkManagerInfo) error
	DestroyWorkManager(ctx context.Context, wm *WorkManagerInfo) error

	Save(ctx context.Context) error
	// Activate commits the saved changes and blocks until activation
	// completes.
	Activate(ctx context.Context) error
	Cancel(ctx context.Context) error
}
