package rest

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/osb-tools/osbctl/internal/osb"
)

var (
	_ osb.DomainEditor = (*Client)(nil)
	_ osb.EditTx       = (*editTx)(nil)
)

// StartEdit opens a domain edit transaction and returns a handle bound to
// its server-side id.
func (c *Client) StartEdit(ctx context.Context) (osb.EditTx, error) {
	endpoint, err := c.endpoint(apiPrefix+"/edit", nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, "start_edit", http.MethodPost, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	if payload.ID == "" {
		return nil, errors.New("registry returned an empty edit id")
	}
	return &editTx{c: c, id: payload.ID}, nil
}

type editTx struct {
	c  *Client
	id string
}

func (t *editTx) prefix() string {
	return apiPrefix + "/edit/" + url.PathEscape(t.id)
}

type destinationPayload struct {
	ID                 string `json:"id"`
	Kind               string `json:"kind"`
	Name               string `json:"name"`
	Module             string `json:"module"`
	ForeignServer      string `json:"foreignServer"`
	ErrorDestinationID string `json:"errorDestinationId"`
}

func (p destinationPayload) toDestination() *osb.Destination {
	return &osb.Destination{
		ID:                 p.ID,
		Kind:               osb.DestinationKind(p.Kind),
		Name:               p.Name,
		Module:             p.Module,
		ForeignServer:      p.ForeignServer,
		ErrorDestinationID: p.ErrorDestinationID,
	}
}

func (t *editTx) JMSModules(ctx context.Context) ([]string, error) {
	endpoint, err := t.c.endpoint(t.prefix()+"/jms/modules", nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Modules []string `json:"modules"`
	}
	if err := t.c.do(ctx, "jms_modules", http.MethodGet, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Modules, nil
}

// lookupDestination resolves one destination path. A 404 is a nil result,
// matching the lookup-by-name contract.
func (t *editTx) lookupDestination(ctx context.Context, op, path string) (*osb.Destination, error) {
	endpoint, err := t.c.endpoint(path, nil)
	if err != nil {
		return nil, err
	}
	var payload destinationPayload
	err = t.c.do(ctx, op, http.MethodGet, endpoint, nil, &payload)
	if errors.Is(err, errStatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload.toDestination(), nil
}

func (t *editTx) LookupDistributedQueue(ctx context.Context, module, name string) (*osb.Destination, error) {
	path := t.prefix() + "/jms/modules/" + url.PathEscape(module) + "/distributed-queues/" + url.PathEscape(name)
	return t.lookupDestination(ctx, "lookup_distributed_queue", path)
}

func (t *editTx) LookupQueue(ctx context.Context, module, name string) (*osb.Destination, error) {
	path := t.prefix() + "/jms/modules/" + url.PathEscape(module) + "/queues/" + url.PathEscape(name)
	return t.lookupDestination(ctx, "lookup_queue", path)
}

func (t *editTx) ForeignServers(ctx context.Context, module string) ([]string, error) {
	endpoint, err := t.c.endpoint(t.prefix()+"/jms/modules/"+url.PathEscape(module)+"/foreign-servers", nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Servers []string `json:"servers"`
	}
	if err := t.c.do(ctx, "foreign_servers", http.MethodGet, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Servers, nil
}

func (t *editTx) LookupForeignDestination(ctx context.Context, module, server, name string) (*osb.Destination, error) {
	path := t.prefix() + "/jms/modules/" + url.PathEscape(module) +
		"/foreign-servers/" + url.PathEscape(server) +
		"/destinations/" + url.PathEscape(name)
	return t.lookupDestination(ctx, "lookup_foreign_destination", path)
}

func (t *editTx) ErrorDestination(ctx context.Context, d *osb.Destination) (*osb.Destination, error) {
	if d == nil || d.ErrorDestinationID == "" {
		return nil, nil
	}
	path := t.prefix() + "/destinations/" + url.PathEscape(d.ErrorDestinationID)
	return t.lookupDestination(ctx, "error_destination", path)
}

func (t *editTx) DestroyDestination(ctx context.Context, d *osb.Destination) error {
	if d == nil {
		return errors.New("no destination to destroy")
	}
	return t.destroyObject(ctx, "destroy_destination", d.ID)
}

func (t *editTx) LookupWorkManager(ctx context.Context, name string) (*osb.WorkManagerInfo, error) {
	endpoint, err := t.c.endpoint(t.prefix()+"/work-managers/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		ID                     string `json:"id"`
		Name                   string `json:"name"`
		MaxThreadsConstraintID string `json:"maxThreadsConstraintId"`
		MaxThreadsConstraint   string `json:"maxThreadsConstraint"`
		MinThreadsConstraintID string `json:"minThreadsConstraintId"`
		MinThreadsConstraint   string `json:"minThreadsConstraint"`
	}
	err = t.c.do(ctx, "lookup_work_manager", http.MethodGet, endpoint, nil, &payload)
	if errors.Is(err, errStatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &osb.WorkManagerInfo{
		ID:                     payload.ID,
		Name:                   payload.Name,
		MaxThreadsConstraintID: payload.MaxThreadsConstraintID,
		MaxThreadsConstraint:   payload.MaxThreadsConstraint,
		MinThreadsConstraintID: payload.MinThreadsConstraintID,
		MinThreadsConstraint:   payload.MinThreadsConstraint,
	}, nil
}

// RemoveReferences drops every configuration reference to the object so its
// destruction cannot orphan referents.
func (t *editTx) RemoveReferences(ctx context.Context, objectID string) error {
	endpoint, err := t.c.endpoint(t.prefix()+"/objects/"+url.PathEscape(objectID)+"/remove-references", nil)
	if err != nil {
		return err
	}
	return t.c.do(ctx, "remove_references", http.MethodPost, endpoint, nil, nil)
}

func (t *editTx) DestroyMaxThreadsConstraint(ctx context.Context, wm *osb.WorkManagerInfo) error {
	return t.destroyObject(ctx, "destroy_max_threads_constraint", wm.MaxThreadsConstraintID)
}

func (t *editTx) DestroyMinThreadsConstraint(ctx context.Context, wm *osb.WorkManagerInfo) error {
	return t.destroyObject(ctx, "destroy_min_threads_constraint", wm.MinThreadsConstraintID)
}

func (t *editTx) DestroyWorkManager(ctx context.Context, wm *osb.WorkManagerInfo) error {
	return t.destroyObject(ctx, "destroy_work_manager", wm.ID)
}

func (t *editTx) destroyObject(ctx context.Context, op, objectID string) error {
	if objectID == "" {
		return errors.New("no object id to destroy")
	}
	endpoint, err := t.c.endpoint(t.prefix()+"/objects/"+url.PathEscape(objectID), nil)
	if err != nil {
		return err
	}
	return t.c.do(ctx, op, http.MethodDelete, endpoint, nil, nil)
}

func (t *editTx) Save(ctx context.Context) error {
	endpoint, err := t.c.endpoint(t.prefix()+"/save", nil)
	if err != nil {
		return err
	}
	return t.c.do(ctx, "save_edit", http.MethodPost, endpoint, nil, nil)
}

// Activate commits the saved edits and blocks until activation completes.
func (t *editTx) Activate(ctx context.Context) error {
	endpoint, err := t.c.endpoint(t.prefix()+"/activate", nil)
	if err != nil {
		return err
	}
	return t.c.doBlocking(ctx, "activate_edit", http.MethodPost, endpoint, nil, nil)
}

func (t *editTx) Cancel(ctx context.Context) error {
	endpoint, err := t.c.endpoint(t.prefix()+"/cancel", nil)
	if err != nil {
		return err
	}
	return t.c.do(ctx, "cancel_edit", http.MethodPost, endpoint, nil, nil)
}
