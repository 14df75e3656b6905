// Package resolve builds the pre-deletion dependency snapshot of a project:
// every endpoint it owns, with the enabled flag, service URI, and work
// manager each endpoint runs under. All cascade decisions during undeploy
// are made from this snapshot, because deleting the project removes the
// ability to query it.
package resolve

import (
	"context"
	"fmt"

	"github.com/osb-tools/osbctl/internal/osb"
)

// Resolver enumerates project dependencies through the read-only registry
// boundary.
type Resolver struct {
	Reader osb.Reader
}

// Resolve returns the project's dependency set. osb.ErrNotFound when the
// project does not exist; an empty set when it exists but owns no endpoints.
func (r *Resolver) Resolve(ctx context.Context, project string) (osb.DependencySet, error) {
	exists, err := r.Reader.ProjectExists(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("check project %q: %w", project, err)
	}
	if !exists {
		return nil, fmt.Errorf("project %q: %w", project, osb.ErrNotFound)
	}

	refs, err := r.Reader.ProjectRefs(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("list refs of project %q: %w", project, err)
	}

	set := make(osb.DependencySet, 0, len(refs))
	for _, ref := range refs {
		switch ref.Kind {
		case osb.KindProxy, osb.KindBusiness:
		default:
			// Projects own other resource kinds (WSDLs, XQueries, ...);
			// only service endpoints matter here.
			continue
		}
		detail, err := r.describe(ctx, ref)
		if err != nil {
			return nil, err
		}
		set = append(set, detail)
	}
	return set, nil
}

func (r *Resolver) describe(ctx context.Context, ref osb.Ref) (osb.EndpointDetail, error) {
	var uri string
	switch ref.Kind {
	case osb.KindProxy:
		v, err := r.Reader.EnvValue(ctx, ref, osb.AttrServiceURI)
		if err != nil {
			return osb.EndpointDetail{}, fmt.Errorf("read service URI of %s: %w", ref.FullPath(), err)
		}
		uri = v
	case osb.KindBusiness:
		// Business endpoints embed their URIs in a structured attribute
		// value; the first URI element's text is the effective one.
		table, err := r.Reader.EnvValue(ctx, ref, osb.AttrServiceURITable)
		if err != nil {
			return osb.EndpointDetail{}, fmt.Errorf("read URI table of %s: %w", ref.FullPath(), err)
		}
		uri, err = ExtractFirstURI(table)
		if err != nil {
			return osb.EndpointDetail{}, fmt.Errorf("parse URI table of %s: %w", ref.FullPath(), err)
		}
	}

	wm, err := r.Reader.EnvValue(ctx, ref, osb.AttrWorkManager)
	if err != nil {
		return osb.EndpointDetail{}, fmt.Errorf("read work manager of %s: %w", ref.FullPath(), err)
	}
	enabled, err := r.Reader.IsEnabled(ctx, ref)
	if err != nil {
		return osb.EndpointDetail{}, fmt.Errorf("read enabled flag of %s: %w", ref.FullPath(), err)
	}

	return osb.EndpointDetail{
		Ref:         ref,
		Enabled:     enabled,
		ServiceURI:  uri,
		WorkManager: wm,
	}, nil
}
