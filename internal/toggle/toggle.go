// Package toggle flips the enablement or monitoring state of deployed proxy
// endpoints in bulk. The whole batch shares one configuration session; the
// commit strategy depends on how many paths the caller supplied, not on how
// many references they resolved to.
package toggle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/osb-tools/osbctl/internal/metrics"
	"github.com/osb-tools/osbctl/internal/osb"
	"github.com/osb-tools/osbctl/internal/session"
)

// Target selects which boolean endpoint state the batch manipulates.
type Target string

const (
	TargetEnablement Target = "enablement"
	TargetMonitoring Target = "monitoring"
)

// Row is one line of the toggle report. Status carries a trailing '*' when
// the endpoint was already in the requested state and nothing was changed.
type Row struct {
	Path       string
	Status     string
	ServiceURI string
}

// Toggler applies a desired boolean state to a batch of endpoint paths.
type Toggler struct {
	Sessions osb.SessionManager
	Writer   osb.SessionWriter
	Owner    string
	Logger   *slog.Logger
}

// Run processes the paths against one shared session and returns a row per
// processed reference. On error the session is discarded and the rows
// collected so far are returned alongside the error, so the caller can still
// render a partial report.
//
// Commit policy: a single-path batch activates immediately after its first
// modification; a multi-path batch activates once at the end, and only if at
// least one reference actually changed state. A batch with zero
// modifications discards the session rather than activating an empty change
// set. The single-path branch keys off the input path count, even when that
// one path resolves to several references.
func (t *Toggler) Run(ctx context.Context, target Target, paths []string, enable bool) (rows []Row, err error) {
	logger := t.logger().With("target", string(target), "state", enable)

	defer func() {
		for _, row := range rows {
			metrics.ToggleOutcomesTotal.WithLabelValues(string(target), row.Status).Inc()
		}
	}()

	action := "disable"
	status := "Disabled"
	if enable {
		action = "enable"
		status = "Enabled"
	}

	s, err := session.Open(ctx, t.Sessions, t.Owner, logger)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}
	defer s.Close(ctx)

	pathCount := 0
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		logger.Info("processing path", "path", path)

		folder, local := osb.SplitServicePath(path)
		refs, findErr := t.Writer.FindEndpoints(ctx, s.Name(), osb.KindProxy, folder, local)
		if findErr != nil {
			return rows, fmt.Errorf("resolving %q: %w", path, findErr)
		}
		if len(refs) == 0 {
			logger.Warn("endpoint not found", "path", path)
			rows = append(rows, Row{Path: path, Status: "Not found", ServiceURI: "N/A"})
			continue
		}
		pathCount = len(paths)

		for _, ref := range refs {
			uri, envErr := t.Writer.EnvValue(ctx, s.Name(), ref, osb.AttrServiceURI)
			if envErr != nil {
				return rows, fmt.Errorf("reading service URI of %q: %w", path, envErr)
			}
			current, stateErr := t.readState(ctx, s.Name(), ref, target)
			if stateErr != nil {
				return rows, fmt.Errorf("reading state of %q: %w", path, stateErr)
			}

			if current == enable {
				logger.Info("endpoint already in requested state", "path", path)
				rows = append(rows, Row{Path: path, Status: status + "*", ServiceURI: uri})
				continue
			}

			mutErr := s.Mutate(func(sess string) error {
				return t.applyState(ctx, sess, ref, target, enable)
			})
			if mutErr != nil {
				return rows, fmt.Errorf("changing state of %q: %w", path, mutErr)
			}
			logger.Info("endpoint state changed", "path", path)

			if pathCount == 1 {
				if actErr := s.Activate(ctx, fmt.Sprintf("%s %sd", local, action)); actErr != nil {
					return rows, fmt.Errorf("activating session: %w", actErr)
				}
			}
			rows = append(rows, Row{Path: path, Status: status, ServiceURI: uri})
		}
	}

	switch {
	case pathCount > 1 && s.Mutations() > 0:
		comment := fmt.Sprintf("%d proxy services %sd", s.Mutations(), action)
		if target == TargetMonitoring {
			comment = fmt.Sprintf("Monitoring of %d proxy services %sd", s.Mutations(), action)
		}
		if actErr := s.Activate(ctx, comment); actErr != nil {
			return rows, fmt.Errorf("activating session: %w", actErr)
		}
	case s.Mutations() == 0 && s.State() == session.StateOpen:
		logger.Info("no endpoints were modified, discarding session", "session", s.Name())
		if discErr := s.Discard(ctx); discErr != nil {
			return rows, fmt.Errorf("discarding session: %w", discErr)
		}
	}
	return rows, nil
}

func (t *Toggler) readState(ctx context.Context, sess string, ref osb.Ref, target Target) (bool, error) {
	if target == TargetMonitoring {
		return t.Writer.IsMonitoringEnabled(ctx, sess, ref)
	}
	return t.Writer.IsEnabled(ctx, sess, ref)
}

func (t *Toggler) applyState(ctx context.Context, sess string, ref osb.Ref, target Target, enable bool) error {
	if target == TargetMonitoring {
		return t.Writer.SetMonitoringEnabled(ctx, sess, ref, enable)
	}
	return t.Writer.SetEnabled(ctx, sess, ref, enable)
}

func (t *Toggler) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}
