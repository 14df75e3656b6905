package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/osb-tools/osbctl/internal/config"
	"github.com/osb-tools/osbctl/internal/logging"
	"github.com/osb-tools/osbctl/internal/osb/rest"
	"github.com/osb-tools/osbctl/internal/report"
)

// app bundles the wiring every registry-facing command shares: process
// config, the selected environment, an authenticated client, the logger, and
// the report sink (stdout, optionally teed into the log file).
type app struct {
	cfg     config.Config
	env     config.Environment
	client  *rest.Client
	logger  *slog.Logger
	sink    *report.Sink
	logFile *os.File
}

func newApp(ctx context.Context, cmd *cobra.Command, envName string) (*app, error) {
	if strings.TrimSpace(envName) == "" {
		return nil, errors.New("--env is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		a.logFile = f
	}

	logWriter := io.Writer(os.Stderr)
	sinkWriters := []io.Writer{os.Stdout}
	if a.logFile != nil {
		logWriter = io.MultiWriter(os.Stderr, a.logFile)
		sinkWriters = append(sinkWriters, a.logFile)
	}

	a.logger, err = logging.BootstrapFromEnv(logging.BootstrapOptions{
		Command: cmd.CommandPath(),
		Writer:  logWriter,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.sink = report.NewSink(sinkWriters...)

	a.env, err = config.LoadEnvironment(ctx, cfg, envName)
	if err != nil {
		a.Close()
		return nil, err
	}
	if a.env.Password == "" {
		a.env.Password, err = promptPassword(a.env)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	a.client, err = rest.New(a.env.URL, a.env.Username, a.env.Password)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.client.HTTP.Timeout = cfg.HTTPTimeout

	a.logger.Info("environment selected", "env", a.env.Name, "url", a.env.URL, "user", a.env.Username)
	return a, nil
}

func (a *app) Close() {
	if a.logFile != nil {
		a.logFile.Close()
	}
}

func promptPassword(env config.Environment) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password for %q: set it in the properties file, in vault, or run interactively", env.Name)
	}
	fmt.Fprintf(os.Stderr, "[INPUT] Password for %s@%s: ", env.Username, env.URL)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	password := strings.TrimSpace(string(raw))
	if password == "" {
		return "", errors.New("empty password")
	}
	return password, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// wrapRunError maps workflow errors onto process exit codes.
func wrapRunError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return &exitError{code: 130, err: err, silent: true}
	}
	return &exitError{code: 1, err: err}
}
