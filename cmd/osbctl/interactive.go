package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/osb-tools/osbctl/internal/admin"
	"github.com/osb-tools/osbctl/internal/config"
	"github.com/osb-tools/osbctl/internal/confirm"
	"github.com/osb-tools/osbctl/internal/osb"
	"github.com/osb-tools/osbctl/internal/report"
	"github.com/osb-tools/osbctl/internal/resolve"
	"github.com/osb-tools/osbctl/internal/toggle"
)

var interactiveEnv string

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Run the numbered operations menu.",
	Long: `Connect once and loop over a menu of operations until exit. When an
admin address is configured, health and metrics endpoints are served for the
duration of the session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		envName := interactiveEnv
		if envName == "" {
			var err error
			envName, err = chooseEnvironment(os.Stdin, os.Stdout)
			if err != nil {
				return err
			}
		}

		a, err := newApp(ctx, cmd, envName)
		if err != nil {
			return err
		}
		defer a.Close()

		g, ctx := errgroup.WithContext(ctx)
		if a.cfg.AdminAddr != "" {
			srv := &admin.Server{
				Addr:   a.cfg.AdminAddr,
				Logger: a.logger,
				Ping: func(ctx context.Context) error {
					_, err := a.client.ListProjects(ctx)
					return err
				},
			}
			g.Go(func() error { return srv.Run(ctx) })
		}
		g.Go(func() error {
			defer cancel()
			return menuLoop(ctx, a, os.Stdin, os.Stdout)
		})
		return wrapRunError(g.Wait())
	},
}

// chooseEnvironment shows the environment picker and reads a name, the way
// the menu's "change environment" action works.
func chooseEnvironment(in io.Reader, out io.Writer) (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	envs, err := config.DiscoverEnvironments(cfg.EnvDir)
	if err != nil {
		return "", err
	}
	if len(envs) == 0 {
		return "", fmt.Errorf("no environment properties files in %q", cfg.EnvDir)
	}
	if err := report.NewSink(out).Write(envsTable(envs)); err != nil {
		return "", err
	}
	name, err := prompt(bufio.NewReader(in), out, "Enter the environment name")
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", errors.New("no environment selected")
	}
	return name, nil
}

func menuLoop(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Connected to %s ('%s')\n", a.env.Name, a.env.URL)
		fmt.Fprintln(out, "[1] List projects deployed on server")
		fmt.Fprintln(out, "[2] List proxy services deployed on server")
		fmt.Fprintln(out, "[3] List business services deployed on server")
		fmt.Fprintln(out, "[4] Undeploy OSB projects")
		fmt.Fprintln(out, "[5] Get project details")
		fmt.Fprintln(out, "[6] Discard open OSB sessions")
		fmt.Fprintln(out, "[7] Disable/Enable proxy services")
		fmt.Fprintln(out, "[8] Disable/Enable proxy service monitoring")
		fmt.Fprintln(out, "[9] Exit")
		fmt.Fprintln(out)

		choice, err := prompt(reader, out, "Choose what you want to do from the list above")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := runMenuChoice(ctx, a, reader, out, choice); err != nil {
			if errors.Is(err, errMenuExit) {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return err
			}
			// A failed operation returns to the menu; the session stays up.
			a.logger.Error("operation failed", "choice", choice, "err", err)
			fmt.Fprintf(out, "[ERROR] %v\n", err)
		}
	}
}

var errMenuExit = errors.New("exit requested")

func runMenuChoice(ctx context.Context, a *app, reader *bufio.Reader, out io.Writer, choice string) error {
	switch choice {
	case "1":
		return listProjectsReport(ctx, a)
	case "2":
		return listEndpointsReport(ctx, a, osb.KindProxy)
	case "3":
		return listEndpointsReport(ctx, a, osb.KindBusiness)
	case "4":
		return menuUndeploy(ctx, a, reader, out)
	case "5":
		return menuProjectDetails(ctx, a, reader, out)
	case "6":
		return menuDiscardSessions(ctx, a, reader, out)
	case "7":
		return menuToggle(ctx, a, reader, out, toggle.TargetEnablement)
	case "8":
		return menuToggle(ctx, a, reader, out, toggle.TargetMonitoring)
	case "9":
		return errMenuExit
	case "":
		fmt.Fprintln(out, "[ERROR] Input cannot be empty. Please, enter a number from 1 to 9.")
		return nil
	default:
		fmt.Fprintf(out, "[ERROR] Unknown choice: '%s'. Try again.\n", choice)
		return nil
	}
}

func menuUndeploy(ctx context.Context, a *app, reader *bufio.Reader, out io.Writer) error {
	line, err := prompt(reader, out, "Enter project names separated with a space")
	if err != nil {
		return err
	}
	projects := strings.Fields(line)
	if len(projects) == 0 {
		return nil
	}
	return runUndeploy(ctx, a, confirm.Terminal(reader, out), projects)
}

func menuProjectDetails(ctx context.Context, a *app, reader *bufio.Reader, out io.Writer) error {
	project, err := prompt(reader, out, "Enter the project name")
	if err != nil {
		return err
	}
	if project == "" {
		return nil
	}

	resolver := &resolve.Resolver{Reader: a.client}
	set, err := resolver.Resolve(ctx, project)
	if errors.Is(err, osb.ErrNotFound) {
		fmt.Fprintln(out, "[WARNING] The project was not found.")
		return nil
	}
	if err != nil {
		return err
	}
	if len(set) == 0 {
		fmt.Fprintln(out, "[INFO] The project was found, but does not contain either proxy or business services.")
		return nil
	}
	return projectDetailsReport(a, project, set)
}

func menuDiscardSessions(ctx context.Context, a *app, reader *bufio.Reader, out io.Writer) error {
	names, err := a.client.ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(out, "[INFO] No open sessions.")
		return nil
	}

	fmt.Fprintln(out, "[INFO] Open sessions:")
	for _, n := range names {
		fmt.Fprintf(out, "    %s\n", n)
	}
	fmt.Fprintln(out, "[1] Discard all open sessions")
	fmt.Fprintln(out, "[2] Discard specific sessions")
	fmt.Fprintln(out, "[3] Back")

	choice, err := prompt(reader, out, "Select what you want to do")
	if err != nil {
		return err
	}
	switch choice {
	case "1":
	case "2":
		line, err := prompt(reader, out, "Enter session names separated with a space")
		if err != nil {
			return err
		}
		names = strings.Fields(line)
	default:
		return nil
	}

	for _, name := range names {
		if err := a.client.Discard(ctx, name); err != nil {
			return fmt.Errorf("discard session %q: %w", name, err)
		}
		fmt.Fprintf(out, "[INFO] Session '%s' was discarded successfully.\n", name)
	}
	return nil
}

func menuToggle(ctx context.Context, a *app, reader *bufio.Reader, out io.Writer, target toggle.Target) error {
	line, err := prompt(reader, out, "Enter full service paths separated with a space")
	if err != nil {
		return err
	}
	paths := strings.Fields(line)
	if len(paths) == 0 {
		return nil
	}

	state, err := prompt(reader, out, "Enter the target state, on/off")
	if err != nil {
		return err
	}
	enable, err := parseState(state)
	if err != nil {
		return err
	}
	return runToggleBatch(ctx, a, target, paths, enable)
}

func prompt(reader *bufio.Reader, out io.Writer, question string) (string, error) {
	if _, err := fmt.Fprintf(out, "[INPUT] %s: ", question); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if line == "" && errors.Is(err, io.EOF) {
		return "", io.EOF
	}
	return strings.TrimSpace(line), nil
}

func init() {
	interactiveCmd.Flags().StringVar(&interactiveEnv, "env", "", "environment name (see 'osbctl envs')")
}
