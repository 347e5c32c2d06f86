package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/hospital-records/client"
	"github.com/jrsteele09/hospital-records/gate"
	"github.com/jrsteele09/hospital-records/internal/config"
	"github.com/jrsteele09/hospital-records/records"
	"github.com/jrsteele09/hospital-records/session"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// dashboardPage is the protected page every data command stands in for.
const dashboardPage = "/dashboard"

type app struct {
	out     io.Writer
	output  string
	verbose bool

	logger  zerolog.Logger
	client  *client.Client
	gate    *gate.Gate
	records *records.Client
}

func (a *app) init(cfg config.ClientConfig) {
	level := zerolog.WarnLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	tokens := session.NewTokenStore(session.NewFileStore(cfg.GetTokenStorePath()))
	a.client = client.New(cfg.GetAPIBaseURL(), tokens, client.WithLogger(a.logger))
	a.gate = gate.New(a.client, gate.WithLogger(a.logger))
	a.records = records.New(a.client)
}

// requireSession runs the session gate. Commands that load records call it before any request.
func (a *app) requireSession(ctx context.Context) (gate.Decision, error) {
	d := a.gate.Check(ctx, dashboardPage)
	if d.Allowed {
		return d, nil
	}
	// A background refresh may have started; let it finish before the process exits.
	a.gate.Wait()
	if d.State == gate.ExpiredRefreshable {
		return d, fmt.Errorf("session expired (%s); it has been refreshed in the background, run the command again", d.State)
	}
	return d, fmt.Errorf("not logged in (%s): run recordsctl login", d.State)
}

func (a *app) print(v any) error {
	switch a.output {
	case "yaml":
		var doc any = v
		if raw, ok := v.(json.RawMessage); ok {
			if err := json.Unmarshal(raw, &doc); err != nil {
				return err
			}
		}
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc)
	case "json":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}
}

func (a *app) recordsError(err error) error {
	switch {
	case errors.Is(err, records.ErrUnauthorized):
		return errors.New("session ended: run recordsctl login")
	case errors.Is(err, records.ErrForbidden):
		return errors.New("your role does not have access to this data")
	default:
		return err
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "recordsctl",
		Short: "Command line client for the hospital patient records API",
		Long: `recordsctl logs in to the hospital records identity API, keeps the session in a
local token store and reads patient records and analytics with it.

Configuration comes from the environment: API_BASE_URL, FOLDER and TOKEN_STORE.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.init(config.NewClient())
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "json", "Output format: json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		loginCmd(a),
		registerCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		patientsCmd(a),
		analyticsCmd(a),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
