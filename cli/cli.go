package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/flinketl/etldash/api"
	"github.com/flinketl/etldash/config"
	"github.com/flinketl/etldash/dashboard"
	"github.com/flinketl/etldash/snapshot"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "etldash"

type App struct {
	logger   zerolog.Logger
	cli      *cli.App
	out      io.Writer
	cfg      *config.Config
	client   *api.Client
	service  *dashboard.Service
	snapshot *snapshot.Store
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		out:    os.Stdout,
		cli: &cli.App{
			Name:  AppName,
			Usage: "View and launch Flink ETL pipeline test runs",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
				&cli.StringFlag{
					Name:  "config",
					Usage: "Path to the YAML config file",
					Value: config.DefaultPath(),
				},
				&cli.StringFlag{
					Name:  "api-url",
					Usage: "Base URL of the test service (overrides config)",
				},
				&cli.BoolFlag{
					Name:  "demo",
					Usage: "Use sample data when the test service is unreachable",
				},
				&cli.BoolFlag{
					Name:  "offline",
					Usage: "Never contact the test service, use sample data only",
				},
				&cli.StringFlag{
					Name:  "snapshot",
					Usage: "File to keep the last fetched listing in, served in demo mode (overrides config)",
				},
			},
		},
	}
	app.cli.Before = app.before
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List test runs, newest first",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (0 for all)",
				Value:   20,
			},
			&cli.StringFlag{
				Name:    "status",
				Aliases: []string{"s"},
				Usage:   "Only show runs with this status (e.g. RUNNING, FINISHED, FAILED)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the listing as JSON",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:            "view",
		Usage:           "Show the details of a test run",
		ArgsUsage:       "[ID|INDEX]",
		Action:          app.view,
		SkipFlagParsing: true,
		Description:     `Show the details of a test run.

Arguments:
  0           View newest test run (default)
  -1          View 2nd newest test run
  -2          View 3rd newest test run
  <id>        View test run with this ID or ID prefix

Options (after the ID):
  --json               Print the detail as JSON
  --save-logs <file>   Write the run's logs to <file>

Examples:
  etldash view                    # View newest test run
  etldash view -1                 # View 2nd newest test run
  etldash view test-002 --json    # View test run test-002 as JSON`,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "create",
		Usage:  "Start a new test run",
		Action: app.create,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "image",
				Aliases: []string{"i"},
				Usage:   "Image tag to test, e.g. flink-etl:v1.2.3 (required)",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Test name",
			},
			&cli.IntFlag{
				Name:  "messages",
				Usage: "Number of messages to populate the topic with",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the equivalent curl command instead of starting the test",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "summary",
		Usage:  "Show test run counters",
		Action: app.summary,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "serve",
		Usage:  "Serve the dashboard JSON API over HTTP",
		Action: app.serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides config)",
			},
		},
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		short := commit
		if len(short) > 8 {
			short = short[:8]
		}
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, short, date)
	}
}

// SetOutput redirects command output.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
	a.cli.Writer = w
}

// before loads the configuration and builds the client shared by all
// commands. Flags win over the config file and environment.
func (a *App) before(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return err
	}

	if ctx.IsSet("api-url") {
		cfg.APIURL = ctx.String("api-url")
	}
	if ctx.IsSet("demo") {
		cfg.DemoMode = ctx.Bool("demo")
	}
	if ctx.IsSet("offline") {
		cfg.Offline = ctx.Bool("offline")
	}
	if ctx.IsSet("snapshot") {
		cfg.SnapshotPath = ctx.String("snapshot")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Level()
	if ctx.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	a.cfg = cfg
	opts := []api.Option{
		api.WithTimeout(cfg.Timeout),
		api.WithDemoMode(cfg.DemoMode),
		api.WithOffline(cfg.Offline),
	}

	if cfg.SnapshotPath != "" {
		a.snapshot = snapshot.New(a.logger, cfg.SnapshotPath)
		runs, err := a.snapshot.Load()
		switch {
		case err == nil:
			opts = append(opts, api.WithFallback(runs))
		case errors.Is(err, os.ErrNotExist):
		default:
			a.logger.Warn().Err(err).Msg("Ignoring unreadable snapshot")
		}
	}

	a.client = api.New(a.logger, cfg.APIURL, opts...)
	a.service = dashboard.New(a.logger, a.client)

	a.logger.Debug().
		Str("api_url", a.client.BaseURL()).
		Bool("demo", cfg.DemoMode).
		Bool("offline", cfg.Offline).
		Msg("Configured test service client")
	return nil
}
