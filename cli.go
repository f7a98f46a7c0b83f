package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/giygas/mymedic-api/assistant"
	"github.com/giygas/mymedic-api/config"
	"github.com/giygas/mymedic-api/data"
	"github.com/giygas/mymedic-api/handlers"
	"github.com/giygas/mymedic-api/health"
	"github.com/giygas/mymedic-api/interactions"
	"github.com/giygas/mymedic-api/logging"
	"github.com/giygas/mymedic-api/metrics"
	"github.com/giygas/mymedic-api/scheduler"
	"github.com/giygas/mymedic-api/server"
	"github.com/giygas/mymedic-api/store"
	"github.com/giygas/mymedic-api/validation"
)

const shutdownTimeout = 30 * time.Second

var corpusFlag = &cli.StringFlag{
	Name:    "corpus",
	EnvVars: []string{"CORPUS_PATH"},
	Usage:   "Interaction corpus CSV (defaults to the embedded corpus)",
}

// newCLIApp creates the CLI application with all commands. Running it
// without a command starts the server.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "mymedic",
		Usage:   "Medication reference, interaction checker and assistant API",
		Version: Version,
		Action:  runServe,
		Commands: []*cli.Command{
			serveCmd(),
			checkCmd(),
			searchCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the HTTP API (configured from the environment)",
		Action: runServe,
	}
}

// runServe wires every component, serves until SIGINT or SIGTERM and
// shuts down in reverse order.
func runServe(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logging.InitLogger(logging.Options{
		Dir:            "logs",
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logging.Close()

	dc, err := data.Load(cfg.CorpusPath)
	if err != nil {
		logging.Error("Failed to load reference data", "error", err)
		return cli.Exit(err.Error(), 1)
	}
	dc.SetServerStartTime(time.Now())
	metrics.CatalogMedications.Set(float64(dc.Catalog().Len()))
	metrics.InteractionPairs.Set(float64(dc.Index().Len()))

	kv, err := store.Open(cfg.DataDir)
	if err != nil {
		logging.Error("Failed to open preference store", "error", err)
		return cli.Exit(err.Error(), 1)
	}
	defer kv.Close()

	prefs, err := store.NewPreferences(c.Context, kv)
	if err != nil {
		logging.Error("Failed to load preferences", "error", err)
		return cli.Exit(err.Error(), 1)
	}

	// The assistant components stay untyped nil when disabled so that the
	// health checker and the scheduler skip them.
	var (
		streamer       assistant.Streamer
		sessions       *assistant.Sessions
		assistantState health.AssistantStatus
		sessionCount   health.SessionCounter
		pruner         scheduler.SessionPruner
	)
	if cfg.AssistantEnabled() {
		client, err := assistant.NewClient(assistant.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.AssistantModel,
			BaseURL: cfg.AssistantBaseURL,
			Timeout: cfg.AssistantTimeout,
		})
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		sessions, err = assistant.NewSessions(cfg.MaxSessions)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		streamer, assistantState = client, client
		sessionCount, pruner = sessions, sessions
		logging.Info("Assistant enabled", "model", client.Model())
	} else {
		logging.Warn("API_KEY not set, assistant endpoints are disabled")
	}

	healthChecker := health.NewHealthChecker(dc, kv, assistantState, sessionCount)

	sched := scheduler.NewScheduler(scheduler.Dependencies{
		Health:     healthChecker,
		Sessions:   pruner,
		Store:      kv,
		SessionTTL: cfg.SessionTTL,
	})
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		return cli.Exit(err.Error(), 1)
	}
	defer sched.Stop()

	handler := handlers.NewHTTPHandler(handlers.Dependencies{
		DataStore:   dc,
		Validator:   validation.NewDataValidator(),
		Preferences: prefs,
		Health:      healthChecker,
		Streamer:    streamer,
		Sessions:    sessions,
	})
	srv := server.NewServer(cfg, handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logging.Error("Server stopped", "error", err)
			return cli.Exit(err.Error(), 1)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	logging.Info("Server exited gracefully")
	return nil
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check interactions between medication ids",
		ArgsUsage: "<id> <id> [id...]",
		Flags: []cli.Flag{
			corpusFlag,
			&cli.BoolFlag{Name: "json", Usage: "Print the result as JSON"},
		},
		Action: func(c *cli.Context) error {
			dc, err := loadQuiet(c)
			if err != nil {
				return outputError(err)
			}

			ids := c.Args().Slice()
			for _, id := range ids {
				if !dc.Catalog().Has(id) {
					return outputError(fmt.Errorf("unknown medication id: %s", id))
				}
			}

			result := dc.Index().Resolve(ids)
			if c.Bool("json") {
				return outputJSON(c.App.Writer, result)
			}
			printResult(c.App.Writer, result)
			return nil
		},
	}
}

func searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the catalog by name, category or drug class",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			corpusFlag,
			&cli.BoolFlag{Name: "json", Usage: "Print matches as JSON"},
		},
		Action: func(c *cli.Context) error {
			dc, err := loadQuiet(c)
			if err != nil {
				return outputError(err)
			}

			query := strings.Join(c.Args().Slice(), " ")
			if query != "" {
				if err := validation.NewDataValidator().ValidateSearchQuery(query); err != nil {
					return outputError(err)
				}
			}

			matches := dc.Catalog().Search(query)
			if c.Bool("json") {
				return outputJSON(c.App.Writer, matches)
			}
			for _, med := range matches {
				fmt.Fprintf(c.App.Writer, "%-16s %s (%s)\n", med.ID, med.GenericName, med.Category)
			}
			if len(matches) == 0 {
				fmt.Fprintln(c.App.Writer, "No medications found.")
			}
			return nil
		},
	}
}

// loadQuiet loads the reference data with console logging limited to
// warnings on the error writer.
func loadQuiet(c *cli.Context) (*data.DataContainer, error) {
	logging.InitLogger(logging.Options{
		Env:     config.EnvProduction,
		Level:   "warn",
		Console: c.App.ErrWriter,
	})
	return data.Load(c.String("corpus"))
}

func printResult(w io.Writer, result interactions.Result) {
	fmt.Fprintf(w, "Severity: %s\n", result.Severity)
	fmt.Fprintln(w, result.Summary)
	for _, d := range result.Details {
		fmt.Fprintf(w, "- %s\n", d)
	}
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return err
	}
	return cli.Exit(err.Error(), 1)
}
