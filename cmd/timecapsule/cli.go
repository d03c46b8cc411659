package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/timecapsule/internal/config"
	"github.com/hpungsan/timecapsule/internal/db"
	"github.com/hpungsan/timecapsule/internal/errors"
	"github.com/hpungsan/timecapsule/internal/logging"
	"github.com/hpungsan/timecapsule/internal/mcp"
	"github.com/hpungsan/timecapsule/internal/ops"
	"github.com/hpungsan/timecapsule/internal/store"
	"github.com/hpungsan/timecapsule/internal/web"
)

// appState carries the resolved configuration from a command's Before hook to
// its action.
type appState struct {
	cfg    *config.Config
	stderr io.Writer
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	state := &appState{stderr: stderr}

	app := &cli.App{
		Name:      "timecapsule",
		Usage:     "Seal messages until a chosen date",
		Version:   Version,
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "Data file path (default Capsules.json)"},
			&cli.StringFlag{Name: "backend", Usage: "Storage backend: json|sqlite"},
			&cli.StringFlag{Name: "log-level", Usage: "Log level: debug|info|warn|error"},
			&cli.StringFlag{Name: "log-format", Usage: "Log format: text|json"},
			&cli.StringFlag{Name: "config-dir", Usage: "Global config directory (default ~/.timecapsule)"},
		},
		// No subcommand → HTTP API
		Action: func(c *cli.Context) error {
			if err := state.setup(c); err != nil {
				return err
			}
			return state.serve(c)
		},
		Commands: []*cli.Command{
			serveCmd(state),
			mcpCmd(state),
			storeCmd(state),
			fetchCmd(state),
			listCmd(state),
			deleteCmd(state),
		},
	}
	// Config resolves per command so command flags such as --port join the
	// overlay before validation.
	for _, cmd := range app.Commands {
		cmd.Before = state.setup
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// setup resolves configuration (defaults, global file, repo file, environment,
// then flags) and initializes logging. Global flags are read through the
// context lineage; serve's --bind and --port are zero elsewhere and ignored.
func (s *appState) setup(c *cli.Context) error {
	globalDir := c.String("config-dir")
	if globalDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not determine home directory: %w", err)
		}
		globalDir = filepath.Join(homeDir, ".timecapsule")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("could not determine working directory: %w", err)
	}

	cfg, err := config.LoadWithRepo(globalDir, cwd, &config.Config{
		DataFile:  c.String("data"),
		Backend:   c.String("backend"),
		LogLevel:  c.String("log-level"),
		LogFormat: c.String("log-format"),
		Bind:      c.String("bind"),
		Port:      c.Int("port"),
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logging.Init(level, cfg.LogFormat, s.stderr)

	s.cfg = cfg
	return nil
}

// openStore opens the capsule store on the configured backend.
func (s *appState) openStore() (*store.Store, error) {
	var backend store.Backend
	switch s.cfg.Backend {
	case config.BackendSQLite:
		b, err := db.Open(s.cfg.DataFile, s.cfg)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		backend = b
	default:
		backend = store.NewJSONFile(s.cfg.DataFile)
	}

	st, err := store.Open(backend, store.WithLogger(logging.New("store")))
	if err != nil {
		backend.Close()
		return nil, err
	}
	return st, nil
}

// serve runs the HTTP API until interrupted.
func (s *appState) serve(c *cli.Context) error {
	st, err := s.openStore()
	if err != nil {
		return outputError(err)
	}
	defer st.Close()

	logger := logging.New("web")
	logger.Info("capsule store ready",
		slog.String("backend", s.cfg.Backend),
		slog.String("data", s.cfg.DataFile),
		slog.Int("capsules", st.Len()),
	)

	return web.Run(web.NewServer(st, s.cfg, logger, Version), logger)
}

// serveCmd creates the serve command.
func serveCmd(s *appState) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API (default)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Usage: "Listen address (default 127.0.0.1)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (default 8000)"},
		},
		Action: s.serve,
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(s *appState) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve capsule tools over MCP stdio",
		Action: func(c *cli.Context) error {
			st, err := s.openStore()
			if err != nil {
				return outputError(err)
			}
			defer st.Close()

			return mcp.Run(st, s.cfg, Version)
		},
	}
}

// storeCmd creates the store command.
func storeCmd(s *appState) *cli.Command {
	return &cli.Command{
		Name:  "store",
		Usage: "Store a new capsule (message from --message or stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "Capsule message"},
			&cli.StringFlag{Name: "open-date", Aliases: []string{"o"}, Required: true, Usage: "Open date (YYYY-MM-DD)"},
			formatFlag(),
		},
		Action: func(c *cli.Context) error {
			message := c.String("message")
			if !c.IsSet("message") {
				if !stdinHasData(c.App.Reader) {
					return outputError(errors.NewInvalidRequest("message must be given with --message or piped via stdin"))
				}
				text, err := readStdin(c.App.Reader)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				message = text
			}

			st, err := s.openStore()
			if err != nil {
				return outputError(err)
			}
			defer st.Close()

			output, err := ops.Store(st, s.cfg, ops.StoreInput{
				Message:  message,
				OpenDate: c.String("open-date"),
			})
			if err != nil {
				return outputError(err)
			}

			return writeOutput(c, output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(s *appState) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Open a capsule if its date has arrived",
		ArgsUsage: "<capsule_id>",
		Flags:     []cli.Flag{formatFlag()},
		Action: func(c *cli.Context) error {
			id, err := ops.RequireID(argID(c))
			if err != nil {
				return outputError(err)
			}

			st, err := s.openStore()
			if err != nil {
				return outputError(err)
			}
			defer st.Close()

			output, err := ops.Fetch(st, ops.FetchInput{ID: id})
			if err != nil {
				return outputError(err)
			}

			return writeOutput(c, output)
		},
	}
}

// listCmd creates the list command.
func listCmd(s *appState) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List every capsule's id and open date",
		Flags: []cli.Flag{formatFlag()},
		Action: func(c *cli.Context) error {
			st, err := s.openStore()
			if err != nil {
				return outputError(err)
			}
			defer st.Close()

			output, err := ops.List(st)
			if err != nil {
				return outputError(err)
			}

			return writeOutput(c, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(s *appState) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a capsule",
		ArgsUsage: "<capsule_id>",
		Flags:     []cli.Flag{formatFlag()},
		Action: func(c *cli.Context) error {
			id, err := ops.RequireID(argID(c))
			if err != nil {
				return outputError(err)
			}

			st, err := s.openStore()
			if err != nil {
				return outputError(err)
			}
			defer st.Close()

			output, err := ops.Delete(st, ops.DeleteInput{ID: id})
			if err != nil {
				return outputError(err)
			}

			return writeOutput(c, output)
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|yaml"}
}

// writeOutput writes v to the app writer in the format selected by --format.
func writeOutput(c *cli.Context, v any) error {
	switch c.String("format") {
	case "json":
		return outputJSON(c.App.Writer, v)
	case "yaml":
		return outputYAML(c.App.Writer, v)
	default:
		return outputError(errors.NewInvalidRequest(fmt.Sprintf("unknown format %q (must be json or yaml)", c.String("format"))))
	}
}

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML marshals result to w as YAML.
func outputYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// argID returns the first positional argument, or nil when none was given.
func argID(c *cli.Context) *string {
	if !c.Args().Present() {
		return nil
	}
	id := c.Args().First()
	return &id
}

// outputError formats error for CLI.
func outputError(err error) error {
	ce := errors.As(err)
	return cli.Exit(fmt.Sprintf("[%s] %s", ce.Code, ce.Message), 1)
}

// stdinHasData returns true if r has piped data (not a terminal).
func stdinHasData(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from r, dropping one trailing newline.
func readStdin(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}
