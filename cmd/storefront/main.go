package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/erazemk/storefront/internal/api"
	"github.com/erazemk/storefront/internal/auth"
	"github.com/erazemk/storefront/internal/broadcast"
	"github.com/erazemk/storefront/internal/cart"
	"github.com/erazemk/storefront/internal/config"
	"github.com/erazemk/storefront/internal/db"
	"github.com/erazemk/storefront/internal/editor"
	"github.com/erazemk/storefront/internal/objectstore"
	"github.com/erazemk/storefront/internal/store"
)

// levelRouter is a slog.Handler that routes records below ERROR to one
// handler and ERROR+ to another.
type levelRouter struct {
	level  slog.Level
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. Records below ERROR go to out,
// ERROR goes to stderr. If logPath is non-empty, all levels are also written
// to that file. Returns a cleanup function that closes the log file (if opened).
func setupLogger(level slog.Level, logPath string, out io.Writer) (func(), error) {
	opts := &slog.HandlerOptions{Level: level}

	var cleanup func()

	stdoutW := out
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(out, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		level:  level,
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

// globalFlags are accepted before the command name.
type globalFlags struct {
	config   string
	envFile  string
	apiURL   string
	db       string
	logLevel string
	logFile  string
}

func (g *globalFlags) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.StringVarP(&g.config, "config", "c", "", "YAML config file (default: "+config.DefaultFile+" if present)")
	fs.StringVar(&g.envFile, "env-file", "", "env file (default: "+config.DefaultEnvFile+" if present)")
	fs.StringVar(&g.apiURL, "api-url", "", "root URL of the storefront API")
	fs.StringVarP(&g.db, "db", "d", "", "local SQLite database path")
	fs.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVarP(&g.logFile, "log", "l", "", "log file path")
	return fs
}

// apply overrides cfg with the flags the user set.
func (g *globalFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("api-url") {
		cfg.APIURL = g.apiURL
	}
	if fs.Changed("db") {
		cfg.DB = g.db
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if fs.Changed("log") {
		cfg.LogFile = g.logFile
	}
}

// app owns the long-lived objects shared by every command. The database and
// everything built on it are opened on first use so help output never
// creates a database file.
type app struct {
	ctx context.Context
	cfg config.Config
	vat decimal.Decimal

	db      *sql.DB
	hub     *broadcast.Hub
	local   *store.Local
	cart    *cart.Store
	session *auth.Session
	api     *api.Client
	editor  *editor.Editor
}

func (a *app) open() error {
	if a.db != nil {
		return nil
	}

	database, err := db.Open(a.cfg.DB)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	slog.Debug("database ready", "path", a.cfg.DB)

	hub := broadcast.NewHub()
	local, err := store.NewLocal(a.ctx, database, hub)
	if err != nil {
		hub.Close()
		database.Close()
		return fmt.Errorf("opening local storage: %w", err)
	}

	a.db = database
	a.hub = hub
	a.local = local
	a.cart = cart.New(a.ctx, local)
	a.session = auth.NewSession(a.ctx, local, hub)
	a.api = api.New(a.cfg.APIURL, a.session, api.WithTimeout(a.cfg.Timeout))

	var storage editor.Storage = disabledStorage{}
	if a.cfg.StorageEnabled() {
		storage = objectstore.New(a.cfg.Storage.URL, a.cfg.Storage.Key, a.cfg.Storage.Bucket)
	}
	a.editor = editor.New(a.api, storage)
	return nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	a.session.Close()
	a.hub.Close()
	a.db.Close()
}

// errStorageDisabled is returned for image operations when no storage is
// configured.
var errStorageDisabled = errors.New("image storage is not configured (set " +
	config.EnvStorageURL + " and " + config.EnvStorageKey + ")")

type disabledStorage struct{}

func (disabledStorage) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", errStorageDisabled
}

func (disabledStorage) DeleteURL(context.Context, string) error {
	return errStorageDisabled
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var g globalFlags
	fs := g.flagSet()
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			newRootCommand(&app{}, fs).PrintHelp(os.Stdout)
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	cfg, err := config.Load(config.Options{File: g.config, EnvFile: g.envFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	g.apply(fs, &cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid configuration: %v\n", err)
		return 1
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	vat, _ := cfg.VAT()

	// The web server logs to stdout like any service; other commands keep
	// stdout for their own output.
	logOut := io.Writer(os.Stderr)
	if fs.NArg() > 0 && fs.Arg(0) == "serve" {
		logOut = os.Stdout
	}
	closeLog, err := setupLogger(level, cfg.LogFile, logOut)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if closeLog != nil {
		defer closeLog()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{ctx: ctx, cfg: cfg, vat: vat}
	defer a.close()

	if err := newRootCommand(a, fs).Execute(fs.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", api.Message(err))
		return 1
	}
	return 0
}

// newRootCommand builds the command tree. globals is only used for help.
func newRootCommand(a *app, globals *pflag.FlagSet) *Command {
	return &Command{
		Name:    "storefront",
		Summary: "Browse products, collect a quote cart and request quotes; manage quotes and products as an admin.",
		Usage:   "storefront [global flags] <command> [flags]\n\nGlobal flags:\n" + globals.FlagUsages(),
		Subcommands: []*Command{
			serveCommand(a),
			productsCommand(a),
			cartCommand(a),
			quoteCommand(a),
			adminCommand(a),
		},
	}
}
