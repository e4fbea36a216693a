package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/hylla/tavla/internal/adapters/api/rest"
	"github.com/hylla/tavla/internal/adapters/storage/redis"
	"github.com/hylla/tavla/internal/adapters/storage/sqlite"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/config"
	"github.com/hylla/tavla/internal/i18n"
	"github.com/hylla/tavla/internal/platform"
	"github.com/hylla/tavla/internal/session"
	"github.com/spf13/cobra"
)

// version is set at build time.
var version = "dev"

// program is the part of a bubbletea program the CLI drives.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the TUI program; tests swap it out.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes one CLI invocation.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	cli := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	root := cli.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	defer cli.close()
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// kvBackend is local storage that must be closed on exit.
type kvBackend interface {
	app.KVStore
	Close() error
}

// cli holds flag values and the lazily built runtime for one invocation.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	dbPath     string
	appName    string
	apiURL     string
	devMode    bool

	paths   platform.Paths
	cfg     config.Config
	logger  *runtimeLogger
	kv      kvBackend
	client  *rest.Client
	session *session.Manager
	catalog *i18n.Catalog
}

// rootCommand assembles the command tree.
func (c *cli) rootCommand() *cobra.Command {
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("TAVLA_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	defaultApp := platform.DefaultAppName
	if envApp := strings.TrimSpace(os.Getenv("TAVLA_APP_NAME")); envApp != "" {
		defaultApp = envApp
	}

	root := &cobra.Command{
		Use:           "tavla",
		Short:         "Kanban boards in the terminal",
		Long:          "tavla signs in to a remote board service and lets you browse, edit and reorder boards from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to config TOML")
	flags.StringVar(&c.dbPath, "db", "", "path to the local sqlite store")
	flags.StringVar(&c.appName, "app", defaultApp, "application name for config/data path resolution")
	flags.StringVar(&c.apiURL, "api-url", "", "board service base URL")
	flags.BoolVar(&c.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		c.pathsCommand(),
		c.signInCommand(),
		c.signUpCommand(),
		c.signOutCommand(),
		c.whoamiCommand(),
		c.accountCommand(),
		c.boardsCommand(),
		c.boardCommand(),
		c.columnCommand(),
		c.taskCommand(),
		c.openCommand(),
	)
	return root
}

// resolvePaths computes per-user paths and the effective config path.
func (c *cli) resolvePaths() error {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: c.appName,
		DevMode: c.devMode,
	})
	if err != nil {
		return err
	}
	c.paths = paths
	if strings.TrimSpace(c.configPath) == "" {
		if envPath := strings.TrimSpace(os.Getenv("TAVLA_CONFIG")); envPath != "" {
			c.configPath = envPath
		} else {
			c.configPath = paths.ConfigPath
		}
	}
	return nil
}

// setup loads config, opens local storage and builds the service client.
func (c *cli) setup(ctx context.Context) error {
	if c.client != nil {
		return nil
	}
	if err := c.resolvePaths(); err != nil {
		return err
	}

	dbPath := strings.TrimSpace(c.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("TAVLA_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = c.paths.DBPath
		}
	}
	if err := config.EnsureConfigDir(c.configPath); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	cfg, err := config.Load(c.configPath, config.Default(dbPath))
	if err != nil {
		return fmt.Errorf("load config %q: %w", c.configPath, err)
	}
	if dbOverridden {
		cfg.Storage.Path = dbPath
	}
	if apiURL := firstNonEmpty(c.apiURL, os.Getenv("TAVLA_API_URL")); apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	c.cfg = cfg
	c.catalog = i18n.New(firstNonEmpty(cfg.UI.Locale, os.Getenv("LANG")))

	logger, err := newRuntimeLogger(c.stderr, c.appName, c.devMode, c.paths.DevLogPath(c.appName), cfg.Logging)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	c.logger = logger
	logger.Debug("runtime paths resolved", "config_path", c.configPath, "data_dir", c.paths.DataDir, "db_path", cfg.Storage.Path)
	logger.Debug("configuration loaded", "api_url", cfg.API.BaseURL, "backend", cfg.Storage.Backend, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	kv, err := c.openStorage(ctx)
	if err != nil {
		return err
	}
	c.kv = kv

	timeout, err := cfg.API.RequestTimeout()
	if err != nil {
		return err
	}
	client, err := rest.New(cfg.API.BaseURL,
		rest.WithTimeout(timeout),
		rest.WithTokenSource(session.TokenSource(kv)),
	)
	if err != nil {
		return fmt.Errorf("configure api client: %w", err)
	}
	c.client = client
	c.session = session.NewManager(client, kv)
	return nil
}

// openStorage opens the configured KV backend.
func (c *cli) openStorage(ctx context.Context) (kvBackend, error) {
	switch c.cfg.Storage.Backend {
	case config.StorageRedis:
		c.logger.Debug("connecting redis store", "addr", c.cfg.Storage.RedisAddr, "prefix", c.cfg.Storage.RedisPrefix)
		store, err := redis.Dial(ctx, c.cfg.Storage.RedisAddr, c.cfg.Storage.RedisPrefix)
		if err != nil {
			c.logger.Error("redis connect failed", "addr", c.cfg.Storage.RedisAddr, "err", err)
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return store, nil
	default:
		c.logger.Debug("opening sqlite store", "db_path", c.cfg.Storage.Path)
		repo, err := sqlite.Open(c.cfg.Storage.Path)
		if err != nil {
			c.logger.Error("sqlite open failed", "db_path", c.cfg.Storage.Path, "err", err)
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return repo, nil
	}
}

// boardView builds the board collaborators for the signed-in user.
func (c *cli) boardView(ctx context.Context, notifier app.Notifier) *app.BoardView {
	userID := ""
	if user, err := c.session.Current(ctx); err == nil {
		userID = user.ID
	}
	return app.NewBoardView(c.client, c.kv, notifier, app.ViewConfig{
		RollbackReorderOnFailure: c.cfg.Reorder.RollbackOnFailure,
		MaxColorMaps:             c.cfg.Storage.MaxColorMaps,
		UserID:                   userID,
		FormatError:              c.catalog.ErrorMessage,
	})
}

// close releases storage and log sinks.
func (c *cli) close() {
	if c.kv != nil {
		if err := c.kv.Close(); err != nil {
			c.logger.Warn("storage close failed", "err", err)
		}
	}
	if err := c.logger.Close(); err != nil && c.logger.shouldLogToSink(c.logger.consoleSink) {
		_, _ = fmt.Fprintf(c.stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// requireSignIn fails early when no session is stored.
func (c *cli) requireSignIn(ctx context.Context) (session.User, error) {
	user, err := c.session.Current(ctx)
	if err != nil {
		return session.User{}, err
	}
	if !user.SignedIn {
		return session.User{}, errors.New("not signed in, run `tavla signin` first")
	}
	return user, nil
}

// parseBoolEnv parses a boolean environment variable.
func parseBoolEnv(name string) (bool, bool) {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, false
	}
	return value, true
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
