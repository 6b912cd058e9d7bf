// Package cmd implements the CLI command structure for tasklist.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/logging"
	"github.com/nibzard/tasklist-go/internal/session"
	"github.com/nibzard/tasklist-go/internal/storage"
	"github.com/nibzard/tasklist-go/internal/todo"
	"github.com/nibzard/tasklist-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the tasklist CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasklist", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// Determine the subcommand; the TUI is the default
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, remainingArgs)
	case "edit":
		return editCommand(ctx, cfg, remainingArgs)
	case "rm", "delete":
		return rmCommand(ctx, cfg, remainingArgs)
	case "export":
		return exportCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, cws, remainingArgs)
	case "init":
		return initCommand(cfg, remainingArgs)
	case "logs", "tail":
		return logsCommand(ctx, cfg, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// tuiCommand launches the interactive task list.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist tui", flag.ContinueOnError)
	noAlt := fs.Bool("no-alt-screen", false, "Draw inline instead of using the alternate screen")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if !ui.IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY; use add, ls, edit or rm instead")
	}

	// Logs go to a per-run file so they never draw over the UI
	runLog, err := logging.NewRunLogger(cfg.LogDir, logLabel(cfg))
	if err != nil {
		return fmt.Errorf("creating run log: %w", err)
	}
	defer runLog.Close()
	logger := newLogger(cfg, runLog.Writer())
	logger.Info("session started", "run", runLog.RunID, "storage", cfg.Storage.Backend, "key", cfg.Storage.Key)

	store, _, closeSlot, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSlot()

	sess := session.New(store, session.WithDateLayout(cfg.DateLayout))
	err = ui.RunTUI(ctx, sess,
		ui.WithLogger(logger),
		ui.WithStorageLabel(storageLabel(cfg)),
		ui.WithAltScreen(!*noAlt),
	)
	logger.Info("session ended", "tasks", store.Len())
	return err
}

// initCommand writes an example config file.
func initCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist init", flag.ContinueOnError)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	user := fs.Bool("user", false, "Write the user config instead of the project config")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	path := filepath.Join(cfg.ProjectRoot, "tasklist.toml")
	if *user {
		path = config.UserConfigPath()
		if path == "" {
			return fmt.Errorf("cannot determine user config directory")
		}
	}

	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Printf("Config already exists: %s (use -force to overwrite)\n", path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleConfig()), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// logsCommand prints the latest interactive session log of the configured
// task list.
func logsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist logs", flag.ContinueOnError)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, logLabel(cfg))
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}
	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Printf("No log files found for %s.\n", storageLabel(cfg))
		return nil
	}

	fmt.Printf("Tailing: %s\n", logPath)
	if *follow {
		fmt.Println("(Ctrl+C to stop)")
	}
	fmt.Println()

	return logging.TailLog(ctx, os.Stdout, logPath, *n, *follow)
}

// logLabel names the run log directory after the storage backend and key.
func logLabel(cfg *config.Config) string {
	return logging.SessionLabel(cfg.Storage.Backend, cfg.Storage.Key)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("tasklist version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasklist - a small task list with deadlines and search")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasklist [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                 Interactive task list (default command)")
	fmt.Fprintln(w, "  add <text>          Add a task")
	fmt.Fprintln(w, "  ls                  List tasks")
	fmt.Fprintln(w, "  edit <id>           Change a task's text or deadline")
	fmt.Fprintln(w, "  rm <id>             Delete a task")
	fmt.Fprintln(w, "  export              Print all tasks as JSON or YAML")
	fmt.Fprintln(w, "  doctor              Check config and stored tasks")
	fmt.Fprintln(w, "  init                Write an example tasklist.toml")
	fmt.Fprintln(w, "  logs                Show the latest interactive session log")
	fmt.Fprintln(w, "  version             Show version information")
	fmt.Fprintln(w, "  help                Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options:")
	fmt.Fprintln(w, "  -deadline string")
	fmt.Fprintln(w, "        Deadline, e.g. 2026-12-31 18:00")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -search string")
	fmt.Fprintln(w, "        Only show tasks containing the term (at least 2 characters)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Edit Options:")
	fmt.Fprintln(w, "  -text string")
	fmt.Fprintln(w, "        New text")
	fmt.Fprintln(w, "  -deadline string")
	fmt.Fprintln(w, "        New deadline")
	fmt.Fprintln(w, "  -clear-deadline")
	fmt.Fprintln(w, "        Remove the deadline")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export Options:")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        Output format (json|yaml) (default \"json\")")
	fmt.Fprintln(w, "  -o string")
	fmt.Fprintln(w, "        Write to a file instead of stdout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logs Options:")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
}

// newLogger builds a logger from the logging settings in cfg.
func newLogger(cfg *config.Config, w io.Writer) *log.Logger {
	return logging.New(w, logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Timestamps: cfg.LogTimestamps,
		Caller:     cfg.LogCaller,
	})
}

// openSlot opens the configured storage backend.
func openSlot(ctx context.Context, cfg *config.Config) (storage.Slot, error) {
	st := cfg.Storage
	slot, err := storage.Open(ctx, storage.Options{
		Backend:       st.Backend,
		Dir:           st.Dir,
		SQLitePath:    st.SQLitePath,
		RedisURL:      st.RedisURL,
		RedisAddr:     st.RedisAddr,
		RedisPassword: st.RedisPassword,
		RedisDB:       st.RedisDB,
		Timeout:       st.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", st.Backend, err)
	}
	return slot, nil
}

func newAdapter(cfg *config.Config, slot storage.Slot, logger *log.Logger) *storage.Adapter {
	return storage.NewAdapter(slot,
		storage.WithKey(cfg.Storage.Key),
		storage.WithLogger(logger),
		storage.WithTimeout(cfg.Storage.Timeout()),
	)
}

// openStore loads the stored task list into a store that saves back to the
// same slot after every change. The returned func closes the slot.
func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*todo.Store, *storage.Adapter, func(), error) {
	slot, err := openSlot(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	adapter := newAdapter(cfg, slot, logger)
	store := todo.NewStore(adapter.Load(ctx), todo.WithPersister(adapter))
	closeSlot := func() {
		if err := slot.Close(); err != nil {
			logger.Warn("closing storage", "err", err)
		}
	}
	return store, adapter, closeSlot, nil
}

// checkSaved turns a failed save into a command error. The process exits
// right after a command, so an unsaved change would be lost silently.
func checkSaved(adapter *storage.Adapter, change string) error {
	if err := adapter.Err(); err != nil {
		return fmt.Errorf("%s was not saved: %w", change, err)
	}
	return nil
}

// storageLabel describes where tasks are kept, for display.
func storageLabel(cfg *config.Config) string {
	st := cfg.Storage
	switch strings.ToLower(st.Backend) {
	case storage.BackendSQLite:
		path := st.SQLitePath
		if path == "" {
			path = filepath.Join(st.Dir, "tasklist.db")
		}
		return "sqlite " + path
	case storage.BackendRedis:
		addr := st.RedisAddr
		if st.RedisURL != "" {
			addr = st.RedisURL
		}
		return "redis " + addr + " " + st.Key
	case storage.BackendMemory:
		return "memory (not saved)"
	default:
		return "file " + filepath.Join(st.Dir, st.Key+".json")
	}
}

// parseID parses a task id argument.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

// parseInterspersed parses fs while allowing flags after positional
// arguments, returning the positional arguments in order.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}
