package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/hammamikhairi/stepchef/internal/cli"
	"github.com/hammamikhairi/stepchef/internal/config"
	"github.com/hammamikhairi/stepchef/internal/db"
	"github.com/hammamikhairi/stepchef/internal/logger"
	"github.com/hammamikhairi/stepchef/internal/recipe"
	"github.com/hammamikhairi/stepchef/internal/storage"
)

// configEnv names the config file. Without it stepchef.yaml in the working
// directory is used when present.
const configEnv = "STEPCHEF_CONFIG"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	path, required := os.Getenv(configEnv), true
	if path == "" {
		path, required = "stepchef.yaml", false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}

	logOut, closeLog := openLog(cfg.LogFile)
	defer closeLog()
	log := logger.New(cfg.Level(), logOut)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	kv := storage.NewSQLiteKV(database, log.Named("kv"))
	app := &cli.App{
		Recipes: recipe.NewStore(kv, log.Named("recipes")),
		Config:  cfg,
		Log:     log,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	log.Debug("config loaded (db=%s, tick=%s, mode=%s)", cfg.DBPath, cfg.TickInterval, cfg.AdvanceMode)
	return cli.NewRootCmd(app).Execute()
}

// openLog opens the log file for appending, creating its directory. An
// empty path or "stderr" logs to the console, and a file that cannot be
// opened falls back to stderr with a warning.
func openLog(path string) (io.Writer, func()) {
	if path == "" || path == "stderr" {
		return os.Stderr, func() {}
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		return os.Stderr, func() {}
	}
	return f, func() { f.Close() }
}
