package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jward/jarlink/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "JARLINK"

// app is the state shared by all commands of one invocation.
type app struct {
	cfg    *viper.Viper
	logger *slog.Logger

	// errorHandled is set by outputError so main() doesn't double-print.
	errorHandled bool
}

func main() {
	a := &app{}
	if err := newRootCmd(a).Execute(); err != nil {
		if !a.errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "jarlink",
		Short:         "Binary compatibility checks for Java classpaths",
		Long:          "Jarlink checks that the classes of a classpath link against each other: missing classes, fields, and methods, access violations, broken hierarchies, and manifest problems.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			return validateFormat(a.cfg.GetString("format"))
		},
	}

	root.PersistentFlags().String("config", "", "config file (default: .jarlink.yaml in the repo root or current directory)")
	root.PersistentFlags().String("db", "", "database path (default: .jarlink/runs.db relative to repo root)")
	root.PersistentFlags().String("format", "text", "output format: json|text")
	root.PersistentFlags().String("log-level", "warn", "log level: debug|info|warn|error|off")

	root.AddCommand(newCheckCmd(a))
	root.AddCommand(newRunsCmd(a))
	root.AddCommand(newFindingsCmd(a))
	root.AddCommand(newDiffCmd(a))
	return root
}

// loadConfig layers flags over JARLINK_* environment variables over the
// config file over flag defaults.
func (a *app) loadConfig(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	if err := v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(".jarlink")
		v.SetConfigType("yaml")
		if cwd, err := os.Getwd(); err == nil {
			v.AddConfigPath(findRepoRoot(cwd))
			v.AddConfigPath(cwd)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("reading config: %w", err)
			}
		}
	}

	level, err := logging.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return err
	}
	a.cfg = v
	a.logger = logging.NewLogger(cmd.ErrOrStderr(), level)
	if file := v.ConfigFileUsed(); file != "" {
		a.logger.Debug("config loaded", "file", file)
	}
	return nil
}

// findRepoRoot returns the nearest ancestor of startDir (inclusive) that
// holds a .git directory, or startDir itself.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the database path from the db setting or the
// default under repoRoot.
func resolveDBPath(db, repoRoot string) string {
	if db != "" {
		if filepath.IsAbs(db) {
			return db
		}
		return filepath.Join(repoRoot, db)
	}
	return filepath.Join(repoRoot, ".jarlink", "runs.db")
}

// dbPath resolves the database location relative to the current repo.
func (a *app) dbPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}
	return resolveDBPath(a.cfg.GetString("db"), findRepoRoot(cwd)), nil
}

func (a *app) format() string {
	return a.cfg.GetString("format")
}

// out returns the writer for command results.
func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
