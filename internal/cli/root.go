// Package cli implements the shrink command-line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/HartBrook/shrink/internal/config"
	"github.com/HartBrook/shrink/internal/engine"
	"github.com/HartBrook/shrink/internal/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "dev"

	// Output helpers.
	successIcon = color.New(color.FgGreen).Sprint("✓")
	warningIcon = color.New(color.FgYellow).Sprint("⚠")
	errorIcon   = color.New(color.FgRed).Sprint("✗")

	success = color.New(color.FgGreen).SprintFunc()
	info    = color.New(color.FgCyan).SprintFunc()
	dim     = color.New(color.Faint).SprintFunc()
)

// globalOptions holds persistent flags and the state derived from them.
type globalOptions struct {
	configPath string
	logLevel   string

	paths  *config.Paths
	cfg    *config.Config
	logger *slog.Logger
}

// setup loads the config and installs the logger. Commands that do not
// need a valid config still run when the file is missing.
func (g *globalOptions) setup(cmd *cobra.Command) error {
	g.paths = config.NewPaths()
	if g.configPath == "" {
		g.configPath = g.paths.ConfigFile
	}

	cfg, err := config.LoadOrDefault(g.configPath)
	if err != nil {
		return err
	}
	g.cfg = cfg

	level := cfg.Log.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	g.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(g.logger)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.New(errors.ErrConfigInvalid,
			fmt.Sprintf("invalid log level: %s", s),
			"Use one of: "+strings.Join(config.LogLevels, ", "))
	}
	return lvl, nil
}

// engine builds an engine from config, with flag overrides. maxSize is
// ignored when empty.
func (g *globalOptions) engine(maxSize string, verify bool) (*engine.Engine, error) {
	limit := g.cfg.Limits.MaxInputSize
	if maxSize != "" {
		parsed, err := config.ParseByteSize(maxSize)
		if err != nil {
			return nil, errors.Wrap(errors.ErrConfigInvalid,
				fmt.Sprintf("invalid --max-size: %s", maxSize),
				"Use a size such as 512KiB or 2MB", err)
		}
		limit = parsed
	}
	return engine.New(
		engine.WithMaxInputBytes(limit.Bytes()),
		engine.WithVerify(verify || g.cfg.Verify),
		engine.WithLogger(g.logger),
	), nil
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "shrink",
		Short: "Validate and minify HTML, CSS, JSON, JavaScript and JSX",
		Long: `Shrink checks that text really is the kind it claims to be and removes
whitespace and comments without changing what it means.

Inputs can be files, directories, standard input or files on GitHub.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default ~/.config/shrink/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(NewMinifyCmd(g))
	rootCmd.AddCommand(NewValidateCmd(g))
	rootCmd.AddCommand(NewSpansCmd(g))
	rootCmd.AddCommand(NewKindsCmd())
	rootCmd.AddCommand(NewServeCmd(g))
	rootCmd.AddCommand(NewConfigCmd(g))
	rootCmd.AddCommand(NewCacheCmd(g))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shrink %s\n", Version)
		},
	}
}

// Execute runs the CLI.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printErr(os.Stderr, err)
		return err
	}
	return nil
}

// printErr prints an error with its hint, if it has one.
func printErr(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", errorIcon, err.Error())
	if se, ok := errors.As(err); ok && se.Hint != "" {
		fmt.Fprintf(w, "  %s\n", dim(se.Hint))
	}
}

// printSuccess prints a success message.
func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", successIcon, fmt.Sprintf(format, args...))
}

// printWarning prints a warning message.
func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", warningIcon, fmt.Sprintf(format, args...))
}

// printInfo prints an info line.
func printInfo(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s: %s\n", dim(label), value)
}
