package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/HartBrook/shrink/internal/batch"
	"github.com/HartBrook/shrink/internal/cache"
	"github.com/HartBrook/shrink/internal/config"
	"github.com/HartBrook/shrink/internal/errors"
	"github.com/HartBrook/shrink/internal/kind"
	"github.com/HartBrook/shrink/internal/output"
	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/spf13/cobra"
)

type minifyOptions struct {
	input   inputOptions
	output  string
	write   bool
	compare bool
	verify  bool
	format  string
	jobs    int
	noCache bool
}

// NewMinifyCmd creates the minify command.
func NewMinifyCmd(g *globalOptions) *cobra.Command {
	opts := &minifyOptions{}

	cmd := &cobra.Command{
		Use:   "minify [path|-]...",
		Short: "Minify files, directories or standard input",
		Long: `Validates each input against its kind and removes whitespace and comments.

With a single input and no --format, the minified text is printed as is.
Otherwise a summary of every input is printed in the chosen format.`,
		Example: `  shrink minify app.js                  # Print minified app.js
  cat page.html | shrink minify -k html  # Minify standard input
  shrink minify -w web/                  # Write *.min.* beside every file in web/
  shrink minify --compare site.css       # Compare with the reference minifier
  shrink minify --repo owner/repo --path web/app.js`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMinify(cmd, g, opts, args)
		},
	}

	addInputFlags(cmd, &opts.input)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the minified text to this file (single input only)")
	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "Write <name>.min.<ext> beside each input file")
	cmd.Flags().BoolVar(&opts.compare, "compare", false, "Also run the reference minifier and report its size")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "Check that each output is equivalent to its input")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: table, json, or github (default from config)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "Inputs to process in parallel (default: number of CPUs)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Do not read or write the result cache")

	return cmd
}

func runMinify(cmd *cobra.Command, g *globalOptions, opts *minifyOptions, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	e, err := g.engine(opts.input.maxSize, opts.verify)
	if err != nil {
		return err
	}

	inputs, err := newInputSource(cmd, &opts.input, g.cfg, e.MaxInputBytes()).collect(ctx, args)
	if err != nil {
		return err
	}
	if opts.output != "" && len(inputs) != 1 {
		return fmt.Errorf("--output needs exactly one input, got %d", len(inputs))
	}
	if opts.write {
		for _, in := range inputs {
			if !isLocalFile(in.Name) {
				return fmt.Errorf("--write needs local files, %s is not one", in.Name)
			}
		}
	}

	runOpts := batch.Options{
		Mode:    batch.ModeMinify,
		Jobs:    opts.jobs,
		Compare: opts.compare,
		Logger:  g.logger,
	}
	if g.cfg.Cache.IsEnabled() && !opts.noCache {
		runOpts.Cache = cache.New(g.paths)
		runOpts.CacheTTL = g.cfg.Cache.TTLDuration()
	}
	results := batch.New(e, runOpts).Run(ctx, inputs)

	for i := range results {
		res := &results[i]
		if res.Report == nil {
			continue
		}
		var dest string
		switch {
		case opts.output != "":
			dest = opts.output
		case opts.write:
			dest = kind.MinifiedName(res.Name)
		default:
			continue
		}
		if err := os.WriteFile(dest, []byte(res.Report.MinifiedText), config.DefaultFileMode); err != nil {
			res.Err = fmt.Errorf("writing %s: %w", dest, err)
			res.Report = nil
			continue
		}
		g.logger.Info("wrote minified output", "input", res.Name, "output", dest)
	}

	// A lone input with nothing else asked for prints the text itself.
	if len(results) == 1 && opts.format == "" && opts.output == "" && !opts.write && !opts.compare {
		res := results[0]
		if res.Err != nil {
			return res.Err
		}
		_, err := io.WriteString(out, res.Report.MinifiedText)
		return err
	}

	if err := formatResults(out, g.cfg, opts.format, results); err != nil {
		return err
	}
	return failureError(results, "minify")
}

// isLocalFile reports whether name refers to a file on disk rather than
// standard input or a GitHub reference.
func isLocalFile(name string) bool {
	if name == stdinName {
		return false
	}
	fi, err := os.Stat(name)
	return err == nil && fi.Mode().IsRegular()
}

// formatResults prints results with the format from the flag or config.
func formatResults(w io.Writer, cfg *config.Config, format string, results []batch.Result) error {
	if format == "" {
		format = cfg.Output.Format
	}
	if !contains(config.Formats, format) {
		return errors.New(errors.ErrConfigInvalid,
			fmt.Sprintf("invalid format: %s", format),
			"Use table, json, or github")
	}

	f := output.NewFormatter(w, output.Format(format))
	if w == os.Stdout {
		t := term.FromEnv()
		f.IsTTY = t.IsTerminalOutput()
		if width, _, err := t.Size(); err == nil && width > 0 {
			f.Width = width
		}
	}
	return f.FormatResults(results)
}

// failureError returns an error summarising failed results, or nil.
func failureError(results []batch.Result, verb string) error {
	s := batch.Summarize(results)
	if s.Failed == 0 {
		return nil
	}
	return fmt.Errorf("failed to %s %d of %d input(s)", verb, s.Failed, s.Total)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
