package cli

import (
	"github.com/HartBrook/shrink/internal/batch"
	"github.com/spf13/cobra"
)

type validateOptions struct {
	input  inputOptions
	format string
	jobs   int
}

// NewValidateCmd creates the validate command.
func NewValidateCmd(g *globalOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [path|-]...",
		Short: "Check that inputs are well-formed for their kind",
		Long: `Runs the same checks minify runs before it changes anything: size ceiling,
empty input, well-formedness and the markers of the declared kind.

Exits with a non-zero status when any input is invalid.`,
		Example: `  shrink validate index.html
  shrink validate --format github web/
  echo '{"a": 1' | shrink validate -k json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, g, opts, args)
		},
	}

	addInputFlags(cmd, &opts.input)
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: table, json, or github (default from config)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "Inputs to process in parallel (default: number of CPUs)")

	return cmd
}

func runValidate(cmd *cobra.Command, g *globalOptions, opts *validateOptions, args []string) error {
	ctx := cmd.Context()

	e, err := g.engine(opts.input.maxSize, false)
	if err != nil {
		return err
	}

	inputs, err := newInputSource(cmd, &opts.input, g.cfg, e.MaxInputBytes()).collect(ctx, args)
	if err != nil {
		return err
	}

	results := batch.New(e, batch.Options{
		Mode:   batch.ModeValidate,
		Jobs:   opts.jobs,
		Logger: g.logger,
	}).Run(ctx, inputs)

	if err := formatResults(cmd.OutOrStdout(), g.cfg, opts.format, results); err != nil {
		return err
	}
	return failureError(results, "validate")
}
