package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/HartBrook/shrink/internal/errors"
	"github.com/HartBrook/shrink/internal/scan"
	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/spf13/cobra"
)

type spansOptions struct {
	input    inputOptions
	json     bool
	noTrivia bool
}

// NewSpansCmd creates the spans command.
func NewSpansCmd(g *globalOptions) *cobra.Command {
	opts := &spansOptions{}

	cmd := &cobra.Command{
		Use:   "spans [path|-]",
		Short: "Show the lexical spans of an input",
		Long: `Splits one input into classified spans (whitespace, comments, strings,
structural tokens and opaque content) and prints them with their offsets.

Useful for seeing why a minified result looks the way it does.`,
		Example: `  shrink spans app.js
  echo 'a { b: c }' | shrink spans -k css --no-trivia`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpans(cmd, g, opts, args)
		},
	}

	addInputFlags(cmd, &opts.input)
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print spans as JSON")
	cmd.Flags().BoolVar(&opts.noTrivia, "no-trivia", false, "Hide whitespace and comment spans")

	return cmd
}

type spanJSON struct {
	Kind   string `json:"kind"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Text   string `json:"text"`
	Markup bool   `json:"markup,omitempty"`
}

func runSpans(cmd *cobra.Command, g *globalOptions, opts *spansOptions, args []string) error {
	e, err := g.engine(opts.input.maxSize, false)
	if err != nil {
		return err
	}

	inputs, err := newInputSource(cmd, &opts.input, g.cfg, e.MaxInputBytes()).collect(cmd.Context(), args)
	if err != nil {
		return err
	}
	if len(inputs) != 1 {
		return fmt.Errorf("spans needs exactly one input, got %d", len(inputs))
	}
	in := inputs[0]
	if in.Err != nil {
		return in.Err
	}

	var spans []scan.Span
	for span, err := range scan.Scan(in.Text, in.Kind) {
		if err != nil {
			var me *scan.MalformedError
			if stderrors.As(err, &me) {
				return errors.MalformedInput(me.Reason, me.Offset)
			}
			return err
		}
		if opts.noTrivia && span.IsTrivia() {
			continue
		}
		spans = append(spans, span)
	}

	out := cmd.OutOrStdout()
	if opts.json {
		list := make([]spanJSON, 0, len(spans))
		for _, s := range spans {
			list = append(list, spanJSON{Kind: s.Kind.String(), Start: s.Start, End: s.End(), Text: s.Text, Markup: s.Markup})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	tp := tableprinter.New(out, false, 0)
	tp.AddHeader([]string{"START", "END", "KIND", "TEXT"})
	for _, s := range spans {
		tp.AddField(strconv.Itoa(s.Start))
		tp.AddField(strconv.Itoa(s.End()))
		tp.AddField(s.Kind.String())
		tp.AddField(strconv.Quote(s.Text))
		tp.EndRow()
	}
	return tp.Render()
}
