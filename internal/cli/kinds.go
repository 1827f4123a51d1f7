package cli

import (
	"strings"

	"github.com/HartBrook/shrink/internal/kind"
	"github.com/HartBrook/shrink/internal/reference"
	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/spf13/cobra"
)

// NewKindsCmd creates the kinds command.
func NewKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List supported content kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			tp := tableprinter.New(cmd.OutOrStdout(), false, 0)
			tp.AddHeader([]string{"ID", "NAME", "DISPLAY", "SUFFIXES", "COMPARE"})
			for _, info := range kind.Supported {
				compare := "no"
				if reference.Supported(info.Kind) {
					compare = "yes"
				}
				tp.AddField(info.ID)
				tp.AddField(info.Name)
				tp.AddField(info.DisplayName)
				tp.AddField(strings.Join(info.Suffixes, " "))
				tp.AddField(compare)
				tp.EndRow()
			}
			return tp.Render()
		},
	}
}
