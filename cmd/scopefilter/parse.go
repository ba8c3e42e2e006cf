package main

import (
	"github.com/spf13/cobra"

	"github.com/redopsync/scopefilter/internal/output"
)

func newParseCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "parse <expression>",
		Short: "Show how a filter expression is parsed",
		Args:  cobra.ExactArgs(1),
		Example: `  scopefilter parse 'port >= 443'
  scopefilter parse -j '10.0.0.'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd, output.NewExpressionOutput(args[0]), a.format(asJSON))
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output in JSON format")
	return cmd
}
