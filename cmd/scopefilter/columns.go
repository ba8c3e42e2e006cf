package main

import (
	"github.com/spf13/cobra"

	"github.com/redopsync/scopefilter/internal/filter"
	"github.com/redopsync/scopefilter/internal/output"
	"github.com/redopsync/scopefilter/internal/report"
)

func newColumnsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:       "columns <source>",
		Short:     "List the columns and filter attributes of a data source",
		Args:      cobra.ExactArgs(1),
		ValidArgs: report.DataSources(),
		Example: `  scopefilter columns ports
  scopefilter columns vulns -j`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cols, err := report.Columns(args[0])
			if err != nil {
				return err
			}
			kind, err := report.SourceKind(args[0])
			if err != nil {
				return err
			}
			list := &output.ColumnList{
				DataSource: args[0],
				Columns:    cols,
				Attributes: filter.Attributes(kind),
			}
			return render(cmd, list, a.format(asJSON))
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output in JSON format")
	return cmd
}
