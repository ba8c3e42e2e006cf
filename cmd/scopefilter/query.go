package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/redopsync/scopefilter/internal/output"
	"github.com/redopsync/scopefilter/internal/report"
	"github.com/redopsync/scopefilter/internal/scope"
)

type queryOptions struct {
	data      string
	source    string
	columns   []string
	filter    string
	asJSON    bool
	tree      bool
	watch     bool
	failEmpty bool
}

func newQueryCmd(a *app) *cobra.Command {
	o := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query [expression]",
		Short: "Filter a data source and print the matching rows",
		Long: `Filter one data source (hosts, ports, evidence, vulns) of the dataset with a
filter expression and print the selected columns of every matching row. Input that is
not an expression is searched as a substring across the source's default fields.`,
		Args: cobra.MaximumNArgs(1),
		Example: `  scopefilter query -d acme.yaml 'ip contains "10."'
  scopefilter query -d acme.yaml -s ports -c ip,port,service 'port >= 443'
  scopefilter query -d acme.yaml -s vulns -j 'severity >= High'
  scopefilter query -d acme.yaml --tree 'screenshot exists'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				o.filter = args[0]
			}
			return a.runQuery(cmd, o)
		},
	}
	cmd.Flags().StringVarP(&o.data, "data", "d", "", "Dataset file (.yaml, .json or .db)")
	cmd.Flags().StringVarP(&o.source, "source", "s", "hosts", "Data source: hosts, ports, evidence, vulns")
	cmd.Flags().StringSliceVarP(&o.columns, "columns", "c", nil, "Columns to print (default all)")
	cmd.Flags().StringVarP(&o.filter, "filter", "f", "", "Filter expression")
	cmd.Flags().BoolVarP(&o.asJSON, "json", "j", false, "Output in JSON format")
	cmd.Flags().BoolVar(&o.tree, "tree", false, "Print the host tree pruned to matching entities")
	cmd.Flags().BoolVarP(&o.watch, "watch", "w", false, "Re-run when the dataset file changes")
	cmd.Flags().BoolVar(&o.failEmpty, "fail-empty", false, "Exit with status 1 when nothing matches")
	return cmd
}

func (a *app) runQuery(cmd *cobra.Command, o *queryOptions) error {
	if _, err := report.Columns(o.source); err != nil && !o.tree {
		return err
	}

	if o.watch {
		path, err := a.dataPath(o.data)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return scope.Watch(ctx, path, a.log, func(p *scope.Project) {
			if _, err := a.queryOnce(ctx, cmd, o, p); err != nil {
				a.log.WithError(err).Warn("Query failed")
			}
		})
	}

	p, err := a.loadProject(o.data)
	if err != nil {
		return err
	}
	matched, err := a.queryOnce(cmd.Context(), cmd, o, p)
	if err != nil {
		return err
	}
	if !matched && o.failEmpty {
		return errNoMatch
	}
	return nil
}

// queryOnce prints one query result and reports whether anything matched.
func (a *app) queryOnce(ctx context.Context, cmd *cobra.Command, o *queryOptions, p *scope.Project) (bool, error) {
	if o.tree {
		pruned := report.FilterTree(p, o.filter)
		return len(pruned.Hosts)+len(pruned.Evidence) > 0, a.printTree(cmd, pruned, o.asJSON)
	}

	tbl, err := a.builder().Run(ctx, p, report.Request{
		DataSource: o.source,
		Columns:    o.columns,
		Filter:     o.filter,
	})
	if err != nil {
		return false, err
	}
	return len(tbl.Rows) > 0, render(cmd, output.RowSet{Table: tbl}, a.format(o.asJSON))
}

func (a *app) printTree(cmd *cobra.Command, p *scope.Project, asJSON bool) error {
	var (
		data []byte
		err  error
	)
	if a.format(asJSON) == output.FormatJSON {
		data, err = json.MarshalIndent(p, "", "  ")
	} else {
		data, err = yaml.Marshal(p)
	}
	if err != nil {
		return fmt.Errorf("encoding tree: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
