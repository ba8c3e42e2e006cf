package main

import (
	"github.com/spf13/cobra"

	"github.com/redopsync/scopefilter/internal/output"
	"github.com/redopsync/scopefilter/internal/report"
)

type reportOptions struct {
	data      string
	asJSON    bool
	failEmpty bool
	filters   report.ReportFilters
	port      uint16
}

func newReportCmd(a *app) *cobra.Command {
	o := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report [name]",
		Short: "Run a canned report, or list them",
		Long: `Run one of the canned reports (ips, hostnames, hosts, open_ports, hosts_by_subnet,
unresolved_hosts, vulns_flat, vulns_by_severity, evidence). The filter flags are
combined: a row must satisfy every one of them. Without a name the reports are listed.`,
		Args: cobra.MaximumNArgs(1),
		Example: `  scopefilter report
  scopefilter report -d acme.yaml open_ports --port 443
  scopefilter report -d acme.yaml vulns_by_severity --severity high --status online`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.listReports(cmd, o.asJSON)
			}
			if cmd.Flags().Changed("port") {
				o.filters.PortNumber = &o.port
			}
			return a.runReport(cmd, args[0], o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.data, "data", "d", "", "Dataset file (.yaml, .json or .db)")
	f.BoolVarP(&o.asJSON, "json", "j", false, "Output in JSON format")
	f.BoolVar(&o.failEmpty, "fail-empty", false, "Exit with status 1 when nothing matches")
	f.BoolVar(&o.filters.ExcludeUnresolved, "exclude-unresolved", true, "Skip hosts whose IP is unresolved")
	f.StringVar(&o.filters.Status, "status", "", "Host status: online, offline or unknown")
	f.StringVar(&o.filters.Subnet, "subnet", "", "Subnet CIDR")
	f.Uint16Var(&o.port, "port", 0, "Port number")
	f.StringVar(&o.filters.PortProtocol, "protocol", "", "Port protocol")
	f.StringVar(&o.filters.Severity, "severity", "", "Minimum severity")
	return cmd
}

func (a *app) runReport(cmd *cobra.Command, name string, o *reportOptions) error {
	p, err := a.loadProject(o.data)
	if err != nil {
		return err
	}
	tbl, err := a.builder().RunReport(cmd.Context(), p, name, o.filters)
	if err != nil {
		return err
	}
	if err := render(cmd, output.RowSet{Table: tbl}, a.format(o.asJSON)); err != nil {
		return err
	}
	if len(tbl.Rows) == 0 && o.failEmpty {
		return errNoMatch
	}
	return nil
}

func (a *app) listReports(cmd *cobra.Command, asJSON bool) error {
	tbl := &report.Table{Columns: []report.Column{{ID: "id", Label: "Report"}, {ID: "name", Label: "Description"}}}
	for _, r := range report.Reports() {
		tbl.Rows = append(tbl.Rows, []string{r.ID, r.Name})
	}
	return render(cmd, output.RowSet{Table: tbl}, a.format(asJSON))
}
