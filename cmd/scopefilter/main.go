package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/redopsync/scopefilter/internal/config"
	"github.com/redopsync/scopefilter/internal/logger"
	"github.com/redopsync/scopefilter/internal/output"
	"github.com/redopsync/scopefilter/internal/report"
	"github.com/redopsync/scopefilter/internal/scope"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Exit codes.
const (
	ExitSuccess    = 0
	ExitNoMatch    = 1 // --fail-empty and nothing matched
	ExitInputError = 2
)

// errNoMatch is returned by commands run with --fail-empty that produced no rows.
var errNoMatch = errors.New("no matching rows")

// app holds state shared by all commands of one invocation.
type app struct {
	configFile string
	cfg        *config.Config
	log        *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "scopefilter",
		Short: "Filter pentest scope data with filter expressions",
		Long: `scopefilter evaluates filter expressions such as 'port >= 443',
'ip contains "10."' or 'screenshot exists' against a project dataset
(YAML, JSON or a SQLite snapshot) and prints the matching rows.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default ./scopefilter.yaml)")

	root.AddCommand(newQueryCmd(a))
	root.AddCommand(newReportCmd(a))
	root.AddCommand(newColumnsCmd(a))
	root.AddCommand(newParseCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

// format returns JSON when the flag is set, otherwise the configured format.
func (a *app) format(jsonFlag bool) output.Format {
	if jsonFlag {
		return output.FormatJSON
	}
	f, _ := output.ParseFormat(a.cfg.Output.Format) // validated by config.Load
	return f
}

// dataPath returns the dataset named by the flag or, if empty, by data.path.
func (a *app) dataPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if a.cfg.Data.Path != "" {
		return a.cfg.Data.Path, nil
	}
	return "", errors.New("no dataset: pass --data or set data.path")
}

func (a *app) loadProject(flag string) (*scope.Project, error) {
	path, err := a.dataPath(flag)
	if err != nil {
		return nil, err
	}
	p, err := scope.LoadFile(path)
	if err != nil {
		return nil, err
	}
	a.log.WithFields(logrus.Fields{"path": path, "hosts": len(p.Hosts)}).Debug("Dataset loaded")
	return p, nil
}

func (a *app) builder() *report.Builder {
	return report.NewBuilder(a.log, report.Options{
		Workers:   a.cfg.Query.Workers,
		ChunkSize: a.cfg.Query.ChunkSize,
	})
}

// render writes f to the command output. Empty text output prints nothing.
func render(cmd *cobra.Command, f output.Formatter, format output.Format) error {
	result, err := output.FormatOutput(f, format)
	if err != nil {
		return err
	}
	if result != "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), result)
	}
	return nil
}

// run executes the CLI with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errNoMatch):
		return ExitNoMatch
	default:
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInputError
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
