// Command generate writes a synthetic project dataset for demos and benchmarks.
// Usage: go run ./tools/generate/cmd -o testdata/demo.yaml
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redopsync/scopefilter/tools/generate"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := generate.ProjectGenerator{Name: "demo", Subnets: 4, Hosts: 32, Seed: 1}
	var out string

	cmd := &cobra.Command{
		Use:           "generate",
		Short:         "Write a synthetic project dataset",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := g.Validate(); err != nil {
				return err
			}
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: 0755 is standard for data directories
					return err
				}
			}

			p := g.Generate()
			var err error
			switch ext := strings.ToLower(filepath.Ext(out)); ext {
			case ".yaml", ".yml":
				err = generate.WriteYAML(out, p)
			case ".db", ".sqlite", ".sqlite3":
				err = generate.WriteSQLite(out, p)
			default:
				return fmt.Errorf("unsupported output extension %q", ext)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s (%d hosts)\n", out, len(p.Hosts))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "demo.yaml", "output file (.yaml or .db)")
	cmd.Flags().StringVar(&g.Name, "name", g.Name, "project name")
	cmd.Flags().IntVar(&g.Subnets, "subnets", g.Subnets, "number of /24 subnets")
	cmd.Flags().IntVar(&g.Hosts, "hosts", g.Hosts, "hosts per subnet")
	cmd.Flags().Uint64Var(&g.Seed, "seed", g.Seed, "random seed")
	return cmd
}
