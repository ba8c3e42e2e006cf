// Package report filters project entities with filter expressions and projects
// the surviving rows into tables.
package report

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/redopsync/scopefilter/internal/filter"
	"github.com/redopsync/scopefilter/internal/scope"
)

var (
	// ErrUnknownDataSource is returned for a builder data source that does not exist.
	ErrUnknownDataSource = errors.New("unknown data source")
	// ErrUnknownReport is returned for a canned report that does not exist.
	ErrUnknownReport = errors.New("unknown report")
)

// DefaultChunkSize is the number of entities evaluated per work unit.
const DefaultChunkSize = 512

// Options tunes parallel filtering.
type Options struct {
	Workers   int // <= 0 means GOMAXPROCS
	ChunkSize int // <= 0 means DefaultChunkSize
}

// Builder runs ad-hoc and canned reports over a project.
type Builder struct {
	log       logrus.FieldLogger
	workers   int
	chunkSize int
}

// NewBuilder creates a Builder that logs to log.
func NewBuilder(log logrus.FieldLogger, opts Options) *Builder {
	b := &Builder{log: log, workers: opts.Workers, chunkSize: opts.ChunkSize}
	if b.workers <= 0 {
		b.workers = runtime.GOMAXPROCS(0)
	}
	if b.chunkSize <= 0 {
		b.chunkSize = DefaultChunkSize
	}
	return b
}

// Request selects a data source, the columns to project and an optional filter.
type Request struct {
	DataSource string
	Columns    []string
	Filter     string
}

// Table is a projected report result.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// Run builds an ad-hoc report. A blank filter matches every row.
func (b *Builder) Run(ctx context.Context, p *scope.Project, req Request) (*Table, error) {
	ds, ok := lookupSource(req.DataSource)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataSource, req.DataSource)
	}

	var exprs []filter.Expression
	if e, ok := filter.Parse(req.Filter); ok {
		exprs = append(exprs, e)
		b.log.WithFields(logrus.Fields{"source": ds.name, "expression": e.String()}).Debug("Filter parsed")
	}

	items := ds.items(p)
	kept, err := b.filter(ctx, ds, items, exprs, false)
	if err != nil {
		return nil, err
	}
	b.log.WithFields(logrus.Fields{"source": ds.name, "scanned": len(items), "kept": len(kept)}).Debug("Report built")

	return project(ds.selectColumns(req.Columns), kept), nil
}

// filter returns the items matching every expression, in input order. Items are
// split into chunks evaluated concurrently; cancellation is checked between items.
// With keepOrphans, items without a host bypass the expressions.
func (b *Builder) filter(ctx context.Context, ds *dataSource, items []item, exprs []filter.Expression, keepOrphans bool) ([]item, error) {
	if len(exprs) == 0 {
		return items, ctx.Err()
	}

	chunks := (len(items) + b.chunkSize - 1) / b.chunkSize
	results := make([][]item, chunks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for c := 0; c < chunks; c++ {
		lo := c * b.chunkSize
		hi := min(lo+b.chunkSize, len(items))
		g.Go(func() error {
			var kept []item
			for _, it := range items[lo:hi] {
				if err := ctx.Err(); err != nil {
					return err
				}
				if (keepOrphans && it.host == nil) || matchesAll(ds, exprs, it) {
					kept = append(kept, it)
				}
			}
			results[c] = kept
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("filtering %s: %w", ds.name, err)
	}

	var out []item
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func matchesAll(ds *dataSource, exprs []filter.Expression, it item) bool {
	for _, e := range exprs {
		if !ds.matches(e, it) {
			return false
		}
	}
	return true
}

func project(cols []column, items []item) *Table {
	t := &Table{Columns: make([]Column, len(cols)), Rows: make([][]string, 0, len(items))}
	for i, c := range cols {
		t.Columns[i] = c.Column
	}
	for _, it := range items {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.cell(it)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
