package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/golang/geo/r3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/meshpath/planner"
)

// queryFile is the batch input format:
//
//	queries:
//	  - id: north
//	    start: [0.2, 0.3, 0]
//	    goal: [8.7, 7.4, 0]
type queryFile struct {
	Queries []query `yaml:"queries"`
}

type query struct {
	ID    string     `yaml:"id"`
	Start [3]float64 `yaml:"start"`
	Goal  [3]float64 `yaml:"goal"`
}

func loadQueries(path string) ([]query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load queries: %w", err)
	}
	var qf queryFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&qf); err != nil {
		return nil, fmt.Errorf("parse queries %s: %w", path, err)
	}
	for i := range qf.Queries {
		if qf.Queries[i].ID == "" {
			qf.Queries[i].ID = fmt.Sprintf("q%d", i)
		}
	}
	return qf.Queries, nil
}

func newBatchCmd(f *rootFlags) *cobra.Command {
	var (
		queriesPath string
		parallel    int
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Plan many paths concurrently and print JSON lines",
		Long: `Plan every query of a YAML file against one mesh.

Each query runs on its own planner; up to --parallel plans run at once.
One JSON object per query is printed, in file order.

Examples:
  meshpath batch --mesh terrain.obj --queries queries.yaml
  meshpath batch --mesh terrain.obj --queries queries.yaml --parallel 8 --log-format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if parallel < 1 {
				return fmt.Errorf("--parallel must be at least 1, got %d", parallel)
			}
			queries, err := loadQueries(queriesPath)
			if err != nil {
				return err
			}
			m, cfg, err := f.load()
			if err != nil {
				return err
			}

			results := make([]*planner.Result, len(queries))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(parallel)
			for i, q := range queries {
				g.Go(func() error {
					p, err := planner.New(m, planner.WithLogger(f.logger.With(slog.String("query", q.ID))))
					if err != nil {
						return err
					}
					res, err := p.Plan(ctx, planner.Request{Start: vec(q.Start), Goal: vec(q.Goal), Config: cfg})
					if err != nil {
						return fmt.Errorf("query %s: %w", q.ID, err)
					}
					results[i] = res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, res := range results {
				if err := writeJSON(out, newPlanOutput(queries[i].ID, res), false); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&queriesPath, "queries", "", "YAML file with queries")
	cmd.Flags().IntVar(&parallel, "parallel", runtime.GOMAXPROCS(0), "maximum concurrent plans")
	_ = cmd.MarkFlagRequired("queries")

	return cmd
}

func vec(c [3]float64) r3.Vector { return r3.Vector{X: c[0], Y: c[1], Z: c[2]} }
