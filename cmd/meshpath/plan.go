package main

import (
	"github.com/spf13/cobra"

	"github.com/katalvlaran/meshpath/planner"
)

func newPlanCmd(f *rootFlags) *cobra.Command {
	var start, goal string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan one path and print it as JSON",
		Long: `Plan a geodesic path between two points on the mesh.

Points are given as x,y,z (z defaults to 0). Planning failures such as an
unreachable goal are reported in the "outcome" field, not as errors.

Examples:
  meshpath plan --mesh terrain.obj --start 0.2,0.3,0 --goal 8.7,7.4,0
  meshpath plan --mesh terrain.yaml --start 1,1 --goal 9,9 --config planner.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := parsePoint(start)
			if err != nil {
				return err
			}
			g, err := parsePoint(goal)
			if err != nil {
				return err
			}
			m, cfg, err := f.load()
			if err != nil {
				return err
			}
			p, err := planner.New(m, planner.WithLogger(f.logger))
			if err != nil {
				return err
			}
			res, err := p.Plan(cmd.Context(), planner.Request{Start: s, Goal: g, Config: cfg})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), newPlanOutput("", res), true)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start point x,y,z")
	cmd.Flags().StringVar(&goal, "goal", "", "goal point x,y,z")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("goal")

	return cmd
}
