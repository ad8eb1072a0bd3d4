package main

import (
	"encoding/json"
	"io"

	"github.com/katalvlaran/meshpath/planner"
)

// poseOutput is one path sample; Orientation is the quaternion as
// [w, x, y, z].
type poseOutput struct {
	Position    [3]float64 `json:"position"`
	Face        int32      `json:"face"`
	Orientation [4]float64 `json:"orientation"`
}

type planOutput struct {
	ID         string          `json:"id,omitempty"`
	PlanID     string          `json:"plan_id"`
	Outcome    planner.Outcome `json:"outcome"`
	States     []planner.State `json:"states"`
	Cost       float64         `json:"cost"`
	DurationMS float64         `json:"duration_ms"`
	Path       []poseOutput    `json:"path,omitempty"`
}

func newPlanOutput(id string, res *planner.Result) planOutput {
	out := planOutput{
		ID:         id,
		PlanID:     res.PlanID,
		Outcome:    res.Outcome,
		States:     res.States,
		Cost:       res.Cost,
		DurationMS: float64(res.Duration.Microseconds()) / 1000,
	}
	for i, p := range res.Poses() {
		q := p.Orientation
		out.Path = append(out.Path, poseOutput{
			Position:    [3]float64{p.Position.X, p.Position.Y, p.Position.Z},
			Face:        int32(res.Path[i].Face),
			Orientation: [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		})
	}
	return out
}

func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
