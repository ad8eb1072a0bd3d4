package wavefront

import "math"

const (
	// minEdge is the length below which an edge or a distance is treated as zero.
	minEdge = 1e-12
	// angleSlack absorbs rounding in the angle-sum test: for an admissible
	// unfolding θ1+θ2 equals θ0 exactly.
	angleSlack = 1e-9
)

// Side names the known vertex a Step runs through.
type Side int

const (
	// First is v1, the first known vertex of the unfolded triangle.
	First Side = iota
	// Second is v2.
	Second
)

// Step is the outcome of unfolding one triangle.
type Step struct {
	Distance float64
	Side     Side
	Angle    float64
	Branch   Branch
}

// Unfold computes the distance of the free vertex v3 of triangle (v1,v2,v3)
// from the distances u1, u2 of v1 and v2 and the edge lengths
// a=|v2v3|, b=|v1v3|, c=|v1v2|.
//
// The triangle is laid flat with v1 at the origin and v2 on the +x axis. The
// virtual source S sits at distances u1, u2 from v1, v2 on the far side of
// the edge, and v3 on the near side. If the segment v3→S crosses the edge
// (the angles θ1 at v3 between v1 and S and θ2 between v2 and S add up to
// no more than the angle θ0 at v3), the straight distance |S v3| is used
// (Direct). Otherwise the path runs along the nearer of the edges v1v3, v2v3
// (Fallback) with a zero rotation angle.
//
// ok is false when an edge is shorter than minEdge or any intermediate is
// not finite; the caller must leave v3 unchanged in that case.
func Unfold(u1, u2, a, b, c float64) (Step, bool) {
	if !(a >= minEdge && b >= minEdge && c >= minEdge) || !finite(u1) || !finite(u2) {
		return Step{}, false
	}
	// Heron-style areas: A for the (u1,u2,c) triangle, B for (a,b,c).
	A := math.Sqrt(math.Max((-u1+u2+c)*(u1-u2+c)*(u1+u2-c)*(u1+u2+c), 0))
	B := math.Sqrt(math.Max((-a+b+c)*(a-b+c)*(a+b-c)*(a+b+c), 0))

	sx := (c*c + u1*u1 - u2*u2) / (2 * c)
	p := (-a*a + b*b + c*c) / (2 * c)
	dx := p - sx
	dy := (A + B) / (2 * c)
	u3 := math.Sqrt(dx*dx + dy*dy)
	if !finite(u3) {
		return Step{}, false
	}
	if u3 < minEdge {
		// v3 coincides with the virtual source
		if u1 <= u2 {
			return Step{Distance: u3, Side: First, Branch: Direct}, true
		}
		return Step{Distance: u3, Side: Second, Branch: Direct}, true
	}

	th0 := acos((a*a + b*b - c*c) / (2 * a * b))
	th1 := acos((u3*u3 + b*b - u1*u1) / (2 * u3 * b))
	th2 := acos((a*a + u3*u3 - u2*u2) / (2 * a * u3))
	if !finite(th0) || !finite(th1) || !finite(th2) {
		return Step{}, false
	}

	if th1+th2 < th0+angleSlack {
		if th1 < th2 {
			return Step{Distance: u3, Side: First, Angle: th1, Branch: Direct}, true
		}
		return Step{Distance: u3, Side: Second, Angle: wrapAngle(-th2), Branch: Direct}, true
	}
	if th1 < th2 {
		return Step{Distance: u1 + b, Side: First, Branch: Fallback}, true
	}
	return Step{Distance: u2 + a, Side: Second, Branch: Fallback}, true
}

// acos clamps its argument to [-1,1] first.
func acos(x float64) float64 {
	return math.Acos(math.Max(-1, math.Min(1, x)))
}

// wrapAngle maps x into (−π, π].
func wrapAngle(x float64) float64 {
	for x <= -math.Pi {
		x += 2 * math.Pi
	}
	for x > math.Pi {
		x -= 2 * math.Pi
	}
	return x
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
