// Package phase implements the gate that admits cube operations into one of
// four mutually exclusive phases.
//
// Any number of operations may run inside the active phase. An operation
// asking for a different phase waits until every operation admitted to the
// active phase has left, then switches the gate over. The gate lock and the
// drain barrier both serve waiters in arrival order, so a switch request is
// never starved by a stream of same-phase arrivals.
package phase

import "github.com/SeamusWaldron/concurrentcube/internal/grid"

// Phase identifies an operation group.
type Phase int

const (
	Read Phase = iota
	TopBottom
	FrontBack
	LeftRight
)

// All lists every phase.
var All = [...]Phase{Read, TopBottom, FrontBack, LeftRight}

var axisPhases = [grid.NumAxes]Phase{
	grid.AxisTopBottom: TopBottom,
	grid.AxisFrontBack: FrontBack,
	grid.AxisLeftRight: LeftRight,
}

// ForAxis returns the phase rotations about an axis run in.
func ForAxis(a grid.Axis) Phase {
	return axisPhases[a]
}

// ForFace returns the phase rotations of a face run in.
func ForFace(f grid.Face) Phase {
	return ForAxis(f.Axis())
}

func (p Phase) String() string {
	switch p {
	case Read:
		return "read"
	case TopBottom:
		return "top-bottom"
	case FrontBack:
		return "front-back"
	case LeftRight:
		return "left-right"
	default:
		return "unknown"
	}
}
