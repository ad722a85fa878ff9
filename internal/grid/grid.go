// Package grid provides the N×N×N cube grid and its layer rotation geometry.
//
// Nothing in this package locks. Callers must guarantee exclusive access to
// the cells touched by a rotation.
package grid

// Color represents a cell color. The solved color of a face equals its index.
type Color byte

// Symbol returns the single-character encoding used in snapshots.
func (c Color) Symbol() byte {
	return '0' + byte(c)
}

func (c Color) String() string {
	if c > 5 {
		return "?"
	}
	return string(c.Symbol())
}

// Face identifies one of the six cube faces.
type Face int

const (
	Top    Face = 0
	Left   Face = 1
	Front  Face = 2
	Right  Face = 3
	Back   Face = 4
	Bottom Face = 5
)

// NumFaces is the number of faces of the cube.
const NumFaces = 6

// Faces lists every face in snapshot order.
var Faces = [NumFaces]Face{Top, Left, Front, Right, Back, Bottom}

func (f Face) String() string {
	switch f {
	case Top:
		return "top"
	case Left:
		return "left"
	case Front:
		return "front"
	case Right:
		return "right"
	case Back:
		return "back"
	case Bottom:
		return "bottom"
	default:
		return "?"
	}
}

// Valid reports whether f is one of the six faces.
func (f Face) Valid() bool {
	return f >= Top && f <= Bottom
}

// Opposite returns the face on the other side of the cube.
func (f Face) Opposite() Face {
	switch f {
	case Top:
		return Bottom
	case Bottom:
		return Top
	case Left:
		return Right
	case Right:
		return Left
	case Front:
		return Back
	default:
		return Front
	}
}

// Axis identifies a pair of opposite faces.
type Axis int

const (
	AxisTopBottom Axis = iota
	AxisFrontBack
	AxisLeftRight
)

// NumAxes is the number of rotation axes.
const NumAxes = 3

func (a Axis) String() string {
	switch a {
	case AxisTopBottom:
		return "top-bottom"
	case AxisFrontBack:
		return "front-back"
	case AxisLeftRight:
		return "left-right"
	default:
		return "?"
	}
}

// Primary returns the face whose layer numbering is the axis' physical depth.
func (a Axis) Primary() Face {
	switch a {
	case AxisFrontBack:
		return Front
	case AxisLeftRight:
		return Left
	default:
		return Top
	}
}

// Axis returns the axis the face rotates about.
func (f Face) Axis() Axis {
	switch f {
	case Front, Back:
		return AxisFrontBack
	case Left, Right:
		return AxisLeftRight
	default:
		return AxisTopBottom
	}
}

// Depth converts a layer counted from face f into the physical depth along
// f's axis. Both faces of an axis map the same slice to the same depth.
func Depth(f Face, layer, size int) int {
	if f == f.Axis().Primary() {
		return layer
	}
	return size - 1 - layer
}

// Grid holds the colors of all six faces.
// Cells[face][row][col] = color
type Grid struct {
	size  int
	Cells [NumFaces][][]Color
}

// New creates a solved grid of the given size.
func New(size int) *Grid {
	g := &Grid{size: size}
	for _, face := range Faces {
		g.Cells[face] = make([][]Color, size)
		for row := 0; row < size; row++ {
			g.Cells[face][row] = make([]Color, size)
			for col := 0; col < size; col++ {
				g.Cells[face][row][col] = Color(face)
			}
		}
	}
	return g
}

// Size returns the number of cells along an edge.
func (g *Grid) Size() int {
	return g.size
}

// Clone creates a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	clone := &Grid{size: g.size}
	for _, face := range Faces {
		clone.Cells[face] = g.copyFace(face)
	}
	return clone
}

// IsSolved returns true if every face shows a single color matching its index.
func (g *Grid) IsSolved() bool {
	for _, face := range Faces {
		for _, row := range g.Cells[face] {
			for _, c := range row {
				if c != Color(face) {
					return false
				}
			}
		}
	}
	return true
}

// Snapshot copies the grid into an immutable snapshot.
func (g *Grid) Snapshot() Snapshot {
	n := g.size
	cells := make([]Color, 0, NumFaces*n*n)
	for _, face := range Faces {
		for _, row := range g.Cells[face] {
			cells = append(cells, row...)
		}
	}
	return Snapshot{size: n, cells: cells}
}

// String returns the snapshot encoding of the grid.
func (g *Grid) String() string {
	return g.Snapshot().String()
}
