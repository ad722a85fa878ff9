package grid

// Snapshot is an immutable copy of the grid taken under the read phase.
// Cells are stored face by face in Faces order, each face row-major.
type Snapshot struct {
	size  int
	cells []Color
}

// ParseSnapshot decodes the digit encoding produced by Snapshot.String.
// It returns false if s is not a well-formed encoding for a cube of size n.
func ParseSnapshot(s string, n int) (Snapshot, bool) {
	if n < 1 || len(s) != NumFaces*n*n {
		return Snapshot{}, false
	}
	cells := make([]Color, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '5' {
			return Snapshot{}, false
		}
		cells[i] = Color(s[i] - '0')
	}
	return Snapshot{size: n, cells: cells}, true
}

// Size returns the edge length of the snapshotted cube.
func (s Snapshot) Size() int {
	return s.size
}

// At returns the color of a single cell.
func (s Snapshot) At(face Face, row, col int) Color {
	return s.cells[(int(face)*s.size+row)*s.size+col]
}

// Face returns a copy of one face as rows of colors.
func (s Snapshot) Face(face Face) [][]Color {
	n := s.size
	out := make([][]Color, n)
	base := int(face) * n * n
	for row := 0; row < n; row++ {
		out[row] = append([]Color(nil), s.cells[base+row*n:base+(row+1)*n]...)
	}
	return out
}

// Faces returns every face in snapshot order.
func (s Snapshot) Faces() [][][]Color {
	out := make([][][]Color, NumFaces)
	for _, face := range Faces {
		out[face] = s.Face(face)
	}
	return out
}

// Bytes returns the encoding as one symbol per cell, 6·N² bytes in total.
func (s Snapshot) Bytes() []byte {
	out := make([]byte, len(s.cells))
	for i, c := range s.cells {
		out[i] = c.Symbol()
	}
	return out
}

func (s Snapshot) String() string {
	return string(s.Bytes())
}

// Equal reports whether two snapshots hold the same cells.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.size != other.size || len(s.cells) != len(other.cells) {
		return false
	}
	for i := range s.cells {
		if s.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// ColorCounts returns the number of cells showing each color.
func (s Snapshot) ColorCounts() [NumFaces]int {
	var counts [NumFaces]int
	for _, c := range s.cells {
		if int(c) < NumFaces {
			counts[c]++
		}
	}
	return counts
}

// Conserved reports whether every color appears on exactly N² cells.
func (s Snapshot) Conserved() bool {
	for _, count := range s.ColorCounts() {
		if count != s.size*s.size {
			return false
		}
	}
	return true
}
