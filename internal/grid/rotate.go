package grid

// strip addresses one row or column of a face at a given layer.
type strip struct {
	face   Face
	column bool
	// far selects index size-1-layer instead of layer.
	far bool
}

// transfer moves the contents of src into dst, reversing the cell order when
// flip is set.
type transfer struct {
	src, dst strip
	flip     bool
}

// rings lists, for each face, the four transfers that make up a clockwise
// quarter turn of a layer seen from that face. Reads happen before writes.
var rings = [NumFaces][4]transfer{
	Top: {
		{src: strip{Back, false, false}, dst: strip{Right, false, false}},
		{src: strip{Right, false, false}, dst: strip{Front, false, false}},
		{src: strip{Front, false, false}, dst: strip{Left, false, false}},
		{src: strip{Left, false, false}, dst: strip{Back, false, false}},
	},
	Bottom: {
		{src: strip{Left, false, true}, dst: strip{Front, false, true}},
		{src: strip{Front, false, true}, dst: strip{Right, false, true}},
		{src: strip{Right, false, true}, dst: strip{Back, false, true}},
		{src: strip{Back, false, true}, dst: strip{Left, false, true}},
	},
	Front: {
		{src: strip{Top, false, true}, dst: strip{Right, true, false}},
		{src: strip{Right, true, false}, dst: strip{Bottom, false, false}, flip: true},
		{src: strip{Bottom, false, false}, dst: strip{Left, true, true}},
		{src: strip{Left, true, true}, dst: strip{Top, false, true}, flip: true},
	},
	Back: {
		{src: strip{Top, false, false}, dst: strip{Left, true, false}, flip: true},
		{src: strip{Left, true, false}, dst: strip{Bottom, false, true}},
		{src: strip{Bottom, false, true}, dst: strip{Right, true, true}, flip: true},
		{src: strip{Right, true, true}, dst: strip{Top, false, false}},
	},
	Right: {
		{src: strip{Top, true, true}, dst: strip{Back, true, false}, flip: true},
		{src: strip{Back, true, false}, dst: strip{Bottom, true, true}, flip: true},
		{src: strip{Bottom, true, true}, dst: strip{Front, true, true}},
		{src: strip{Front, true, true}, dst: strip{Top, true, true}},
	},
	Left: {
		{src: strip{Top, true, false}, dst: strip{Front, true, false}},
		{src: strip{Front, true, false}, dst: strip{Bottom, true, false}},
		{src: strip{Bottom, true, false}, dst: strip{Back, true, true}, flip: true},
		{src: strip{Back, true, true}, dst: strip{Top, true, false}, flip: true},
	},
}

func (g *Grid) index(s strip, layer int) int {
	if s.far {
		return g.size - 1 - layer
	}
	return layer
}

func (g *Grid) read(s strip, layer int) []Color {
	i := g.index(s, layer)
	cells := g.Cells[s.face]
	out := make([]Color, g.size)
	for j := 0; j < g.size; j++ {
		if s.column {
			out[j] = cells[j][i]
		} else {
			out[j] = cells[i][j]
		}
	}
	return out
}

func (g *Grid) write(s strip, layer int, v []Color, flip bool) {
	i := g.index(s, layer)
	cells := g.Cells[s.face]
	for j := 0; j < g.size; j++ {
		c := v[j]
		if flip {
			c = v[g.size-1-j]
		}
		if s.column {
			cells[j][i] = c
		} else {
			cells[i][j] = c
		}
	}
}

// RotateLayer turns the given layer of face a quarter turn clockwise as seen
// from that face. Layer 0 also spins face itself; layer size-1 spins the
// opposite face counter-clockwise.
//
// face must be valid and 0 <= layer < Size().
func (g *Grid) RotateLayer(face Face, layer int) {
	ring := &rings[face]
	var saved [4][]Color
	for i, t := range ring {
		saved[i] = g.read(t.src, layer)
	}
	for i, t := range ring {
		g.write(t.dst, layer, saved[i], t.flip)
	}

	if layer == 0 {
		g.spinCW(face)
	} else if layer == g.size-1 {
		g.spinCCW(face.Opposite())
	}
}

// spinCW rotates a whole face 90 degrees clockwise.
func (g *Grid) spinCW(face Face) {
	n := g.size
	old := g.copyFace(face)
	cells := g.Cells[face]
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			cells[col][n-1-row] = old[row][col]
		}
	}
}

// spinCCW rotates a whole face 90 degrees counter-clockwise.
func (g *Grid) spinCCW(face Face) {
	n := g.size
	old := g.copyFace(face)
	cells := g.Cells[face]
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			cells[col][row] = old[row][n-1-col]
		}
	}
}

func (g *Grid) copyFace(face Face) [][]Color {
	out := make([][]Color, g.size)
	for row := range g.Cells[face] {
		out[row] = append([]Color(nil), g.Cells[face][row]...)
	}
	return out
}
