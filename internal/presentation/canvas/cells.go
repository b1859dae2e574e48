package canvas

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/penwyp/go-pm-timeline/internal/util"
)

// Cell is one terminal character position.
type Cell struct {
	Rune rune
	FG   Color
	BG   Color
	// cont marks the right half of a wide rune.
	cont bool
}

// CellSurface rasterizes drawing onto a terminal character grid. Each cell
// covers CellW x CellH device pixels.
type CellSurface struct {
	stateStack
	CellW, CellH float64
	cols, rows   int
	cells        []Cell
}

// NewCellSurface creates a grid of cols x rows cells.
func NewCellSurface(cols, rows int, cellW, cellH float64) *CellSurface {
	s := &CellSurface{stateStack: newStateStack(), CellW: cellW, CellH: cellH}
	s.resize(cols, rows)
	return s
}

func (s *CellSurface) resize(cols, rows int) {
	s.cols, s.rows = max(0, cols), max(0, rows)
	s.cells = make([]Cell, s.cols*s.rows)
	for i := range s.cells {
		s.cells[i] = Cell{Rune: ' ', FG: MutedText, BG: Background}
	}
}

// SetBackingSize resizes the grid to cover w x h device pixels.
func (s *CellSurface) SetBackingSize(w, h float64) {
	cols := int(math.Ceil(w / s.CellW))
	rows := int(math.Ceil(h / s.CellH))
	if cols != s.cols || rows != s.rows {
		s.resize(cols, rows)
	}
}

// Dimensions returns the grid size in cells.
func (s *CellSurface) Dimensions() (int, int) {
	return s.cols, s.rows
}

func (s *CellSurface) Clear(c Color) {
	for i := range s.cells {
		s.cells[i] = Cell{Rune: ' ', FG: MutedText, BG: c.Over(Background)}
	}
}

// At returns the cell at col, row.
func (s *CellSurface) At(col, row int) Cell {
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return Cell{}
	}
	return s.cells[row*s.cols+col]
}

func (s *CellSurface) cell(col, row int) *Cell {
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return nil
	}
	if c := s.cur.clip; c.set {
		cx := (float64(col) + 0.5) * s.CellW
		cy := (float64(row) + 0.5) * s.CellH
		if cx < c.x || cx > c.x+c.w || cy < c.y || cy > c.y+c.h {
			return nil
		}
	}
	return &s.cells[row*s.cols+col]
}

// span converts a device range to the cells whose centers it covers. A
// non-empty range narrower than a cell still covers the cell holding its
// midpoint.
func span(from, to, size float64) (int, int) {
	if to < from {
		from, to = to, from
	}
	first := int(math.Ceil(from/size - 0.5))
	last := int(math.Floor(to/size - 0.5))
	if last < first && to > from {
		mid := int(math.Floor((from + to) / 2 / size))
		return mid, mid
	}
	return first, last
}

func (s *CellSurface) fillDevice(x, y, w, h float64, c Color) {
	c0, c1 := span(x, x+w, s.CellW)
	r0, r1 := span(y, y+h, s.CellH)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if cell := s.cell(col, row); cell != nil {
				cell.BG = c.Over(cell.BG)
				if cell.Rune != ' ' && c.A >= 1 {
					cell.Rune, cell.cont = ' ', false
				}
			}
		}
	}
}

func (s *CellSurface) FillRect(x, y, w, h float64) {
	dx, dy := s.cur.tf.apply(x, y)
	dw, dh := s.cur.tf.scaleLen(w, h)
	s.fillDevice(dx, dy, dw, dh, s.cur.fill)
}

func (s *CellSurface) FillRoundRect(x, y, w, h, _ float64) {
	s.FillRect(x, y, w, h)
}

func (s *CellSurface) StrokeRect(x, y, w, h float64) {
	dx, dy := s.cur.tf.apply(x, y)
	dw, dh := s.cur.tf.scaleLen(w, h)
	c0, c1 := span(dx, dx+dw, s.CellW)
	r0, r1 := span(dy, dy+dh, s.CellH)
	if c1-c0 < 1 {
		return
	}
	for col := c0; col <= c1; col++ {
		s.glyph(col, r0, '▔', s.cur.stroke)
		if r1 != r0 {
			s.glyph(col, r1, '▁', s.cur.stroke)
		}
	}
}

func (s *CellSurface) glyph(col, row int, r rune, fg Color) {
	if cell := s.cell(col, row); cell != nil {
		cell.Rune, cell.FG, cell.cont = r, fg, false
	}
}

func (s *CellSurface) FillPolygon(pts []Point) {
	if len(pts) < 3 {
		return
	}
	dev := make([]Point, len(pts))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	var cx, cy float64
	for i, p := range pts {
		x, y := s.cur.tf.apply(p.X, p.Y)
		dev[i] = Point{X: x, Y: y}
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		cx += x
		cy += y
	}
	cx /= float64(len(dev))
	cy /= float64(len(dev))

	hit := false
	for row := int(minY / s.CellH); row <= int(maxY/s.CellH); row++ {
		for col := int(minX / s.CellW); col <= int(maxX/s.CellW); col++ {
			px := (float64(col) + 0.5) * s.CellW
			py := (float64(row) + 0.5) * s.CellH
			if !insidePolygon(dev, px, py) {
				continue
			}
			if cell := s.cell(col, row); cell != nil {
				cell.BG = s.cur.fill.Over(cell.BG)
				hit = true
			}
		}
	}
	if hit {
		return
	}

	r := '◆'
	if len(dev) == 3 {
		r = '◥'
	}
	s.glyph(int(cx/s.CellW), int(cy/s.CellH), r, s.cur.fill)
}

func insidePolygon(pts []Point, x, y float64) bool {
	inside := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.Y > y) != (b.Y > y) && x < (b.X-a.X)*(y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

func (s *CellSurface) FillCircle(cx, cy, r float64) {
	x, y := s.cur.tf.apply(cx, cy)
	rr := r * s.cur.tf.sx
	if rr*2 < math.Min(s.CellW, s.CellH) {
		cell := s.cell(int(x/s.CellW), int(y/s.CellH))
		if cell != nil && cell.Rune == ' ' {
			cell.Rune, cell.FG = '•', s.cur.fill
		}
		return
	}
	s.fillDevice(x-rr, y-rr, 2*rr, 2*rr, s.cur.fill)
}

func (s *CellSurface) Line(x1, y1, x2, y2 float64) {
	ax, ay := s.cur.tf.apply(x1, y1)
	bx, by := s.cur.tf.apply(x2, y2)

	switch {
	case math.Abs(ax-bx) < s.CellW/2:
		col := int(ax / s.CellW)
		r0, r1 := int(math.Min(ay, by)/s.CellH), int(math.Max(ay, by)/s.CellH)
		for row := r0; row <= r1 && row < s.rows; row++ {
			s.glyph(col, row, '│', s.cur.stroke)
		}
	case math.Abs(ay-by) < s.CellH/2:
		row := int(ay / s.CellH)
		c0, c1 := int(math.Min(ax, bx)/s.CellW), int(math.Max(ax, bx)/s.CellW)
		for col := c0; col <= c1 && col < s.cols; col++ {
			s.glyph(col, row, '─', s.cur.stroke)
		}
	default:
		steps := int(math.Max(math.Abs(bx-ax)/s.CellW, math.Abs(by-ay)/s.CellH)) + 1
		for i := 0; i <= steps; i++ {
			t := float64(i) / float64(steps)
			s.glyph(int((ax+(bx-ax)*t)/s.CellW), int((ay+(by-ay)*t)/s.CellH), '·', s.cur.stroke)
		}
	}
}

func (s *CellSurface) FillText(text string, x, y float64, align Align) {
	if text == "" {
		return
	}
	dx, dy := s.cur.tf.apply(x, y)
	width := runewidth.StringWidth(text)
	col := int(math.Round(dx / s.CellW))
	switch align {
	case AlignCenter:
		col -= width / 2
	case AlignRight:
		col -= width
	}
	row := int(dy / s.CellH)

	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if cell := s.cell(col, row); cell != nil {
			cell.Rune, cell.FG, cell.cont = r, s.cur.fill, false
			if w == 2 {
				if next := s.cell(col+1, row); next != nil {
					next.Rune, next.cont = ' ', true
					next.BG = cell.BG
				}
			}
		}
		col += w
	}
}

// MeasureText returns the width of text in user space.
func (s *CellSurface) MeasureText(text string) float64 {
	return float64(runewidth.StringWidth(text)) * s.CellW / s.cur.tf.sx
}

// Lines returns the grid as plain text, one string per row.
func (s *CellSurface) Lines() []string {
	lines := make([]string, s.rows)
	for row := 0; row < s.rows; row++ {
		var sb strings.Builder
		for col := 0; col < s.cols; col++ {
			c := s.cells[row*s.cols+col]
			if !c.cont {
				sb.WriteRune(c.Rune)
			}
		}
		lines[row] = strings.TrimRight(sb.String(), " ")
	}
	return lines
}

// Render returns the grid as ANSI-colored lines.
func (s *CellSurface) Render() []string {
	lines := make([]string, s.rows)
	for row := 0; row < s.rows; row++ {
		var sb strings.Builder
		var lastFG, lastBG string
		for col := 0; col < s.cols; col++ {
			c := s.cells[row*s.cols+col]
			if c.cont {
				continue
			}
			fr, fg, fb := c.FG.Clamped().RGB255()
			br, bg, bb := c.BG.Clamped().RGB255()
			if seq := util.ANSIForeground(fr, fg, fb); seq != lastFG {
				sb.WriteString(seq)
				lastFG = seq
			}
			if seq := util.ANSIBackground(br, bg, bb); seq != lastBG {
				sb.WriteString(seq)
				lastBG = seq
			}
			sb.WriteRune(c.Rune)
		}
		sb.WriteString(util.ColorReset)
		lines[row] = sb.String()
	}
	return lines
}
