package canvas

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	fontFamily = "Inter, Helvetica, Arial, sans-serif"
	// average glyph advance relative to the font size
	glyphAdvance = 0.6
)

// SVGSurface records drawing as SVG elements in device pixels.
type SVGSurface struct {
	stateStack
	width, height float64
	body          bytes.Buffer
	defs          bytes.Buffer
	clipIDs       map[clipRect]string
	shadowIDs     map[string]string
}

// NewSVGSurface creates a surface with the given backing size.
func NewSVGSurface(width, height float64) *SVGSurface {
	return &SVGSurface{
		stateStack: newStateStack(),
		width:      width,
		height:     height,
		clipIDs:    make(map[clipRect]string),
		shadowIDs:  make(map[string]string),
	}
}

func (s *SVGSurface) SetBackingSize(w, h float64) {
	s.width, s.height = w, h
}

// Size returns the backing size in device pixels.
func (s *SVGSurface) Size() (float64, float64) {
	return s.width, s.height
}

func (s *SVGSurface) Clear(c Color) {
	s.body.Reset()
	s.defs.Reset()
	clear(s.clipIDs)
	clear(s.shadowIDs)
	fmt.Fprintf(&s.body, `<rect x="0" y="0" width="%.2f" height="%.2f" fill="%s"/>`+"\n", s.width, s.height, c.CSS())
}

func (s *SVGSurface) FillRect(x, y, w, h float64) {
	dx, dy := s.cur.tf.apply(x, y)
	dw, dh := s.cur.tf.scaleLen(w, h)
	fmt.Fprintf(&s.body, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"%s/>`+"\n",
		dx, dy, dw, dh, s.cur.fill.CSS(), s.attrs(true))
}

func (s *SVGSurface) StrokeRect(x, y, w, h float64) {
	dx, dy := s.cur.tf.apply(x, y)
	dw, dh := s.cur.tf.scaleLen(w, h)
	fmt.Fprintf(&s.body, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="%s" stroke-width="%.2f"%s/>`+"\n",
		dx, dy, dw, dh, s.cur.stroke.CSS(), s.cur.lineWidth*s.cur.tf.sx, s.attrs(false))
}

func (s *SVGSurface) FillRoundRect(x, y, w, h, r float64) {
	dx, dy := s.cur.tf.apply(x, y)
	dw, dh := s.cur.tf.scaleLen(w, h)
	rr := min(r*s.cur.tf.sx, dw/2, dh/2)
	fmt.Fprintf(&s.body, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" ry="%.2f" fill="%s"%s/>`+"\n",
		dx, dy, dw, dh, rr, rr, s.cur.fill.CSS(), s.attrs(true))
}

func (s *SVGSurface) FillPolygon(pts []Point) {
	if len(pts) < 3 {
		return
	}
	var sb strings.Builder
	for i, p := range pts {
		x, y := s.cur.tf.apply(p.X, p.Y)
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%.2f,%.2f", x, y)
	}
	fmt.Fprintf(&s.body, `<polygon points="%s" fill="%s"%s/>`+"\n", sb.String(), s.cur.fill.CSS(), s.attrs(true))
}

func (s *SVGSurface) FillCircle(cx, cy, r float64) {
	x, y := s.cur.tf.apply(cx, cy)
	fmt.Fprintf(&s.body, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"%s/>`+"\n",
		x, y, r*s.cur.tf.sx, s.cur.fill.CSS(), s.attrs(true))
}

func (s *SVGSurface) Line(x1, y1, x2, y2 float64) {
	ax, ay := s.cur.tf.apply(x1, y1)
	bx, by := s.cur.tf.apply(x2, y2)
	fmt.Fprintf(&s.body, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"%s/>`+"\n",
		ax, ay, bx, by, s.cur.stroke.CSS(), s.cur.lineWidth*s.cur.tf.sx, s.attrs(false))
}

func (s *SVGSurface) FillText(text string, x, y float64, align Align) {
	if text == "" {
		return
	}
	dx, dy := s.cur.tf.apply(x, y)
	anchor := "start"
	switch align {
	case AlignCenter:
		anchor = "middle"
	case AlignRight:
		anchor = "end"
	}
	weight := "normal"
	if s.cur.bold {
		weight = "bold"
	}
	fmt.Fprintf(&s.body, `<text x="%.2f" y="%.2f" font-family="%s" font-size="%.2f" font-weight="%s" fill="%s" text-anchor="%s" dominant-baseline="middle"%s>%s</text>`+"\n",
		dx, dy, fontFamily, s.cur.fontSize*s.cur.tf.sy, weight, s.cur.fill.CSS(), anchor, s.attrs(false), html.EscapeString(text))
}

// MeasureText estimates the advance of text in user space.
func (s *SVGSurface) MeasureText(text string) float64 {
	return float64(runewidth.StringWidth(text)) * s.cur.fontSize * glyphAdvance
}

// attrs returns the clip and, for fills, shadow attributes of the current
// state.
func (s *SVGSurface) attrs(fill bool) string {
	var sb strings.Builder
	if c := s.cur.clip; c.set {
		id, ok := s.clipIDs[c]
		if !ok {
			id = fmt.Sprintf("clip%d", len(s.clipIDs))
			s.clipIDs[c] = id
			fmt.Fprintf(&s.defs, `<clipPath id="%s"><rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"/></clipPath>`+"\n",
				id, c.x, c.y, c.w, c.h)
		}
		fmt.Fprintf(&sb, ` clip-path="url(#%s)"`, id)
	}
	if fill && s.cur.blur > 0 {
		key := fmt.Sprintf("%s/%.2f/%.2f", s.cur.shadow.CSS(), s.cur.blur, s.cur.shadowDY)
		id, ok := s.shadowIDs[key]
		if !ok {
			id = fmt.Sprintf("shadow%d", len(s.shadowIDs))
			s.shadowIDs[key] = id
			r, g, b := s.cur.shadow.Clamped().RGB255()
			fmt.Fprintf(&s.defs, `<filter id="%s" x="-20%%" y="-20%%" width="140%%" height="160%%"><feDropShadow dx="0" dy="%.2f" stdDeviation="%.2f" flood-color="rgb(%d,%d,%d)" flood-opacity="%.3g"/></filter>`+"\n",
				id, s.cur.shadowDY*s.cur.tf.sy, s.cur.blur*s.cur.tf.sx/2, r, g, b, s.cur.shadow.A)
		}
		fmt.Fprintf(&sb, ` filter="url(#%s)"`, id)
	}
	return sb.String()
}

// WriteTo writes the complete SVG document.
func (s *SVGSurface) WriteTo(w io.Writer) (int64, error) {
	var doc bytes.Buffer
	fmt.Fprintf(&doc, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.2f %.2f">`+"\n",
		s.width, s.height, s.width, s.height)
	if s.defs.Len() > 0 {
		doc.WriteString("<defs>\n")
		doc.Write(s.defs.Bytes())
		doc.WriteString("</defs>\n")
	}
	doc.Write(s.body.Bytes())
	doc.WriteString("</svg>\n")
	return doc.WriteTo(w)
}

// String returns the SVG document.
func (s *SVGSurface) String() string {
	var sb strings.Builder
	_, _ = s.WriteTo(&sb)
	return sb.String()
}
