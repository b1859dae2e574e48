package canvas

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// Op is one recorded drawing call. Coordinates are in device space.
type Op struct {
	Name   string
	Args   []float64
	Text   string
	Fill   Color
	Stroke Color
	Shadow bool
	Align  Align
}

func (o Op) String() string {
	if o.Text != "" {
		return fmt.Sprintf("%s%v %q", o.Name, o.Args, o.Text)
	}
	return fmt.Sprintf("%s%v", o.Name, o.Args)
}

// Recorder is a Surface that keeps every call for inspection. Text measures
// CharWidth per display cell.
type Recorder struct {
	stateStack
	Ops       []Op
	Width     float64
	Height    float64
	CharWidth float64
}

// NewRecorder creates an empty recorder measuring 7px per cell.
func NewRecorder() *Recorder {
	return &Recorder{stateStack: newStateStack(), CharWidth: 7}
}

func (r *Recorder) SetBackingSize(w, h float64) {
	r.Width, r.Height = w, h
	r.record("backing", nil, w, h)
}

func (r *Recorder) Clear(c Color) {
	r.record("clear", &c)
}

// Reset drops recorded ops and restores the default state.
func (r *Recorder) Reset() {
	r.Ops = nil
	r.stateStack = newStateStack()
}

func (r *Recorder) FillRect(x, y, w, h float64) {
	r.recordRect("fillRect", x, y, w, h)
}

func (r *Recorder) StrokeRect(x, y, w, h float64) {
	dx, dy := r.cur.tf.apply(x, y)
	dw, dh := r.cur.tf.scaleLen(w, h)
	r.Ops = append(r.Ops, Op{Name: "strokeRect", Args: []float64{dx, dy, dw, dh}, Stroke: r.cur.stroke})
}

func (r *Recorder) FillRoundRect(x, y, w, h, radius float64) {
	dx, dy := r.cur.tf.apply(x, y)
	dw, dh := r.cur.tf.scaleLen(w, h)
	r.Ops = append(r.Ops, Op{
		Name:   "fillRoundRect",
		Args:   []float64{dx, dy, dw, dh, radius * r.cur.tf.sx},
		Fill:   r.cur.fill,
		Shadow: r.cur.blur > 0,
	})
}

func (r *Recorder) FillPolygon(pts []Point) {
	args := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		x, y := r.cur.tf.apply(p.X, p.Y)
		args = append(args, x, y)
	}
	r.Ops = append(r.Ops, Op{Name: "fillPolygon", Args: args, Fill: r.cur.fill, Shadow: r.cur.blur > 0})
}

func (r *Recorder) FillCircle(cx, cy, radius float64) {
	x, y := r.cur.tf.apply(cx, cy)
	r.Ops = append(r.Ops, Op{Name: "fillCircle", Args: []float64{x, y, radius * r.cur.tf.sx}, Fill: r.cur.fill})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	ax, ay := r.cur.tf.apply(x1, y1)
	bx, by := r.cur.tf.apply(x2, y2)
	r.Ops = append(r.Ops, Op{Name: "line", Args: []float64{ax, ay, bx, by}, Stroke: r.cur.stroke})
}

func (r *Recorder) FillText(text string, x, y float64, align Align) {
	dx, dy := r.cur.tf.apply(x, y)
	r.Ops = append(r.Ops, Op{Name: "fillText", Args: []float64{dx, dy}, Text: text, Fill: r.cur.fill, Align: align})
}

func (r *Recorder) MeasureText(text string) float64 {
	return float64(runewidth.StringWidth(text)) * r.CharWidth
}

func (r *Recorder) recordRect(name string, x, y, w, h float64) {
	dx, dy := r.cur.tf.apply(x, y)
	dw, dh := r.cur.tf.scaleLen(w, h)
	r.Ops = append(r.Ops, Op{Name: name, Args: []float64{dx, dy, dw, dh}, Fill: r.cur.fill, Shadow: r.cur.blur > 0})
}

func (r *Recorder) record(name string, fill *Color, args ...float64) {
	op := Op{Name: name, Args: args}
	if fill != nil {
		op.Fill = *fill
	}
	r.Ops = append(r.Ops, op)
}

// Find returns the recorded ops with the given name.
func (r *Recorder) Find(name string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Name == name {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns every drawn string in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Find("fillText") {
		out = append(out, op.Text)
	}
	return out
}
