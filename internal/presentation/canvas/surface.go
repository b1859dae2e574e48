package canvas

// Align is the horizontal anchor of drawn text.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Point is a vertex in user space.
type Point struct {
	X, Y float64
}

// Surface is an immediate-mode 2D drawing target. Coordinates are in user
// space; Scale and Translate modify the current transform, and Save/Restore
// bracket transform and style changes.
type Surface interface {
	// SetBackingSize sizes the underlying store in device pixels.
	SetBackingSize(w, h float64)
	Clear(c Color)

	Save()
	Restore()
	Scale(sx, sy float64)
	Translate(dx, dy float64)
	// Clip limits drawing to a rectangle in user space until Restore.
	Clip(x, y, w, h float64)

	SetFill(c Color)
	SetStroke(c Color, width float64)
	// SetShadow enables a drop shadow for fills; blur 0 disables it.
	SetShadow(c Color, blur, offsetY float64)
	SetFont(size float64, bold bool)

	FillRect(x, y, w, h float64)
	StrokeRect(x, y, w, h float64)
	FillRoundRect(x, y, w, h, r float64)
	FillPolygon(pts []Point)
	FillCircle(cx, cy, r float64)
	Line(x1, y1, x2, y2 float64)
	// FillText draws text with its vertical middle at y.
	FillText(text string, x, y float64, align Align)
	MeasureText(text string) float64
}

// transform is a scale followed by a translation, enough for DPR scaling,
// padding and scroll offsets.
type transform struct {
	sx, sy float64
	tx, ty float64
}

var identity = transform{sx: 1, sy: 1}

func (t transform) apply(x, y float64) (float64, float64) {
	return x*t.sx + t.tx, y*t.sy + t.ty
}

func (t transform) scaleLen(w, h float64) (float64, float64) {
	return w * t.sx, h * t.sy
}

type clipRect struct {
	x, y, w, h float64
	set        bool
}

// state is the save/restore unit shared by the concrete surfaces.
type state struct {
	tf        transform
	clip      clipRect
	fill      Color
	stroke    Color
	lineWidth float64
	shadow    Color
	blur      float64
	shadowDY  float64
	fontSize  float64
	bold      bool
}

func defaultState() state {
	return state{
		tf:        identity,
		fill:      RGBA(0, 0, 0, 1),
		stroke:    RGBA(0, 0, 0, 1),
		lineWidth: 1,
		fontSize:  12,
	}
}

type stateStack struct {
	cur   state
	saved []state
}

func newStateStack() stateStack {
	return stateStack{cur: defaultState()}
}

func (s *stateStack) Save() {
	s.saved = append(s.saved, s.cur)
}

func (s *stateStack) Restore() {
	if len(s.saved) == 0 {
		return
	}
	s.cur = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
}

func (s *stateStack) Scale(sx, sy float64) {
	s.cur.tf.sx *= sx
	s.cur.tf.sy *= sy
}

func (s *stateStack) Translate(dx, dy float64) {
	s.cur.tf.tx += dx * s.cur.tf.sx
	s.cur.tf.ty += dy * s.cur.tf.sy
}

func (s *stateStack) SetFill(c Color) { s.cur.fill = c }

func (s *stateStack) SetStroke(c Color, width float64) {
	s.cur.stroke = c
	s.cur.lineWidth = width
}

func (s *stateStack) SetShadow(c Color, blur, offsetY float64) {
	s.cur.shadow = c
	s.cur.blur = blur
	s.cur.shadowDY = offsetY
}

func (s *stateStack) SetFont(size float64, bold bool) {
	s.cur.fontSize = size
	s.cur.bold = bold
}

// Clip intersects the current clip with a user-space rectangle.
func (s *stateStack) Clip(x, y, w, h float64) {
	dx, dy := s.cur.tf.apply(x, y)
	dw, dh := s.cur.tf.scaleLen(w, h)
	next := clipRect{x: dx, y: dy, w: dw, h: dh, set: true}
	if s.cur.clip.set {
		next = intersect(s.cur.clip, next)
	}
	s.cur.clip = next
}

func intersect(a, b clipRect) clipRect {
	x0 := max(a.x, b.x)
	y0 := max(a.y, b.y)
	x1 := min(a.x+a.w, b.x+b.w)
	y1 := min(a.y+a.h, b.y+b.h)
	return clipRect{x: x0, y: y0, w: max(0, x1-x0), h: max(0, y1-y0), set: true}
}
