package canvas

import (
	"math"
	"time"

	"github.com/penwyp/go-pm-timeline/internal/core/coords"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

// Style holds the fixed visual constants of the renderer.
type Style struct {
	FontSize          float64
	SmallFontSize     float64
	BarRadius         float64
	LabelPadding      float64
	MinLabelWidth     float64
	MilestoneLabelMax float64
	IndicatorMin      float64
	IndicatorMax      float64
	IndicatorRatio    float64
	TodayLineWidth    float64
	CullMargin        float64
}

// DefaultStyle returns the standard look.
func DefaultStyle() Style {
	return Style{
		FontSize:          12,
		SmallFontSize:     10,
		BarRadius:         4,
		LabelPadding:      6,
		MinLabelWidth:     30,
		MilestoneLabelMax: 120,
		IndicatorMin:      6,
		IndicatorMax:      12,
		IndicatorRatio:    0.15,
		TodayLineWidth:    2,
		CullMargin:        120,
	}
}

// TooltipLine is one row of a tooltip overlay.
type TooltipLine struct {
	Label string
	Value string
	Color *Color
}

// Tooltip is an overlay box in viewport coordinates.
type Tooltip struct {
	X, Y, W, H float64
	Title      string
	Lines      []TooltipLine
	LineHeight float64
}

// Scene is everything needed to draw one frame. Sizes are CSS pixels.
type Scene struct {
	Space        coords.Space
	Items        []coords.Item
	Rows         coords.Rows
	RowCount     int
	HeaderHeight float64

	ViewWidth  float64
	ViewHeight float64
	ScrollX    float64
	ScrollY    float64
	DPR        float64

	Zoom    float64
	Zooming bool
	// Progress is the eased entrance progress; bars are drawn at this
	// fraction of their width.
	Progress float64

	HoverID  string
	HoverRow int

	Today     time.Time
	ShowToday bool
	ShowGrid  bool
	Loading   bool

	Tooltip *Tooltip
}

// Renderer draws scenes onto surfaces.
type Renderer struct {
	Style Style
}

// NewRenderer creates a renderer with the default style.
func NewRenderer() *Renderer {
	return &Renderer{Style: DefaultStyle()}
}

// Draw paints sc onto s. The backing store is sized to the viewport times
// the device pixel ratio and the context is scaled to match.
func (r *Renderer) Draw(s Surface, sc Scene) {
	dpr := sc.DPR
	if dpr <= 0 {
		dpr = 1
	}
	s.SetBackingSize(sc.ViewWidth*dpr, sc.ViewHeight*dpr)
	s.Save()
	defer s.Restore()
	s.Scale(dpr, dpr)
	s.Clear(Background)

	if sc.Loading {
		r.drawSkeleton(s, sc)
		return
	}
	if len(sc.Items) == 0 {
		r.drawEmpty(s, sc)
		return
	}

	detail := DetailFor(sc.Zoom, sc.Zooming)

	if sc.HeaderHeight > 0 {
		r.drawHeader(s, sc)
	}

	s.Save()
	s.Clip(0, sc.HeaderHeight, sc.ViewWidth, math.Max(0, sc.ViewHeight-sc.HeaderHeight))
	s.Translate(sc.Space.Padding-sc.ScrollX, sc.HeaderHeight-sc.ScrollY)

	if sc.ShowGrid && detail.ShowGrid() {
		r.drawGrid(s, sc)
	}
	if sc.HoverID != "" && sc.HoverRow >= 0 {
		r.drawHoverBand(s, sc)
	}
	r.drawItems(s, sc, detail)
	if sc.ShowToday {
		r.drawToday(s, sc)
	}
	s.Restore()

	if sc.Tooltip != nil {
		r.drawTooltip(s, *sc.Tooltip)
	}
}

func (r *Renderer) bodyHeight(sc Scene) float64 {
	return math.Max(sc.Rows.ContentHeight(sc.RowCount), sc.ScrollY+sc.ViewHeight-sc.HeaderHeight)
}

func (r *Renderer) drawHeader(s Surface, sc Scene) {
	s.Save()
	defer s.Restore()

	s.SetFill(HeaderFill)
	s.FillRect(0, 0, sc.ViewWidth, sc.HeaderHeight)
	s.SetStroke(GridLine, 1)
	s.Line(0, sc.HeaderHeight, sc.ViewWidth, sc.HeaderHeight)

	s.Clip(0, 0, sc.ViewWidth, sc.HeaderHeight)
	s.Translate(sc.Space.Padding-sc.ScrollX, 0)
	s.SetFont(r.Style.FontSize, true)
	s.SetFill(HeaderText)

	offsets := sc.Space.PeriodOffsets()
	for i, p := range sc.Space.Periods {
		x := offsets[i]
		s.Line(x, sc.HeaderHeight*0.6, x, sc.HeaderHeight)
		room := p.Width - 2*r.Style.LabelPadding
		if p.Marker {
			room = sc.Space.Padding - r.Style.LabelPadding
		}
		if s.MeasureText(p.Label) <= room {
			s.FillText(p.Label, x+r.Style.LabelPadding, sc.HeaderHeight/2, AlignLeft)
		}
	}
}

func (r *Renderer) drawGrid(s Surface, sc Scene) {
	step := 1
	if sc.Zooming {
		step = 2
	}
	height := r.bodyHeight(sc)
	s.SetStroke(GridLine, 1)
	for i, x := range sc.Space.PeriodOffsets() {
		if i%step != 0 {
			continue
		}
		s.Line(x, 0, x, height)
	}
}

func (r *Renderer) drawHoverBand(s Surface, sc Scene) {
	s.SetFill(HoverBand)
	y := float64(sc.HoverRow) * sc.Rows.RowHeight
	s.FillRect(-sc.Space.Padding, y, sc.Space.TotalWidth, sc.Rows.RowHeight)
}

func (r *Renderer) visible(it coords.Item, sc Scene) bool {
	b := it.Bounds()
	left := sc.ScrollX - sc.Space.Padding - r.Style.CullMargin
	right := sc.ScrollX + sc.ViewWidth + r.Style.CullMargin
	top := sc.ScrollY - r.Style.CullMargin
	bottom := sc.ScrollY + math.Max(0, sc.ViewHeight-sc.HeaderHeight) + r.Style.CullMargin
	return b.Right() >= left && b.X <= right && b.Bottom() >= top && b.Y <= bottom
}

func (r *Renderer) drawItems(s Surface, sc Scene, detail DetailLevel) {
	progress := sc.Progress
	if sc.Zooming || progress > 1 {
		progress = 1
	}
	drawn := 0
	for _, it := range sc.Items {
		if !r.visible(it, sc) {
			continue
		}
		if it.IsMilestone() {
			r.drawMilestone(s, it, sc, detail)
		} else {
			r.drawBar(s, it, detail, progress)
		}
		drawn++
	}
	util.LogDebugf("drew %d of %d items at %s detail", drawn, len(sc.Items), detail)
}

func (r *Renderer) drawBar(s Surface, it coords.Item, detail DetailLevel, progress float64) {
	x, y, h := it.Left, it.Top, it.Height
	w := it.Width * progress
	if w <= 0 {
		return
	}
	base := Hex(it.Entry.Color)

	s.Save()
	defer s.Restore()

	if detail.ShowShadows() {
		s.SetShadow(Shadow, 4, 1)
	}
	s.SetFill(base)
	if detail.Rounded() {
		s.FillRoundRect(x, y, w, h, r.Style.BarRadius)
	} else {
		s.FillRect(x, y, w, h)
		s.SetStroke(base.Darken(0.25), 1)
		s.StrokeRect(x, y, w, h)
	}
	s.SetShadow(Color{}, 0, 0)

	if !detail.ShowText() {
		return
	}

	if p := it.Entry.Progress; p > 0 && p < 1 {
		s.SetFill(base.Darken(0.2).WithAlpha(0.55))
		s.FillRoundRect(x, y+h-4, w*p, 4, 2)
	}

	reserve := 0.0
	if detail.ShowIndicators() {
		if size, c, ok := r.indicator(it, w); ok {
			s.SetFill(c)
			s.FillPolygon(roundedCorner(x+w, y, size))
			reserve = size + 2
		}
	}

	avail := w - 2*r.Style.LabelPadding - reserve
	if avail <= r.Style.MinLabelWidth {
		return
	}
	s.SetFont(r.Style.FontSize, false)
	if label := FitText(s, it.Entry.Name, avail); label != "" {
		s.SetFill(LabelText)
		s.FillText(label, x+r.Style.LabelPadding, y+h/2, AlignLeft)
	}
}

// indicator returns the corner marker size and color for an item, if any.
func (r *Renderer) indicator(it coords.Item, width float64) (float64, Color, bool) {
	late := it.Entry.LateTime
	if late == nil || *late == 0 {
		return 0, Color{}, false
	}
	size := math.Min(math.Max(width*r.Style.IndicatorRatio, r.Style.IndicatorMin), r.Style.IndicatorMax)
	if *late < 0 {
		return size, Overdue, true
	}
	return size, OnTime, true
}

// roundedCorner is a right triangle tucked into the top-right corner at
// (right, top), with its hypotenuse corners softened.
func roundedCorner(right, top, size float64) []Point {
	soft := size * 0.15
	return []Point{
		{X: right - size + soft, Y: top},
		{X: right - soft, Y: top},
		{X: right, Y: top + soft},
		{X: right, Y: top + size - soft},
	}
}

func (r *Renderer) drawMilestone(s Surface, it coords.Item, sc Scene, detail DetailLevel) {
	cx, cy := it.Center()
	half := it.Size / 2
	base := Hex(it.Entry.Color)

	s.Save()
	defer s.Restore()

	if detail.ShowShadows() {
		s.SetShadow(Shadow, 3, 1)
	}
	s.SetFill(base)
	s.FillPolygon([]Point{
		{X: cx, Y: cy - half},
		{X: cx + half, Y: cy},
		{X: cx, Y: cy + half},
		{X: cx - half, Y: cy},
	})
	s.SetShadow(Color{}, 0, 0)
	s.SetFill(White)
	s.FillCircle(cx, cy, half*0.3)

	if !detail.ShowText() {
		return
	}
	rowBottom := float64(it.Entry.Row+1) * sc.Rows.RowHeight
	s.SetFont(r.Style.SmallFontSize, false)
	if label := FitText(s, it.Entry.Name, r.Style.MilestoneLabelMax); label != "" {
		s.SetFill(MutedText)
		s.FillText(label, cx, (cy+half+rowBottom)/2, AlignCenter)
	}
}

func (r *Renderer) drawToday(s Surface, sc Scene) {
	x, ok := sc.Space.TodayX(sc.Today)
	if !ok {
		return
	}
	s.SetStroke(TodayLine, r.Style.TodayLineWidth)
	s.Line(x, 0, x, r.bodyHeight(sc))

	label := sc.Today.Format(util.ShortDateLayout)
	s.SetFont(r.Style.SmallFontSize, true)
	w := s.MeasureText(label) + 12
	h := r.Style.SmallFontSize + 6
	s.SetFill(TodayLine)
	top := sc.ScrollY + 2
	s.FillRoundRect(x-w/2, top, w, h, h/2)
	s.SetFill(White)
	s.FillText(label, x, top+h/2, AlignCenter)
}

func (r *Renderer) drawSkeleton(s Surface, sc Scene) {
	if sc.HeaderHeight > 0 {
		s.SetFill(HeaderFill)
		s.FillRect(0, 0, sc.ViewWidth, sc.HeaderHeight)
	}
	rowHeight := sc.Rows.RowHeight
	if rowHeight <= 0 {
		rowHeight = 40
	}
	widths := []float64{0.45, 0.3, 0.6, 0.25, 0.5, 0.35}
	offsets := []float64{0.05, 0.2, 0.1, 0.4, 0.15, 0.3}
	s.SetFill(SkeletonBar)
	for i := range widths {
		y := sc.HeaderHeight + float64(i)*rowHeight + sc.Rows.ItemPadding
		if y+sc.Rows.ItemHeight > sc.ViewHeight {
			break
		}
		s.FillRoundRect(sc.ViewWidth*offsets[i], y, sc.ViewWidth*widths[i], sc.Rows.ItemHeight, r.Style.BarRadius)
	}
}

func (r *Renderer) drawEmpty(s Surface, sc Scene) {
	s.SetFont(r.Style.FontSize+2, false)
	s.SetFill(MutedText)
	s.FillText(EmptyMessage, sc.ViewWidth/2, sc.ViewHeight/2, AlignCenter)
}

// EmptyMessage is shown when there is nothing to draw.
const EmptyMessage = "No timeline items"

func (r *Renderer) drawTooltip(s Surface, tt Tooltip) {
	s.Save()
	defer s.Restore()

	s.SetShadow(Shadow, 6, 2)
	s.SetFill(White)
	s.FillRoundRect(tt.X, tt.Y, tt.W, tt.H, 6)
	s.SetShadow(Color{}, 0, 0)

	lh := tt.LineHeight
	if lh <= 0 {
		lh = r.Style.FontSize + 6
	}
	x := tt.X + 8
	y := tt.Y + 4 + lh/2

	s.SetFont(r.Style.FontSize, true)
	s.SetFill(HeaderText)
	s.FillText(FitText(s, tt.Title, tt.W-16), x, y, AlignLeft)

	for _, line := range tt.Lines {
		y += lh
		s.SetFont(r.Style.FontSize, false)
		s.SetFill(MutedText)
		s.FillText(line.Label, x, y, AlignLeft)
		if line.Color != nil {
			s.SetFill(*line.Color)
		} else {
			s.SetFill(HeaderText)
		}
		s.FillText(line.Value, tt.X+tt.W-8, y, AlignRight)
	}
}

// FitText shortens text with an ellipsis until it measures at most width on
// s. It returns "" when not even one character and the ellipsis fit.
func FitText(s Surface, text string, width float64) string {
	if width <= 0 {
		return ""
	}
	if s.MeasureText(text) <= width {
		return text
	}
	runes := []rune(text)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.MeasureText(string(runes[:mid])+util.Ellipsis) <= width {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	if lo == 0 {
		return ""
	}
	return string(runes[:lo]) + util.Ellipsis
}
