package canvas

import (
	"strings"
	"testing"
	"time"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSVGSurface_Document(t *testing.T) {
	s := NewSVGSurface(0, 0)
	s.SetBackingSize(200, 100)
	s.Clear(Background)
	s.Scale(2, 2)
	s.Translate(5, 0)

	s.SetFill(Hex("#ff0000"))
	s.FillRect(0, 0, 10, 10)
	s.SetShadow(Shadow, 4, 1)
	s.FillRoundRect(0, 20, 10, 10, 2)
	s.SetShadow(Color{}, 0, 0)
	s.Clip(0, 0, 50, 50)
	s.SetFill(HeaderText)
	s.FillText(`Q&A <beta>`, 0, 0, AlignCenter)

	doc := s.String()
	assert.True(t, strings.HasPrefix(doc, `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100"`))
	assert.Contains(t, doc, `<rect x="10.00" y="0.00" width="20.00" height="20.00" fill="#ff0000"/>`)
	assert.Contains(t, doc, `rx="4.00"`)
	assert.Contains(t, doc, `filter="url(#shadow0)"`)
	assert.Contains(t, doc, `<feDropShadow`)
	assert.Contains(t, doc, `clip-path="url(#clip0)"`)
	assert.Contains(t, doc, `text-anchor="middle"`)
	assert.Contains(t, doc, `Q&amp;A &lt;beta&gt;`)
	assert.True(t, strings.HasSuffix(doc, "</svg>\n"))
}

func TestSVGSurface_SaveRestore(t *testing.T) {
	s := NewSVGSurface(100, 100)
	s.Save()
	s.Translate(10, 10)
	s.Restore()
	s.SetFill(White)
	s.FillCircle(5, 5, 2)
	assert.Contains(t, s.String(), `<circle cx="5.00" cy="5.00" r="2.00"`)

	// Unbalanced restore is ignored.
	s.Restore()
}

func TestSVGSurface_MeasureText(t *testing.T) {
	s := NewSVGSurface(100, 100)
	s.SetFont(10, false)
	assert.InDelta(t, 30, s.MeasureText("abcde"), 1e-9)
	assert.InDelta(t, 24, s.MeasureText("日本"), 1e-9)
}

func TestCellSurface_Primitives(t *testing.T) {
	s := NewCellSurface(10, 4, 8, 16)
	s.Clear(Background)

	s.SetFill(Hex("#1e88e5"))
	s.FillRect(8, 16, 24, 16)
	assert.Equal(t, Hex("#1e88e5").CSS(), s.At(1, 1).BG.CSS())
	assert.Equal(t, Hex("#1e88e5").CSS(), s.At(3, 1).BG.CSS())
	assert.Equal(t, Background.CSS(), s.At(4, 1).BG.CSS())

	s.SetFill(White)
	s.FillText("hi", 8, 24, AlignLeft)
	assert.Equal(t, 'h', s.At(1, 1).Rune)
	assert.Equal(t, 'i', s.At(2, 1).Rune)

	s.SetStroke(TodayLine, 2)
	s.Line(60, 0, 60, 63)
	for row := 0; row < 4; row++ {
		assert.Equal(t, '│', s.At(7, row).Rune)
	}

	lines := s.Lines()
	require.Len(t, lines, 4)
	assert.Equal(t, " hi    │", lines[1])
}

func TestCellSurface_SmallShapesUseGlyphs(t *testing.T) {
	s := NewCellSurface(10, 3, 8, 16)
	s.Clear(Background)

	s.SetFill(Hex("#43a047"))
	s.FillPolygon([]Point{{X: 16, Y: 12}, {X: 20, Y: 16}, {X: 16, Y: 20}, {X: 12, Y: 16}})
	assert.Equal(t, '◆', s.At(2, 1).Rune)

	s.SetFill(Overdue)
	s.FillPolygon([]Point{{X: 50, Y: 0}, {X: 54, Y: 0}, {X: 54, Y: 4}})
	assert.Equal(t, '◥', s.At(6, 0).Rune)

	s.SetFill(White)
	s.FillCircle(16, 16, 1)
	assert.Equal(t, '◆', s.At(2, 1).Rune, "dot must not erase the diamond glyph")
}

func TestCellSurface_WideRunesAndClip(t *testing.T) {
	s := NewCellSurface(6, 1, 8, 16)
	s.Clear(Background)
	s.Clip(0, 0, 32, 16)
	s.SetFill(White)
	s.FillText("日本語", 0, 8, AlignLeft)
	assert.Equal(t, []string{"日本"}, s.Lines())

	rendered := s.Render()
	require.Len(t, rendered, 1)
	assert.Contains(t, rendered[0], "\033[38;2;255;255;255m")
	assert.True(t, strings.HasSuffix(rendered[0], "\033[0m"))
}

func TestCellSurface_RendersScene(t *testing.T) {
	sc := testScene(1,
		bar("a", "Build pipeline", date(2024, 1, 1), date(2024, 2, 10), 0),
		milestone("Go-live", date(2024, 3, 1), 1),
	)
	sc.ViewHeight = 160
	s := NewCellSurface(0, 0, 8, 16)
	NewRenderer().Draw(s, sc)

	cols, rows := s.Dimensions()
	assert.Equal(t, 100, cols)
	assert.Equal(t, 10, rows)
	text := strings.Join(s.Lines(), "\n")
	assert.Contains(t, text, "Jan 2024")
	assert.Contains(t, text, "Build pipeline")
	assert.Contains(t, text, "Feb 15")
}

func TestDetailFor(t *testing.T) {
	tests := []struct {
		zoom    float64
		zooming bool
		want    DetailLevel
	}{
		{zoom: 1.5, want: DetailNormal},
		{zoom: 0.9, want: DetailNormal},
		{zoom: 0.89, want: DetailMedium},
		{zoom: 0.7, want: DetailMedium},
		{zoom: 0.69, want: DetailUltraLow},
		{zoom: 1, zooming: true, want: DetailMedium},
		{zoom: 0.8, zooming: true, want: DetailUltraLow},
		{zoom: 0.3, zooming: true, want: DetailUltraLow},
	}

	for _, tt := range tests {
		got := DetailFor(tt.zoom, tt.zooming)
		assert.Equal(t, tt.want, got, "zoom=%v zooming=%v", tt.zoom, tt.zooming)
	}
	assert.Equal(t, "ultra-low", DetailUltraLow.String())
	assert.False(t, DetailUltraLow.ShowGrid())
	assert.True(t, DetailMedium.ShowIndicators())
	assert.False(t, DetailMedium.ShowShadows())
}

func TestEaseOutCubic(t *testing.T) {
	assert.Zero(t, EaseOutCubic(-1))
	assert.Equal(t, 1.0, EaseOutCubic(2))
	assert.InDelta(t, 0.875, EaseOutCubic(0.5), 1e-9)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewAnimation(start, 0)
	assert.Equal(t, DefaultAnimationDuration, a.Duration)
	assert.Zero(t, a.Progress(start))
	assert.False(t, a.Done(start.Add(300*time.Millisecond)))
	assert.InDelta(t, 0.875, a.Progress(start.Add(300*time.Millisecond)), 1e-9)
	assert.True(t, a.Done(start.Add(600*time.Millisecond)))
	assert.Equal(t, 1.0, a.Progress(start.Add(time.Second)))
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#1e88e5", Hex("#1e88e5").CSS())
	assert.Equal(t, Hex(model.DefaultColor).CSS(), Hex("not-a-color").CSS())
	assert.Equal(t, "rgba(33,150,243,0.08)", HoverBand.CSS())

	blended := RGBA(0, 0, 0, 0.5).Over(White)
	r, g, b := blended.Clamped().RGB255()
	assert.InDelta(t, 128, int(r), 1)
	assert.InDelta(t, 128, int(g), 1)
	assert.InDelta(t, 128, int(b), 1)
	assert.Equal(t, 1.0, blended.A)

	l1, _, _ := Hex("#1e88e5").Lab()
	l2, _, _ := Hex("#1e88e5").Darken(0.2).Lab()
	assert.Less(t, l2, l1)
}
