package interaction

import (
	"math"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/presentation/canvas"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

// Tooltip layout constants in CSS pixels.
const (
	TooltipOffset     = 12
	TooltipMargin     = 8
	TooltipLineHeight = 18
	tooltipPadding    = 8
	tooltipColumnGap  = 16
)

// Measurer measures rendered text width.
type Measurer interface {
	MeasureText(text string) float64
}

// TooltipLines returns the ordered tooltip fields for an entry.
func TooltipLines(e model.Entry) []canvas.TooltipLine {
	lines := make([]canvas.TooltipLine, 0, 6)
	if e.IsMilestone() {
		lines = append(lines, canvas.TooltipLine{Label: "Date", Value: util.FormatDate(e.Instant())})
	} else {
		lines = append(lines,
			canvas.TooltipLine{Label: "Start", Value: util.FormatDate(e.StartDate)},
			canvas.TooltipLine{Label: "End", Value: util.FormatDate(e.EndDate)},
		)
	}

	status := e.Status
	if status == "" {
		status = "-"
	}
	statusColor := canvas.Hex(e.Color)
	lines = append(lines,
		canvas.TooltipLine{Label: "Status", Value: status, Color: &statusColor},
		canvas.TooltipLine{Label: "Duration", Value: util.FormatDays(e.Duration)},
	)

	resolved := "-"
	if e.ResolvedDate != nil {
		resolved = util.FormatDate(*e.ResolvedDate)
	}
	lines = append(lines, canvas.TooltipLine{Label: "Resolved", Value: resolved})

	late := canvas.TooltipLine{Label: "Late", Value: util.FormatLateTime(e.LateTime)}
	if e.LateTime != nil && *e.LateTime != 0 {
		c := canvas.OnTime
		if *e.LateTime < 0 {
			c = canvas.Overdue
		}
		late.Color = &c
	}
	return append(lines, late)
}

// BuildTooltip sizes a tooltip for e and places it near the pointer at
// (px, py) inside a viewW x viewH viewport.
func BuildTooltip(m Measurer, e model.Entry, px, py, viewW, viewH float64) *canvas.Tooltip {
	lines := TooltipLines(e)

	var labelW, valueW float64
	for _, l := range lines {
		labelW = math.Max(labelW, m.MeasureText(l.Label))
		valueW = math.Max(valueW, m.MeasureText(l.Value))
	}
	w := math.Max(m.MeasureText(e.Name), labelW+tooltipColumnGap+valueW) + 2*tooltipPadding
	w = math.Min(w, math.Max(0, viewW-2*TooltipMargin))
	h := float64(len(lines)+1)*TooltipLineHeight + tooltipPadding

	x, y := PlaceTooltip(px, py, w, h, viewW, viewH)
	return &canvas.Tooltip{
		X: x, Y: y, W: w, H: h,
		Title:      e.Name,
		Lines:      lines,
		LineHeight: TooltipLineHeight,
	}
}

// PlaceTooltip returns the top-left corner for a w x h box near the pointer.
// Each axis goes to whichever side of the pointer has more room, then the
// box is clamped into the viewport with TooltipMargin on every edge.
func PlaceTooltip(px, py, w, h, viewW, viewH float64) (float64, float64) {
	x := px + TooltipOffset
	if viewW-px < px {
		x = px - TooltipOffset - w
	}
	y := py + TooltipOffset
	if viewH-py < py {
		y = py - TooltipOffset - h
	}
	return clamp(x, TooltipMargin, viewW-w-TooltipMargin), clamp(y, TooltipMargin, viewH-h-TooltipMargin)
}

// clamp limits v to [lo, hi], preferring lo when the range is empty.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
