package canvas

// DetailLevel is the rendering fidelity tier chosen from the zoom level.
type DetailLevel int

const (
	DetailNormal DetailLevel = iota
	DetailMedium
	DetailUltraLow
)

// Zoom thresholds for the detail tiers.
const (
	NormalDetailZoom = 0.9
	MediumDetailZoom = 0.7
)

func (d DetailLevel) String() string {
	switch d {
	case DetailNormal:
		return "normal"
	case DetailMedium:
		return "medium"
	default:
		return "ultra-low"
	}
}

// DetailFor picks the tier for a zoom level. While a zoom gesture is in
// flight the tier drops one step.
func DetailFor(zoom float64, zooming bool) DetailLevel {
	level := DetailUltraLow
	switch {
	case zoom >= NormalDetailZoom:
		level = DetailNormal
	case zoom >= MediumDetailZoom:
		level = DetailMedium
	}
	if zooming && level < DetailUltraLow {
		level++
	}
	return level
}

// ShowText reports whether labels are drawn.
func (d DetailLevel) ShowText() bool { return d != DetailUltraLow }

// ShowShadows reports whether bars cast shadows.
func (d DetailLevel) ShowShadows() bool { return d == DetailNormal }

// Rounded reports whether bars have rounded corners.
func (d DetailLevel) Rounded() bool { return d != DetailUltraLow }

// ShowIndicators reports whether late/on-time markers are drawn.
func (d DetailLevel) ShowIndicators() bool { return d != DetailUltraLow }

// ShowGrid reports whether period grid lines are drawn.
func (d DetailLevel) ShowGrid() bool { return d != DetailUltraLow }
