package fuel

import "math"

// Direction of a price movement.
type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

// Magnitude of a price movement relative to the alert threshold.
type Magnitude int

const (
	Normal Magnitude = iota
	Fast
)

// Trend classifies one price delta. The five possible values are the
// combinations below; a flat trend is never fast.
type Trend struct {
	Direction Direction
	Magnitude Magnitude
}

var (
	NoChange  = Trend{Direction: Flat, Magnitude: Normal}
	Raised    = Trend{Direction: Up, Magnitude: Normal}
	FastRaise = Trend{Direction: Up, Magnitude: Fast}
	Dropped   = Trend{Direction: Down, Magnitude: Normal}
	FastDrop  = Trend{Direction: Down, Magnitude: Fast}
)

// Deltas smaller than this count as no movement at all.
const deltaEpsilon = 0.01

// ClassifyTrend maps a price delta to a trend. A delta strictly above
// alertThreshold in magnitude is a fast movement.
func ClassifyTrend(delta, alertThreshold float64) Trend {
	abs := math.Abs(delta)
	if abs < deltaEpsilon {
		return NoChange
	}
	magnitude := Normal
	if abs > alertThreshold {
		magnitude = Fast
	}
	if delta > 0 {
		return Trend{Direction: Up, Magnitude: magnitude}
	}
	return Trend{Direction: Down, Magnitude: magnitude}
}

// Rising reports whether the trend points upwards. Flat counts as not rising.
func (t Trend) Rising() bool {
	return t.Direction == Up
}

// IsFast reports whether the movement crossed the alert threshold.
func (t Trend) IsFast() bool {
	return t.Magnitude == Fast
}

func (t Trend) String() string {
	switch t {
	case FastRaise:
		return "fast raise"
	case Raised:
		return "raised"
	case Dropped:
		return "dropped"
	case FastDrop:
		return "fast drop"
	default:
		return "no change"
	}
}

// Arrow renders the trend as a compact glyph for digest bodies.
func (t Trend) Arrow() string {
	switch t {
	case FastRaise:
		return "⇈"
	case Raised:
		return "↑"
	case Dropped:
		return "↓"
	case FastDrop:
		return "⇊"
	default:
		return "→"
	}
}
