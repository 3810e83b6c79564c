// Package limits reads and writes the flat files exchanged between the fit
// toolkit and the plotter: harvest-list JSON and the humanized limit-result
// tables keyed by signal mass point.
package limits

import (
	"fmt"
	"math"
)

// KeyResolution is the quantum used when joining mass points across files.
// Coordinates closer than this are treated as the same point.
const KeyResolution = 1e-3

// MassPoint identifies one simulated signal hypothesis by its two masses
// (GeV). MX is the parent (e.g. stop) mass, MY the LSP mass.
type MassPoint struct {
	MX float64
	MY float64
}

// PointKey is a quantized MassPoint safe to use as a map key.
type PointKey struct {
	X int64
	Y int64
}

// Key quantizes the point to KeyResolution.
func (p MassPoint) Key() PointKey {
	return PointKey{X: quantize(p.MX), Y: quantize(p.MY)}
}

func (p MassPoint) String() string {
	return fmt.Sprintf("(%.1f,%.1f)", p.MX, p.MY)
}

func quantize(v float64) int64 {
	return int64(math.Round(v / KeyResolution))
}
