// Package vis holds the numeric types shared by the sky modeller: baseline
// and direction coordinates, source shape parameters and polarised Jones
// values.
package vis

// SpeedOfLight is the speed of light in vacuum [m/s].
const SpeedOfLight = 299792458.0

// UVW is a baseline vector [metres].
type UVW struct {
	U float64 `json:"u" yaml:"u"`
	V float64 `json:"v" yaml:"v"`
	W float64 `json:"w" yaml:"w"`
}

// Scale returns the baseline in wavelengths at freq [Hz].
func (b UVW) Scale(freq float64) UVW {
	k := freq / SpeedOfLight
	return UVW{U: b.U * k, V: b.V * k, W: b.W * k}
}

// LMN holds the direction cosines of a component relative to the phase
// centre.
type LMN struct {
	L float64 `json:"l" yaml:"l"`
	M float64 `json:"m" yaml:"m"`
	N float64 `json:"n" yaml:"n"`
}

// PhaseCentre is the direction at which the phase is zero.
var PhaseCentre = LMN{L: 0, M: 0, N: 1}

// ShapeletUV is the (u, v) of a baseline computed as if a shapelet component
// sat at the phase centre [metres]. There is no w term.
type ShapeletUV struct {
	U float64 `json:"u" yaml:"u"`
	V float64 `json:"v" yaml:"v"`
}

// GaussianParams describe an elliptical envelope. Maj and Min are full
// widths at half maximum and PA the position angle, all in radians. Shapelet
// components reuse them to define their coordinate frame.
type GaussianParams struct {
	Maj float64 `json:"maj" yaml:"maj"`
	Min float64 `json:"min" yaml:"min"`
	PA  float64 `json:"pa" yaml:"pa"`
}

// ShapeletCoeff weights the product of basis functions N1 and N2.
type ShapeletCoeff struct {
	N1    int     `json:"n1" yaml:"n1"`
	N2    int     `json:"n2" yaml:"n2"`
	Value float64 `json:"value" yaml:"value"`
}
