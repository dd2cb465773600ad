// Package fluxdensity estimates component flux densities across frequency
// and converts them to the instrumental Jones form consumed by the
// visibility kernels.
package fluxdensity

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/samcharles93/skyvis/internal/vis"
)

const (
	// DefaultSpectralIndex is assumed for a list with a single entry.
	DefaultSpectralIndex = -0.8
	// SpectralIndexCap is the steepest index derived from a pair of list
	// entries.
	SpectralIndexCap = -2.0

	// exactFreqTolerance [Hz] below which a list entry is returned as is.
	exactFreqTolerance = 1e-3
	// listFitMaxDiff is the largest relative error ListToPowerLaw accepts
	// at any list entry.
	listFitMaxDiff = 0.01
)

var (
	ErrNoFluxDensities = errors.New("flux density list is empty")
	ErrUnsorted        = errors.New("flux densities are not sorted by frequency")
	ErrUnknownKind     = errors.New("unknown flux density type")
)

// FluxDensity is a Stokes measurement at Freq [Hz]. Stokes values are in Jy.
type FluxDensity struct {
	Freq float64 `json:"freq" yaml:"freq"`
	I    float64 `json:"i" yaml:"i"`
	Q    float64 `json:"q,omitempty" yaml:"q,omitempty"`
	U    float64 `json:"u,omitempty" yaml:"u,omitempty"`
	V    float64 `json:"v,omitempty" yaml:"v,omitempty"`
}

// Jones converts Stokes to linear instrumental polarisations:
// [I+Q, U+iV, U-iV, I-Q].
func (fd FluxDensity) Jones() vis.JonesF64 {
	return vis.JonesF64{
		complex(fd.I+fd.Q, 0),
		complex(fd.U, fd.V),
		complex(fd.U, -fd.V),
		complex(fd.I-fd.Q, 0),
	}
}

// Scale multiplies every Stokes parameter by k, keeping the frequency.
func (fd FluxDensity) Scale(k float64) FluxDensity {
	return FluxDensity{Freq: fd.Freq, I: fd.I * k, Q: fd.Q * k, U: fd.U * k, V: fd.V * k}
}

// SpectralIndex returns the power-law index through a and b, based on
// Stokes I.
func SpectralIndex(a, b FluxDensity) float64 {
	return math.Log(b.I/a.I) / math.Log(b.Freq/a.Freq)
}

// Ratio is the power-law scaling from refFreq to freq.
func Ratio(freq, refFreq, si float64) float64 {
	return math.Pow(freq/refFreq, si)
}

type Kind string

const (
	PowerLaw       Kind = "power_law"
	CurvedPowerLaw Kind = "curved_power_law"
	List           Kind = "list"
)

// Type describes how a component's flux density varies with frequency.
// PowerLaw uses SI and FD; CurvedPowerLaw additionally uses Q; List uses
// FDs, which must be sorted by frequency.
type Type struct {
	Kind Kind          `json:"type" yaml:"type"`
	SI   float64       `json:"si,omitempty" yaml:"si,omitempty"`
	Q    float64       `json:"q,omitempty" yaml:"q,omitempty"`
	FD   *FluxDensity  `json:"fd,omitempty" yaml:"fd,omitempty"`
	FDs  []FluxDensity `json:"fds,omitempty" yaml:"fds,omitempty"`
}

func (t Type) Validate() error {
	switch t.Kind {
	case PowerLaw, CurvedPowerLaw:
		if t.FD == nil {
			return fmt.Errorf("%s: missing reference flux density", t.Kind)
		}
		if !(t.FD.Freq > 0) {
			return fmt.Errorf("%s: reference frequency must be positive, got %g", t.Kind, t.FD.Freq)
		}
		if !finite(t.SI, t.Q) || !t.FD.finite() {
			return fmt.Errorf("%s: non-finite parameter", t.Kind)
		}
	case List:
		if len(t.FDs) == 0 {
			return ErrNoFluxDensities
		}
		for i, fd := range t.FDs {
			if !(fd.Freq > 0) || !fd.finite() {
				return fmt.Errorf("list entry %d: invalid flux density %+v", i, fd)
			}
			if i > 0 && fd.Freq < t.FDs[i-1].Freq {
				return fmt.Errorf("list entry %d: %w", i, ErrUnsorted)
			}
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownKind, t.Kind)
	}
	return nil
}

// Estimate returns the flux density at freq [Hz]. t must be valid.
func (t Type) Estimate(freq float64) FluxDensity {
	switch t.Kind {
	case PowerLaw:
		fd := t.FD.Scale(Ratio(freq, t.FD.Freq, t.SI))
		fd.Freq = freq
		return fd
	case CurvedPowerLaw:
		logRatio := math.Log(freq / t.FD.Freq)
		fd := t.FD.Scale(Ratio(freq, t.FD.Freq, t.SI) * math.Exp(t.Q*logRatio*logRatio))
		fd.Freq = freq
		return fd
	default:
		return t.estimateList(freq)
	}
}

// estimateList interpolates in log space between the entries bracketing
// freq, and extrapolates from the nearest end outside the list.
func (t Type) estimateList(freq float64) FluxDensity {
	fds := t.FDs
	if len(fds) == 1 {
		if math.Abs(fds[0].Freq-freq) < exactFreqTolerance {
			return fds[0]
		}
		fd := fds[0].Scale(Ratio(freq, fds[0].Freq, DefaultSpectralIndex))
		fd.Freq = freq
		return fd
	}

	lower, upper := len(fds)-2, len(fds)-1
	for i, fd := range fds {
		if math.Abs(fd.Freq-freq) < exactFreqTolerance {
			return fd
		}
		if fd.Freq > freq {
			lower, upper = max(i-1, 0), max(i, 1)
			break
		}
	}

	si := SpectralIndex(fds[lower], fds[upper])
	switch {
	case math.IsNaN(si) || math.IsInf(si, 0):
		si = DefaultSpectralIndex
	case si < SpectralIndexCap:
		si = SpectralIndexCap
	}

	ref := fds[lower]
	if fds[upper].Freq < freq {
		ref = fds[upper]
	}
	fd := ref.Scale(Ratio(freq, ref.Freq, si))
	fd.Freq = freq
	return fd
}

// ListToPowerLaw replaces a list with an equivalent power law when one fits
// every entry to within 1%. Single entries get DefaultSpectralIndex and pairs
// the index through both. Larger lists are fitted by least squares in
// log-log space and referenced to the middle entry. Anything that cannot be
// converted is returned unchanged.
func ListToPowerLaw(t Type) Type {
	if t.Kind != List || len(t.FDs) == 0 {
		return t
	}
	fds := t.FDs
	switch len(fds) {
	case 1:
		fd := fds[0]
		return Type{Kind: PowerLaw, SI: DefaultSpectralIndex, FD: &fd}
	case 2:
		fd := fds[0]
		return Type{Kind: PowerLaw, SI: SpectralIndex(fds[0], fds[1]), FD: &fd}
	}

	x := make([]float64, len(fds))
	y := make([]float64, len(fds))
	for i, fd := range fds {
		if !(fd.I > 0) {
			return t
		}
		x[i] = math.Log(fd.Freq)
		y[i] = math.Log(fd.I)
	}
	intercept, slope := stat.LinearRegression(x, y, nil, false)

	mid := fds[len(fds)/2]
	i := math.Exp(intercept) * math.Pow(mid.Freq, slope)
	ref := mid.Scale(i / mid.I)
	ref.I = i
	fitted := Type{Kind: PowerLaw, SI: slope, FD: &ref}

	for _, old := range fds {
		est := fitted.Estimate(old.Freq)
		if relDiff(est.I, old.I) > listFitMaxDiff ||
			relDiff(est.Q, old.Q) > listFitMaxDiff ||
			relDiff(est.U, old.U) > listFitMaxDiff ||
			relDiff(est.V, old.V) > listFitMaxDiff {
			return t
		}
	}
	return fitted
}

// Jones estimates every type at every frequency and returns the
// frequency-major Jones array: entry f*len(types) + c belongs to
// component c at freqs[f].
func Jones(types []Type, freqs []float64) ([]vis.JonesF64, error) {
	for c, t := range types {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("component %d: %w", c, err)
		}
	}
	out := make([]vis.JonesF64, len(freqs)*len(types))
	for f, freq := range freqs {
		row := out[f*len(types) : (f+1)*len(types)]
		for c, t := range types {
			row[c] = t.Estimate(freq).Jones()
		}
	}
	return out, nil
}

func relDiff(est, old float64) float64 {
	if est == 0 {
		if old == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs((est - old) / est)
}

func (fd FluxDensity) finite() bool {
	return finite(fd.Freq, fd.I, fd.Q, fd.U, fd.V)
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
