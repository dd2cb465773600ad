package simulate

import (
	"fmt"
	"math/cmplx"
	"strconv"

	"github.com/samcharles93/skyvis/internal/safetensors"
	"github.com/samcharles93/skyvis/internal/vis"
	"github.com/samcharles93/skyvis/internal/version"
)

// Tensor names used by WriteSafetensors.
const (
	TensorVis   = "vis"
	TensorFreqs = "freqs"
	TensorUVWs  = "uvws"
)

// Cell returns the visibility of baseline bl at channel fi.
func (r *Result) Cell(bl, fi int) vis.JonesF32 {
	return r.Vis[bl*len(r.Freqs)+fi]
}

// Record is the JSON form of a Result. Vis rows hold the re/im pairs of
// XX, XY, YX and YY for one (baseline, channel) cell, baseline-major.
type Record struct {
	ID         string       `json:"id,omitempty"`
	Scene      string       `json:"scene,omitempty"`
	Backend    string       `json:"backend"`
	Status     int          `json:"status"`
	ElapsedMS  float64      `json:"elapsed_ms"`
	Baselines  int          `json:"baselines"`
	Freqs      []float64    `json:"freqs"`
	Components Counts       `json:"components"`
	Peak       float64      `json:"peak_amplitude"`
	Vis        [][8]float32 `json:"vis,omitempty"`
}

// Record summarises r. withVis includes every cell.
func (r *Result) Record(withVis bool) Record {
	rec := Record{
		Scene:      r.Scene,
		Backend:    r.Backend,
		Status:     r.Status,
		ElapsedMS:  float64(r.Elapsed.Microseconds()) / 1000,
		Baselines:  len(r.UVWs),
		Freqs:      r.Freqs,
		Components: r.Components,
		Peak:       r.PeakAmplitude(),
	}
	if withVis {
		rec.Vis = make([][8]float32, len(r.Vis))
		for i, j := range r.Vis {
			rec.Vis[i] = j.Floats()
		}
	}
	return rec
}

// PeakAmplitude is the largest |XX| or |YY| over all cells.
func (r *Result) PeakAmplitude() float64 {
	var peak float64
	for _, j := range r.Vis {
		peak = max(peak, cmplx.Abs(complex128(j[0])), cmplx.Abs(complex128(j[3])))
	}
	return peak
}

// WriteSafetensors stores the visibilities as an F32 tensor of shape
// [baselines, freqs, 4, 2] next to the channel frequencies and baselines.
func (r *Result) WriteSafetensors(path string) error {
	nbl, nf := len(r.UVWs), len(r.Freqs)
	flat := make([]float32, 0, len(r.Vis)*8)
	for _, j := range r.Vis {
		f := j.Floats()
		flat = append(flat, f[:]...)
	}
	uvws := make([]float64, 0, nbl*3)
	for _, b := range r.UVWs {
		uvws = append(uvws, b.U, b.V, b.W)
	}

	tensors := []safetensors.Tensor{
		safetensors.F32(TensorVis, []int{nbl, nf, 4, 2}, flat),
		safetensors.F64(TensorFreqs, []int{nf}, r.Freqs),
		safetensors.F64(TensorUVWs, []int{nbl, 3}, uvws),
	}
	meta := map[string]string{
		"scene":     r.Scene,
		"backend":   r.Backend,
		"status":    strconv.Itoa(r.Status),
		"generator": "skyvis " + version.String(),
	}
	if err := safetensors.WriteFile(path, tensors, meta); err != nil {
		return fmt.Errorf("write visibilities: %w", err)
	}
	return nil
}
