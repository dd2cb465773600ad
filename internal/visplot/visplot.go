// Package visplot draws simulated visibility amplitudes against baseline
// length.
package visplot

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"math/cmplx"
	"os"

	"gonum.org/v1/plot"
	_ "gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/samcharles93/skyvis/internal/simulate"
	"github.com/samcharles93/skyvis/internal/vis"
)

const dpi = 96

// Points returns (uv distance [wavelengths], |XX|) and (uv distance, |YY|)
// for every baseline at channel fi.
func Points(res *simulate.Result, fi int) (xx, yy plotter.XYs, err error) {
	if fi < 0 || fi >= len(res.Freqs) {
		return nil, nil, fmt.Errorf("channel %d out of range [0, %d)", fi, len(res.Freqs))
	}
	freq := res.Freqs[fi]
	xx = make(plotter.XYs, len(res.UVWs))
	yy = make(plotter.XYs, len(res.UVWs))
	for bl, uvw := range res.UVWs {
		dist := UVDistance(uvw, freq)
		j := res.Cell(bl, fi)
		xx[bl] = plotter.XY{X: dist, Y: cmplx.Abs(complex128(j[0]))}
		yy[bl] = plotter.XY{X: dist, Y: cmplx.Abs(complex128(j[3]))}
	}
	return xx, yy, nil
}

// Amplitude builds the plot for channel fi.
func Amplitude(res *simulate.Result, fi int) (*plot.Plot, error) {
	xx, yy, err := Points(res, fi)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	title := fmt.Sprintf("%.3f MHz", res.Freqs[fi]/1e6)
	if res.Scene != "" {
		title = res.Scene + ", " + title
	}
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.X.Label.Text = "uv distance (wavelengths)"
	p.Y.Label.Text = "amplitude (Jy)"
	p.X.Tick.Label.Font.Size = vg.Points(10)
	p.Y.Tick.Label.Font.Size = vg.Points(10)
	p.Add(plotter.NewGrid())

	for _, series := range []struct {
		name  string
		pts   plotter.XYs
		color color.Color
		shape draw.GlyphDrawer
	}{
		{"XX", xx, color.RGBA{R: 31, G: 119, B: 180, A: 255}, draw.CircleGlyph{}},
		{"YY", yy, color.RGBA{R: 214, G: 39, B: 40, A: 255}, draw.CrossGlyph{}},
	} {
		s, err := plotter.NewScatter(series.pts)
		if err != nil {
			return nil, fmt.Errorf("%s scatter: %w", series.name, err)
		}
		s.GlyphStyle.Color = series.color
		s.GlyphStyle.Shape = series.shape
		s.GlyphStyle.Radius = vg.Points(2)
		p.Add(s)
		p.Legend.Add(series.name, s)
	}
	p.Legend.Top = true
	return p, nil
}

// WritePNG renders the channel fi plot at wPx x hPx pixels.
func WritePNG(w io.Writer, res *simulate.Result, fi int, wPx, hPx float64) error {
	p, err := Amplitude(res, fi)
	if err != nil {
		return err
	}
	width := vg.Length(wPx) * vg.Inch / dpi
	height := vg.Length(hPx) * vg.Inch / dpi

	c := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes the plot for channel fi to path.
func SavePNG(path string, res *simulate.Result, fi int, wPx, hPx float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WritePNG(f, res, fi, wPx, hPx)
}

// UVDistance is the projected baseline length in wavelengths at freq [Hz].
func UVDistance(uvw vis.UVW, freq float64) float64 {
	s := uvw.Scale(freq)
	return math.Hypot(s.U, s.V)
}
