package model

import (
	"math"

	"github.com/samcharles93/skyvis/internal/vis"
)

// Phase returns the unit phase factor of direction lmn on baseline uvw
// [metres] at freq [Hz]:
//
//	exp(-2πi (u·l + v·m + w·(n-1)) · freq/c)
func Phase(uvw vis.UVW, lmn vis.LMN, freq float64) complex128 {
	return phase(uvw.Scale(freq), lmn)
}

// phase takes a baseline already in wavelengths.
func phase(uvw vis.UVW, lmn vis.LMN) complex128 {
	arg := -2 * math.Pi * (uvw.U*lmn.L + uvw.V*lmn.M + uvw.W*(lmn.N-1))
	s, c := math.Sincos(arg)
	return complex(c, s)
}
