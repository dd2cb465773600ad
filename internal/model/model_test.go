package model

import (
	"math"
	"math/cmplx"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/samcharles93/skyvis/internal/backend"
	"github.com/samcharles93/skyvis/internal/shapelet"
	"github.com/samcharles93/skyvis/internal/vis"
)

var testFreqs = []float64{150e6, 170e6, 190e6}

var testUVWs = []vis.UVW{
	{U: 0, V: 0, W: 0},
	{U: 12.5, V: -4, W: 0.3},
	{U: -80, V: 35.5, W: -2},
	{U: 310, V: 120, W: 7.25},
}

func testContext(exec backend.Executor, basis *shapelet.Table) *Context {
	return &Context{
		UVWs:  testUVWs,
		Freqs: testFreqs,
		Vis:   make([]vis.JonesF32, len(testUVWs)*len(testFreqs)),
		Basis: basis,
		Exec:  exec,
	}
}

func testBasis(t *testing.T) *shapelet.Table {
	t.Helper()
	table, err := shapelet.Generate(shapelet.Spec{Orders: 6, Samples: 2001, Centre: 1000, Step: 0.01})
	if err != nil {
		t.Fatalf("generate basis: %v", err)
	}
	return table
}

// fluxes returns a frequency-major flux array with distinct values per
// (frequency, component).
func fluxes(numFreqs, numComps int, base float64) []vis.JonesF64 {
	out := make([]vis.JonesF64, numFreqs*numComps)
	for f := range numFreqs {
		for c := range numComps {
			s := base + float64(c) + 0.25*float64(f)
			out[f*numComps+c] = vis.JonesF64{
				complex(s, 0),
				complex(0.1*s, 0.05*s),
				complex(0.1*s, -0.05*s),
				complex(0.9*s, 0),
			}
		}
	}
	return out
}

func testDirections() []vis.LMN {
	dirs := []struct{ l, m float64 }{{0.01, -0.02}, {-0.1, 0.05}, {0.2, 0.15}}
	out := make([]vis.LMN, len(dirs))
	for i, d := range dirs {
		out[i] = vis.LMN{L: d.l, M: d.m, N: math.Sqrt(1 - d.l*d.l - d.m*d.m)}
	}
	return out
}

func jonesClose(a, b vis.JonesF32, tol float64) bool {
	for i := range a {
		if !scalar.EqualWithinAbsOrRel(float64(real(a[i])), float64(real(b[i])), tol, tol) ||
			!scalar.EqualWithinAbsOrRel(float64(imag(a[i])), float64(imag(b[i])), tol, tol) {
			return false
		}
	}
	return true
}

func assertVisClose(t *testing.T, got, want []vis.JonesF32, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length: got %d want %d", len(got), len(want))
	}
	for i := range got {
		if !jonesClose(got[i], want[i], tol) {
			t.Fatalf("cell %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestPhase(t *testing.T) {
	t.Parallel()

	quarter := vis.LMN{L: 0.25, M: 0, N: math.Sqrt(1 - 0.0625)}
	tests := []struct {
		name string
		uvw  vis.UVW
		lmn  vis.LMN
		want complex128
	}{
		{"phase centre", vis.UVW{U: 100, V: -20, W: 5}, vis.PhaseCentre, 1},
		{"quarter turn", vis.UVW{U: 1}, quarter, -1i},
		{"half turn", vis.UVW{V: 1}, vis.LMN{M: 0.5, N: math.Sqrt(0.75)}, -1},
		{"w term", vis.UVW{W: 1}, vis.LMN{L: 0.6, N: 0.8}, cmplx.Exp(complex(0, -2*math.Pi*-0.2))},
	}
	for _, tc := range tests {
		// freq = c puts the baseline in wavelengths unchanged.
		got := Phase(tc.uvw, tc.lmn, vis.SpeedOfLight)
		if cmplx.Abs(got-tc.want) > 1e-12 {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
		if math.Abs(cmplx.Abs(got)-1) > 1e-12 {
			t.Errorf("%s: magnitude %v", tc.name, cmplx.Abs(got))
		}
	}
}

func TestZeroSourcesLeaveBufferZero(t *testing.T) {
	t.Parallel()

	ctx := testContext(backend.SerialExecutor{}, nil)
	if err := Timestep(ctx, &Inputs{}); err != nil {
		t.Fatalf("timestep: %v", err)
	}
	if err := Points(ctx, &PointSet{}); err != nil {
		t.Fatalf("points: %v", err)
	}
	if err := Gaussians(ctx, &GaussianSet{}); err != nil {
		t.Fatalf("gaussians: %v", err)
	}
	if err := Shapelets(ctx, &ShapeletSet{}); err != nil {
		t.Fatalf("shapelets: %v", err)
	}
	for i, j := range ctx.Vis {
		if !j.IsZero() {
			t.Fatalf("cell %d: expected zero, got %v", i, j)
		}
	}
}

func TestPointAtPhaseCentreEqualsFlux(t *testing.T) {
	t.Parallel()

	ctx := testContext(backend.SerialExecutor{}, nil)
	points := &PointSet{
		LMNs: []vis.LMN{vis.PhaseCentre},
		FDs:  fluxes(len(testFreqs), 1, 2),
	}
	if err := Points(ctx, points); err != nil {
		t.Fatalf("points: %v", err)
	}
	for bl := range testUVWs {
		for fi := range testFreqs {
			got := ctx.Vis[bl*len(testFreqs)+fi]
			want := points.FDs[fi].F32()
			if got != want {
				t.Fatalf("baseline %d freq %d: got %v want %v", bl, fi, got, want)
			}
		}
	}
}

func TestDegenerateGaussianMatchesPoint(t *testing.T) {
	t.Parallel()

	lmns := testDirections()
	fds := fluxes(len(testFreqs), len(lmns), 1)
	params := make([]vis.GaussianParams, len(lmns))
	for i := range params {
		params[i] = vis.GaussianParams{PA: 0.3 * float64(i)}
	}

	pointCtx := testContext(backend.SerialExecutor{}, nil)
	if err := Points(pointCtx, &PointSet{LMNs: lmns, FDs: fds}); err != nil {
		t.Fatalf("points: %v", err)
	}
	gaussCtx := testContext(backend.SerialExecutor{}, nil)
	if err := Gaussians(gaussCtx, &GaussianSet{LMNs: lmns, FDs: fds, Params: params}); err != nil {
		t.Fatalf("gaussians: %v", err)
	}
	assertVisClose(t, gaussCtx.Vis, pointCtx.Vis, 1e-6)
}

func TestGaussianEnvelopeDecays(t *testing.T) {
	t.Parallel()

	g := vis.GaussianParams{Maj: 0.01, Min: 0.005, PA: 0.4}
	prev := 1.0
	for _, u := range []float64{0, 10, 50, 100, 200} {
		env := gaussianEnvelope(vis.UVW{U: u}, g)
		if env <= 0 || env > prev {
			t.Fatalf("u=%v: envelope %v not in (0, %v]", u, env, prev)
		}
		prev = env
	}
	if got := gaussianEnvelope(vis.UVW{}, g); got != 1 {
		t.Fatalf("zero baseline: got %v want 1", got)
	}
}

func TestGaussianEnvelopeClosedForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		uvw  vis.UVW
		g    vis.GaussianParams
	}{
		{"rotated", vis.UVW{U: 60, V: -25}, vis.GaussianParams{Maj: 0.008, Min: 0.002, PA: 0.7}},
		{"negative pa", vis.UVW{U: -30, V: 90}, vis.GaussianParams{Maj: 0.003, Min: 0.0075, PA: -0.3}},
		{"u only", vis.UVW{U: 120}, vis.GaussianParams{Maj: 0.004, Min: 0.001, PA: 0.35}},
	}
	for _, tc := range tests {
		s, c := math.Sin(tc.g.PA), math.Cos(tc.g.PA)
		kx := tc.uvw.U*s + tc.uvw.V*c
		ky := tc.uvw.U*c - tc.uvw.V*s
		want := math.Exp(-(math.Pi / 2) * (math.Pi / 2) / math.Ln2 *
			(tc.g.Maj*tc.g.Maj*kx*kx + tc.g.Min*tc.g.Min*ky*ky))
		got := gaussianEnvelope(tc.uvw, tc.g)
		if !scalar.EqualWithinAbsOrRel(got, want, 1e-12, 1e-12) {
			t.Errorf("%s: got %v want %v", tc.name, got, want)
		}

		// Exchanging the axes must change the result.
		swapped := gaussianEnvelope(tc.uvw, vis.GaussianParams{Maj: tc.g.Min, Min: tc.g.Maj, PA: tc.g.PA})
		if scalar.EqualWithinAbsOrRel(swapped, want, 1e-6, 1e-6) {
			t.Errorf("%s: envelope symmetric in maj/min (%v)", tc.name, swapped)
		}
	}
}

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

// reverseFDs reverses the component order within every frequency block.
func reverseFDs(fds []vis.JonesF64, numComps int) []vis.JonesF64 {
	out := make([]vis.JonesF64, len(fds))
	for f := 0; f < len(fds)/numComps; f++ {
		copy(out[f*numComps:(f+1)*numComps], reversed(fds[f*numComps:(f+1)*numComps]))
	}
	return out
}

func TestSourceOrderDoesNotMatter(t *testing.T) {
	t.Parallel()

	pool := backend.NewPool(3)
	defer pool.Close()

	lmns := testDirections()
	n := len(lmns)
	fds := fluxes(len(testFreqs), n, 1.5)
	params := []vis.GaussianParams{
		{Maj: 0.001, Min: 0.0005, PA: 0.1},
		{Maj: 0.002, Min: 0.002, PA: 1.2},
		{Maj: 0.0005, Min: 0.0001, PA: -0.7},
	}

	forward := &Inputs{
		Points:    PointSet{LMNs: lmns, FDs: fds},
		Gaussians: GaussianSet{LMNs: lmns, FDs: fds, Params: params},
	}
	backward := &Inputs{
		Points:    PointSet{LMNs: reversed(lmns), FDs: reverseFDs(fds, n)},
		Gaussians: GaussianSet{LMNs: reversed(lmns), FDs: reverseFDs(fds, n), Params: reversed(params)},
	}

	a := testContext(pool, nil)
	if err := Timestep(a, forward); err != nil {
		t.Fatalf("forward: %v", err)
	}
	b := testContext(pool, nil)
	if err := Timestep(b, backward); err != nil {
		t.Fatalf("backward: %v", err)
	}
	assertVisClose(t, b.Vis, a.Vis, 1e-6)
}

// reverseShapelets reverses the component order of a shapelet set, keeping
// every parallel array consistent.
func reverseShapelets(in *ShapeletSet) *ShapeletSet {
	n := in.Len()
	offsets := coeffOffsets(in.NumCoeffs)
	out := &ShapeletSet{
		LMNs:      reversed(in.LMNs),
		FDs:       reverseFDs(in.FDs, n),
		Params:    reversed(in.Params),
		UVs:       make([]vis.ShapeletUV, len(in.UVs)),
		NumCoeffs: reversed(in.NumCoeffs),
	}
	for bl := 0; bl < len(in.UVs)/n; bl++ {
		copy(out.UVs[bl*n:(bl+1)*n], reversed(in.UVs[bl*n:(bl+1)*n]))
	}
	for c := n - 1; c >= 0; c-- {
		out.Coeffs = append(out.Coeffs, in.Coeffs[offsets[c]:offsets[c+1]]...)
	}
	return out
}

func TestShapeletOrderDoesNotMatter(t *testing.T) {
	t.Parallel()

	pool := backend.NewPool(3)
	defer pool.Close()
	basis := testBasis(t)

	forward := shapeletFixture()
	backward := reverseShapelets(forward)
	if backward.Coeffs[0] != forward.Coeffs[3] || backward.NumCoeffs[0] != 2 {
		t.Fatalf("coefficient blocks not reversed: %+v", backward.Coeffs)
	}

	a := testContext(pool, basis)
	if err := Timestep(a, &Inputs{Shapelets: *forward}); err != nil {
		t.Fatalf("forward: %v", err)
	}
	b := testContext(pool, basis)
	if err := Timestep(b, &Inputs{Shapelets: *backward}); err != nil {
		t.Fatalf("backward: %v", err)
	}
	nonZero := false
	for _, j := range a.Vis {
		nonZero = nonZero || !j.IsZero()
	}
	if !nonZero {
		t.Fatal("expected shapelet contributions")
	}
	assertVisClose(t, b.Vis, a.Vis, 1e-5)
}

func TestShapeletOutOfRangeContributesZero(t *testing.T) {
	t.Parallel()

	basis := testBasis(t)
	numBl := len(testUVWs)
	uvs := make([]vis.ShapeletUV, numBl)
	for bl, uvw := range testUVWs {
		uvs[bl] = vis.ShapeletUV{U: uvw.U, V: uvw.V}
	}

	tests := []struct {
		name   string
		params vis.GaussianParams
		coeffs []vis.ShapeletCoeff
	}{
		{
			name:   "order beyond table",
			params: vis.GaussianParams{Maj: 1e-4, Min: 1e-4},
			coeffs: []vis.ShapeletCoeff{{N1: basis.Orders, N2: 0, Value: 3}, {N1: 0, N2: basis.Orders + 5, Value: 1}},
		},
		{
			name:   "negative order",
			params: vis.GaussianParams{Maj: 1e-4, Min: 1e-4},
			coeffs: []vis.ShapeletCoeff{{N1: -1, N2: 0, Value: 3}, {N1: 0, N2: -3, Value: 2}},
		},
		{
			// Widths this large push every non-zero baseline past the
			// sampled range.
			name:   "position beyond table",
			params: vis.GaussianParams{Maj: 10, Min: 10},
			coeffs: []vis.ShapeletCoeff{{N1: 0, N2: 0, Value: 1}, {N1: 1, N2: 2, Value: 0.5}},
		},
	}
	for _, tc := range tests {
		ctx := testContext(backend.SerialExecutor{}, basis)
		ctx.UVWs = testUVWs[1:]
		ctx.Vis = ctx.Vis[:len(ctx.UVWs)*len(testFreqs)]
		set := &ShapeletSet{
			LMNs:      []vis.LMN{{L: 0.05, M: 0.02, N: math.Sqrt(1 - 0.0029)}},
			FDs:       fluxes(len(testFreqs), 1, 4),
			Params:    []vis.GaussianParams{tc.params},
			UVs:       uvs[1:],
			Coeffs:    tc.coeffs,
			NumCoeffs: []int{len(tc.coeffs)},
		}
		if err := Shapelets(ctx, set); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		for i, j := range ctx.Vis {
			if !j.IsZero() {
				t.Fatalf("%s: cell %d expected zero, got %v", tc.name, i, j)
			}
		}
	}
}

func TestShapeletZeroOrderAtOrigin(t *testing.T) {
	t.Parallel()

	basis := testBasis(t)
	ctx := testContext(backend.SerialExecutor{}, basis)
	ctx.UVWs = testUVWs[:1]
	ctx.Vis = ctx.Vis[:len(testFreqs)]

	// B_0(0) = 1, so a zero-length baseline sees value * flux.
	set := &ShapeletSet{
		LMNs:      []vis.LMN{vis.PhaseCentre},
		FDs:       fluxes(len(testFreqs), 1, 1),
		Params:    []vis.GaussianParams{{Maj: 0.01, Min: 0.02, PA: 0.5}},
		UVs:       []vis.ShapeletUV{{}},
		Coeffs:    []vis.ShapeletCoeff{{N1: 0, N2: 0, Value: 2.5}},
		NumCoeffs: []int{1},
	}
	if err := Shapelets(ctx, set); err != nil {
		t.Fatalf("shapelets: %v", err)
	}
	for fi := range testFreqs {
		want := set.FDs[fi].Scale(2.5).F32()
		if !jonesClose(ctx.Vis[fi], want, 1e-6) {
			t.Fatalf("freq %d: got %v want %v", fi, ctx.Vis[fi], want)
		}
	}
}

func TestShapeletEnvelopeImaginaryForOddOrders(t *testing.T) {
	t.Parallel()

	basis := testBasis(t)
	uv := vis.ShapeletUV{U: 40, V: 15}
	g := vis.GaussianParams{Maj: 0.004, Min: 0.003, PA: 0.2}

	tests := []struct {
		coeff    vis.ShapeletCoeff
		realOnly bool
	}{
		{vis.ShapeletCoeff{N1: 1, N2: 0, Value: 1}, false},
		{vis.ShapeletCoeff{N1: 2, N2: 1, Value: 1}, false},
		{vis.ShapeletCoeff{N1: 2, N2: 0, Value: 1}, true},
		{vis.ShapeletCoeff{N1: 1, N2: 1, Value: 1}, true},
	}
	for _, tc := range tests {
		env := shapeletEnvelope(uv, g, []vis.ShapeletCoeff{tc.coeff}, basis)
		if env == 0 {
			t.Fatalf("%+v: expected non-zero envelope", tc.coeff)
		}
		if tc.realOnly && imag(env) != 0 {
			t.Errorf("%+v: expected real envelope, got %v", tc.coeff, env)
		}
		if !tc.realOnly && real(env) != 0 {
			t.Errorf("%+v: expected imaginary envelope, got %v", tc.coeff, env)
		}
	}
}

func shapeletFixture() *ShapeletSet {
	lmns := testDirections()[:2]
	n := len(lmns)
	uvs := make([]vis.ShapeletUV, len(testUVWs)*n)
	for bl, uvw := range testUVWs {
		for s := range n {
			// Offset per component so the UVs differ from the baseline.
			uvs[bl*n+s] = vis.ShapeletUV{U: uvw.U + float64(s), V: uvw.V - float64(s)}
		}
	}
	return &ShapeletSet{
		LMNs:   lmns,
		FDs:    fluxes(len(testFreqs), n, 0.5),
		Params: []vis.GaussianParams{{Maj: 0.002, Min: 0.001, PA: 0.3}, {Maj: 0.001, Min: 0.001}},
		UVs:    uvs,
		Coeffs: []vis.ShapeletCoeff{
			{N1: 0, N2: 0, Value: 1},
			{N1: 1, N2: 0, Value: 0.4},
			{N1: 2, N2: 3, Value: -0.2},
			{N1: 0, N2: 0, Value: 0.7},
			{N1: 4, N2: 1, Value: 0.1},
		},
		NumCoeffs: []int{3, 2},
	}
}

func TestEntryPointsComposeToTimestep(t *testing.T) {
	t.Parallel()

	pool := backend.NewPool(4)
	defer pool.Close()
	basis := testBasis(t)

	lmns := testDirections()
	in := &Inputs{
		Points: PointSet{LMNs: lmns, FDs: fluxes(len(testFreqs), len(lmns), 1)},
		Gaussians: GaussianSet{
			LMNs:   lmns[1:],
			FDs:    fluxes(len(testFreqs), 2, 3),
			Params: []vis.GaussianParams{{Maj: 0.003, Min: 0.001, PA: 0.9}, {Maj: 0.0002, Min: 0.0002}},
		},
		Shapelets: *shapeletFixture(),
	}

	separate := testContext(pool, basis)
	if err := Points(separate, &in.Points); err != nil {
		t.Fatalf("points: %v", err)
	}
	if err := Gaussians(separate, &in.Gaussians); err != nil {
		t.Fatalf("gaussians: %v", err)
	}
	if err := Shapelets(separate, &in.Shapelets); err != nil {
		t.Fatalf("shapelets: %v", err)
	}

	combined := testContext(pool, basis)
	if err := Timestep(combined, in); err != nil {
		t.Fatalf("timestep: %v", err)
	}
	assertVisClose(t, combined.Vis, separate.Vis, 1e-5)

	// Serial and pooled execution cover the same cells.
	serial := testContext(backend.SerialExecutor{}, basis)
	if err := Timestep(serial, in); err != nil {
		t.Fatalf("serial timestep: %v", err)
	}
	for i := range serial.Vis {
		if serial.Vis[i] != combined.Vis[i] {
			t.Fatalf("cell %d: serial %v pooled %v", i, serial.Vis[i], combined.Vis[i])
		}
	}
}

func TestTimestepAddsToExistingBuffer(t *testing.T) {
	t.Parallel()

	ctx := testContext(backend.SerialExecutor{}, nil)
	points := &PointSet{LMNs: []vis.LMN{vis.PhaseCentre}, FDs: fluxes(len(testFreqs), 1, 1)}
	for range 2 {
		if err := Timestep(ctx, &Inputs{Points: *points}); err != nil {
			t.Fatalf("timestep: %v", err)
		}
	}
	for bl := range testUVWs {
		for fi := range testFreqs {
			want := points.FDs[fi].Scale(2).F32()
			if got := ctx.Vis[bl*len(testFreqs)+fi]; !jonesClose(got, want, 1e-6) {
				t.Fatalf("baseline %d freq %d: got %v want %v", bl, fi, got, want)
			}
		}
	}
}

func TestTimestepDefaultsExecutorAndBasis(t *testing.T) {
	t.Parallel()

	ctx := testContext(nil, nil)
	set := &ShapeletSet{
		LMNs:      []vis.LMN{vis.PhaseCentre},
		FDs:       fluxes(len(testFreqs), 1, 1),
		Params:    []vis.GaussianParams{{Maj: 0.001, Min: 0.001}},
		UVs:       make([]vis.ShapeletUV, len(testUVWs)),
		Coeffs:    []vis.ShapeletCoeff{{N1: 0, N2: 0, Value: 1}},
		NumCoeffs: []int{1},
	}
	if err := Timestep(ctx, &Inputs{Shapelets: *set}); err != nil {
		t.Fatalf("timestep: %v", err)
	}
	for i, j := range ctx.Vis {
		if j.IsZero() {
			t.Fatalf("cell %d: expected a contribution", i)
		}
	}
}

func TestCoefficientCountMismatch(t *testing.T) {
	t.Parallel()

	basis := testBasis(t)

	// Counts that overrun the flattened array violate the caller contract
	// and are reported as an execution failure.
	over := shapeletFixture()
	over.NumCoeffs = []int{3, 4}
	ctx := testContext(backend.SerialExecutor{}, basis)
	err := Shapelets(ctx, over)
	if err == nil {
		t.Fatal("expected an error for overrunning coefficient counts")
	}
	if got := Status(err); got != backend.CodeExecution {
		t.Fatalf("status: got %d want %d", got, backend.CodeExecution)
	}

	// Counts that fall short leave the trailing coefficients unused.
	short := shapeletFixture()
	short.NumCoeffs = []int{3, 1}
	trimmed := shapeletFixture()
	trimmed.Coeffs = trimmed.Coeffs[:4]
	trimmed.NumCoeffs = []int{3, 1}

	a := testContext(backend.SerialExecutor{}, basis)
	if err := Shapelets(a, short); err != nil {
		t.Fatalf("short: %v", err)
	}
	b := testContext(backend.SerialExecutor{}, basis)
	if err := Shapelets(b, trimmed); err != nil {
		t.Fatalf("trimmed: %v", err)
	}
	for i := range a.Vis {
		if a.Vis[i] != b.Vis[i] {
			t.Fatalf("cell %d: %v != %v", i, a.Vis[i], b.Vis[i])
		}
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	if got := Status(nil); got != 0 {
		t.Fatalf("nil: got %d", got)
	}
	ctx := testContext(backend.SerialExecutor{}, nil)
	// FDs shorter than one frequency block.
	err := Points(ctx, &PointSet{LMNs: testDirections(), FDs: fluxes(1, 1, 1)})
	if got := Status(err); got != backend.CodeExecution {
		t.Fatalf("contract violation: got %d want %d", got, backend.CodeExecution)
	}
}
