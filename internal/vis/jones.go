package vis

// JonesF64 is a 2x2 complex matrix in row-major order: XX, XY, YX, YY.
type JonesF64 [4]complex128

// JonesF32 is the single precision form used for output visibilities.
type JonesF32 [4]complex64

// Add returns j + o.
func (j JonesF64) Add(o JonesF64) JonesF64 {
	return JonesF64{j[0] + o[0], j[1] + o[1], j[2] + o[2], j[3] + o[3]}
}

// Scale multiplies every element by s.
func (j JonesF64) Scale(s complex128) JonesF64 {
	return JonesF64{j[0] * s, j[1] * s, j[2] * s, j[3] * s}
}

// MulAdd returns j + o*s without allocating an intermediate.
func (j JonesF64) MulAdd(o JonesF64, s complex128) JonesF64 {
	return JonesF64{j[0] + o[0]*s, j[1] + o[1]*s, j[2] + o[2]*s, j[3] + o[3]*s}
}

// F32 demotes j to single precision.
func (j JonesF64) F32() JonesF32 {
	return JonesF32{complex64(j[0]), complex64(j[1]), complex64(j[2]), complex64(j[3])}
}

// Add returns j + o.
func (j JonesF32) Add(o JonesF32) JonesF32 {
	return JonesF32{j[0] + o[0], j[1] + o[1], j[2] + o[2], j[3] + o[3]}
}

// F64 promotes j to double precision.
func (j JonesF32) F64() JonesF64 {
	return JonesF64{complex128(j[0]), complex128(j[1]), complex128(j[2]), complex128(j[3])}
}

// IsZero reports whether every element is exactly zero.
func (j JonesF32) IsZero() bool {
	return j == JonesF32{}
}

// Floats unpacks j into re/im pairs in XX, XY, YX, YY order.
func (j JonesF32) Floats() [8]float32 {
	return [8]float32{
		real(j[0]), imag(j[0]),
		real(j[1]), imag(j[1]),
		real(j[2]), imag(j[2]),
		real(j[3]), imag(j[3]),
	}
}
