package scaling

import (
	"encoding/binary"
	"math"
)

// Mat4 is a 4x4 transformation matrix stored in column-major order,
// matching the WGSL mat4x4<f32> uniform layout:
//
//	| m[0]  m[4]  m[8]   m[12] |
//	| m[1]  m[5]  m[9]   m[13] |
//	| m[2]  m[6]  m[10]  m[14] |
//	| m[3]  m[7]  m[11]  m[15] |
type Mat4 [16]float32

// Vec4 is a homogeneous coordinate (x, y, z, w).
type Vec4 [4]float32

// Mat4Size is the size in bytes of a Mat4 uniform.
const Mat4Size = 64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(x, y, z float32) Mat4 {
	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// At returns the element at the given row and column.
func (m Mat4) At(row, col int) float32 {
	return m[col*4+row]
}

// Multiply multiplies two matrices (m * other).
func (m Mat4) Multiply(other Mat4) Mat4 {
	var r Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * other[col*4+k]
			}
			r[col*4+row] = sum
		}
	}
	return r
}

// Transform applies the matrix to a homogeneous coordinate.
func (m Mat4) Transform(v Vec4) Vec4 {
	var r Vec4
	for row := 0; row < 4; row++ {
		r[row] = m[row]*v[0] + m[4+row]*v[1] + m[8+row]*v[2] + m[12+row]*v[3]
	}
	return r
}

// TransformPoint applies the matrix to the point (x, y, 0, 1) and performs
// the homogeneous divide.
func (m Mat4) TransformPoint(x, y float32) (float32, float32) {
	v := m.Transform(Vec4{x, y, 0, 1})
	if v[3] != 0 && v[3] != 1 {
		return v[0] / v[3], v[1] / v[3]
	}
	return v[0], v[1]
}

// Invert returns the inverse of the matrix and whether it exists.
// The cofactors are accumulated in float64 so that the round trip through
// the inverse stays within float32 precision for large surface extents.
func (m Mat4) Invert() (Mat4, bool) {
	var a [16]float64
	for i, v := range m {
		a[i] = float64(v)
	}

	var inv [16]float64
	inv[0] = a[5]*a[10]*a[15] - a[5]*a[11]*a[14] - a[9]*a[6]*a[15] +
		a[9]*a[7]*a[14] + a[13]*a[6]*a[11] - a[13]*a[7]*a[10]
	inv[4] = -a[4]*a[10]*a[15] + a[4]*a[11]*a[14] + a[8]*a[6]*a[15] -
		a[8]*a[7]*a[14] - a[12]*a[6]*a[11] + a[12]*a[7]*a[10]
	inv[8] = a[4]*a[9]*a[15] - a[4]*a[11]*a[13] - a[8]*a[5]*a[15] +
		a[8]*a[7]*a[13] + a[12]*a[5]*a[11] - a[12]*a[7]*a[9]
	inv[12] = -a[4]*a[9]*a[14] + a[4]*a[10]*a[13] + a[8]*a[5]*a[14] -
		a[8]*a[6]*a[13] - a[12]*a[5]*a[10] + a[12]*a[6]*a[9]
	inv[1] = -a[1]*a[10]*a[15] + a[1]*a[11]*a[14] + a[9]*a[2]*a[15] -
		a[9]*a[3]*a[14] - a[13]*a[2]*a[11] + a[13]*a[3]*a[10]
	inv[5] = a[0]*a[10]*a[15] - a[0]*a[11]*a[14] - a[8]*a[2]*a[15] +
		a[8]*a[3]*a[14] + a[12]*a[2]*a[11] - a[12]*a[3]*a[10]
	inv[9] = -a[0]*a[9]*a[15] + a[0]*a[11]*a[13] + a[8]*a[1]*a[15] -
		a[8]*a[3]*a[13] - a[12]*a[1]*a[11] + a[12]*a[3]*a[9]
	inv[13] = a[0]*a[9]*a[14] - a[0]*a[10]*a[13] - a[8]*a[1]*a[14] +
		a[8]*a[2]*a[13] + a[12]*a[1]*a[10] - a[12]*a[2]*a[9]
	inv[2] = a[1]*a[6]*a[15] - a[1]*a[7]*a[14] - a[5]*a[2]*a[15] +
		a[5]*a[3]*a[14] + a[13]*a[2]*a[7] - a[13]*a[3]*a[6]
	inv[6] = -a[0]*a[6]*a[15] + a[0]*a[7]*a[14] + a[4]*a[2]*a[15] -
		a[4]*a[3]*a[14] - a[12]*a[2]*a[7] + a[12]*a[3]*a[6]
	inv[10] = a[0]*a[5]*a[15] - a[0]*a[7]*a[13] - a[4]*a[1]*a[15] +
		a[4]*a[3]*a[13] + a[12]*a[1]*a[7] - a[12]*a[3]*a[5]
	inv[14] = -a[0]*a[5]*a[14] + a[0]*a[6]*a[13] + a[4]*a[1]*a[14] -
		a[4]*a[2]*a[13] - a[12]*a[1]*a[6] + a[12]*a[2]*a[5]
	inv[3] = -a[1]*a[6]*a[11] + a[1]*a[7]*a[10] + a[5]*a[2]*a[11] -
		a[5]*a[3]*a[10] - a[9]*a[2]*a[7] + a[9]*a[3]*a[6]
	inv[7] = a[0]*a[6]*a[11] - a[0]*a[7]*a[10] - a[4]*a[2]*a[11] +
		a[4]*a[3]*a[10] + a[8]*a[2]*a[7] - a[8]*a[3]*a[6]
	inv[11] = -a[0]*a[5]*a[11] + a[0]*a[7]*a[9] + a[4]*a[1]*a[11] -
		a[4]*a[3]*a[9] - a[8]*a[1]*a[7] + a[8]*a[3]*a[5]
	inv[15] = a[0]*a[5]*a[10] - a[0]*a[6]*a[9] - a[4]*a[1]*a[10] +
		a[4]*a[2]*a[9] + a[8]*a[1]*a[6] - a[8]*a[2]*a[5]

	det := a[0]*inv[0] + a[1]*inv[4] + a[2]*inv[8] + a[3]*inv[12]
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Mat4{}, false
	}

	var r Mat4
	for i := range inv {
		r[i] = float32(inv[i] / det)
	}
	return r, true
}

// ApproxEqual reports whether every element of m is within eps of other.
func (m Mat4) ApproxEqual(other Mat4, eps float32) bool {
	for i := range m {
		d := m[i] - other[i]
		if d < -eps || d > eps {
			return false
		}
	}
	return true
}

// Bytes encodes the matrix as 64 little-endian bytes for uniform upload.
func (m Mat4) Bytes() []byte {
	buf := make([]byte, Mat4Size)
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
