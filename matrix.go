package imgnorm

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Matrix is a 2-D affine transform mapping (x, y) to
//
//	x' = m[0]*x + m[1]*y + m[2]
//	y' = m[3]*x + m[4]*y + m[5]
//
// Post operations apply after the existing transform, pre operations before it.
// Rotation is clockwise in image space, where y grows downwards.
type Matrix f64.Aff3

// Identity returns the transform that changes nothing.
func Identity() Matrix {
	return Matrix{1, 0, 0, 0, 1, 0}
}

// Concat returns the transform applying n first and then m.
func (m Matrix) Concat(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[3], m[0]*n[1] + m[1]*n[4], m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3], m[3]*n[1] + m[4]*n[4], m[3]*n[2] + m[4]*n[5] + m[5],
	}
}

// PostRotate rotates by degrees around the origin after m.
func (m Matrix) PostRotate(degrees float64) Matrix {
	sin, cos := sincos(degrees)
	return Matrix{cos, -sin, 0, sin, cos, 0}.Concat(m)
}

// PostTranslate translates by (tx, ty) after m.
func (m Matrix) PostTranslate(tx, ty float64) Matrix {
	return Matrix{1, 0, tx, 0, 1, ty}.Concat(m)
}

// PreTranslate translates by (tx, ty) before m.
func (m Matrix) PreTranslate(tx, ty float64) Matrix {
	return m.Concat(Matrix{1, 0, tx, 0, 1, ty})
}

// PreScale scales by (sx, sy) before m.
func (m Matrix) PreScale(sx, sy float64) Matrix {
	return m.Concat(Matrix{sx, 0, 0, 0, sy, 0})
}

// Apply maps the point (x, y).
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// Bounds returns the bounding box of the rectangle (0, 0)-(w, h) under m.
func (m Matrix) Bounds(w, h float64) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}} {
		x, y := m.Apply(p[0], p[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return
}

// Aff3 returns m in the form golang.org/x/image/draw expects.
func (m Matrix) Aff3() f64.Aff3 {
	return f64.Aff3(m)
}

// sincos is exact for quarter turns.
func sincos(degrees float64) (sin, cos float64) {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(d * math.Pi / 180)
}
