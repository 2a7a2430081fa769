// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package linear implements the math used to place
// scene entities: float32 vectors, quaternions and
// column-major 4x4 transforms.
package linear

import (
	"github.com/chewxy/math32"
)

// V3 is a 3-component vector of float32.
type V3 [3]float32

// Add sets u to contain v + w.
func (u *V3) Add(v, w *V3) {
	for i := range u {
		u[i] = v[i] + w[i]
	}
}

// Sub sets u to contain v - w.
func (u *V3) Sub(v, w *V3) {
	for i := range u {
		u[i] = v[i] - w[i]
	}
}

// Scale sets u to contain s ⋅ v.
func (u *V3) Scale(s float32, v *V3) {
	for i := range u {
		u[i] = s * v[i]
	}
}

// Dot returns v ⋅ w.
func (v *V3) Dot(w *V3) (d float32) {
	for i := range v {
		d += v[i] * w[i]
	}
	return
}

// Len returns the length of v.
func (v *V3) Len() float32 { return math32.Sqrt(v.Dot(v)) }

// Norm sets u to contain v normalized.
func (u *V3) Norm(v *V3) { u.Scale(1/v.Len(), v) }

// Cross sets u to contain v × w.
func (u *V3) Cross(v, w *V3) {
	*u = V3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

// Lerp sets u to contain v + t ⋅ (w - v).
func (u *V3) Lerp(v, w *V3, t float32) {
	for i := range u {
		u[i] = v[i] + t*(w[i]-v[i])
	}
}

// V4 is a 4-component vector of float32.
type V4 [4]float32

// Dot returns v ⋅ w.
func (v *V4) Dot(w *V4) (d float32) {
	for i := range v {
		d += v[i] * w[i]
	}
	return
}
