// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestV3(t *testing.T) {
	var u V3
	v := V3{1, 2, 4}
	w := V3{0, -1, 2}

	if u.Add(&v, &w); u != (V3{1, 1, 6}) {
		t.Fatalf("V3.Add\nhave %v\nwant [1 1 6]", u)
	}
	if u.Sub(&v, &w); u != (V3{1, 3, 2}) {
		t.Fatalf("V3.Sub\nhave %v\nwant [1 3 2]", u)
	}
	if u.Scale(2, &w); u != (V3{0, -2, 4}) {
		t.Fatalf("V3.Scale\nhave %v\nwant [0 -2 4]", u)
	}
	if d := v.Dot(&w); d != 6 {
		t.Fatalf("V3.Dot\nhave %v\nwant 6", d)
	}
	if l := v.Len(); l != math32.Sqrt(21) {
		t.Fatalf("V3.Len\nhave %v\nwant %v", l, math32.Sqrt(21))
	}
	if u.Lerp(&V3{0, 0, 0}, &V3{2, 4, 8}, 0.5); u != (V3{1, 2, 4}) {
		t.Fatalf("V3.Lerp\nhave %v\nwant [1 2 4]", u)
	}

	v = V3{0, 0, -2}
	w = V3{0, 4, 0}
	if v.Norm(&v); v != (V3{0, 0, -1}) {
		t.Fatalf("V3.Norm\nhave %v\nwant [0 0 -1]", v)
	}
	if u.Cross(&v, &w); u != (V3{4, 0, 0}) {
		t.Fatalf("V3.Cross\nhave %v\nwant [4 0 0]", u)
	}
}

func TestM4(t *testing.T) {
	var m, n, p M4
	m.I()
	if m != (M4{{1}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}}) {
		t.Fatalf("M4.I\nhave %v", m)
	}

	n.Translate(&V3{1, 2, 3})
	p.Mul(&m, &n)
	if p != n {
		t.Fatalf("M4.Mul\nhave %v\nwant %v", p, n)
	}

	var inv, id M4
	inv.Invert(&n)
	id.Mul(&inv, &n)
	m.I()
	for i := range id {
		for j := range id[i] {
			if d := math32.Abs(id[i][j] - m[i][j]); d > 1e-6 {
				t.Fatalf("M4.Invert\nhave %v\nwant identity", id)
			}
		}
	}
}

func TestM4Compose(t *testing.T) {
	// 90° about z.
	s := math32.Sqrt(0.5)
	q := Q{V: V3{0, 0, s}, R: s}
	var m M4
	m.Compose(&V3{1, 0, 0}, &q, &V3{2, 2, 2})

	// x axis maps to 2y, plus the translation.
	want := V3{1, 2, 0}
	have := V3{m[0][0] + m[3][0], m[0][1] + m[3][1], m[0][2] + m[3][2]}
	for i := range want {
		if d := math32.Abs(have[i] - want[i]); d > 1e-5 {
			t.Fatalf("M4.Compose\nhave %v\nwant %v", have, want)
		}
	}
}

func TestRowMajor(t *testing.T) {
	var m M4
	m.Translate(&V3{1, 2, 3})
	r := m.RowMajor()
	want := [16]float32{
		1, 0, 0, 1,
		0, 1, 0, 2,
		0, 0, 1, 3,
		0, 0, 0, 1,
	}
	if r != want {
		t.Fatalf("M4.RowMajor\nhave %v\nwant %v", r, want)
	}
}
