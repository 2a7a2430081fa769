// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"errors"
	"testing"

	"github.com/gviegas/appleseed/linear"
)

func TestWithTimeSample(t *testing.T) {
	s := Scene{Timeline: Timeline{Frame: 12, Subframe: 0.25}}
	saved := s.Timeline

	err := s.WithTimeSample(13, 0.75, func() error {
		if s.Timeline != (Timeline{Frame: 13, Subframe: 0.75}) {
			t.Fatalf("Scene.WithTimeSample cursor\nhave %v", s.Timeline)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Scene.WithTimeSample: unexpected error:\n%#v", err)
	}
	if s.Timeline != saved {
		t.Fatalf("Scene.WithTimeSample restore\nhave %v\nwant %v", s.Timeline, saved)
	}

	// The cursor must be restored on the error path too.
	fail := errors.New("tessellation failed")
	err = s.WithTimeSample(14, 0, func() error { return fail })
	if !errors.Is(err, fail) {
		t.Fatalf("Scene.WithTimeSample\nhave %v\nwant %v", err, fail)
	}
	if s.Timeline != saved {
		t.Fatalf("Scene.WithTimeSample restore\nhave %v\nwant %v", s.Timeline, saved)
	}
}

func TestObjectSampling(t *testing.T) {
	var m linear.M4
	m.Translate(&linear.V3{1, 2, 3})
	o := Object{Name: "o", Matrix: m}

	if x := o.MatrixAt(Timeline{}); x != m {
		t.Fatalf("Object.MatrixAt\nhave %v\nwant %v", x, m)
	}

	var sampled linear.M4
	sampled.Translate(&linear.V3{9, 0, 0})
	o.SampleMatrix = func(tl Timeline) linear.M4 {
		if tl.Frame != 7 {
			t.Fatalf("Object.SampleMatrix cursor\nhave %v\nwant frame 7", tl)
		}
		return sampled
	}
	if x := o.MatrixAt(Timeline{Frame: 7}); x != sampled {
		t.Fatalf("Object.MatrixAt\nhave %v\nwant %v", x, sampled)
	}

	mesh := &Mesh{Name: "m"}
	o.Mesh = mesh
	if got, err := o.MeshAt(Timeline{}); err != nil || got != mesh {
		t.Fatalf("Object.MeshAt\nhave %v, %v\nwant %v, nil", got, err, mesh)
	}
}
