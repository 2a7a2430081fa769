// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package meshio

import (
	"bufio"
	"fmt"
	"os"

	"github.com/gviegas/appleseed/scene"
)

// WriteCurves implements Writer.
// The format is the renderer's plain-text curve file:
// a strand count line, then one point-count line and
// one "x y z radius" line per control point for each
// strand. Radii interpolate from the system's root
// radius to its tip radius along the strand.
func (OBJ) WriteCurves(ps *scene.ParticleSystem, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "%d\n", len(ps.Strands))
	for i := range ps.Strands {
		pts := ps.Strands[i].Points
		fmt.Fprintf(w, "%d\n", len(pts))
		for j := range pts {
			t := float32(0)
			if len(pts) > 1 {
				t = float32(j) / float32(len(pts)-1)
			}
			r := ps.RootRadius + t*(ps.TipRadius-ps.RootRadius)
			p := &pts[j]
			fmt.Fprintf(w, "%g %g %g %g\n", p[0], p[1], p[2], r)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
