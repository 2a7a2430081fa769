// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package meshio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/gviegas/appleseed/scene"
)

// OBJ writes meshes as Wavefront OBJ files with one
// named object per material slot, and hair systems as
// plain-text curve files.
type OBJ struct{}

func partName(materialIndex int) string {
	return "part_" + strconv.Itoa(materialIndex)
}

// WriteMesh implements Writer.
// Vertex data is written once; faces are grouped into
// one `o` object per distinct material index so the
// renderer can bind material slots to parts by name.
func (OBJ) WriteMesh(m *scene.Mesh, path string) ([]Part, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(f)

	for i := range m.Verts {
		v := &m.Verts[i]
		fmt.Fprintf(w, "v %g %g %g\n", v[0], v[1], v[2])
	}
	for i := range m.UVs {
		uv := &m.UVs[i]
		fmt.Fprintf(w, "vt %g %g\n", uv[0], uv[1])
	}
	for i := range m.Normals {
		n := &m.Normals[i]
		fmt.Fprintf(w, "vn %g %g %g\n", n[0], n[1], n[2])
	}

	parts := Parts(m)
	for _, p := range parts {
		fmt.Fprintf(w, "o %s\n", p.Name)
		for i := range m.Faces {
			face := &m.Faces[i]
			if face.MaterialIndex != p.MaterialIndex {
				continue
			}
			w.WriteString("f")
			for _, idx := range face.Indices {
				// OBJ indices are 1-based.
				n := idx + 1
				switch {
				case len(m.UVs) > 0 && len(m.Normals) > 0:
					fmt.Fprintf(w, " %d/%d/%d", n, n, n)
				case len(m.Normals) > 0:
					fmt.Fprintf(w, " %d//%d", n, n)
				case len(m.UVs) > 0:
					fmt.Fprintf(w, " %d/%d", n, n)
				default:
					fmt.Fprintf(w, " %d", n)
				}
			}
			w.WriteByte('\n')
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return parts, nil
}
