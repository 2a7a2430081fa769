// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package meshio writes tessellated geometry to disk in
// the formats referenced by exported projects.
//
// The exporter consumes the Writer interface only, so a
// platform-specific implementation can be substituted
// transparently.
package meshio

import (
	"sort"

	"github.com/gviegas/appleseed/scene"
)

// Part names one renderer-side object within a written
// mesh file, keyed by the material slot it binds to.
type Part struct {
	MaterialIndex int
	Name          string
}

// Writer writes meshes and curves to disk.
type Writer interface {
	// WriteMesh writes a polygonal mesh to path and
	// returns the (material index, part name) pairs
	// it produced.
	WriteMesh(m *scene.Mesh, path string) ([]Part, error)

	// WriteCurves writes a hair particle system to
	// path.
	WriteCurves(ps *scene.ParticleSystem, path string) error
}

// Parts reconstructs the part table of m from its face
// material indices without touching the disk. It returns
// the same pairs WriteMesh would, in ascending material
// index order.
func Parts(m *scene.Mesh) []Part {
	seen := make(map[int]bool)
	for i := range m.Faces {
		seen[m.Faces[i].MaterialIndex] = true
	}
	idx := make([]int, 0, len(seen))
	for i := range seen {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	parts := make([]Part, len(idx))
	for i, x := range idx {
		parts[i] = Part{MaterialIndex: x, Name: partName(x)}
	}
	return parts
}
