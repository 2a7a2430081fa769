// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package meshio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gviegas/appleseed/linear"
	"github.com/gviegas/appleseed/scene"
)

func quadMesh() *scene.Mesh {
	return &scene.Mesh{
		Name: "quad",
		Verts: []linear.V3{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		},
		Normals: []linear.V3{
			{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1},
		},
		Faces: []scene.Face{
			{Indices: []int{0, 1, 2}, MaterialIndex: 1},
			{Indices: []int{0, 2, 3}, MaterialIndex: 0},
		},
	}
}

func TestParts(t *testing.T) {
	parts := Parts(quadMesh())
	if len(parts) != 2 {
		t.Fatalf("Parts\nhave %d parts\nwant 2", len(parts))
	}
	if parts[0] != (Part{MaterialIndex: 0, Name: "part_0"}) {
		t.Fatalf("Parts[0]\nhave %v\nwant {0 part_0}", parts[0])
	}
	if parts[1] != (Part{MaterialIndex: 1, Name: "part_1"}) {
		t.Fatalf("Parts[1]\nhave %v\nwant {1 part_1}", parts[1])
	}
}

func TestWriteMesh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	parts, err := OBJ{}.WriteMesh(quadMesh(), path)
	if err != nil {
		t.Fatalf("OBJ.WriteMesh: unexpected error:\n%#v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("OBJ.WriteMesh\nhave %d parts\nwant 2", len(parts))
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: unexpected error:\n%#v", err)
	}
	s := string(b)
	if n := strings.Count(s, "v "); n != 4 {
		t.Fatalf("OBJ.WriteMesh vertex lines\nhave %d\nwant 4", n)
	}
	if n := strings.Count(s, "o part_"); n != 2 {
		t.Fatalf("OBJ.WriteMesh object lines\nhave %d\nwant 2", n)
	}
	if !strings.Contains(s, "f 1//1 2//2 3//3\n") {
		t.Fatalf("OBJ.WriteMesh face line missing:\n%s", s)
	}
	// The part table must match Parts.
	for i, p := range Parts(quadMesh()) {
		if parts[i] != p {
			t.Fatalf("OBJ.WriteMesh parts\nhave %v\nwant %v", parts[i], p)
		}
	}
}

func TestWriteCurves(t *testing.T) {
	ps := &scene.ParticleSystem{
		Name: "hair",
		Hair: true,
		Strands: []scene.Strand{
			{Points: []linear.V3{{0, 0, 0}, {0, 0, 1}, {0, 0, 2}}},
			{Points: []linear.V3{{1, 0, 0}, {1, 0, 1}}},
		},
		RootRadius: 0.01,
		TipRadius:  0.001,
	}
	path := filepath.Join(t.TempDir(), "hair.curves")
	if err := (OBJ{}).WriteCurves(ps, path); err != nil {
		t.Fatalf("OBJ.WriteCurves: unexpected error:\n%#v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: unexpected error:\n%#v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	// 1 count line + (1+3) + (1+2).
	if len(lines) != 8 {
		t.Fatalf("OBJ.WriteCurves lines\nhave %d\nwant 8", len(lines))
	}
	if lines[0] != "2" {
		t.Fatalf("OBJ.WriteCurves strand count\nhave %q\nwant \"2\"", lines[0])
	}
	if !strings.HasSuffix(lines[2], "0.01") {
		t.Fatalf("OBJ.WriteCurves root radius\nhave %q", lines[2])
	}
	if !strings.HasSuffix(lines[4], "0.001") {
		t.Fatalf("OBJ.WriteCurves tip radius\nhave %q", lines[4])
	}
}

func TestWriteMeshBadPath(t *testing.T) {
	_, err := OBJ{}.WriteMesh(quadMesh(), filepath.Join(t.TempDir(), "no", "such", "dir.obj"))
	if err == nil {
		t.Fatal("OBJ.WriteMesh: unexpected success")
	}
}
