// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"math"
	"testing"

	"github.com/gviegas/appleseed/scene"
)

// triAsset builds a minimal in-memory asset: one node
// holding a single-triangle mesh with a PBR material,
// plus a camera node and a point light node.
func triAsset() *GLTF {
	var buf bytes.Buffer
	for _, v := range [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}} {
		for _, f := range v {
			binary.Write(&buf, binary.LittleEndian, math.Float32bits(f))
		}
	}
	for _, i := range []uint16{0, 1, 2} {
		binary.Write(&buf, binary.LittleEndian, i)
	}

	var doc GLTF
	doc.Asset.Version = "2.0"
	doc.Buffers = []Buffer{{
		URI:        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		ByteLength: int64(buf.Len()),
	}}
	doc.BufferViews = []BufferView{
		{Buffer: 0, ByteOffset: 0, ByteLength: 36},
		{Buffer: 0, ByteOffset: 36, ByteLength: 6},
	}
	view0, view1 := int64(0), int64(1)
	doc.Accessors = []Accessor{
		{BufferView: &view0, ComponentType: FLOAT, Count: 3, Type: VEC3},
		{BufferView: &view1, ComponentType: UNSIGNED_SHORT, Count: 3, Type: SCALAR},
	}
	baseColor := [4]float32{1, 0, 0, 1}
	rough := float32(0.25)
	doc.Materials = []Material{{
		Name: "red",
		PBRMetallicRoughness: &PBRMetallicRoughness{
			BaseColorFactor: &baseColor,
			RoughnessFactor: &rough,
		},
	}}
	idx, mat := int64(1), int64(0)
	doc.Meshes = []Mesh{{
		Name: "tri",
		Primitives: []Primitive{{
			Attributes: map[string]int64{"POSITION": 0},
			Indices:    &idx,
			Material:   &mat,
		}},
	}}
	doc.Cameras = []Camera{{
		Type:        Tperspective,
		Perspective: &Perspective{YFOV: 0.8, Znear: 0.1, AspectRatio: 1.5},
	}}
	intensity := float32(40)
	doc.Extensions.Lights = &KHRLightsPunctual{
		Lights: []Light{{Type: Lpoint, Intensity: &intensity}},
	}
	cam := int64(0)
	tz := [3]float32{0, 0, 5}
	doc.Nodes = []Node{
		{Name: "tri", Mesh: new(int64)},
		{Name: "cam", Camera: &cam, Translation: &tz},
		{Name: "bulb"},
	}
	doc.Nodes[2].Extensions.Light = &NodeLight{Light: 0}
	root := int64(0)
	doc.Scene = &root
	doc.Scenes = []Scene{{Name: "main", Nodes: []int64{0, 1, 2}}}
	return &doc
}

func TestConvert(t *testing.T) {
	s, err := Convert(triAsset(), nil, t.TempDir())
	if err != nil {
		t.Fatalf("Convert failed:\n%v", err)
	}
	if s.Name != "main" {
		t.Fatalf("Convert\nhave scene %v\nwant main", s.Name)
	}
	if len(s.Objects) != 1 {
		t.Fatalf("Convert\nhave %d objects\nwant 1", len(s.Objects))
	}
	o := s.Objects[0]
	if o.Name != "tri" || len(o.Mesh.Verts) != 3 || len(o.Mesh.Faces) != 1 {
		t.Fatalf("Convert\nhave object %v (%d verts, %d faces)\nwant tri (3, 1)",
			o.Name, len(o.Mesh.Verts), len(o.Mesh.Faces))
	}
	if o.Mesh.Faces[0].MaterialIndex != 0 || len(o.Materials) != 1 {
		t.Fatalf("Convert\nmaterial slots wrong: %v", o.Materials)
	}
	m := o.Materials[0]
	if m.Name != "red" || len(m.Layers) != 1 || m.Layers[0].Kind != scene.Disney {
		t.Fatalf("Convert\nhave material %+v\nwant disney layer", m)
	}
	if m.Layers[0].Base.Value != [3]float32{1, 0, 0} || m.Layers[0].Roughness.Value != 0.25 {
		t.Fatalf("Convert\nPBR factors wrong: %+v", m.Layers[0])
	}

	if s.Camera == nil || s.Camera.Model != scene.Pinhole {
		t.Fatalf("Convert\nhave camera %+v\nwant pinhole", s.Camera)
	}
	if s.Camera.FilmWidth != 36 || s.Camera.Matrix[3][2] != 5 {
		t.Fatalf("Convert\ncamera film/transform wrong: %+v", s.Camera)
	}

	if len(s.Lights) != 1 || s.Lights[0].Kind != scene.PointLight || s.Lights[0].Intensity != 40 {
		t.Fatalf("Convert\nhave lights %+v\nwant one point light", s.Lights)
	}
}

func TestConvertSharedMesh(t *testing.T) {
	doc := triAsset()
	doc.Nodes = append(doc.Nodes, Node{Name: "tri2", Mesh: new(int64)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, int64(len(doc.Nodes)-1))
	s, err := Convert(doc, nil, t.TempDir())
	if err != nil {
		t.Fatalf("Convert failed:\n%v", err)
	}
	if len(s.Objects) != 2 {
		t.Fatalf("Convert\nhave %d objects\nwant 2", len(s.Objects))
	}
	if s.Objects[0].Mesh != s.Objects[1].Mesh {
		t.Fatal("Convert\nshared mesh converted twice")
	}
}

func TestConvertMixedAttributes(t *testing.T) {
	doc := triAsset()
	view0 := int64(0)
	doc.Accessors = append(doc.Accessors, Accessor{
		BufferView:    &view0,
		ComponentType: FLOAT,
		Count:         3,
		Type:          VEC3,
	})
	idx := int64(1)
	doc.Meshes[0].Primitives = []Primitive{
		{Attributes: map[string]int64{"POSITION": 0, "NORMAL": 2}, Indices: &idx},
		{Attributes: map[string]int64{"POSITION": 0}, Indices: &idx},
	}
	s, err := Convert(doc, nil, t.TempDir())
	if err != nil {
		t.Fatalf("Convert failed:\n%v", err)
	}
	m := s.Objects[0].Mesh
	if len(m.Verts) != 6 || len(m.Faces) != 2 {
		t.Fatalf("Convert\nhave %d verts, %d faces\nwant 6, 2", len(m.Verts), len(m.Faces))
	}
	// One primitive lacks normals, so keeping the partial
	// array would misindex it past the first primitive.
	if m.Normals != nil {
		t.Fatalf("Convert\nhave %d normals\nwant none", len(m.Normals))
	}

	doc = triAsset()
	doc.Accessors = append(doc.Accessors, Accessor{
		BufferView:    &view0,
		ComponentType: FLOAT,
		Count:         3,
		Type:          VEC3,
	})
	doc.Meshes[0].Primitives = []Primitive{
		{Attributes: map[string]int64{"POSITION": 0, "NORMAL": 2}, Indices: &idx},
		{Attributes: map[string]int64{"POSITION": 0, "NORMAL": 2}, Indices: &idx},
	}
	s, err = Convert(doc, nil, t.TempDir())
	if err != nil {
		t.Fatalf("Convert failed:\n%v", err)
	}
	if m := s.Objects[0].Mesh; len(m.Normals) != 6 {
		t.Fatalf("Convert\nhave %d normals\nwant 6", len(m.Normals))
	}
}

func TestCheck(t *testing.T) {
	doc := triAsset()
	if err := doc.Check(); err != nil {
		t.Fatalf("Check failed:\n%v", err)
	}
	bad := triAsset()
	*bad.Nodes[0].Mesh = 7
	if err := bad.Check(); err == nil {
		t.Fatal("Check\nhave nil\nwant error for mesh index")
	}
	bad = triAsset()
	bad.Accessors[0].Count = 0
	if err := bad.Check(); err == nil {
		t.Fatal("Check\nhave nil\nwant error for accessor count")
	}
}

func TestDecodeGLB(t *testing.T) {
	jsonChunk := []byte(`{"asset":{"version":"2.0"}} `)
	binChunk := []byte{1, 2, 3, 4}
	var blob bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(binChunk)
	for _, u := range []uint32{magic, 2, uint32(total)} {
		binary.Write(&blob, binary.LittleEndian, u)
	}
	binary.Write(&blob, binary.LittleEndian, [2]uint32{uint32(len(jsonChunk)), typeJSON})
	blob.Write(jsonChunk)
	binary.Write(&blob, binary.LittleEndian, [2]uint32{uint32(len(binChunk)), typeBIN})
	blob.Write(binChunk)

	doc, bin, err := DecodeGLB(&blob)
	if err != nil {
		t.Fatalf("DecodeGLB failed:\n%v", err)
	}
	if doc.Asset.Version != "2.0" {
		t.Fatalf("DecodeGLB\nhave version %v\nwant 2.0", doc.Asset.Version)
	}
	if !bytes.Equal(bin, binChunk) {
		t.Fatalf("DecodeGLB\nhave payload %v\nwant %v", bin, binChunk)
	}
}

func TestDecodeGLBErrors(t *testing.T) {
	if _, _, err := DecodeGLB(bytes.NewReader([]byte("plainly not glb"))); err == nil {
		t.Fatal("DecodeGLB\nhave nil\nwant error for bad magic")
	}
}
