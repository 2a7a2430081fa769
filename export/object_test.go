// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gviegas/appleseed/linear"
	"github.com/gviegas/appleseed/markup"
	"github.com/gviegas/appleseed/scene"
)

func TestInstanceOrdinals(t *testing.T) {
	child := &scene.Object{Name: "leaf", Mesh: quad("leaf", 0), Matrix: ident()}
	dup := &scene.Object{
		Name:      "tree",
		DupliType: scene.DupliVerts,
		Duplicates: func(scene.Timeline) []scene.Duplicate {
			return []scene.Duplicate{
				{Object: child, Matrix: ident()},
				{Object: child, Matrix: ident()},
			}
		},
	}
	e, _, buf := testExporter(t, testScene(dup))
	if err := e.exportObject(dup); err != nil {
		t.Fatalf("exportObject failed:\n%v", err)
	}
	out := buf.String()
	if n := strings.Count(out, `<object name="leaf" model="mesh_object">`); n != 1 {
		t.Fatalf("exportObject\nhave %d object elements\nwant 1", n)
	}
	for _, want := range []string{
		`<object_instance name="leaf.part_0.instance_0" object="leaf.part_0">`,
		`<object_instance name="leaf.part_0.instance_1" object="leaf.part_0">`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exportObject\nmissing %s in:\n%s", want, out)
		}
	}
}

func TestDuplicatorChildSuppressed(t *testing.T) {
	parent := &scene.Object{Name: "emitter", DupliType: scene.DupliFaces}
	child := &scene.Object{Name: "leaf", Mesh: quad("leaf", 0), Matrix: ident(), Parent: parent}
	e, _, buf := testExporter(t, testScene(parent, child))
	if err := e.exportObject(child); err != nil {
		t.Fatalf("exportObject failed:\n%v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("exportObject\nduplicated child emitted:\n%s", buf)
	}
}

func TestZeroFaceMeshSkipped(t *testing.T) {
	obj := &scene.Object{
		Name:   "empty",
		Mesh:   &scene.Mesh{Name: "empty", Verts: []linear.V3{{0, 0, 0}}},
		Matrix: ident(),
	}
	s := testScene(obj)
	opts := DefaultOptions()
	opts.GenerateMeshFiles = false
	rep := &recordReporter{}
	e, err := New(s, &recordWriter{}, opts, rep)
	if err != nil {
		t.Fatalf("New failed:\n%v", err)
	}
	var buf bytes.Buffer
	e.reset(t.TempDir())
	e.w = markup.NewWriter(&buf)
	e.reg = newRegistry(e.w)
	e.scope = "assembly"

	if err := e.exportObject(obj); err != nil {
		t.Fatalf("exportObject failed:\n%v", err)
	}
	if strings.Contains(buf.String(), "object_instance") {
		t.Fatalf("exportObject\ninstance emitted for empty mesh:\n%s", buf.String())
	}
	if len(rep.warns) != 1 || !strings.Contains(rep.warns[0], "empty") {
		t.Fatalf("exportObject\nhave warnings %v\nwant one naming the object", rep.warns)
	}
}

func TestMeshConversionFailureSkips(t *testing.T) {
	obj := &scene.Object{
		Name:   "broken",
		Matrix: ident(),
		SampleMesh: func(scene.Timeline) (*scene.Mesh, error) {
			return nil, os.ErrInvalid
		},
	}
	s := testScene(obj)
	rep := &recordReporter{}
	opts := DefaultOptions()
	opts.GenerateMeshFiles = false
	e, err := New(s, &recordWriter{}, opts, rep)
	if err != nil {
		t.Fatalf("New failed:\n%v", err)
	}
	var buf bytes.Buffer
	e.reset(t.TempDir())
	e.w = markup.NewWriter(&buf)
	e.reg = newRegistry(e.w)
	e.scope = "assembly"

	if err := e.exportObject(obj); err != nil {
		t.Fatalf("exportObject\nhave %v\nwant recoverable skip", err)
	}
	if len(rep.warns) != 1 || !strings.Contains(rep.warns[0], "broken") {
		t.Fatalf("exportObject\nhave warnings %v\nwant one naming the object", rep.warns)
	}
}

func TestDeformationBlur(t *testing.T) {
	var subframes []float32
	obj := &scene.Object{
		Name:            "wave",
		Matrix:          ident(),
		MotionBlur:      true,
		DeformationBlur: true,
		SampleMesh: func(t scene.Timeline) (*scene.Mesh, error) {
			subframes = append(subframes, t.Subframe)
			return quad("wave", 0), nil
		},
	}
	s := testScene(obj)
	s.Timeline.Subframe = 0.25
	e, mw, buf := testExporter(t, s)
	e.opts.MotionBlur = true
	e.opts.GenerateMeshFiles = true

	if err := e.exportObject(obj); err != nil {
		t.Fatalf("exportObject failed:\n%v", err)
	}
	if len(mw.meshes) != 2 {
		t.Fatalf("exportObject\nhave %d mesh files\nwant 2", len(mw.meshes))
	}
	if !strings.HasSuffix(mw.meshes[0], "wave.obj") || !strings.HasSuffix(mw.meshes[1], "wave_deform.obj") {
		t.Fatalf("exportObject\nhave files %v\nwant base and deform variant", mw.meshes)
	}
	if len(subframes) != 2 || subframes[0] != s.ShutterOpen || subframes[1] != s.ShutterClose {
		t.Fatalf("exportObject\nsampled subframes %v\nwant shutter interval", subframes)
	}
	if s.Timeline.Subframe != 0.25 {
		t.Fatalf("exportObject\ntimeline cursor %v\nwant 0.25 restored", s.Timeline.Subframe)
	}
	out := buf.String()
	if !strings.Contains(out, `<parameters name="filename">`) ||
		!strings.Contains(out, `<parameter name="1" value="meshes/wave_deform.obj" />`) {
		t.Fatalf("exportObject\nmissing two-entry filename list in:\n%s", out)
	}
}

func TestDeformationBlurFailureRestoresTimeline(t *testing.T) {
	obj := &scene.Object{
		Name:            "wave",
		Matrix:          ident(),
		MotionBlur:      true,
		DeformationBlur: true,
		SampleMesh: func(t scene.Timeline) (*scene.Mesh, error) {
			if t.Subframe > 0 {
				return nil, os.ErrInvalid
			}
			return quad("wave", 0), nil
		},
	}
	s := testScene(obj)
	s.Timeline.Subframe = 0.5
	e, _, _ := testExporter(t, s)
	e.opts.MotionBlur = true

	if err := e.exportObject(obj); err != nil {
		t.Fatalf("exportObject\nhave %v\nwant recoverable skip", err)
	}
	if s.Timeline.Subframe != 0.5 {
		t.Fatalf("exportObject\ntimeline cursor %v\nwant 0.5 restored after failure", s.Timeline.Subframe)
	}
}

func TestTransformBlur(t *testing.T) {
	obj := &scene.Object{
		Name:       "mover",
		Mesh:       quad("mover", 0),
		Matrix:     ident(),
		MotionBlur: true,
		SampleMatrix: func(t scene.Timeline) linear.M4 {
			var m linear.M4
			m.Translate(&linear.V3{t.Subframe, 0, 0})
			return m
		},
	}
	s := testScene(obj)
	e, _, buf := testExporter(t, s)
	e.opts.MotionBlur = true

	if err := e.exportObject(obj); err != nil {
		t.Fatalf("exportObject failed:\n%v", err)
	}
	if e.scope != "assembly" {
		t.Fatalf("exportObject\nscope %v\nwant assembly restored", e.scope)
	}
	out := buf.String()
	for _, want := range []string{
		`<assembly name="mover_assembly_0">`,
		`<surface_shader name="__surface_shader" model="physical_surface_shader">`,
		`<assembly_instance name="mover_assembly_0_instance_0" assembly="mover_assembly_0">`,
		`<transform time="0">`,
		`<transform time="1">`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exportObject\nmissing %s in:\n%s", want, out)
		}
	}
	// The close-time matrix carries the unit offset.
	if !strings.Contains(out, "1 0 0 1") {
		t.Fatalf("exportObject\nmissing translated matrix row in:\n%s", out)
	}
}

func TestPartialModeSkipsExistingFile(t *testing.T) {
	obj := &scene.Object{Name: "box", Mesh: quad("box", 0), Matrix: ident()}
	s := testScene(obj)
	e, mw, buf := testExporter(t, s)
	e.opts.GenerateMeshFiles = true
	e.opts.Mode = ExportPartial

	meshDir := filepath.Join(e.dir, "meshes")
	if err := os.MkdirAll(meshDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(meshDir, "box.obj"), []byte("o part_0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := e.exportObject(obj); err != nil {
		t.Fatalf("exportObject failed:\n%v", err)
	}
	if len(mw.meshes) != 0 {
		t.Fatalf("exportObject\nhave %d writes\nwant 0 for existing file", len(mw.meshes))
	}
	// The part table still comes from the in-memory
	// mesh, so the instance is emitted regardless.
	if !strings.Contains(buf.String(), `<object_instance name="box.part_0.instance_0"`) {
		t.Fatalf("exportObject\nmissing instance in:\n%s", buf.String())
	}
}

func TestHairParticleSystem(t *testing.T) {
	ps := &scene.ParticleSystem{
		Name: "fur",
		Hair: true,
		Strands: []scene.Strand{
			{Points: []linear.V3{{0, 0, 0}, {0, 0, 1}}},
		},
		RootRadius: 0.01,
		TipRadius:  0.001,
	}
	obj := &scene.Object{
		Name:            "cat",
		Mesh:            quad("cat", 0),
		Matrix:          ident(),
		ParticleSystems: []*scene.ParticleSystem{ps},
	}
	s := testScene(obj)
	e, mw, buf := testExporter(t, s)
	e.opts.GenerateMeshFiles = true

	if err := e.exportObject(obj); err != nil {
		t.Fatalf("exportObject failed:\n%v", err)
	}
	if len(mw.curves) != 1 || !strings.HasSuffix(mw.curves[0], "cat_fur.curves") {
		t.Fatalf("exportObject\nhave curve files %v\nwant one", mw.curves)
	}
	out := buf.String()
	if !strings.Contains(out, `<object name="cat_fur" model="curve_object">`) {
		t.Fatalf("exportObject\nmissing curve object in:\n%s", out)
	}
	if !strings.Contains(out, `<object_instance name="cat_fur.instance_0" object="cat_fur">`) {
		t.Fatalf("exportObject\nmissing curve instance in:\n%s", out)
	}
	// The emitter itself renders only when flagged.
	if strings.Contains(out, `<object name="cat" model="mesh_object">`) {
		t.Fatalf("exportObject\nemitter rendered without flag in:\n%s", out)
	}
}

func TestParticleInstances(t *testing.T) {
	rock := &scene.Object{Name: "rock", Mesh: quad("rock", 0), Matrix: ident()}
	ps := &scene.ParticleSystem{
		Name: "scatter",
		Instances: func(scene.Timeline) []scene.Duplicate {
			return []scene.Duplicate{
				{Object: rock, Matrix: ident()},
				{Object: rock, Matrix: ident()},
				{Object: rock, Matrix: ident()},
			}
		},
	}
	emitter := &scene.Object{
		Name:            "ground",
		Mesh:            quad("ground", 0),
		Matrix:          ident(),
		ParticleSystems: []*scene.ParticleSystem{ps},
	}
	ps.RenderEmitter = true
	s := testScene(emitter)
	e, _, buf := testExporter(t, s)

	if err := e.exportObject(emitter); err != nil {
		t.Fatalf("exportObject failed:\n%v", err)
	}
	out := buf.String()
	if n := strings.Count(out, `<object name="rock" model="mesh_object">`); n != 1 {
		t.Fatalf("exportObject\nhave %d rock objects\nwant 1", n)
	}
	if n := strings.Count(out, `object="rock.part_0"`); n != 3 {
		t.Fatalf("exportObject\nhave %d rock instances\nwant 3", n)
	}
	if !strings.Contains(out, `<object name="ground" model="mesh_object">`) {
		t.Fatalf("exportObject\nflagged emitter not rendered in:\n%s", out)
	}
}
