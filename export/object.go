// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package export

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/gviegas/appleseed/linear"
	"github.com/gviegas/appleseed/meshio"
	"github.com/gviegas/appleseed/scene"
)

// Motion blur states of an object.
const (
	noBlur = iota
	xformBlur
	deformBlur
)

func (e *Exporter) blurState(o *scene.Object) int {
	switch {
	case !e.opts.MotionBlur || !o.MotionBlur:
		return noBlur
	case o.DeformationBlur:
		return deformBlur
	default:
		return xformBlur
	}
}

// meshEntry records the outcome of tessellating and
// writing one distinct mesh. Tessellation and disk write
// happen at most once per key, no matter how many
// instances reference the mesh.
type meshEntry struct {
	parts []meshio.Part
	files []string
	ok    bool
}

// matrixSample pairs a world transform with a normalized
// shutter time. An empty time means a static transform.
type matrixSample struct {
	m    linear.M4
	time string
}

// exportObject emits everything one scene object
// contributes to the current assembly scope. Recoverable
// failures become warnings and skips; only markup/stream
// errors propagate.
func (e *Exporter) exportObject(o *scene.Object) error {
	if o.Hidden {
		return nil
	}
	// Children of vertex/face duplicators are visible
	// only through the parent's duplicate list.
	if p := o.Parent; p != nil && (p.DupliType == scene.DupliVerts || p.DupliType == scene.DupliFaces) {
		return nil
	}

	for _, ps := range o.ParticleSystems {
		if err := e.exportParticleSystem(o, ps); err != nil {
			return err
		}
	}
	if len(o.ParticleSystems) > 0 && !renderEmitter(o) {
		return nil
	}

	if o.IsDuplicator() {
		return e.exportDuplicates(o)
	}
	if o.Mesh == nil && o.SampleMesh == nil {
		return nil
	}
	return e.exportSingle(o)
}

func renderEmitter(o *scene.Object) bool {
	for _, ps := range o.ParticleSystems {
		if ps.RenderEmitter {
			return true
		}
	}
	return false
}

// exportSingle emits an object that stands for itself.
func (e *Exporter) exportSingle(o *scene.Object) error {
	switch e.blurState(o) {
	case deformBlur:
		entry, err := e.ensureMeshDeform(o)
		if err != nil || !entry.ok {
			return err
		}
		m := o.MatrixAt(e.s.Timeline)
		return e.emitInstances(o.Name, o, entry, []matrixSample{{m: m}})
	case xformBlur:
		m0, m1, err := e.sampleMatrices(o)
		if err != nil {
			return err
		}
		return e.emitBlurAssembly(o, m0, m1)
	default:
		entry, err := e.ensureMesh(o)
		if err != nil || !entry.ok {
			return err
		}
		m := o.MatrixAt(e.s.Timeline)
		return e.emitInstances(o.Name, o, entry, []matrixSample{{m: m}})
	}
}

// exportDuplicates emits every duplicate instance placed
// by a vertex/face/particle duplicator. The duplicated
// mesh is tessellated and written once; each duplicate
// becomes an instance with its own transform.
func (e *Exporter) exportDuplicates(o *scene.Object) error {
	if o.Duplicates == nil {
		return nil
	}
	switch e.blurState(o) {
	case xformBlur:
		at0, err := e.duplicatesAt(o, e.s.ShutterOpen)
		if err != nil {
			return err
		}
		at1, err := e.duplicatesAt(o, e.s.ShutterClose)
		if err != nil {
			return err
		}
		for i := range at0 {
			m1 := at0[i].Matrix
			if i < len(at1) {
				m1 = at1[i].Matrix
			}
			if err := e.emitBlurAssembly(at0[i].Object, at0[i].Matrix, m1); err != nil {
				return err
			}
		}
		return nil
	default:
		// Deformation blur does not apply to the
		// duplicator itself; duplicates use their
		// source object's mesh as-is.
		for _, d := range o.Duplicates(e.s.Timeline) {
			entry, err := e.ensureMesh(d.Object)
			if err != nil {
				return err
			}
			if !entry.ok {
				continue
			}
			if err := e.emitInstances(d.Object.Name, d.Object, entry, []matrixSample{{m: d.Matrix}}); err != nil {
				return err
			}
		}
		return nil
	}
}

func (e *Exporter) duplicatesAt(o *scene.Object, subframe float32) ([]scene.Duplicate, error) {
	var dups []scene.Duplicate
	err := e.s.WithTimeSample(e.s.Timeline.Frame, subframe, func() error {
		dups = o.Duplicates(e.s.Timeline)
		return nil
	})
	return dups, err
}

// sampleMatrices captures the object's world transform at
// shutter open and close, restoring the timeline after
// each sample.
func (e *Exporter) sampleMatrices(o *scene.Object) (m0, m1 linear.M4, err error) {
	err = e.s.WithTimeSample(e.s.Timeline.Frame, e.s.ShutterOpen, func() error {
		m0 = o.MatrixAt(e.s.Timeline)
		return nil
	})
	if err != nil {
		return
	}
	err = e.s.WithTimeSample(e.s.Timeline.Frame, e.s.ShutterClose, func() error {
		m1 = o.MatrixAt(e.s.Timeline)
		return nil
	})
	return
}

// emitBlurAssembly wraps a transform-blurred object in a
// dedicated assembly so the renderer can interpolate the
// assembly instance's two transforms over the shutter
// interval.
func (e *Exporter) emitBlurAssembly(o *scene.Object, m0, m1 linear.M4) error {
	name := o.Name + "_assembly_" + strconv.Itoa(e.nextCount(e.asmCount, o.Name))
	if err := e.w.Open(`assembly name="` + name + `"`); err != nil {
		return err
	}
	prev := e.scope
	e.scope = name
	err := func() error {
		if err := e.emitScopeDefaults(); err != nil {
			return err
		}
		entry, err := e.ensureMesh(o)
		if err != nil || !entry.ok {
			return err
		}
		var ident linear.M4
		ident.I()
		return e.emitInstances(o.Name, o, entry, []matrixSample{{m: ident}})
	}()
	e.scope = prev
	if cerr := e.w.Close("assembly"); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	inst := name + "_instance_" + strconv.Itoa(e.nextCount(e.asmInstCount, o.Name))
	if err := e.w.Open(`assembly_instance name="` + inst + `" assembly="` + name + `"`); err != nil {
		return err
	}
	if err := e.emitTransform(&m0, "0"); err != nil {
		return err
	}
	if err := e.emitTransform(&m1, "1"); err != nil {
		return err
	}
	return e.w.Close("assembly_instance")
}

// ensureMesh tessellates and writes the object's mesh the
// first time the object is seen, and emits the mesh's
// object element the first time it is referenced in the
// current assembly scope.
func (e *Exporter) ensureMesh(o *scene.Object) (*meshEntry, error) {
	entry, err := e.meshFor(o, false)
	if err != nil || !entry.ok {
		return entry, err
	}
	return entry, e.emitObjectOnce(o.Name, "mesh_object", "filename", entry.files)
}

func (e *Exporter) ensureMeshDeform(o *scene.Object) (*meshEntry, error) {
	entry, err := e.meshFor(o, true)
	if err != nil || !entry.ok {
		return entry, err
	}
	return entry, e.emitObjectOnce(o.Name, "mesh_object", "filename", entry.files)
}

func (e *Exporter) meshFor(o *scene.Object, deform bool) (*meshEntry, error) {
	if entry, ok := e.meshCache[o.Name]; ok {
		return entry, nil
	}
	entry := &meshEntry{}
	e.meshCache[o.Name] = entry

	var mesh, dmesh *scene.Mesh
	var err error
	if deform {
		// Two tessellations bounding the shutter
		// interval. The timeline is restored after
		// each sample, failed or not.
		err = e.s.WithTimeSample(e.s.Timeline.Frame, e.s.ShutterOpen, func() error {
			m, err := o.MeshAt(e.s.Timeline)
			mesh = m
			return err
		})
		if err == nil {
			err = e.s.WithTimeSample(e.s.Timeline.Frame, e.s.ShutterClose, func() error {
				m, err := o.MeshAt(e.s.Timeline)
				dmesh = m
				return err
			})
		}
	} else {
		mesh, err = o.MeshAt(e.s.Timeline)
	}
	if err != nil {
		cerr := MeshConversionError{Object: o.Name, Err: err}
		e.rep.Warnf("%v; skipping object", &cerr)
		return entry, nil
	}
	if mesh == nil || len(mesh.Faces) == 0 {
		e.rep.Warnf("object %s has no faces after conversion; skipping", o.Name)
		return entry, nil
	}

	entry.files = []string{filepath.Join("meshes", o.Name+".obj")}
	if deform {
		entry.files = append(entry.files, filepath.Join("meshes", o.Name+"_deform.obj"))
	}

	write := e.shouldWrite(o, entry.files[0])
	if write {
		parts, err := e.writeMeshFile(mesh, entry.files[0])
		if err != nil {
			return entry, nil
		}
		entry.parts = parts
		if deform {
			if _, err := e.writeMeshFile(dmesh, entry.files[1]); err != nil {
				return entry, nil
			}
		}
	} else {
		// The part table is still needed downstream;
		// rebuild it from the in-memory faces so the
		// skipped write never blocks instance emission.
		entry.parts = meshio.Parts(mesh)
	}
	entry.ok = true
	return entry, nil
}

func (e *Exporter) writeMeshFile(m *scene.Mesh, rel string) ([]meshio.Part, error) {
	abs := filepath.Join(e.dir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		werr := MeshWriteError{Path: abs, Err: err}
		e.rep.Warnf("%v; skipping", &werr)
		return nil, &werr
	}
	parts, err := e.mw.WriteMesh(m, abs)
	if err != nil {
		werr := MeshWriteError{Path: abs, Err: err}
		e.rep.Warnf("%v; skipping", &werr)
		return nil, &werr
	}
	return parts, nil
}

// shouldWrite decides whether a geometry file goes to
// disk under the current export mode.
func (e *Exporter) shouldWrite(o *scene.Object, rel string) bool {
	if !e.opts.GenerateMeshFiles {
		return false
	}
	switch e.opts.Mode {
	case ExportPartial:
		_, err := os.Stat(filepath.Join(e.dir, rel))
		return err != nil
	case ExportSelected:
		return o.Selected
	default:
		return true
	}
}

// emitObjectOnce emits the object element for a mesh or
// curve file the first time it is referenced in the
// current assembly scope.
func (e *Exporter) emitObjectOnce(name, model, fileParam string, files []string) error {
	done := e.objectDone[e.scope]
	if done == nil {
		done = make(map[string]bool)
		e.objectDone[e.scope] = done
	}
	if done[name] {
		return nil
	}
	done[name] = true

	if err := e.w.Open(`object name="` + name + `" model="` + model + `"`); err != nil {
		return err
	}
	var err error
	if len(files) == 1 {
		err = e.w.Param(fileParam, filepath.ToSlash(files[0]))
	} else {
		err = e.w.Params(fileParam, func() error {
			for i, f := range files {
				if err := e.w.Param(strconv.Itoa(i), filepath.ToSlash(f)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err != nil {
		return err
	}
	return e.w.Close("object")
}

// emitInstances emits one object_instance per mesh part,
// advancing the instance ordinal of the base name once.
func (e *Exporter) emitInstances(base string, o *scene.Object, entry *meshEntry, samples []matrixSample) error {
	ord := strconv.Itoa(e.nextCount(e.instCount, base))
	if o.RenderLayer != "" {
		e.addRule(o.Name, o.RenderLayer)
	}
	for _, part := range entry.parts {
		var mat *scene.Material
		if part.MaterialIndex < len(o.Materials) {
			mat = o.Materials[part.MaterialIndex]
		}
		if mat == nil {
			e.warnMissing(o.Name + " material slot " + strconv.Itoa(part.MaterialIndex))
		}
		r, err := e.resolveMaterial(mat)
		if err != nil {
			return err
		}
		name := base + "." + part.Name + ".instance_" + ord
		obj := base + "." + part.Name
		if err := e.w.Open(`object_instance name="` + name + `" object="` + obj + `"`); err != nil {
			return err
		}
		for i := range samples {
			if err := e.emitTransform(&samples[i].m, samples[i].time); err != nil {
				return err
			}
		}
		if err := e.w.Line(`<assign_material slot="default" side="front" material="` + r.front + `" />`); err != nil {
			return err
		}
		if err := e.w.Line(`<assign_material slot="default" side="back" material="` + r.back + `" />`); err != nil {
			return err
		}
		if err := e.w.Close("object_instance"); err != nil {
			return err
		}
	}
	return nil
}

// emitTransform writes a transform element holding the
// matrix in row-major order, optionally tagged with a
// normalized shutter time.
func (e *Exporter) emitTransform(m *linear.M4, time string) error {
	elem := "transform"
	if time != "" {
		elem = `transform time="` + time + `"`
	}
	if err := e.w.Open(elem); err != nil {
		return err
	}
	if err := e.w.Open("matrix"); err != nil {
		return err
	}
	r := m.RowMajor()
	for i := 0; i < 4; i++ {
		row := ""
		for j := 0; j < 4; j++ {
			if j > 0 {
				row += " "
			}
			row += strconv.FormatFloat(float64(r[i*4+j]), 'g', -1, 32)
		}
		if err := e.w.Line(row); err != nil {
			return err
		}
	}
	if err := e.w.Close("matrix"); err != nil {
		return err
	}
	return e.w.Close("transform")
}

// exportParticleSystem emits a hair system as a curve
// object, or the instances of a non-hair system.
func (e *Exporter) exportParticleSystem(o *scene.Object, ps *scene.ParticleSystem) error {
	if !ps.Hair {
		if ps.Instances == nil {
			return nil
		}
		for _, d := range ps.Instances(e.s.Timeline) {
			entry, err := e.ensureMesh(d.Object)
			if err != nil {
				return err
			}
			if !entry.ok {
				continue
			}
			if err := e.emitInstances(d.Object.Name, d.Object, entry, []matrixSample{{m: d.Matrix}}); err != nil {
				return err
			}
		}
		return nil
	}

	key := o.Name + "_" + ps.Name
	entry, ok := e.meshCache[key]
	if !ok {
		entry = &meshEntry{}
		e.meshCache[key] = entry
		if len(ps.Strands) == 0 {
			e.rep.Warnf("particle system %s has no strands; skipping", key)
		} else {
			rel := filepath.Join("meshes", key+".curves")
			if e.shouldWrite(o, rel) {
				abs := filepath.Join(e.dir, rel)
				if err := os.MkdirAll(filepath.Dir(abs), 0o755); err == nil {
					err = e.mw.WriteCurves(ps, abs)
					if err != nil {
						werr := MeshWriteError{Path: abs, Err: err}
						e.rep.Warnf("%v; skipping", &werr)
					} else {
						entry.ok = true
					}
				} else {
					werr := MeshWriteError{Path: abs, Err: err}
					e.rep.Warnf("%v; skipping", &werr)
				}
			} else {
				entry.ok = true
			}
			entry.files = []string{rel}
			entry.parts = []meshio.Part{{MaterialIndex: ps.MaterialIndex}}
		}
	}
	if !entry.ok {
		return nil
	}
	if err := e.emitObjectOnce(key, "curve_object", "filepath", entry.files); err != nil {
		return err
	}
	// Curve objects have a single implicit part.
	ord := strconv.Itoa(e.nextCount(e.instCount, key))
	var mat *scene.Material
	if ps.MaterialIndex < len(o.Materials) {
		mat = o.Materials[ps.MaterialIndex]
	}
	if mat == nil {
		e.warnMissing(key + " material slot " + strconv.Itoa(ps.MaterialIndex))
	}
	r, err := e.resolveMaterial(mat)
	if err != nil {
		return err
	}
	name := key + ".instance_" + ord
	if err := e.w.Open(`object_instance name="` + name + `" object="` + key + `"`); err != nil {
		return err
	}
	m := o.MatrixAt(e.s.Timeline)
	if err := e.emitTransform(&m, ""); err != nil {
		return err
	}
	if err := e.w.Line(`<assign_material slot="default" side="front" material="` + r.front + `" />`); err != nil {
		return err
	}
	if err := e.w.Line(`<assign_material slot="default" side="back" material="` + r.back + `" />`); err != nil {
		return err
	}
	return e.w.Close("object_instance")
}
