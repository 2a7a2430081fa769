// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package export writes scenes as textual renderer
// project files, plus the geometry files they reference.
package export

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gviegas/appleseed/markup"
	"github.com/gviegas/appleseed/meshio"
	"github.com/gviegas/appleseed/scene"
)

const formatRevision = "27"

// Exporter writes a scene as a renderer project.
// It is not safe for concurrent use; each Export call
// runs a full pass over the scene with fresh naming and
// caching state.
type Exporter struct {
	s    *scene.Scene
	mw   meshio.Writer
	opts Options
	rep  Reporter

	// Per-pass state, reset by Export.
	w            *markup.Writer
	reg          *registry
	dir          string
	scope        string
	matCache     map[string]map[string]resolved
	meshCache    map[string]*meshEntry
	objectDone   map[string]map[string]bool
	instCount    map[string]int
	asmCount     map[string]int
	asmInstCount map[string]int
	rules        []renderRule
	ruleSeen     map[string]bool
}

type renderRule struct {
	object string
	layer  string
}

// New creates an exporter for the given scene.
// mw writes the geometry files referenced by the project.
// rep may be nil, in which case diagnostics are dropped.
func New(s *scene.Scene, mw meshio.Writer, opts Options, rep Reporter) (*Exporter, error) {
	var reason string
	switch {
	case s == nil:
		reason = "nil scene"
	case mw == nil:
		reason = "nil mesh writer"
	default:
		if err := opts.validate(); err != nil {
			return nil, err
		}
		goto validArg
	}
	return nil, errors.New(prefix + reason)
validArg:
	if rep == nil {
		rep = Discard
	}
	return &Exporter{s: s, mw: mw, opts: opts, rep: rep}, nil
}

func (e *Exporter) reset(dir string) {
	e.dir = dir
	e.scope = ""
	e.matCache = make(map[string]map[string]resolved)
	e.meshCache = make(map[string]*meshEntry)
	e.objectDone = make(map[string]map[string]bool)
	e.instCount = make(map[string]int)
	e.asmCount = make(map[string]int)
	e.asmInstCount = make(map[string]int)
	e.rules = nil
	e.ruleSeen = make(map[string]bool)
}

// nextCount returns the current ordinal for the given
// base name and advances it. Ordinals never reset within
// a single export pass.
func (e *Exporter) nextCount(m map[string]int, base string) int {
	n := m[base]
	m[base] = n + 1
	return n
}

func (e *Exporter) addRule(object, layer string) {
	if e.ruleSeen[object] {
		return
	}
	e.ruleSeen[object] = true
	e.rules = append(e.rules, renderRule{object: object, layer: layer})
}

// Export writes the project file at path and any geometry
// files under path's directory. Recoverable per-object
// failures are reported and skipped; I/O failures on the
// project file itself abort the export.
func (e *Exporter) Export(path string) error {
	start := time.Now()
	e.reset(filepath.Dir(path))

	f, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	bw := bufio.NewWriter(f)
	e.w = markup.NewWriter(bw)
	e.reg = newRegistry(e.w)

	err = e.writeProject()
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if errors.Is(err, markup.ErrImbalanced) {
			return err
		}
		switch err.(type) {
		case *IOError, *MeshWriteError, *MeshConversionError:
			return err
		}
		return &IOError{Path: path, Err: err}
	}
	e.rep.Infof("wrote %s in %v", path, time.Since(start).Round(time.Millisecond))
	return nil
}

func (e *Exporter) writeProject() error {
	if err := e.w.Line(`<?xml version="1.0" encoding="UTF-8"?>`); err != nil {
		return err
	}
	if err := e.w.Open(`project format_revision="` + formatRevision + `"`); err != nil {
		return err
	}
	if err := e.writeScene(); err != nil {
		return err
	}
	if err := e.writeRules(); err != nil {
		return err
	}
	if err := e.writeOutput(); err != nil {
		return err
	}
	if err := e.writeConfigurations(); err != nil {
		return err
	}
	return e.w.Close("project")
}

func (e *Exporter) writeScene() error {
	if err := e.w.Open("scene"); err != nil {
		return err
	}
	e.scope = "scene"

	if err := e.writeCamera(); err != nil {
		return err
	}
	if err := e.writeEnvironment(); err != nil {
		return err
	}

	if err := e.w.Open(`assembly name="assembly"`); err != nil {
		return err
	}
	e.scope = "assembly"
	if err := e.emitScopeDefaults(); err != nil {
		return err
	}
	for _, o := range e.s.Objects {
		e.rep.Progressf("exporting object %s", o.Name)
		if err := e.exportObject(o); err != nil {
			return err
		}
	}
	for _, l := range e.s.Lights {
		if err := e.writeLight(l); err != nil {
			return err
		}
	}
	if err := e.w.Close("assembly"); err != nil {
		return err
	}
	e.scope = "scene"

	if err := e.w.Open(`assembly_instance name="assembly_instance" assembly="assembly"`); err != nil {
		return err
	}
	if err := e.w.Close("assembly_instance"); err != nil {
		return err
	}
	return e.w.Close("scene")
}

// emitScopeDefaults writes the entities every assembly
// scope provides: the shared surface shader, the fallback
// diffuse BSDF and the fallback material that unresolved
// slots and emitter back faces are assigned to.
func (e *Exporter) emitScopeDefaults() error {
	if err := e.w.Open(`surface_shader name="` + surfaceShaderName + `" model="physical_surface_shader"`); err != nil {
		return err
	}
	if err := e.w.Close("surface_shader"); err != nil {
		return err
	}
	refl, err := e.reg.internColor("__default", [3]float32{0.8, 0.8, 0.8}, 1)
	if err != nil {
		return err
	}
	if err := e.w.Open(`bsdf name="` + defaultBSDFName + `" model="lambertian_brdf"`); err != nil {
		return err
	}
	if err := e.w.Param("reflectance", refl); err != nil {
		return err
	}
	if err := e.w.Close("bsdf"); err != nil {
		return err
	}
	if err := e.w.Open(`material name="` + defaultMaterialName + `" model="generic_material"`); err != nil {
		return err
	}
	if err := e.w.Param("bsdf", defaultBSDFName); err != nil {
		return err
	}
	if err := e.w.Param("surface_shader", surfaceShaderName); err != nil {
		return err
	}
	return e.w.Close("material")
}

// writeRules emits one render layer assignment rule per
// flagged object, in the order the objects were first
// seen during the pass.
func (e *Exporter) writeRules() error {
	if len(e.rules) == 0 {
		return nil
	}
	if err := e.w.Open("rules"); err != nil {
		return err
	}
	for i, r := range e.rules {
		n := strconv.Itoa(i + 1)
		if err := e.w.Open(`render_layer_assignment name="rule_` + n + `" model="entity_name"`); err != nil {
			return err
		}
		if err := e.w.Param("entity_name_pattern", r.object); err != nil {
			return err
		}
		if err := e.w.Param("render_layer", r.layer); err != nil {
			return err
		}
		if err := e.w.Param("order", 1); err != nil {
			return err
		}
		if err := e.w.Close("render_layer_assignment"); err != nil {
			return err
		}
	}
	return e.w.Close("rules")
}

func (e *Exporter) writeOutput() error {
	if err := e.w.Open("output"); err != nil {
		return err
	}
	if err := e.w.Open(`frame name="beauty"`); err != nil {
		return err
	}
	if err := e.w.Param("camera", "camera"); err != nil {
		return err
	}
	res := strconv.Itoa(e.s.Width) + " " + strconv.Itoa(e.s.Height)
	if err := e.w.Param("resolution", res); err != nil {
		return err
	}
	if err := e.w.Param("color_space", "srgb"); err != nil {
		return err
	}
	if err := e.w.Close("frame"); err != nil {
		return err
	}
	return e.w.Close("output")
}
