// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"github.com/gviegas/appleseed/linear"
)

// Duplication kinds.
const (
	DupliNone = iota
	DupliVerts
	DupliFaces
	DupliParticles
)

// Object is a scene entity that may carry a mesh,
// material slots and duplication systems.
type Object struct {
	Name      string
	Mesh      *Mesh
	Matrix    linear.M4
	Parent    *Object
	Materials []*Material

	MotionBlur      bool
	DeformationBlur bool

	DupliType int
	Selected  bool
	Hidden    bool

	// Render-layer pattern assigned to this object's
	// instances, if any.
	RenderLayer string

	ParticleSystems []*ParticleSystem

	// Host sampling hooks. When nil, the static
	// Matrix/Mesh fields are used regardless of the
	// timeline cursor.
	SampleMatrix func(t Timeline) linear.M4
	SampleMesh   func(t Timeline) (*Mesh, error)

	// Duplicates resolves the object's duplication
	// instances at the current timeline cursor. Only
	// meaningful when DupliType is not DupliNone.
	Duplicates func(t Timeline) []Duplicate
}

// MatrixAt returns the object's world transform at the
// given timeline cursor.
func (o *Object) MatrixAt(t Timeline) linear.M4 {
	if o.SampleMatrix != nil {
		return o.SampleMatrix(t)
	}
	return o.Matrix
}

// MeshAt returns the object's tessellated mesh at the
// given timeline cursor.
func (o *Object) MeshAt(t Timeline) (*Mesh, error) {
	if o.SampleMesh != nil {
		return o.SampleMesh(t)
	}
	return o.Mesh, nil
}

// IsDuplicator returns whether o places duplicates of
// other objects instead of being rendered itself.
func (o *Object) IsDuplicator() bool { return o.DupliType != DupliNone }

// Duplicate is one placed copy of a source object.
type Duplicate struct {
	Object *Object
	Matrix linear.M4
}

// Mesh is a polygonal mesh in host form.
type Mesh struct {
	Name    string
	Verts   []linear.V3
	Normals []linear.V3
	UVs     [][2]float32
	Faces   []Face
}

// Face is a polygon referencing mesh vertices.
type Face struct {
	Indices       []int
	MaterialIndex int
	Smooth        bool
}

// ParticleSystem is a particle or hair system attached
// to an emitter object.
type ParticleSystem struct {
	Name string
	Hair bool

	// Whether the emitter object itself renders in
	// addition to its particles.
	RenderEmitter bool

	// Hair strands; each strand is a polyline of
	// control points with a root and tip radius.
	Strands    []Strand
	RootRadius float32
	TipRadius  float32

	// Index into the emitter's material slots used
	// to shade the strands or instanced particles.
	MaterialIndex int

	// Non-hair systems duplicate an instanced object.
	Instances func(t Timeline) []Duplicate
}

// Strand is a single hair curve.
type Strand struct {
	Points []linear.V3
}
