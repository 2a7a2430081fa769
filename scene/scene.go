// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package scene defines the in-memory scene description
// consumed by the project exporter.
//
// The types here mirror what a host 3D application hands
// over for export: objects with meshes and material slots,
// layered or node-based materials, lights, cameras, the
// world environment and particle/duplication systems.
// How this data is obtained from the host is outside the
// package's concern.
package scene

import (
	"github.com/gviegas/appleseed/linear"
)

// Scene is the root of the description.
type Scene struct {
	Name     string
	Objects  []*Object
	Lights   []*Light
	Camera   *Camera
	World    *World
	Timeline Timeline

	// Output frame properties.
	Width  int
	Height int
	FPS    float32

	// Shutter interval in normalized subframe offsets.
	ShutterOpen  float32
	ShutterClose float32
}

// Timeline is the host's current-frame cursor.
// The exporter mutates it to sample alternate-time
// transforms and tessellations and restores it before
// any sibling read.
type Timeline struct {
	Frame    int
	Subframe float32
}

// WithTimeSample snapshots the timeline, moves it to
// (frame, subframe), invokes fn and restores the
// snapshot on every exit path.
func (s *Scene) WithTimeSample(frame int, subframe float32, fn func() error) error {
	saved := s.Timeline
	s.Timeline = Timeline{Frame: frame, Subframe: subframe}
	defer func() { s.Timeline = saved }()
	return fn()
}

// Light kinds.
const (
	PointLight = iota
	SpotLight
	DirectionalLight
	SunLight
)

// Light is a non-mesh light source.
type Light struct {
	Name      string
	Kind      int
	Matrix    linear.M4
	Color     [3]float32
	Intensity float32

	// Spot cone angles, in degrees.
	InnerAngle float32
	OuterAngle float32

	CastIndirect         bool
	ImportanceMultiplier float32
}

// Camera models.
const (
	Pinhole = iota
	ThinLens
	Spherical
)

// Camera describes the active view.
type Camera struct {
	Name   string
	Model  int
	Matrix linear.M4

	// Millimeters.
	FocalLength float32
	FilmWidth   float32
	FilmHeight  float32

	// Thin-lens only.
	FStop           float32
	FocalDistance   float32
	DiaphragmBlades int

	NearZ float32
}

// World environment models.
const (
	NoEnvironment = iota
	ConstantEnvironment
	GradientEnvironment
	LatLongEnvironment
	MirrorBallEnvironment
)

// World describes the environment surrounding the scene.
type World struct {
	Model        int
	HorizonColor [3]float32
	ZenithColor  [3]float32

	// Image-based models.
	EnvTex     *TextureRef
	Multiplier float32
}
