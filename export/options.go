// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package export

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Geometry export modes.
const (
	// Always write mesh/curve files.
	ExportAll = "all"
	// Write only files that do not exist yet.
	ExportPartial = "partial"
	// Write only files of selected objects.
	ExportSelected = "selected"
)

// Lighting engines.
const (
	PathTracing = "pt"
	SPPM        = "sppm"
)

// Options control one export pass.
type Options struct {
	// Geometry export mode: all, partial or selected.
	Mode string `toml:"mode"`

	// Whether mesh/curve files are written to disk at
	// all. Instance emission proceeds either way.
	GenerateMeshFiles bool `toml:"generate_mesh_files"`

	// Whether emitting materials become mesh lights.
	MeshLights bool `toml:"export_emitting_materials"`

	// Scene-level motion blur switch; per-object flags
	// are honored only when this is set.
	MotionBlur bool `toml:"enable_motion_blur"`

	LightingEngine string `toml:"lighting_engine"`

	// Sampling.
	Samples int `toml:"samples"`
	Passes  int `toml:"passes"`
	Bounces int `toml:"max_bounces"`

	// SPPM only.
	PhotonsPerPass int     `toml:"photons_per_pass"`
	SPPMAlpha      float32 `toml:"sppm_alpha"`
	InitialRadius  float32 `toml:"initial_radius_percent"`
}

// DefaultOptions returns the options used when no preset
// is given.
func DefaultOptions() Options {
	return Options{
		Mode:              ExportAll,
		GenerateMeshFiles: true,
		MeshLights:        true,
		MotionBlur:        false,
		LightingEngine:    PathTracing,
		Samples:           64,
		Passes:            1,
		Bounces:           8,
		PhotonsPerPass:    1000000,
		SPPMAlpha:         0.7,
		InitialRadius:     0.1,
	}
}

// LoadOptions reads a TOML options preset, applying it
// over the defaults.
func LoadOptions(path string) (Options, error) {
	o := DefaultOptions()
	b, err := os.ReadFile(path)
	if err != nil {
		return o, fmt.Errorf(prefix+"options: %w", err)
	}
	if err := toml.Unmarshal(b, &o); err != nil {
		return o, fmt.Errorf(prefix+"options: %w", err)
	}
	if err := o.validate(); err != nil {
		return o, err
	}
	return o, nil
}

func (o *Options) validate() error {
	var reason string
	switch {
	case o.Mode != ExportAll && o.Mode != ExportPartial && o.Mode != ExportSelected:
		reason = "invalid mode " + o.Mode
	case o.LightingEngine != PathTracing && o.LightingEngine != SPPM:
		reason = "invalid lighting engine " + o.LightingEngine
	case o.Samples < 1:
		reason = "invalid sample count"
	case o.Passes < 1:
		reason = "invalid pass count"
	default:
		return nil
	}
	return errors.New(prefix + "options: " + reason)
}
