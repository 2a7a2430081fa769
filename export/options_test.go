// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if err := o.validate(); err != nil {
		t.Fatalf("DefaultOptions\nhave %v\nwant valid", err)
	}
	if o.Mode != ExportAll || o.LightingEngine != PathTracing {
		t.Fatalf("DefaultOptions\nhave %v/%v\nwant %v/%v",
			o.Mode, o.LightingEngine, ExportAll, PathTracing)
	}
}

func TestValidate(t *testing.T) {
	for _, c := range []func(*Options){
		func(o *Options) { o.Mode = "never" },
		func(o *Options) { o.LightingEngine = "bidir" },
		func(o *Options) { o.Samples = 0 },
		func(o *Options) { o.Passes = -1 },
	} {
		o := DefaultOptions()
		c(&o)
		if err := o.validate(); err == nil {
			t.Fatalf("validate(%+v)\nhave nil\nwant error", o)
		}
	}
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.toml")
	data := `
mode = "selected"
lighting_engine = "sppm"
samples = 256
photons_per_pass = 500000
export_emitting_materials = false
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	o, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions failed:\n%v", err)
	}
	if o.Mode != ExportSelected || o.LightingEngine != SPPM || o.Samples != 256 {
		t.Fatalf("LoadOptions\nhave %v/%v/%d\nwant selected/sppm/256", o.Mode, o.LightingEngine, o.Samples)
	}
	if o.PhotonsPerPass != 500000 || o.MeshLights {
		t.Fatalf("LoadOptions\nhave %d/%v\nwant 500000/false", o.PhotonsPerPass, o.MeshLights)
	}
	// Unset keys keep their defaults.
	if o.Bounces != 8 || !o.GenerateMeshFiles {
		t.Fatalf("LoadOptions\nhave %d/%v\nwant defaults preserved", o.Bounces, o.GenerateMeshFiles)
	}
}

func TestLoadOptionsErrors(t *testing.T) {
	if _, err := LoadOptions(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("LoadOptions(absent)\nhave nil\nwant error")
	}
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte(`mode = "never"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOptions(path); err == nil {
		t.Fatal("LoadOptions(bad mode)\nhave nil\nwant error")
	}
}
