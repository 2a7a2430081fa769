// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package export

import (
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/h2non/filetype"

	"github.com/gviegas/appleseed/markup"
	"github.com/gviegas/appleseed/scene"

	// Raster formats accepted for texture parameters.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// TextureKey identifies a deduplicated texture resource.
type TextureKey struct {
	Path       string
	ColorSpace string
	Addressing string
	Filtering  string
}

// registry interns the color and texture resources of one
// export pass.
//
// Colors are never deduplicated: every call emits a fresh
// uniquely named resource, since the multiplier differs
// per usage site and literal colors are cheap. Textures
// are disk resources and are emitted at most once per
// key, to avoid duplicate renderer-side loads.
type registry struct {
	w        *markup.Writer
	textures map[TextureKey]string
	names    map[string]bool
	colorSeq int
}

func newRegistry(w *markup.Writer) *registry {
	return &registry{
		w:        w,
		textures: make(map[TextureKey]string),
		names:    make(map[string]bool),
	}
}

// internColor emits a literal color resource and returns
// its name. The name is always fresh.
func (r *registry) internColor(hint string, values [3]float32, multiplier float32) (string, error) {
	name := hint + "_color_" + strconv.Itoa(r.colorSeq)
	r.colorSeq++
	if err := r.w.Open(`color name="` + name + `"`); err != nil {
		return "", err
	}
	if err := r.w.Param("color_space", "linear_rgb"); err != nil {
		return "", err
	}
	if err := r.w.Param("multiplier", multiplier); err != nil {
		return "", err
	}
	if err := r.w.Line("<values>" + markup.Stringify(values) + "</values>"); err != nil {
		return "", err
	}
	if err := r.w.Close("color"); err != nil {
		return "", err
	}
	return name, nil
}

// internTexture emits a texture resource and its addressed
// instance the first time key is seen, returning the
// cached instance name on subsequent calls.
func (r *registry) internTexture(key TextureKey) (string, error) {
	if name, ok := r.textures[key]; ok {
		return name, nil
	}
	name := r.textureName(key.Path)
	if err := r.w.Open(`texture name="` + name + `" model="disk_texture_2d"`); err != nil {
		return "", err
	}
	if err := r.w.Param("filename", key.Path); err != nil {
		return "", err
	}
	if err := r.w.Param("color_space", key.ColorSpace); err != nil {
		return "", err
	}
	if err := r.w.Close("texture"); err != nil {
		return "", err
	}
	inst := name + "_inst"
	if err := r.w.Open(`texture_instance name="` + inst + `" texture="` + name + `"`); err != nil {
		return "", err
	}
	if err := r.w.Param("addressing_mode", key.Addressing); err != nil {
		return "", err
	}
	if err := r.w.Param("filtering_mode", key.Filtering); err != nil {
		return "", err
	}
	if err := r.w.Close("texture_instance"); err != nil {
		return "", err
	}
	r.textures[key] = inst
	return inst, nil
}

// textureName derives a unique resource name from the
// texture's file stem.
func (r *registry) textureName(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			return c
		}
		return '_'
	}, stem)
	if stem == "" {
		stem = "texture"
	}
	name := stem
	for i := 2; r.names[name]; i++ {
		name = stem + "_" + strconv.Itoa(i)
	}
	r.names[name] = true
	return name
}

// keyFor builds the interning key of a texture reference.
func keyFor(t *scene.TextureRef) TextureKey {
	key := TextureKey{
		Path:       t.Path,
		ColorSpace: t.ColorSpace,
		Addressing: t.Addressing,
		Filtering:  t.Filtering,
	}
	if key.ColorSpace == "" {
		key.ColorSpace = "srgb"
	}
	if key.Addressing == "" {
		key.Addressing = "wrap"
	}
	if key.Filtering == "" {
		key.Filtering = "bilinear"
	}
	return key
}

// validImage reports whether path names a readable 2D
// raster image. Procedural and broken textures fall back
// to literal parameter values.
func validImage(t *scene.TextureRef) bool {
	if t == nil || t.Procedural || t.Path == "" {
		return false
	}
	f, err := os.Open(t.Path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 262)
	n, _ := f.Read(head)
	if !filetype.IsImage(head[:n]) {
		return false
	}
	if _, err := f.Seek(0, 0); err != nil {
		return false
	}
	cfg, _, err := image.DecodeConfig(f)
	return err == nil && cfg.Width > 0 && cfg.Height > 0
}
