// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"encoding/base64"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chewxy/math32"

	"github.com/gviegas/appleseed/linear"
	"github.com/gviegas/appleseed/scene"
)

// Frame defaults for assets that carry no output hints.
const (
	defaultWidth  = 1920
	defaultHeight = 1080
	defaultFPS    = 24
)

// Load reads a .gltf or .glb file and converts it into
// the exporter's scene form.
func Load(path string) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc *GLTF
	var bin []byte
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		doc, bin, err = DecodeGLB(f)
	} else {
		doc, err = Decode(f)
	}
	if err != nil {
		return nil, err
	}
	return Convert(doc, bin, filepath.Dir(path))
}

// Convert maps a decoded asset to a scene. bin is the GLB
// binary payload, if any; dir resolves relative buffer
// and image URIs.
func Convert(doc *GLTF, bin []byte, dir string) (*scene.Scene, error) {
	if err := doc.Check(); err != nil {
		return nil, err
	}
	c := &converter{
		doc:    doc,
		bin:    bin,
		dir:    dir,
		bufs:   make([][]byte, len(doc.Buffers)),
		meshes: make([]*meshSlots, len(doc.Meshes)),
		mats:   make([]*scene.Material, len(doc.Materials)),
		s: &scene.Scene{
			Width:        defaultWidth,
			Height:       defaultHeight,
			FPS:          defaultFPS,
			ShutterOpen:  0,
			ShutterClose: 1,
		},
	}

	var nodes []int64
	if doc.Scene != nil {
		sc := &doc.Scenes[*doc.Scene]
		c.s.Name = sc.Name
		nodes = sc.Nodes
	} else if len(doc.Scenes) > 0 {
		c.s.Name = doc.Scenes[0].Name
		nodes = doc.Scenes[0].Nodes
	}
	if c.s.Name == "" {
		c.s.Name = "scene"
	}

	var root linear.M4
	root.I()
	for _, i := range nodes {
		if err := c.walk(i, &root); err != nil {
			return nil, err
		}
	}
	return c.s, nil
}

// meshSlots pairs a converted mesh with the material
// slot list its face indices refer to.
type meshSlots struct {
	mesh  *scene.Mesh
	slots []*scene.Material
}

type converter struct {
	doc    *GLTF
	bin    []byte
	dir    string
	bufs   [][]byte
	meshes []*meshSlots
	mats   []*scene.Material
	s      *scene.Scene
}

func (c *converter) walk(i int64, parent *linear.M4) error {
	n := &c.doc.Nodes[i]
	local := nodeMatrix(n)
	var world linear.M4
	world.Mul(parent, &local)

	name := n.Name
	if name == "" {
		name = "node_" + strconv.FormatInt(i, 10)
	}

	if n.Mesh != nil {
		ms, err := c.mesh(*n.Mesh)
		if err != nil {
			return err
		}
		c.s.Objects = append(c.s.Objects, &scene.Object{
			Name:      name,
			Mesh:      ms.mesh,
			Matrix:    world,
			Materials: ms.slots,
		})
	}
	if n.Camera != nil && c.s.Camera == nil {
		c.s.Camera = c.camera(*n.Camera, name, &world)
	}
	if l := n.Extensions.Light; l != nil && c.doc.Extensions.Lights != nil {
		c.s.Lights = append(c.s.Lights, c.light(l.Light, name, &world))
	}

	for _, child := range n.Children {
		if err := c.walk(child, &world); err != nil {
			return err
		}
	}
	return nil
}

// nodeMatrix returns the node's local transform.
func nodeMatrix(n *Node) (m linear.M4) {
	if n.Matrix != nil {
		// glTF matrices are column-major, like linear's.
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				m[i][j] = n.Matrix[i*4+j]
			}
		}
		return
	}
	t := linear.V3{}
	if n.Translation != nil {
		t = *n.Translation
	}
	q := linear.Q{R: 1}
	if n.Rotation != nil {
		q = linear.Q{
			V: linear.V3{n.Rotation[0], n.Rotation[1], n.Rotation[2]},
			R: n.Rotation[3],
		}
	}
	s := linear.V3{1, 1, 1}
	if n.Scale != nil {
		s = *n.Scale
	}
	m.Compose(&t, &q, &s)
	return
}

func (c *converter) camera(i int64, name string, world *linear.M4) *scene.Camera {
	cam := &c.doc.Cameras[i]
	out := &scene.Camera{Name: name, Matrix: *world}
	if p := cam.Perspective; p != nil {
		// Full-frame film back; width follows the
		// aspect ratio when given.
		out.Model = scene.Pinhole
		out.FilmHeight = 24
		out.FilmWidth = 36
		if p.AspectRatio > 0 {
			out.FilmWidth = out.FilmHeight * p.AspectRatio
		}
		out.FocalLength = out.FilmHeight / 2 / math32.Tan(p.YFOV/2)
		out.NearZ = -p.Znear
	} else {
		out.Model = scene.Pinhole
	}
	return out
}

func (c *converter) light(i int64, name string, world *linear.M4) *scene.Light {
	l := &c.doc.Extensions.Lights.Lights[i]
	out := &scene.Light{
		Name:         name,
		Matrix:       *world,
		Color:        [3]float32{1, 1, 1},
		Intensity:    1,
		CastIndirect: true,
	}
	if l.Color != nil {
		out.Color = *l.Color
	}
	if l.Intensity != nil {
		out.Intensity = *l.Intensity
	}
	switch l.Type {
	case Ldirectional:
		out.Kind = scene.DirectionalLight
	case Lspot:
		out.Kind = scene.SpotLight
		outer := math32.Pi / 4
		if l.Spot != nil {
			if l.Spot.OuterConeAngle != nil {
				outer = *l.Spot.OuterConeAngle
			}
			out.InnerAngle = l.Spot.InnerConeAngle * 180 / math32.Pi
		}
		out.OuterAngle = outer * 180 / math32.Pi
	default:
		out.Kind = scene.PointLight
	}
	return out
}

// mesh converts a glTF mesh, concatenating its triangle
// primitives into a single part-indexed mesh. The result
// is cached; objects sharing a mesh share the conversion.
func (c *converter) mesh(i int64) (*meshSlots, error) {
	if c.meshes[i] != nil {
		return c.meshes[i], nil
	}
	src := &c.doc.Meshes[i]
	name := src.Name
	if name == "" {
		name = "mesh_" + strconv.FormatInt(i, 10)
	}
	ms := &meshSlots{mesh: &scene.Mesh{Name: name}}

	for pi := range src.Primitives {
		p := &src.Primitives[pi]
		if p.Mode != nil && *p.Mode != TRIANGLES {
			continue
		}
		ai, ok := p.Attributes["POSITION"]
		if !ok {
			return nil, newErr("primitive without POSITION")
		}
		verts, err := c.vec3(ai)
		if err != nil {
			return nil, err
		}
		base := len(ms.mesh.Verts)
		ms.mesh.Verts = append(ms.mesh.Verts, verts...)

		if ni, ok := p.Attributes["NORMAL"]; ok {
			normals, err := c.vec3(ni)
			if err != nil {
				return nil, err
			}
			ms.mesh.Normals = append(ms.mesh.Normals, normals...)
		}
		if ti, ok := p.Attributes["TEXCOORD_0"]; ok {
			uvs, err := c.vec2(ti)
			if err != nil {
				return nil, err
			}
			ms.mesh.UVs = append(ms.mesh.UVs, uvs...)
		}

		var idx []int
		if p.Indices != nil {
			if idx, err = c.indices(*p.Indices); err != nil {
				return nil, err
			}
		} else {
			idx = make([]int, len(verts))
			for k := range idx {
				idx[k] = k
			}
		}
		if len(idx)%3 != 0 {
			return nil, newErr("triangle primitive with partial face")
		}

		slot := len(ms.slots)
		var mat *scene.Material
		if p.Material != nil {
			if mat, err = c.material(*p.Material); err != nil {
				return nil, err
			}
		}
		ms.slots = append(ms.slots, mat)
		for k := 0; k+2 < len(idx); k += 3 {
			ms.mesh.Faces = append(ms.mesh.Faces, scene.Face{
				Indices:       []int{base + idx[k], base + idx[k+1], base + idx[k+2]},
				MaterialIndex: slot,
				Smooth:        true,
			})
		}
	}
	// Optional attributes concatenate per primitive, so
	// any primitive that omits one leaves the array out
	// of step with the vertex ordinals. Keep an array
	// only when every primitive contributed to it.
	if len(ms.mesh.Normals) != len(ms.mesh.Verts) {
		ms.mesh.Normals = nil
	}
	if len(ms.mesh.UVs) != len(ms.mesh.Verts) {
		ms.mesh.UVs = nil
	}
	c.meshes[i] = ms
	return ms, nil
}

// material converts a PBR metallic-roughness material to
// a single-layer stack.
func (c *converter) material(i int64) (*scene.Material, error) {
	if c.mats[i] != nil {
		return c.mats[i], nil
	}
	src := &c.doc.Materials[i]
	name := src.Name
	if name == "" {
		name = "material_" + strconv.FormatInt(i, 10)
	}

	layer := scene.Layer{
		Name:      "pbr",
		Kind:      scene.Disney,
		Weight:    scene.FloatInput{Value: 1},
		Base:      scene.ColorInput{Value: [3]float32{1, 1, 1}, Mult: 1},
		Metallic:  scene.FloatInput{Value: 1},
		Roughness: scene.FloatInput{Value: 1},
		Specular:  scene.FloatInput{Value: 0.5},
	}
	out := &scene.Material{Name: name}

	var baseTex *scene.TextureRef
	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if f := pbr.BaseColorFactor; f != nil {
			layer.Base.Value = [3]float32{f[0], f[1], f[2]}
		}
		if t := pbr.BaseColorTexture; t != nil {
			baseTex = c.textureRef(t.Index, "srgb")
			layer.Base.Tex = baseTex
		}
		if f := pbr.MetallicFactor; f != nil {
			layer.Metallic.Value = *f
		}
		if f := pbr.RoughnessFactor; f != nil {
			layer.Roughness.Value = *f
		}
		if t := pbr.MetallicRoughnessTexture; t != nil {
			// Channel-packed control texture; drives
			// roughness, the dominant visual term.
			layer.Roughness.Tex = c.textureRef(t.Index, "linear_rgb")
		}
	}
	out.Layers = []scene.Layer{layer}

	if f := src.EmissiveFactor; f != nil && (f[0] != 0 || f[1] != 0 || f[2] != 0) {
		out.EmissionColor = *f
		out.EmissionStrength = 1
	}
	if t := src.NormalTexture; t != nil {
		out.BumpTex = c.textureRef(t.Index, "linear_rgb")
		out.NormalMap = true
		out.BumpAmplitude = 1
		if t.Scale != nil {
			out.BumpAmplitude = *t.Scale
		}
	}
	if src.AlphaMode == MASK || src.AlphaMode == BLEND {
		out.AlphaTex = baseTex
	}

	c.mats[i] = out
	return out, nil
}

// textureRef resolves a texture index to an image file
// reference. Embedded (buffer-view) images yield a
// procedural placeholder, as they have no backing file.
func (c *converter) textureRef(i int64, colorSpace string) *scene.TextureRef {
	if i < 0 || i >= int64(len(c.doc.Textures)) {
		return nil
	}
	t := &c.doc.Textures[i]
	out := &scene.TextureRef{
		Name:       t.Name,
		ColorSpace: colorSpace,
	}
	if t.Source != nil && *t.Source < int64(len(c.doc.Images)) {
		img := &c.doc.Images[*t.Source]
		if out.Name == "" {
			out.Name = img.Name
		}
		switch {
		case img.URI == "", strings.HasPrefix(img.URI, "data:"):
			out.Procedural = true
		default:
			out.Path = filepath.Join(c.dir, filepath.FromSlash(img.URI))
		}
	} else {
		out.Procedural = true
	}
	if out.Name == "" {
		out.Name = "texture_" + strconv.FormatInt(i, 10)
	}
	if t.Sampler != nil && *t.Sampler < int64(len(c.doc.Samplers)) {
		s := &c.doc.Samplers[*t.Sampler]
		if s.WrapS == CLAMP_TO_EDGE && s.WrapT == CLAMP_TO_EDGE {
			out.Addressing = "clamp"
		}
		if s.MagFilter == NEAREST {
			out.Filtering = "nearest"
		}
	}
	return out
}

// buffer resolves and caches one buffer's bytes.
func (c *converter) buffer(i int64) ([]byte, error) {
	if c.bufs[i] != nil {
		return c.bufs[i], nil
	}
	b := &c.doc.Buffers[i]
	var data []byte
	switch {
	case b.URI == "":
		if c.bin == nil {
			return nil, newErr("URI-less buffer without GLB payload")
		}
		data = c.bin
	case strings.HasPrefix(b.URI, "data:"):
		comma := strings.IndexByte(b.URI, ',')
		if comma < 0 {
			return nil, newErr("malformed data URI")
		}
		var err error
		data, err = base64.StdEncoding.DecodeString(b.URI[comma+1:])
		if err != nil {
			return nil, err
		}
	default:
		var err error
		data, err = os.ReadFile(filepath.Join(c.dir, filepath.FromSlash(b.URI)))
		if err != nil {
			return nil, err
		}
	}
	if int64(len(data)) < b.ByteLength {
		return nil, newErr("buffer shorter than declared")
	}
	c.bufs[i] = data
	return data, nil
}

// accBytes returns the accessor's backing bytes and the
// stride between consecutive elements.
func (c *converter) accBytes(i int64, elemSize int64) ([]byte, int64, error) {
	a := &c.doc.Accessors[i]
	if a.BufferView == nil {
		return nil, 0, newErr("accessor without buffer view")
	}
	v := &c.doc.BufferViews[*a.BufferView]
	data, err := c.buffer(v.Buffer)
	if err != nil {
		return nil, 0, err
	}
	stride := v.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	off := v.ByteOffset + a.ByteOffset
	end := off + stride*(a.Count-1) + elemSize
	if end > int64(len(data)) {
		return nil, 0, newErr("accessor past buffer end")
	}
	return data[off:end], stride, nil
}

func f32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func (c *converter) vec3(i int64) ([]linear.V3, error) {
	a := &c.doc.Accessors[i]
	if a.Type != VEC3 || a.ComponentType != FLOAT {
		return nil, newErr("unsupported vec3 accessor layout")
	}
	data, stride, err := c.accBytes(i, 12)
	if err != nil {
		return nil, err
	}
	out := make([]linear.V3, a.Count)
	for k := range out {
		b := data[int64(k)*stride:]
		out[k] = linear.V3{f32(b), f32(b[4:]), f32(b[8:])}
	}
	return out, nil
}

func (c *converter) vec2(i int64) ([][2]float32, error) {
	a := &c.doc.Accessors[i]
	if a.Type != VEC2 || a.ComponentType != FLOAT {
		return nil, newErr("unsupported vec2 accessor layout")
	}
	data, stride, err := c.accBytes(i, 8)
	if err != nil {
		return nil, err
	}
	out := make([][2]float32, a.Count)
	for k := range out {
		b := data[int64(k)*stride:]
		out[k] = [2]float32{f32(b), f32(b[4:])}
	}
	return out, nil
}

func (c *converter) indices(i int64) ([]int, error) {
	a := &c.doc.Accessors[i]
	if a.Type != SCALAR {
		return nil, newErr("unsupported index accessor layout")
	}
	var size int64
	switch a.ComponentType {
	case UNSIGNED_BYTE:
		size = 1
	case UNSIGNED_SHORT:
		size = 2
	case UNSIGNED_INT:
		size = 4
	default:
		return nil, newErr("unsupported index component type")
	}
	data, stride, err := c.accBytes(i, size)
	if err != nil {
		return nil, err
	}
	out := make([]int, a.Count)
	for k := range out {
		b := data[int64(k)*stride:]
		switch size {
		case 1:
			out[k] = int(b[0])
		case 2:
			out[k] = int(binary.LittleEndian.Uint16(b))
		default:
			out[k] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return out, nil
}
