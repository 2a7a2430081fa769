// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package scene

// BSDF kinds available to material layers.
const (
	Lambertian = iota
	OrenNayar
	SpecularReflect
	SpecularTransmit
	DiffuseTransmit
	Microfacet
	Ashikhmin
	Kelemen
	Disney
	Blinn
	Glass
	Glossy
	Metal
	Plastic
	Sheen
)

// Material is the artist-facing surface description.
// Exactly one representation is active: when Graph is
// non-nil the node graph is used, otherwise the layer
// stack (possibly empty).
type Material struct {
	Name   string
	Layers []Layer
	Graph  *NodeGraph

	// Light emission. A material emits when the
	// strength is non-zero or, in the node
	// representation, when the radiance input is
	// linked.
	EmissionStrength float32
	EmissionColor    [3]float32

	// Bump/normal mapping.
	BumpTex       *TextureRef
	BumpAmplitude float32
	NormalMap     bool

	// Alpha cutout.
	AlphaTex *TextureRef
}

// ColorInput is a color parameter: a literal value with
// a multiplier, optionally driven by a texture instead.
type ColorInput struct {
	Value [3]float32
	Mult  float32
	Tex   *TextureRef
}

// FloatInput is a scalar parameter, optionally driven
// by a texture.
type FloatInput struct {
	Value float32
	Tex   *TextureRef
}

// Layer is one entry of a material's layer stack.
// The meaning of each field depends on Kind; unused
// fields are ignored, matching the host's flat
// per-material property bag.
type Layer struct {
	Name   string
	Kind   int
	Weight FloatInput

	// Diffuse reflectance and its multiplier
	// (lambertian, oren-nayar, specular reflect,
	// ashikhmin, kelemen matte).
	Diffuse    ColorInput
	Multiplier FloatInput

	// Roughness (oren-nayar, microfacet, kelemen).
	Roughness FloatInput

	// Glossy reflectance (ashikhmin, kelemen specular).
	Glossy      ColorInput
	GlossyMult  FloatInput
	ShininessU  FloatInput
	ShininessV  FloatInput
	FresnelMult float32

	// Microfacet distribution function: "beckmann",
	// "ggx" or "blinn".
	MDF string

	// Index of refraction (microfacet, disney).
	IOR float32

	// Specular transmission.
	FromIOR       float32
	ToIOR         float32
	Transmittance ColorInput
	TransMult     FloatInput

	// Disney parameters.
	Base           ColorInput
	Subsurface     FloatInput
	Metallic       FloatInput
	Specular       FloatInput
	SpecularTint   FloatInput
	Anisotropy     FloatInput
	SheenAmount    FloatInput
	SheenTint      FloatInput
	Clearcoat      FloatInput
	ClearcoatGloss FloatInput

	// Blinn exponent.
	Exponent FloatInput

	// Highlight falloff (glass, glossy, metal, plastic).
	HighlightFalloff FloatInput

	// Glass tints and interior volume. The
	// parameterization is "transmittance" (the default)
	// or "absorption"; each reads its own subset of the
	// volume fields.
	ReflectionTint         ColorInput
	RefractionTint         ColorInput
	VolumeParameterization string
	VolumeTransmittance    ColorInput
	VolumeDistance         FloatInput
	VolumeAbsorption       ColorInput
	VolumeDensity          FloatInput
	VolumeScale            float32

	// Metal reflectance at normal and grazing incidence.
	NormalReflectance ColorInput
	EdgeTint          ColorInput

	// Plastic subsurface term.
	InternalScattering FloatInput
}

// TextureRef identifies an image texture resource.
type TextureRef struct {
	Name string
	Path string

	// "linear_rgb" or "srgb".
	ColorSpace string

	// Addressing: "wrap" or "clamp".
	// Filtering: "bilinear" or "nearest".
	Addressing string
	Filtering  string

	// Procedural textures have no backing image and
	// cannot be bound to shader parameters.
	Procedural bool
}

// NodeGraph is a shader node graph rooted at Output.
// Nodes are pre-ordered by the host: every node appears
// after the nodes it references.
type NodeGraph struct {
	Nodes  []*ShaderNode
	Output string

	// Name of the EDF node feeding the material's
	// radiance input, if linked.
	Emission string
}

// ShaderNode is one primitive node of a graph.
type ShaderNode struct {
	Name   string
	Model  string
	Params []NodeParam
}

// NodeParam is a single node parameter. Exactly one of
// the value fields is set.
type NodeParam struct {
	Name string

	Float *float32
	Color *[3]float32
	Tex   *TextureRef

	// Reference to another node of the same graph.
	Ref string

	// Literal keyword, e.g. a microfacet
	// distribution name.
	Str string
}
