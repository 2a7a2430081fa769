// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package export

import (
	"strconv"
	"strings"

	"github.com/gviegas/appleseed/scene"
)

// Names of the scope-wide default resources. They are
// emitted once per assembly scope, never by the resolver.
const (
	defaultMaterialName = "__default_material"
	defaultBSDFName     = "__default_material_bsdf"
	surfaceShaderName   = "__surface_shader"
)

// resolved is the outcome of flattening one material:
// the front- and back-face material names plus the
// emission root, if the material is light-emitting.
type resolved struct {
	front string
	back  string
	edf   string
}

// resolveMaterial maps a material to its resolved names,
// emitting the flattened shader graph on first use within
// the current assembly scope.
func (e *Exporter) resolveMaterial(m *scene.Material) (resolved, error) {
	if m == nil {
		return resolved{front: defaultMaterialName, back: defaultMaterialName}, nil
	}
	if r, ok := e.matCache[e.scope][m.Name]; ok {
		return r, nil
	}

	transmit := hasSpecularTransmit(m)
	emitting := e.opts.MeshLights && isEmitting(m)

	frontBSDF, err := e.resolveSide(m, false)
	if err != nil {
		return resolved{}, err
	}
	var edf string
	if emitting {
		if edf, err = e.emitEDF(m); err != nil {
			return resolved{}, err
		}
	}
	r := resolved{front: m.Name, back: m.Name, edf: edf}
	if err := e.emitMaterialElement(r.front, frontBSDF, edf, m); err != nil {
		return resolved{}, err
	}
	switch {
	case transmit:
		// Transparent surfaces shade differently per
		// face; the back graph swaps every specular
		// transmit IOR pair.
		backBSDF, err := e.resolveSide(m, true)
		if err != nil {
			return resolved{}, err
		}
		r.back = m.Name + "_back"
		if err := e.emitMaterialElement(r.back, backBSDF, "", m); err != nil {
			return resolved{}, err
		}
	case emitting:
		// Mesh lights must not emit from the back face.
		r.back = defaultMaterialName
	}

	if e.matCache[e.scope] == nil {
		e.matCache[e.scope] = make(map[string]resolved)
	}
	e.matCache[e.scope][m.Name] = r
	return r, nil
}

func hasSpecularTransmit(m *scene.Material) bool {
	if m.Graph != nil {
		for _, n := range m.Graph.Nodes {
			if n.Model == "specular_btdf" {
				return true
			}
		}
		return false
	}
	for i := range m.Layers {
		if m.Layers[i].Kind == scene.SpecularTransmit {
			return true
		}
	}
	return false
}

func isEmitting(m *scene.Material) bool {
	if m.Graph != nil {
		return m.Graph.Emission != ""
	}
	return m.EmissionStrength != 0
}

// weighted is one (BSDF, weight) pair of a layer stack,
// with the weight either literal or a texture instance.
type weighted struct {
	name   string
	weight float32
	tex    string
}

// resolveSide flattens one face of the material and
// returns the root BSDF name.
func (e *Exporter) resolveSide(m *scene.Material, back bool) (string, error) {
	if m.Graph != nil {
		return e.resolveGraph(m.Graph, back)
	}

	suffix := ""
	if back {
		suffix = "_back"
	}
	list := make([]weighted, 0, len(m.Layers))
	for i := range m.Layers {
		l := &m.Layers[i]
		name := m.Name + "_" + l.Name + suffix
		if err := e.emitLayerBSDF(l, name, back); err != nil {
			return "", err
		}
		w := weighted{name: name, weight: l.Weight.Value}
		if l.Weight.Tex != nil {
			if validImage(l.Weight.Tex) {
				inst, err := e.reg.internTexture(keyFor(l.Weight.Tex))
				if err != nil {
					return "", err
				}
				w.tex = inst
			} else {
				e.warnMissing(l.Weight.Tex.Name)
			}
		}
		list = append(list, w)
	}

	switch len(list) {
	case 0:
		return defaultBSDFName, nil
	case 1:
		return list[0].name, nil
	}

	// Literal weights are normalized when they sum past
	// one. Texture-driven weights never participate:
	// they are taken as already normalized by the
	// artist, even in mixed usage.
	var sum float32
	for i := range list {
		if list[i].tex == "" {
			sum += list[i].weight
		}
	}
	if sum > 1 {
		for i := range list {
			if list[i].tex == "" {
				list[i].weight /= sum
			}
		}
	}
	return e.mixBSDFs(m.Name+suffix, list)
}

// mixBSDFs combines the list right to left into a binary
// tree of bsdf_mix nodes and returns the root name. The
// iterative fold keeps the stack flat for large layer
// counts; inner mixes are emitted before the nodes that
// reference them.
func (e *Exporter) mixBSDFs(base string, list []weighted) (string, error) {
	cur := list[len(list)-1].name
	for i := len(list) - 2; i >= 0; i-- {
		left := &list[i]
		name := base + "_mix_" + strconv.Itoa(i)
		if err := e.w.Open(`bsdf name="` + name + `" model="bsdf_mix"`); err != nil {
			return "", err
		}
		if err := e.w.Param("bsdf0", left.name); err != nil {
			return "", err
		}
		w0 := any(left.weight)
		w1 := any(float32(1))
		if left.tex != "" {
			w0 = left.tex
		} else {
			w1 = 1 - left.weight
		}
		if err := e.w.Param("weight0", w0); err != nil {
			return "", err
		}
		if err := e.w.Param("bsdf1", cur); err != nil {
			return "", err
		}
		if err := e.w.Param("weight1", w1); err != nil {
			return "", err
		}
		if err := e.w.Close("bsdf"); err != nil {
			return "", err
		}
		cur = name
	}
	return cur, nil
}

// resolveGraph emits a node-graph material. Blending is
// explicit in the graph (bsdf_blend nodes), so no weight
// normalization applies. Nodes arrive pre-ordered from
// the host: references only point backwards.
func (e *Exporter) resolveGraph(g *scene.NodeGraph, back bool) (string, error) {
	suffix := ""
	if back {
		suffix = "_back"
	}
	for _, n := range g.Nodes {
		elem := "bsdf"
		if strings.HasSuffix(n.Model, "_edf") {
			elem = "edf"
		}
		name := n.Name + suffix
		if err := e.w.Open(elem + ` name="` + name + `" model="` + n.Model + `"`); err != nil {
			return "", err
		}
		params := n.Params
		if back && n.Model == "specular_btdf" {
			params = swapIOR(params)
		}
		for i := range params {
			if err := e.emitNodeParam(name, &params[i], suffix); err != nil {
				return "", err
			}
		}
		if err := e.w.Close(elem); err != nil {
			return "", err
		}
	}
	return g.Output + suffix, nil
}

// swapIOR returns a copy of params with the values of the
// from_ior and to_ior parameters exchanged.
func swapIOR(params []scene.NodeParam) []scene.NodeParam {
	out := make([]scene.NodeParam, len(params))
	copy(out, params)
	from, to := -1, -1
	for i := range out {
		switch out[i].Name {
		case "from_ior":
			from = i
		case "to_ior":
			to = i
		}
	}
	if from >= 0 && to >= 0 {
		out[from].Float, out[to].Float = out[to].Float, out[from].Float
	}
	return out
}

func (e *Exporter) emitNodeParam(node string, p *scene.NodeParam, suffix string) error {
	switch {
	case p.Float != nil:
		return e.w.Param(p.Name, *p.Float)
	case p.Color != nil:
		name, err := e.reg.internColor(node+"_"+p.Name, *p.Color, 1)
		if err != nil {
			return err
		}
		return e.w.Param(p.Name, name)
	case p.Tex != nil:
		if validImage(p.Tex) {
			inst, err := e.reg.internTexture(keyFor(p.Tex))
			if err != nil {
				return err
			}
			return e.w.Param(p.Name, inst)
		}
		e.warnMissing(p.Tex.Name)
		name, err := e.reg.internColor(node+"_"+p.Name, [3]float32{0.5, 0.5, 0.5}, 1)
		if err != nil {
			return err
		}
		return e.w.Param(p.Name, name)
	case p.Ref != "":
		return e.w.Param(p.Name, p.Ref+suffix)
	default:
		return e.w.Param(p.Name, p.Str)
	}
}

// colorParam resolves a color input to either a texture
// instance or a freshly interned literal color.
func (e *Exporter) colorParam(hint string, c *scene.ColorInput) (string, error) {
	if c.Tex != nil {
		if validImage(c.Tex) {
			return e.reg.internTexture(keyFor(c.Tex))
		}
		e.warnMissing(c.Tex.Name)
	}
	mult := c.Mult
	if mult == 0 {
		mult = 1
	}
	return e.reg.internColor(hint, c.Value, mult)
}

// floatParam resolves a scalar input to either a texture
// instance or its literal value.
func (e *Exporter) floatParam(f *scene.FloatInput) (any, error) {
	if f.Tex != nil {
		if validImage(f.Tex) {
			return e.reg.internTexture(keyFor(f.Tex))
		}
		e.warnMissing(f.Tex.Name)
	}
	return f.Value, nil
}

// modernMDF defaults the microfacet distribution of the
// glass, glossy, metal and plastic models to ggx.
func modernMDF(mdf string) string {
	if mdf == "" {
		return "ggx"
	}
	return mdf
}

// emitLayerBSDF emits the primitive BSDF node of one
// layer. Parameter names follow the renderer's models.
func (e *Exporter) emitLayerBSDF(l *scene.Layer, name string, back bool) error {
	type kv struct {
		k string
		v any
	}
	var model string
	var params []kv

	add := func(k string, v any, err error) error {
		if err != nil {
			return err
		}
		params = append(params, kv{k, v})
		return nil
	}
	color := func(k string, c *scene.ColorInput) error {
		v, err := e.colorParam(name+"_"+k, c)
		return add(k, v, err)
	}
	scalar := func(k string, f *scene.FloatInput) error {
		v, err := e.floatParam(f)
		return add(k, v, err)
	}

	var err error
	switch l.Kind {
	case scene.Lambertian:
		model = "lambertian_brdf"
		err = color("reflectance", &l.Diffuse)
		if err == nil {
			err = scalar("reflectance_multiplier", &l.Multiplier)
		}
	case scene.OrenNayar:
		model = "orennayar_brdf"
		err = color("reflectance", &l.Diffuse)
		if err == nil {
			err = scalar("reflectance_multiplier", &l.Multiplier)
		}
		if err == nil {
			err = scalar("roughness", &l.Roughness)
		}
	case scene.SpecularReflect:
		model = "specular_brdf"
		err = color("reflectance", &l.Diffuse)
		if err == nil {
			err = scalar("reflectance_multiplier", &l.Multiplier)
		}
	case scene.SpecularTransmit:
		model = "specular_btdf"
		err = color("reflectance", &l.Diffuse)
		if err == nil {
			err = scalar("reflectance_multiplier", &l.Multiplier)
		}
		if err == nil {
			err = color("transmittance", &l.Transmittance)
		}
		if err == nil {
			err = scalar("transmittance_multiplier", &l.TransMult)
		}
		if err == nil {
			from, to := l.FromIOR, l.ToIOR
			if back {
				from, to = to, from
			}
			params = append(params, kv{"from_ior", from}, kv{"to_ior", to})
		}
	case scene.DiffuseTransmit:
		model = "diffuse_btdf"
		err = color("transmittance", &l.Transmittance)
		if err == nil {
			err = scalar("transmittance_multiplier", &l.TransMult)
		}
	case scene.Microfacet:
		model = "microfacet_brdf"
		mdf := l.MDF
		if mdf == "" {
			mdf = "blinn"
		}
		params = append(params, kv{"mdf", mdf})
		err = color("reflectance", &l.Diffuse)
		if err == nil {
			err = scalar("reflectance_multiplier", &l.Multiplier)
		}
		if err == nil {
			err = scalar("glossiness", &l.Roughness)
		}
		if err == nil {
			params = append(params, kv{"fresnel_multiplier", l.FresnelMult})
		}
	case scene.Ashikhmin:
		model = "ashikhmin_brdf"
		err = color("diffuse_reflectance", &l.Diffuse)
		if err == nil {
			err = scalar("diffuse_reflectance_multiplier", &l.Multiplier)
		}
		if err == nil {
			err = color("glossy_reflectance", &l.Glossy)
		}
		if err == nil {
			err = scalar("glossy_reflectance_multiplier", &l.GlossyMult)
		}
		if err == nil {
			err = scalar("shininess_u", &l.ShininessU)
		}
		if err == nil {
			err = scalar("shininess_v", &l.ShininessV)
		}
		if err == nil {
			params = append(params, kv{"fresnel_multiplier", l.FresnelMult})
		}
	case scene.Kelemen:
		model = "kelemen_brdf"
		err = color("matte_reflectance", &l.Diffuse)
		if err == nil {
			err = scalar("matte_reflectance_multiplier", &l.Multiplier)
		}
		if err == nil {
			err = color("specular_reflectance", &l.Glossy)
		}
		if err == nil {
			err = scalar("specular_reflectance_multiplier", &l.GlossyMult)
		}
		if err == nil {
			err = scalar("roughness", &l.Roughness)
		}
	case scene.Disney:
		model = "disney_brdf"
		err = color("base_color", &l.Base)
		for _, p := range []struct {
			k string
			f *scene.FloatInput
		}{
			{"subsurface", &l.Subsurface},
			{"metallic", &l.Metallic},
			{"specular", &l.Specular},
			{"specular_tint", &l.SpecularTint},
			{"anisotropic", &l.Anisotropy},
			{"roughness", &l.Roughness},
			{"sheen", &l.SheenAmount},
			{"sheen_tint", &l.SheenTint},
			{"clearcoat", &l.Clearcoat},
			{"clearcoat_gloss", &l.ClearcoatGloss},
		} {
			if err != nil {
				break
			}
			err = scalar(p.k, p.f)
		}
	case scene.Blinn:
		model = "blinn_brdf"
		err = scalar("exponent", &l.Exponent)
		if err == nil {
			params = append(params, kv{"ior", l.IOR})
		}
	case scene.Glass:
		model = "glass_bsdf"
		params = append(params, kv{"mdf", modernMDF(l.MDF)})
		err = color("surface_transmittance", &l.Transmittance)
		if err == nil {
			err = scalar("surface_transmittance_multiplier", &l.TransMult)
		}
		if err == nil {
			err = color("reflection_tint", &l.ReflectionTint)
		}
		if err == nil {
			err = color("refraction_tint", &l.RefractionTint)
		}
		if err == nil {
			params = append(params, kv{"ior", l.IOR})
			err = scalar("roughness", &l.Roughness)
		}
		if err == nil {
			err = scalar("highlight_falloff", &l.HighlightFalloff)
		}
		if err == nil {
			err = scalar("anisotropy", &l.Anisotropy)
		}
		if err == nil {
			vp := l.VolumeParameterization
			if vp == "" {
				vp = "transmittance"
			}
			params = append(params, kv{"volume_parameterization", vp})
			if vp == "absorption" {
				err = color("volume_absorption", &l.VolumeAbsorption)
				if err == nil {
					err = scalar("volume_density", &l.VolumeDensity)
				}
				if err == nil {
					params = append(params, kv{"volume_scale", l.VolumeScale})
				}
			} else {
				err = color("volume_transmittance", &l.VolumeTransmittance)
				if err == nil {
					err = scalar("volume_transmittance_distance", &l.VolumeDistance)
				}
			}
		}
	case scene.Glossy:
		model = "glossy_brdf"
		params = append(params, kv{"mdf", modernMDF(l.MDF)})
		err = color("reflectance", &l.Diffuse)
		if err == nil {
			err = scalar("reflectance_multiplier", &l.Multiplier)
		}
		if err == nil {
			err = scalar("roughness", &l.Roughness)
		}
		if err == nil {
			err = scalar("highlight_falloff", &l.HighlightFalloff)
		}
		if err == nil {
			err = scalar("anisotropy", &l.Anisotropy)
		}
		if err == nil {
			params = append(params, kv{"ior", l.IOR})
		}
	case scene.Metal:
		model = "metal_brdf"
		params = append(params, kv{"mdf", modernMDF(l.MDF)})
		err = color("normal_reflectance", &l.NormalReflectance)
		if err == nil {
			err = color("edge_tint", &l.EdgeTint)
		}
		if err == nil {
			err = scalar("reflectance_multiplier", &l.Multiplier)
		}
		if err == nil {
			err = scalar("roughness", &l.Roughness)
		}
		if err == nil {
			err = scalar("highlight_falloff", &l.HighlightFalloff)
		}
		if err == nil {
			err = scalar("anisotropy", &l.Anisotropy)
		}
	case scene.Plastic:
		model = "plastic_brdf"
		params = append(params, kv{"mdf", modernMDF(l.MDF)})
		err = color("specular_reflectance", &l.Glossy)
		if err == nil {
			err = scalar("specular_reflectance_multiplier", &l.GlossyMult)
		}
		if err == nil {
			err = scalar("roughness", &l.Roughness)
		}
		if err == nil {
			err = scalar("highlight_falloff", &l.HighlightFalloff)
		}
		if err == nil {
			params = append(params, kv{"ior", l.IOR})
			err = color("diffuse_reflectance", &l.Diffuse)
		}
		if err == nil {
			err = scalar("diffuse_reflectance_multiplier", &l.Multiplier)
		}
		if err == nil {
			err = scalar("internal_scattering", &l.InternalScattering)
		}
	case scene.Sheen:
		model = "sheen_brdf"
		err = color("reflectance", &l.Diffuse)
		if err == nil {
			err = scalar("reflectance_multiplier", &l.Multiplier)
		}
	default:
		e.warnMissing(name)
		model = "lambertian_brdf"
		err = color("reflectance", &scene.ColorInput{Value: [3]float32{0.8, 0.8, 0.8}, Mult: 1})
	}
	if err != nil {
		return err
	}

	if err := e.w.Open(`bsdf name="` + name + `" model="` + model + `"`); err != nil {
		return err
	}
	for _, p := range params {
		if err := e.w.Param(p.k, p.v); err != nil {
			return err
		}
	}
	return e.w.Close("bsdf")
}

// emitEDF emits the material's emission root. Node-graph
// materials already emitted theirs during graph
// resolution.
func (e *Exporter) emitEDF(m *scene.Material) (string, error) {
	if m.Graph != nil {
		return m.Graph.Emission, nil
	}
	radiance, err := e.reg.internColor(m.Name+"_radiance", m.EmissionColor, 1)
	if err != nil {
		return "", err
	}
	name := m.Name + "_edf"
	if err := e.w.Open(`edf name="` + name + `" model="diffuse_edf"`); err != nil {
		return "", err
	}
	if err := e.w.Param("radiance", radiance); err != nil {
		return "", err
	}
	if err := e.w.Param("radiance_multiplier", m.EmissionStrength); err != nil {
		return "", err
	}
	if err := e.w.Close("edf"); err != nil {
		return "", err
	}
	return name, nil
}

// emitMaterialElement emits the outer material element
// referencing the resolved roots and the optional bump
// and alpha maps.
func (e *Exporter) emitMaterialElement(name, bsdf, edf string, m *scene.Material) error {
	if err := e.w.Open(`material name="` + name + `" model="generic_material"`); err != nil {
		return err
	}
	if err := e.w.Param("surface_shader", surfaceShaderName); err != nil {
		return err
	}
	if err := e.w.Param("bsdf", bsdf); err != nil {
		return err
	}
	if edf != "" {
		if err := e.w.Param("edf", edf); err != nil {
			return err
		}
	}
	if m.BumpTex != nil {
		if validImage(m.BumpTex) {
			inst, err := e.reg.internTexture(keyFor(m.BumpTex))
			if err != nil {
				return err
			}
			method := "bump"
			if m.NormalMap {
				method = "normal"
			}
			if err := e.w.Param("displacement_map", inst); err != nil {
				return err
			}
			if err := e.w.Param("displacement_method", method); err != nil {
				return err
			}
			if err := e.w.Param("bump_amplitude", m.BumpAmplitude); err != nil {
				return err
			}
		} else {
			e.warnMissing(m.BumpTex.Name)
		}
	}
	if m.AlphaTex != nil {
		if validImage(m.AlphaTex) {
			inst, err := e.reg.internTexture(keyFor(m.AlphaTex))
			if err != nil {
				return err
			}
			if err := e.w.Param("alpha_map", inst); err != nil {
				return err
			}
		} else {
			e.warnMissing(m.AlphaTex.Name)
		}
	}
	return e.w.Close("material")
}

func (e *Exporter) warnMissing(resource string) {
	err := MissingResourceError{Resource: resource}
	e.rep.Warnf("%v; substituting default", &err)
}
