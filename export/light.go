// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package export

import "github.com/gviegas/appleseed/scene"

// writeLight emits one non-mesh light into the current
// assembly. Light radiance goes through the color
// registry like any other color input.
func (e *Exporter) writeLight(l *scene.Light) error {
	model := "point_light"
	switch l.Kind {
	case scene.SpotLight:
		model = "spot_light"
	case scene.DirectionalLight:
		model = "directional_light"
	case scene.SunLight:
		model = "sun_light"
	}

	radiance, err := e.reg.internColor(l.Name+"_radiance", l.Color, 1)
	if err != nil {
		return err
	}
	if err := e.w.Open(`light name="` + l.Name + `" model="` + model + `"`); err != nil {
		return err
	}
	switch l.Kind {
	case scene.SunLight:
		if err := e.w.Param("radiance_multiplier", l.Intensity); err != nil {
			return err
		}
		if err := e.w.Param("turbidity", 4.0); err != nil {
			return err
		}
	case scene.DirectionalLight:
		if err := e.w.Param("irradiance", radiance); err != nil {
			return err
		}
		if err := e.w.Param("irradiance_multiplier", l.Intensity); err != nil {
			return err
		}
	default:
		if err := e.w.Param("intensity", radiance); err != nil {
			return err
		}
		if err := e.w.Param("intensity_multiplier", l.Intensity); err != nil {
			return err
		}
	}
	if l.Kind == scene.SpotLight {
		if err := e.w.Param("inner_angle", l.InnerAngle); err != nil {
			return err
		}
		if err := e.w.Param("outer_angle", l.OuterAngle); err != nil {
			return err
		}
	}
	if !l.CastIndirect {
		if err := e.w.Param("cast_indirect_light", false); err != nil {
			return err
		}
	}
	if l.ImportanceMultiplier != 0 && l.ImportanceMultiplier != 1 {
		if err := e.w.Param("importance_multiplier", l.ImportanceMultiplier); err != nil {
			return err
		}
	}
	if err := e.emitTransform(&l.Matrix, ""); err != nil {
		return err
	}
	return e.w.Close("light")
}
