// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package export

import "github.com/gviegas/appleseed/scene"

// writeEnvironment emits the world surrounding the scene.
// Image-based models with an unloadable map fall back to
// a constant environment in the horizon color.
func (e *Exporter) writeEnvironment() error {
	w := e.s.World
	if w == nil || w.Model == scene.NoEnvironment {
		if err := e.w.Open(`environment name="environment" model="generic_environment"`); err != nil {
			return err
		}
		return e.w.Close("environment")
	}

	model := w.Model
	var tex string
	if model == scene.LatLongEnvironment || model == scene.MirrorBallEnvironment {
		if !validImage(w.EnvTex) {
			e.warnMissing("environment map")
			model = scene.ConstantEnvironment
		} else {
			var err error
			tex, err = e.reg.internTexture(keyFor(w.EnvTex))
			if err != nil {
				return err
			}
		}
	}

	var edfModel string
	switch model {
	case scene.GradientEnvironment:
		edfModel = "gradient_environment_edf"
	case scene.LatLongEnvironment:
		edfModel = "latlong_map_environment_edf"
	case scene.MirrorBallEnvironment:
		edfModel = "mirrorball_map_environment_edf"
	default:
		edfModel = "constant_environment_edf"
	}

	if err := e.w.Open(`environment_edf name="environment_edf" model="` + edfModel + `"`); err != nil {
		return err
	}
	switch model {
	case scene.GradientEnvironment:
		horizon, err := e.reg.internColor("horizon", w.HorizonColor, 1)
		if err != nil {
			return err
		}
		zenith, err := e.reg.internColor("zenith", w.ZenithColor, 1)
		if err != nil {
			return err
		}
		if err := e.w.Param("horizon_radiance", horizon); err != nil {
			return err
		}
		if err := e.w.Param("zenith_radiance", zenith); err != nil {
			return err
		}
	case scene.LatLongEnvironment, scene.MirrorBallEnvironment:
		if err := e.w.Param("radiance", tex); err != nil {
			return err
		}
		mult := w.Multiplier
		if mult == 0 {
			mult = 1
		}
		if err := e.w.Param("radiance_multiplier", mult); err != nil {
			return err
		}
	default:
		radiance, err := e.reg.internColor("horizon", w.HorizonColor, 1)
		if err != nil {
			return err
		}
		if err := e.w.Param("radiance", radiance); err != nil {
			return err
		}
	}
	if err := e.w.Close("environment_edf"); err != nil {
		return err
	}

	if err := e.w.Open(`environment_shader name="environment_shader" model="edf_environment_shader"`); err != nil {
		return err
	}
	if err := e.w.Param("environment_edf", "environment_edf"); err != nil {
		return err
	}
	if err := e.w.Close("environment_shader"); err != nil {
		return err
	}

	if err := e.w.Open(`environment name="environment" model="generic_environment"`); err != nil {
		return err
	}
	if err := e.w.Param("environment_edf", "environment_edf"); err != nil {
		return err
	}
	if err := e.w.Param("environment_shader", "environment_shader"); err != nil {
		return err
	}
	return e.w.Close("environment")
}
