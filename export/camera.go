// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package export

import (
	"github.com/gviegas/appleseed/markup"
	"github.com/gviegas/appleseed/scene"
)

// writeCamera emits the active view. A scene without a
// camera gets a default pinhole at the origin so the
// project remains loadable.
func (e *Exporter) writeCamera() error {
	c := e.s.Camera
	if c == nil {
		e.rep.Warnf("scene has no camera; writing default pinhole")
		if err := e.w.Open(`camera name="camera" model="pinhole_camera"`); err != nil {
			return err
		}
		if err := e.w.Param("film_dimensions", "0.032 0.018"); err != nil {
			return err
		}
		if err := e.w.Param("focal_length", "0.035"); err != nil {
			return err
		}
		return e.w.Close("camera")
	}

	model := "pinhole_camera"
	switch c.Model {
	case scene.ThinLens:
		model = "thinlens_camera"
	case scene.Spherical:
		model = "spherical_camera"
	}
	if err := e.w.Open(`camera name="camera" model="` + model + `"`); err != nil {
		return err
	}
	if model != "spherical_camera" {
		// Host units are millimeters; the renderer
		// expects meters.
		dims := markup.Stringify(c.FilmWidth/1000) + " " + markup.Stringify(c.FilmHeight/1000)
		if err := e.w.Param("film_dimensions", dims); err != nil {
			return err
		}
		if err := e.w.Param("focal_length", c.FocalLength/1000); err != nil {
			return err
		}
		if err := e.w.Param("near_z", c.NearZ); err != nil {
			return err
		}
	}
	if model == "thinlens_camera" {
		if err := e.w.Param("f_stop", c.FStop); err != nil {
			return err
		}
		if err := e.w.Param("focal_distance", c.FocalDistance); err != nil {
			return err
		}
		if c.DiaphragmBlades > 0 {
			if err := e.w.Param("diaphragm_blades", c.DiaphragmBlades); err != nil {
				return err
			}
		}
	}
	if e.opts.MotionBlur {
		if err := e.w.Param("shutter_open_time", e.s.ShutterOpen); err != nil {
			return err
		}
		if err := e.w.Param("shutter_close_time", e.s.ShutterClose); err != nil {
			return err
		}
	}
	if err := e.emitTransform(&c.Matrix, ""); err != nil {
		return err
	}
	return e.w.Close("camera")
}
