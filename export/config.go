// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package export

// writeConfigurations emits the interactive and final
// render configurations for the selected lighting engine.
func (e *Exporter) writeConfigurations() error {
	if err := e.w.Open("configurations"); err != nil {
		return err
	}
	if err := e.w.Open(`configuration name="interactive" base="base_interactive"`); err != nil {
		return err
	}
	if err := e.w.Param("lighting_engine", PathTracing); err != nil {
		return err
	}
	if err := e.writeEngineParams(PathTracing); err != nil {
		return err
	}
	if err := e.w.Close("configuration"); err != nil {
		return err
	}

	if err := e.w.Open(`configuration name="final" base="base_final"`); err != nil {
		return err
	}
	if err := e.w.Param("lighting_engine", e.opts.LightingEngine); err != nil {
		return err
	}
	if err := e.w.Param("passes", e.opts.Passes); err != nil {
		return err
	}
	if e.opts.Passes > 1 {
		if err := e.w.Param("shading_result_framebuffer", "permanent"); err != nil {
			return err
		}
	}
	if err := e.w.Params("uniform_pixel_renderer", func() error {
		return e.w.Param("samples", e.opts.Samples)
	}); err != nil {
		return err
	}
	if err := e.writeEngineParams(e.opts.LightingEngine); err != nil {
		return err
	}
	if err := e.w.Close("configuration"); err != nil {
		return err
	}
	return e.w.Close("configurations")
}

func (e *Exporter) writeEngineParams(engine string) error {
	if engine == SPPM {
		return e.w.Params("sppm", func() error {
			if err := e.w.Param("photons_per_pass", e.opts.PhotonsPerPass); err != nil {
				return err
			}
			if err := e.w.Param("alpha", e.opts.SPPMAlpha); err != nil {
				return err
			}
			if err := e.w.Param("initial_radius", e.opts.InitialRadius); err != nil {
				return err
			}
			return e.w.Param("path_tracing_max_bounces", e.opts.Bounces)
		})
	}
	return e.w.Params("pt", func() error {
		return e.w.Param("max_bounces", e.opts.Bounces)
	})
}
