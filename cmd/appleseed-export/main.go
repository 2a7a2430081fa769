// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Command appleseed-export converts glTF assets into
// appleseed project files.
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gviegas/appleseed/export"
	"github.com/gviegas/appleseed/gltf"
	"github.com/gviegas/appleseed/meshio"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		output     string
		preset     string
		mode       string
		engine     string
		samples    int
		motionBlur bool
		noMeshes   bool
		noLights   bool
		quiet      bool
	)
	cmd := &cobra.Command{
		Use:           "appleseed-export <input.gltf|input.glb>",
		Short:         "Export a glTF asset as an appleseed project",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := export.DefaultOptions()
			if preset != "" {
				var err error
				if opts, err = export.LoadOptions(preset); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("mode") {
				opts.Mode = mode
			}
			if cmd.Flags().Changed("engine") {
				opts.LightingEngine = engine
			}
			if cmd.Flags().Changed("samples") {
				opts.Samples = samples
			}
			if motionBlur {
				opts.MotionBlur = true
			}
			if noMeshes {
				opts.GenerateMeshFiles = false
			}
			if noLights {
				opts.MeshLights = false
			}

			input := args[0]
			if output == "" {
				output = outputPath(input)
			}

			rep := newReporter(quiet)
			s, err := gltf.Load(input)
			if err != nil {
				return err
			}
			e, err := export.New(s, meshio.OBJ{}, opts, rep)
			if err != nil {
				return err
			}
			return e.Export(output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output project file (default: input with .appleseed extension)")
	cmd.Flags().StringVar(&preset, "preset", "", "TOML options preset file")
	cmd.Flags().StringVar(&mode, "mode", export.ExportAll, "geometry export mode: all, partial or selected")
	cmd.Flags().StringVar(&engine, "engine", export.PathTracing, "lighting engine: pt or sppm")
	cmd.Flags().IntVar(&samples, "samples", 64, "pixel samples for the final configuration")
	cmd.Flags().BoolVar(&motionBlur, "motion-blur", false, "enable motion blur sampling")
	cmd.Flags().BoolVar(&noMeshes, "no-mesh-files", false, "skip writing mesh/curve files")
	cmd.Flags().BoolVar(&noLights, "no-mesh-lights", false, "do not turn emitting materials into mesh lights")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
	return cmd
}

// outputPath derives the project path from the input.
func outputPath(input string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	if stem == "" {
		stem = input
	}
	return stem + ".appleseed"
}
