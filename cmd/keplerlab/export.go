package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/keplerlab/internal/export"
	"github.com/san-kum/keplerlab/internal/orbit"
	"github.com/san-kum/keplerlab/internal/storage"
)

// openOutput returns stdout for "" and "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSVCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := storage.New(dataDir).LoadSamples(args[0])
			if err != nil {
				return err
			}
			w, err := openOutput(out)
			if err != nil {
				return err
			}
			defer w.Close()
			if err := storage.WriteCSV(w, samples); err != nil {
				return err
			}
			return w.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func exportJSONCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			samples, err := st.LoadSamples(args[0])
			if err != nil {
				return err
			}

			w, err := openOutput(out)
			if err != nil {
				return err
			}
			defer w.Close()
			err = storage.ExportJSON(w, storage.ExportData{
				Elements:   meta.Elements,
				Conic:      meta.Conic,
				Integrator: meta.Integrator,
				Dt:         meta.Dt,
				Duration:   meta.Duration,
				Samples:    samples,
				Metrics:    meta.Metrics,
			})
			if err != nil {
				return err
			}
			return w.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func svgCmd() *cobra.Command {
	var (
		out           string
		runID         string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "svg",
		Short: "draw the configured orbit, or a saved run, as SVG",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pathCfg := cfg.PathConfig()

			var track []r2.Vec
			if runID != "" {
				st := storage.New(dataDir)
				meta, err := st.Load(runID)
				if err != nil {
					return err
				}
				samples, err := st.LoadSamples(runID)
				if err != nil {
					return err
				}
				// the run's own elements, with unit gravity scale so Mu carries over
				pathCfg = orbit.Config{
					SemiMajorAxis:        meta.Elements.SemiMajorAxis,
					Eccentricity:         meta.Elements.Eccentricity,
					ArgumentOfPeriapsis:  meta.Elements.ArgumentOfPeriapsis,
					Gravity:              meta.Elements.Mu,
					GravityDistanceScale: 1,
					Solver:               pathCfg.Solver,
				}
				track = make([]r2.Vec, len(samples))
				for i, s := range samples {
					track[i] = s.State.Position
				}
			}

			path, err := orbit.NewPath(pathCfg, logger)
			if err != nil {
				return err
			}
			doc, err := export.OrbitSVG(path, cfg.View.Samples, track, width, height)
			if err != nil {
				return err
			}

			w, err := openOutput(out)
			if err != nil {
				return err
			}
			defer w.Close()
			if _, err := io.WriteString(w, doc); err != nil {
				return err
			}
			if out != "" && out != "-" {
				fmt.Fprintf(os.Stderr, "wrote %s\n", out)
			}
			return w.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "orbit.svg", "output file, - for stdout")
	cmd.Flags().StringVar(&runID, "run", "", "overlay a saved run")
	cmd.Flags().IntVar(&width, "width", 800, "image width")
	cmd.Flags().IntVar(&height, "height", 800, "image height")
	return cmd
}
