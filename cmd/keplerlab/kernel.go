package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/keplerlab/internal/kepler"
	"github.com/san-kum/keplerlab/internal/orbit"
	"github.com/san-kum/keplerlab/internal/storage"
)

func classifyCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "classify [eccentricity]",
		Short: "name the conic for an eccentricity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return err
			}
			if strict {
				c, err := kepler.ClassifyStrict(e)
				if err != nil {
					return err
				}
				fmt.Println(c)
				return nil
			}
			fmt.Println(kepler.Classify(e))
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "reject eccentricities that are not exactly 0 or 1 but fall within tolerance")
	return cmd
}

func geometryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "geometry",
		Short: "derived quantities of the configured orbit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path, err := orbit.NewPath(cfg.PathConfig(), logger)
			if err != nil {
				return err
			}
			el := path.Elements()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "conic\t%s\n", el.Conic())
			fmt.Fprintf(w, "a\t%g\n", el.SemiMajorAxis)
			fmt.Fprintf(w, "e\t%g\n", el.Eccentricity)
			fmt.Fprintf(w, "omega\t%g\n", el.ArgumentOfPeriapsis)
			fmt.Fprintf(w, "mu\t%g\n", el.Mu)
			if b, err := path.SemiMinorAxis(); err == nil {
				fmt.Fprintf(w, "b\t%g\n", b)
			}
			fmt.Fprintf(w, "c\t%g\n", el.LinearEccentricity())
			focus := path.FocusPoint()
			fmt.Fprintf(w, "focus\t(%g, %g)\n", focus.X, focus.Y)
			fmt.Fprintf(w, "periapsis\t%g\n", el.Periapsis())
			if el.Conic().Closed() {
				fmt.Fprintf(w, "apoapsis\t%g\n", el.Apoapsis())
			}
			fmt.Fprintf(w, "p\t%g\n", el.SemiLatusRectum())
			fmt.Fprintf(w, "energy\t%g\n", el.SpecificEnergy())
			if n, err := el.MeanMotion(); err == nil {
				fmt.Fprintf(w, "mean motion\t%g\n", n)
			}
			if T, err := el.Period(); err == nil {
				fmt.Fprintf(w, "period\t%g\n", T)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			curve, err := path.Curve()
			if err != nil {
				return nil
			}
			fmt.Println("\ncontrol points:")
			for _, cp := range curve {
				fmt.Printf("  (%g, %g) in (%g, %g)\n", cp.Position.X, cp.Position.Y, cp.In.X, cp.In.Y)
			}
			return nil
		},
	}
}

func anomalyCmd() *cobra.Command {
	var (
		mean, t float64
		useTime bool
	)
	cmd := &cobra.Command{
		Use:   "anomaly",
		Short: "solve Kepler's equation for the configured orbit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			el := cfg.Elements()

			M := mean
			if useTime = cmd.Flags().Changed("at"); useTime {
				if M, err = el.MeanAnomalyAt(t); err != nil {
					return err
				}
			}

			sol, err := el.Solver.Solve(M, el.Eccentricity)
			if err != nil {
				return err
			}
			nu, err := kepler.TrueAnomalyFromAnomaly(sol.Anomaly, el.Eccentricity)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			if useTime {
				fmt.Fprintf(w, "t\t%g\n", t)
			}
			fmt.Fprintf(w, "M\t%.15g\n", M)
			fmt.Fprintf(w, "E\t%.15g\n", sol.Anomaly)
			fmt.Fprintf(w, "nu\t%.15g\n", nu)
			fmt.Fprintf(w, "iterations\t%d\n", sol.Iterations)
			fmt.Fprintf(w, "residual\t%.3g\n", sol.Residual)
			fmt.Fprintf(w, "converged\t%v\n", sol.Converged)
			if err := w.Flush(); err != nil {
				return err
			}
			return sol.Err()
		},
	}
	cmd.Flags().Float64Var(&mean, "mean", 0, "mean anomaly, radians")
	cmd.Flags().Float64Var(&t, "at", 0, "time since periapsis, instead of --mean")
	return cmd
}

func stateCmd() *cobra.Command {
	var (
		t, anomaly float64
	)
	cmd := &cobra.Command{
		Use:   "state",
		Short: "position and velocity on the configured orbit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			el := cfg.Elements()

			var sv kepler.StateVector
			if cmd.Flags().Changed("anomaly") {
				sv, err = el.StateFromAnomaly(anomaly)
			} else {
				sv, err = el.StateAt(t)
			}
			var ce *kepler.ConvergenceError
			if err != nil && !errors.As(err, &ce) {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "position\t(%.15g, %.15g)\n", sv.Position.X, sv.Position.Y)
			fmt.Fprintf(w, "velocity\t(%.15g, %.15g)\n", sv.Velocity.X, sv.Velocity.Y)
			fmt.Fprintf(w, "r\t%.15g\n", sv.Distance())
			fmt.Fprintf(w, "v\t%.15g\n", sv.Speed())
			if ferr := w.Flush(); ferr != nil {
				return ferr
			}
			return err
		},
	}
	cmd.Flags().Float64Var(&t, "at", 0, "time since periapsis")
	cmd.Flags().Float64Var(&anomaly, "anomaly", 0, "eccentric (or hyperbolic, or parabolic) anomaly, instead of --at")
	return cmd
}

func ephemerisCmd() *cobra.Command {
	var (
		from, to float64
		n        int
		out      string
	)
	cmd := &cobra.Command{
		Use:   "ephemeris",
		Short: "closed-form state table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			el := cfg.Elements()
			if !cmd.Flags().Changed("to") {
				to = cfg.Orbit.Epoch + cfg.Run.Duration
			}
			if !cmd.Flags().Changed("from") {
				from = cfg.Orbit.Epoch
			}

			samples, err := storage.Ephemeris(el, from, to, n)
			if err != nil {
				var ce *kepler.ConvergenceError
				if !errors.As(err, &ce) {
					return err
				}
				logger.Log("level", "warning", "err", err)
			}

			if out == "" || out == "-" {
				return storage.WriteCSV(os.Stdout, samples)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := storage.WriteCSV(f, samples); err != nil {
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().Float64Var(&from, "from", 0, "start time (default epoch)")
	cmd.Flags().Float64Var(&to, "to", 0, "end time (default epoch + duration)")
	cmd.Flags().IntVar(&n, "n", 100, "number of intervals")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output CSV file (default stdout)")
	return cmd
}
