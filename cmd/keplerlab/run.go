package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/keplerlab/internal/analysis"
	"github.com/san-kum/keplerlab/internal/config"
	"github.com/san-kum/keplerlab/internal/dynamo"
	"github.com/san-kum/keplerlab/internal/integrators"
	"github.com/san-kum/keplerlab/internal/metrics"
	"github.com/san-kum/keplerlab/internal/optim"
	"github.com/san-kum/keplerlab/internal/physics"
	"github.com/san-kum/keplerlab/internal/sim"
	"github.com/san-kum/keplerlab/internal/storage"
)

// runMetrics are fresh per run because metrics keep running state.
func runMetrics(sys *physics.TwoBody, cfg *config.Config) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewEnergyDrift(sys),
		metrics.NewMomentumDrift(sys),
		metrics.NewKeplerResidual(cfg.Elements(), cfg.Orbit.Epoch),
	}
}

func runCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "integrate the configured orbit numerically and save the run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			st := storage.New(dataDir)
			if err := st.Init(); err != nil {
				return err
			}

			el := cfg.Elements()
			sys := physics.NewTwoBody(el.Mu)
			x0, err := physics.InitialState(el, cfg.Orbit.Epoch)
			if err != nil {
				return err
			}
			integ, err := integrators.ByName(cfg.Run.Integrator)
			if err != nil {
				return err
			}

			s := sim.New(sys, integ, logger)
			for _, m := range runMetrics(sys, cfg) {
				s.AddMetric(m)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			fmt.Printf("integrating %s orbit with %s...\n", el.Conic(), integ.Name())
			start := time.Now()
			result, runErr := s.Run(ctx, x0, cfg.SimConfig())
			if result == nil {
				return runErr
			}
			elapsed := time.Since(start)

			if name == "" {
				name = el.Conic().String()
			}
			runID, err := st.Save(storage.RunMetadata{
				Name:       name,
				Elements:   el,
				Epoch:      cfg.Orbit.Epoch,
				Integrator: integ.Name(),
				Dt:         cfg.Run.Dt,
				Duration:   cfg.Run.Duration,
			}, result)
			if err != nil {
				return err
			}

			fmt.Printf("completed in %v\n", elapsed)
			fmt.Printf("run id: %s\n", runID)
			fmt.Printf("steps: %d\n", result.StepsTaken)
			printMetrics(result.Metrics)

			if osc, err := sys.OsculatingElements(result.Final()); err == nil {
				fmt.Printf("\nfinal osculating elements: a=%.10g e=%.10g omega=%.10g\n", osc.SemiMajorAxis, osc.Eccentricity, osc.ArgumentOfPeriapsis)
			}
			for _, e := range result.Errors {
				fmt.Printf("error: %v\n", e)
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "run name (default conic name)")
	return cmd
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, m[name])
	}
}

func compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the configured orbit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = integrators.Names()
			}

			el := cfg.Elements()
			sys := physics.NewTwoBody(el.Mu)
			x0, err := physics.InitialState(el, cfg.Orbit.Epoch)
			if err != nil {
				return err
			}

			runs := make([]sim.Run, len(args))
			for i, name := range args {
				integ, err := integrators.ByName(name)
				if err != nil {
					return err
				}
				runs[i] = sim.Run{Integrator: integ, Metrics: runMetrics(sys, cfg)}
			}

			results, err := sim.Compare(cmd.Context(), sys, x0, cfg.SimConfig(), runs, logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tENERGY DRIFT\tMOMENTUM DRIFT\tKEPLER RESIDUAL")
			for i, res := range results {
				fmt.Fprintf(w, "%s\t%d\t%.3e\t%.3e\t%.3e\n",
					args[i],
					res.StepsTaken,
					res.Metrics["energy_drift"],
					res.Metrics["momentum_drift"],
					res.Metrics["kepler_residual"],
				)
			}
			return w.Flush()
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCONIC\tTIME\tDURATION\tDT\tINTEG\tRESIDUAL")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%s\t%.3e\n",
					run.ID,
					run.Conic,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Duration,
					run.Dt,
					run.Integrator,
					run.Metrics["kepler_residual"],
				)
			}
			return w.Flush()
		},
	}
}

func plotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot distance and speed of a run",
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
			if len(samples) == 0 {
				return fmt.Errorf("no data to plot")
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("conic: %s\n", meta.Conic)
			fmt.Printf("samples: %d\n\n", len(samples))

			t := make([]float64, len(samples))
			r := make([]float64, len(samples))
			v := make([]float64, len(samples))
			for i, s := range samples {
				t[i] = s.Time
				r[i] = s.State.Distance()
				v[i] = s.State.Speed()
			}
			for _, series := range []struct {
				data    []float64
				caption string
			}{
				{r, "distance from focus"},
				{v, "speed"},
			} {
				fmt.Println(asciigraph.Plot(series.data,
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption(series.caption),
				))
				fmt.Println()
			}
			printPeriods(meta, t, r)
			return nil
		},
	}
}

// printPeriods compares the measured period of a closed run against the
// elements it was started from.
func printPeriods(meta *storage.RunMetadata, t, r []float64) {
	expected, err := meta.Elements.Period()
	if err != nil {
		return
	}
	fmt.Printf("period (elements): %.10g\n", expected)
	if p, err := analysis.PeriodFromApsides(analysis.Apsides(t, r)); err == nil {
		fmt.Printf("period (apsides):  %.10g\n", p)
	}
	// the spectrum needs even spacing, which adaptive runs do not have; the
	// final state of a fixed-step run may sit off the recording grid
	n := len(t)
	if n > 3 && !uniform(t) {
		n--
	}
	if n > 2 && uniform(t[:n]) {
		if p, err := analysis.DominantPeriod(r[:n], t[1]-t[0]); err == nil {
			fmt.Printf("period (spectrum): %.10g\n", p)
		}
	}
}

func uniform(t []float64) bool {
	dt := t[1] - t[0]
	for i := 2; i < len(t); i++ {
		if d := t[i] - t[i-1]; d < dt*0.999 || d > dt*1.001 {
			return false
		}
	}
	return true
}

func tuneCmd() *cobra.Command {
	var (
		maxResidual float64
		dts         []float64
	)
	cmd := &cobra.Command{
		Use:   "tune [integrator...]",
		Short: "find the fewest steps that keep the Kepler residual under a bound",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = integrators.Names()
			}
			el := cfg.Elements()
			sys := physics.NewTwoBody(el.Mu)
			x0, err := physics.InitialState(el, cfg.Orbit.Epoch)
			if err != nil {
				return err
			}
			if len(dts) == 0 {
				for _, f := range []float64{4, 2, 1, 0.5, 0.25, 0.125} {
					dts = append(dts, cfg.Run.Dt*f)
				}
			}

			ids := make([]float64, len(args))
			for i := range args {
				ids[i] = float64(i)
			}
			grid := optim.NewGridSearch([]string{"integrator", "dt"}, [][]float64{ids, dts})

			best, steps, err := grid.Search(cmd.Context(), func(ctx context.Context, p map[string]float64) (float64, error) {
				integ, err := integrators.ByName(args[int(p["integrator"])])
				if err != nil {
					return 0, err
				}
				simCfg := cfg.SimConfig()
				simCfg.Dt = p["dt"]
				simCfg.Adaptive = false

				s := sim.New(sys, integ, logger)
				residual := metrics.NewKeplerResidual(el, cfg.Orbit.Epoch)
				s.AddMetric(residual)
				res, err := s.Run(ctx, x0, simCfg)
				if err != nil {
					return 0, err
				}
				logger.Log("level", "info", "integrator", integ.Name(), "dt", p["dt"], "residual", residual.Value())
				if len(res.Errors) > 0 || residual.Failed() > 0 || residual.Value() > maxResidual {
					return math.Inf(1), nil
				}
				return float64(res.StepsTaken), nil
			})
			if err != nil {
				return err
			}
			fmt.Printf("best: %s dt=%g (%d steps)\n", args[int(best["integrator"])], best["dt"], int(steps))
			return nil
		},
	}
	cmd.Flags().Float64Var(&maxResidual, "max-residual", 1e-6, "largest allowed distance from the closed-form position")
	cmd.Flags().Float64SliceVar(&dts, "dts", nil, "timesteps to try (default multiples of the configured dt)")
	return cmd
}
