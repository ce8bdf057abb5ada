package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/asagen/episim/internal/config"
	"github.com/asagen/episim/internal/epi"
	"github.com/asagen/episim/internal/export"
	"github.com/asagen/episim/internal/integrators"
	"github.com/asagen/episim/internal/metrics"
	"github.com/asagen/episim/internal/sim"
	"github.com/asagen/episim/internal/storage"
	"github.com/asagen/episim/internal/sweep"
	"github.com/asagen/episim/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	beta       float64
	gamma      float64
	s0         float64
	i0         float64
	r0         float64
	horizon    float64
	dt         float64
	integrator string
	configFile string
	preset     string
	// bars background
	bgColor string
	// live frame rate
	frameRate int
	// sweep range
	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	// export targets
	jsonOut string
	svgOut  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "episim",
		Short: "SIR epidemic simulation lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot compartment fractions over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	barsCmd := &cobra.Command{
		Use:   "bars [run_id]",
		Short: "bar chart of the final compartment distribution",
		Args:  cobra.ExactArgs(1),
		RunE:  plotBars,
	}
	barsCmd.Flags().StringVar(&bgColor, "bg", viz.DefaultBackground, "bar background color")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "replay a simulation with live visualization",
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep a rate parameter and report outcomes",
		RunE:  runSweep,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "beta", "parameter to sweep (beta or gamma)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.05, "sweep range start")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 0.6, "sweep range end")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 12, "number of sweep values")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same scenario",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addScenarioFlags(compareCmd)

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&jsonOut, "out", "", "write to file instead of stdout")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the epidemic curve as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgOut, "out", "epidemic.svg", "output file")
	exportSVGCmd.Flags().StringVar(&bgColor, "bg", export.DefaultFacecolor, "plot background color")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scenario presets",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, barsCmd, liveCmd, sweepCmd, compareCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&beta, "beta", config.DefaultBeta, "transmission rate")
	cmd.Flags().Float64Var(&gamma, "gamma", config.DefaultGamma, "recovery rate")
	cmd.Flags().Float64Var(&s0, "s0", config.DefaultS0, "initial susceptible count")
	cmd.Flags().Float64Var(&i0, "i0", config.DefaultI0, "initial infected count")
	cmd.Flags().Float64Var(&r0, "r0", config.DefaultR0, "initial recovered count")
	cmd.Flags().Float64Var(&horizon, "time", config.DefaultT, "time horizon")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "grid step")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultSolver, "integrator")
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a named preset scenario")
}

// buildScenario resolves preset, config file, and flags, with flags taking
// precedence over the file and the file over the preset.
func buildScenario(cmd *cobra.Command) (*config.Scenario, error) {
	scn := config.DefaultScenario()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		scn = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		scn = loaded
	}

	if cmd.Flags().Changed("beta") {
		scn.Beta = beta
	}
	if cmd.Flags().Changed("gamma") {
		scn.Gamma = gamma
	}
	if cmd.Flags().Changed("s0") {
		scn.N0[0] = s0
	}
	if cmd.Flags().Changed("i0") {
		scn.N0[1] = i0
	}
	if cmd.Flags().Changed("r0") {
		scn.N0[2] = r0
	}
	if cmd.Flags().Changed("time") {
		scn.T = horizon
	}
	if cmd.Flags().Changed("dt") {
		scn.Dt = dt
	}
	if cmd.Flags().Changed("integrator") {
		scn.Integrator = integrator
	}

	return scn, nil
}

func simulate(scn *config.Scenario) (*sim.Simulator, error) {
	integ, err := integrators.ForName(scn.Integrator)
	if err != nil {
		return nil, err
	}

	opts := []sim.Option{
		sim.WithN0(scn.N0[0], scn.N0[1], scn.N0[2]),
		sim.WithHorizon(scn.T),
		sim.WithStep(scn.Dt),
		sim.WithIntegrator(integ),
	}
	for _, m := range metrics.Defaults() {
		opts = append(opts, sim.WithMetric(m))
	}

	return sim.New(scn.Beta, scn.Gamma, opts...)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	scn, err := buildScenario(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"beta":       scn.Beta,
		"gamma":      scn.Gamma,
		"integrator": scn.Integrator,
	}).Debug("starting simulation")

	start := time.Now()
	sm, err := simulate(scn)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Beta:       scn.Beta,
		Gamma:      scn.Gamma,
		N0:         scn.N0,
		T:          scn.T,
		Dt:         scn.Dt,
		Integrator: scn.Integrator,
		Metrics:    sm.Metrics(),
	}, sm.Times(), sm.Trajectory())
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"run":     runID,
		"steps":   len(sm.Trajectory()),
		"elapsed": elapsed,
	}).Info("simulation complete")

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("population: %.0f\n", sm.Total())
	fmt.Printf("R0: %.2f\n", sm.Model().R0())
	fmt.Println("\nmetrics:")
	for name, val := range sm.Metrics() {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tBETA\tGAMMA\tN\tT\tDT\tINTEG")

	for _, run := range runs {
		n := run.N0[0] + run.N0[1] + run.N0[2]
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%.3f\t%.0f\t%.1f\t%.3f\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Beta,
			run.Gamma,
			n,
			run.T,
			run.Dt,
			run.Integrator,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []epi.State, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(states) == 0 {
		return nil, nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return meta, states, times, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, states, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	total := meta.N0[0] + meta.N0[1] + meta.N0[2]
	fractions := make([]epi.State, len(states))
	for i, x := range states {
		fractions[i] = x.Scale(1 / total)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("beta=%.3f gamma=%.3f N=%.0f\n", meta.Beta, meta.Gamma, total)
	fmt.Printf("samples: %d\n\n", len(states))

	fmt.Println(viz.PlotFractions(fractions, 80, 15))
	return nil
}

func plotBars(cmd *cobra.Command, args []string) error {
	meta, states, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	total := meta.N0[0] + meta.N0[1] + meta.N0[2]
	final := states[len(states)-1].Scale(1 / total)

	fmt.Println(viz.FinalBars(final, viz.WithBackground(bgColor)))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	scn, err := buildScenario(cmd)
	if err != nil {
		return err
	}

	sm, err := simulate(scn)
	if err != nil {
		return err
	}

	return viz.RunLive(sm, frameRate)
}

func runSweep(cmd *cobra.Command, args []string) error {
	scn, err := buildScenario(cmd)
	if err != nil {
		return err
	}

	sw, err := sweep.Over(sweepParam, sweepFrom, sweepTo, sweepSteps)
	if err != nil {
		return err
	}

	start := time.Now()
	points, err := sw.Run(context.Background(), scn)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"param":   sweepParam,
		"values":  len(points),
		"elapsed": time.Since(start),
	}).Debug("sweep complete")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tATTACK RATE\tPEAK I\tPEAK TIME\n", strings.ToUpper(sweepParam))
	for _, p := range points {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.1f\t%.1f\n", p.Param, p.AttackRate, p.PeakInfected, p.PeakTime)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	curve := make([]float64, len(points))
	for i, p := range points {
		curve[i] = p.AttackRate
	}
	fmt.Println()
	fmt.Println(viz.PlotSeries(curve, fmt.Sprintf("attack rate vs %s", sweepParam), 70, 12))

	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	scn, err := buildScenario(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tCONSERVATION DRIFT\tATTACK RATE\tPEAK I")

	for _, name := range args {
		runScn := *scn
		runScn.Integrator = name

		sm, err := simulate(&runScn)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		summary := sm.Metrics()
		peak, _ := sm.Peak()
		fmt.Fprintf(w, "%s\t%.3e\t%.4f\t%.1f\n",
			name, summary["conservation_drift"], summary["attack_rate"], peak)
	}

	return w.Flush()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, states, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Println("time,susceptible,infected,recovered")
	for i, x := range states {
		fmt.Printf("%.6f,%.6f,%.6f,%.6f\n", times[i], x[0], x[1], x[2])
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if jsonOut != "" {
		return storage.ExportJSON(jsonOut, meta, times, states)
	}
	return storage.ExportJSONStdout(meta, times, states)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	total := meta.N0[0] + meta.N0[1] + meta.N0[2]
	fractions := make([]epi.State, len(states))
	for i, x := range states {
		fractions[i] = x.Scale(1 / total)
	}

	if err := export.WriteSVG(svgOut, times, fractions, export.WithFacecolor(bgColor)); err != nil {
		return err
	}

	fmt.Printf("wrote %s\n", svgOut)
	return nil
}
