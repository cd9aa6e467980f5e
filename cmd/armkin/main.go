package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/armkin/internal/config"
	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/jog"
	"github.com/san-kum/armkin/internal/kin"
	"github.com/san-kum/armkin/internal/metrics"
	"github.com/san-kum/armkin/internal/storage"
	"github.com/san-kum/armkin/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	twistArg   string
	eps        float64
	save       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "armkin",
		Short: "velocity-level jogging for serial arms",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".armkin", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "robot config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "planar2", "built-in robot preset")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "solve joint velocities for one twist",
		RunE:  solveOnce,
	}
	solveCmd.Flags().StringVar(&twistArg, "twist", "", "commanded twist vx,vy,vz,wx,wy,wz")
	solveCmd.Flags().Float64Var(&eps, "eps", 0, "singular value cutoff (relative)")

	jogCmd := &cobra.Command{
		Use:   "jog",
		Short: "run a jog and report the trajectory",
		RunE:  runJog,
	}
	jogCmd.Flags().Float64Var(&dt, "dt", 0, "timestep")
	jogCmd.Flags().Float64Var(&duration, "time", 0, "duration")
	jogCmd.Flags().StringVar(&twistArg, "twist", "", "commanded twist vx,vy,vz,wx,wy,wz")
	jogCmd.Flags().Float64Var(&eps, "eps", 0, "singular value cutoff (relative)")
	jogCmd.Flags().BoolVar(&save, "save", false, "persist the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "jog interactively with live visualization",
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", 0, "timestep")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in robots",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				chain, err := cfg.Chain()
				if err != nil {
					return err
				}
				fmt.Printf("  %-10s %d dof\n", name, chain.DOF())
			}
			return nil
		},
	}

	rootCmd.AddCommand(solveCmd, jogCmd, liveCmd, listCmd, plotCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the robot description: a config file wins over the
// preset, flags win over both.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if cmd.Flags().Changed("dt") {
		cfg.Jog.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Jog.Duration = duration
	}
	if cmd.Flags().Changed("eps") {
		cfg.Solver.Eps = eps
	}
	if cmd.Flags().Changed("twist") {
		tw, err := parseTwist(twistArg)
		if err != nil {
			return nil, err
		}
		cfg.Jog.Twist = tw
	}
	return cfg, nil
}

func parseTwist(s string) ([6]float64, error) {
	var tw [6]float64
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return tw, fmt.Errorf("twist needs 6 comma-separated values, got %d", len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return tw, fmt.Errorf("bad twist component %q: %w", p, err)
		}
		tw[i] = v
	}
	return tw, nil
}

func buildSolver(cfg *config.Config) (*kin.Chain, *ik.Solver, error) {
	chain, err := cfg.Chain()
	if err != nil {
		return nil, nil, err
	}
	solver, err := ik.NewForChain(chain, cfg.SolverOptions())
	if err != nil {
		return nil, nil, err
	}
	return chain, solver, nil
}

func solveOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	chain, solver, err := buildSolver(cfg)
	if err != nil {
		return err
	}

	q := cfg.InitState(chain.DOF())
	if err := chain.ApplyMimic(q); err != nil {
		return err
	}
	jac, err := chain.Jacobian(q)
	if err != nil {
		return err
	}

	tw := cfg.Jog.Twist
	qdot, err := solver.Solve(jac, tw[:])
	if err != nil {
		return err
	}

	fmt.Printf("robot: %s (%d dof)\n", chain.Name, chain.DOF())
	fmt.Printf("twist: %v\n\n", tw)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOINT\tQ\tQDOT")
	qi := 0
	for _, j := range chain.Joints {
		if j.Type == kin.Fixed {
			continue
		}
		name := j.Name
		if j.Mimic != nil {
			name += " (mimic)"
		}
		fmt.Fprintf(w, "%s\t%+.4f\t%+.4f\n", name, q[qi], qdot[qi])
		qi++
	}
	return w.Flush()
}

func runJog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	chain, solver, err := buildSolver(cfg)
	if err != nil {
		return err
	}

	runner := jog.New(chain, solver, jog.Constant(cfg.Jog.Twist))
	runner.AddMetric(metrics.NewManipulability())
	runner.AddMetric(metrics.NewConditionNumber())
	runner.AddMetric(metrics.NewPeakJointSpeed())

	q0 := cfg.InitState(chain.DOF())
	jogCfg := jog.Config{Dt: cfg.Jog.Dt, Duration: cfg.Jog.Duration}

	fmt.Printf("jogging %s...\n", chain.Name)
	start := time.Now()
	result, err := runner.Run(context.Background(), q0, jogCfg)
	if err != nil {
		return err
	}
	fmt.Printf("completed %d steps in %v\n", result.StepsTaken, time.Since(start))

	if len(result.SolveErrors) > 0 {
		fmt.Printf("degraded steps: %d (first: %v)\n", len(result.SolveErrors), result.SolveErrors[0])
	}

	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	fmt.Println()

	plotTrajectory(chain, result.Times, result.Positions)

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(chain.Name, jogCfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("saved run: %s\n", runID)
	}
	return nil
}

func plotTrajectory(chain *kin.Chain, times []float64, positions [][]float64) {
	if len(positions) == 0 {
		return
	}
	dof := len(positions[0])
	names := make([]string, 0, dof)
	for _, j := range chain.Joints {
		if j.Type != kin.Fixed {
			names = append(names, j.Name)
		}
	}

	for qi := 0; qi < dof; qi++ {
		data := make([]float64, len(positions))
		for i := range positions {
			data[i] = positions[i][qi]
		}
		caption := fmt.Sprintf("q%d", qi)
		if qi < len(names) {
			caption = names[qi]
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(6),
			asciigraph.Width(70),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	_ = times
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	chain, solver, err := buildSolver(cfg)
	if err != nil {
		return err
	}

	q0 := cfg.InitState(chain.DOF())
	m := viz.NewModel(chain, solver, q0, cfg.Jog.Dt)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
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
	fmt.Fprintln(w, "ID\tROBOT\tTIME\tDURATION\tDT\tDOF\tDEGRADED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Robot,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.DOF,
			len(run.SolveErrors),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, positions, _, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("robot: %s\n", meta.Robot)
	fmt.Printf("samples: %d\n\n", len(positions))

	for qi := 0; qi < meta.DOF; qi++ {
		data := make([]float64, len(positions))
		for i := range positions {
			data[i] = positions[i][qi]
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(6),
			asciigraph.Width(70),
			asciigraph.Caption(fmt.Sprintf("q%d", qi)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	_ = times
	return nil
}
