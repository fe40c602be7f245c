package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/stabkit/stabsel/internal/config"
	"github.com/stabkit/stabsel/internal/dataset"
	"github.com/stabkit/stabsel/internal/export"
	"github.com/stabkit/stabsel/internal/lasso"
	"github.com/stabkit/stabsel/internal/stabsel"
	"github.com/stabkit/stabsel/internal/storage"
	"github.com/stabkit/stabsel/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	replicates int
	folds      int
	alpha      float64
	threshold  float64
	seed       int64
	workers    int
	csvPath    string
	target     string
	synthN     int
	synthP     int
	synthIn    int
	synthSNR   float64
	outPath    string
	svgDir     string
	frameRate  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stabsel",
		Short: "stability selection diagnostics for lasso regression",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".stabsel", "run directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a stability analysis",
		RunE:  runAnalysis,
	}
	addAnalysisFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the stability curve of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	convergeCmd := &cobra.Command{
		Use:   "converge [run_id]",
		Short: "plot the convergence trajectory of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  convergeRun,
	}

	freqCmd := &cobra.Command{
		Use:   "freq [run_id]",
		Short: "selection frequency table of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  freqRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON, optionally with SVG curves",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outPath, "out", "", "JSON output path (default stdout)")
	exportCmd.Flags().StringVar(&svgDir, "svg", "", "also write curve SVGs to this directory")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run an analysis and replay its convergence interactively",
		RunE:  runLive,
	}
	addAnalysisFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 15, "replay frame rate")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in analysis presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				cfg := config.GetPreset(p)
				fmt.Printf("  %-10s replicates=%d folds=%d alpha=%.2f\n",
					p, cfg.Replicates, cfg.Folds, cfg.Alpha)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, convergeCmd, freqCmd, exportCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&replicates, "replicates", config.DefaultReplicates, "subsamples per penalty")
	cmd.Flags().IntVar(&folds, "folds", config.DefaultFolds, "cross-validation folds")
	cmd.Flags().Float64Var(&alpha, "alpha", config.DefaultAlpha, "confidence interval significance level")
	cmd.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "selection frequency cutoff")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "parallel fit workers")
	cmd.Flags().StringVar(&csvPath, "csv", "", "dataset CSV path")
	cmd.Flags().StringVar(&target, "target", "", "response column name")
	cmd.Flags().IntVar(&synthN, "n", config.DefaultN, "synthetic sample count")
	cmd.Flags().IntVar(&synthP, "p", config.DefaultP, "synthetic predictor count")
	cmd.Flags().IntVar(&synthIn, "informative", config.DefaultInform, "synthetic informative predictors")
	cmd.Flags().Float64Var(&synthSNR, "snr", config.DefaultSNR, "synthetic signal-to-noise ratio")
}

// resolveConfig layers preset, config file, and explicit flags, flags
// winning.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("replicates") {
		cfg.Replicates = replicates
	}
	if cmd.Flags().Changed("folds") {
		cfg.Folds = folds
	}
	if cmd.Flags().Changed("alpha") {
		cfg.Alpha = alpha
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Threshold = threshold
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("csv") {
		cfg.Data.CSV = csvPath
	}
	if cmd.Flags().Changed("target") {
		cfg.Data.Target = target
	}
	if cmd.Flags().Changed("n") {
		cfg.Data.Synthetic.N = synthN
	}
	if cmd.Flags().Changed("p") {
		cfg.Data.Synthetic.P = synthP
	}
	if cmd.Flags().Changed("informative") {
		cfg.Data.Synthetic.Informative = synthIn
	}
	if cmd.Flags().Changed("snr") {
		cfg.Data.Synthetic.SNR = synthSNR
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadData returns the design, response, predictor names and a short
// dataset label for the run ID.
func loadData(cfg *config.Config) (*mat.Dense, []float64, []string, string, error) {
	if cfg.Data.CSV != "" {
		X, y, names, err := dataset.LoadCSV(cfg.Data.CSV, cfg.Data.Target)
		if err != nil {
			return nil, nil, nil, "", err
		}
		label := strings.TrimSuffix(filepath.Base(cfg.Data.CSV), filepath.Ext(cfg.Data.CSV))
		return X, y, names, label, nil
	}

	s := cfg.Data.Synthetic
	X, y, names := dataset.Synthetic(s.N, s.P, s.Informative, s.SNR, cfg.Seed)
	return X, y, names, "synthetic", nil
}

func analyze(cfg *config.Config) (*stabsel.RegularizationCurve, *stabsel.ConvergenceCurve, stabsel.Config, string, int, int, error) {
	X, y, names, label, err := loadData(cfg)
	if err != nil {
		return nil, nil, stabsel.Config{}, "", 0, 0, err
	}
	n, p := X.Dims()

	fit := lasso.New(lasso.Config{
		MaxIter:        cfg.Fit.MaxIter,
		Tol:            cfg.Fit.Tol,
		NLambda:        cfg.Fit.NLambda,
		LambdaMinRatio: cfg.Fit.LambdaMinRatio,
		Seed:           cfg.Seed,
	})

	buildCfg := stabsel.Config{
		Replicates: cfg.Replicates,
		Folds:      cfg.Folds,
		Alpha:      cfg.Alpha,
		Threshold:  cfg.Threshold,
		Seed:       cfg.Seed,
		Workers:    cfg.Workers,
	}

	res, err := stabsel.Build(context.Background(), fit, X, y, names, buildCfg)
	if err != nil {
		return nil, nil, stabsel.Config{}, "", 0, 0, err
	}

	reg, err := stabsel.NewRegularizationCurve(res, cfg.Alpha)
	if err != nil {
		return nil, nil, stabsel.Config{}, "", 0, 0, err
	}
	conv, err := stabsel.NewConvergenceCurve(res, cfg.Alpha, cfg.Threshold)
	if err != nil {
		return nil, nil, stabsel.Config{}, "", 0, 0, err
	}

	return reg, conv, buildCfg, label, n, p, nil
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running stability analysis (B=%d, folds=%d)...\n", cfg.Replicates, cfg.Folds)
	start := time.Now()

	reg, conv, buildCfg, label, n, p, err := analyze(cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(label, n, p, buildCfg, reg, conv)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("dataset: %s (%d samples, %d predictors)\n\n", label, n, p)

	fmt.Println(viz.RegularizationPlot(reg, 80, 12))
	fmt.Println(viz.ReferenceSummary(reg))
	fmt.Println(viz.ConvergencePlot(conv.Trajectory, 80, 12))
	fmt.Println(viz.FrequencyTable(conv.Selected, cfg.Threshold))

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
	fmt.Fprintln(w, "ID\tDATASET\tTIME\tSHAPE\tB\tRULE\tLAMBDA")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%s\t%.4g\n",
			run.ID,
			run.Dataset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Samples,
			run.Predictors,
			run.Replicates,
			run.Rule,
			run.LambdaStable,
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
	points, err := st.LoadCurve(runID)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("no data to plot")
	}

	curve := &stabsel.RegularizationCurve{
		Points:       points,
		LambdaMin:    meta.LambdaMin,
		Lambda1SE:    meta.Lambda1SE,
		LambdaStable: meta.LambdaStable,
		Rule:         stabsel.Rule(meta.Rule),
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("dataset: %s\n\n", meta.Dataset)
	fmt.Println(viz.RegularizationPlot(curve, 80, 14))
	fmt.Println(viz.ReferenceSummary(curve))
	return nil
}

func convergeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadConvergence(runID)
	if err != nil {
		return err
	}
	if len(traj) == 0 {
		return fmt.Errorf("no trajectory to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("penalty: %.6g (%s)\n\n", meta.LambdaStable, meta.Rule)
	fmt.Println(viz.ConvergencePlot(traj, 80, 14))
	return nil
}

func freqRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	freqs, err := st.LoadFrequencies(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n\n", meta.ID)
	fmt.Println(viz.FrequencyTable(freqs, meta.Threshold))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	if svgDir != "" {
		if err := os.MkdirAll(svgDir, 0755); err != nil {
			return err
		}

		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		points, err := st.LoadCurve(runID)
		if err != nil {
			return err
		}
		traj, err := st.LoadConvergence(runID)
		if err != nil {
			return err
		}

		curve := &stabsel.RegularizationCurve{
			Points:       points,
			LambdaMin:    meta.LambdaMin,
			Lambda1SE:    meta.Lambda1SE,
			LambdaStable: meta.LambdaStable,
			Rule:         stabsel.Rule(meta.Rule),
		}

		regPath := filepath.Join(svgDir, runID+"_curve.svg")
		if err := os.WriteFile(regPath, []byte(export.RegularizationSVG(curve, 800, 450)), 0644); err != nil {
			return err
		}
		convPath := filepath.Join(svgDir, runID+"_convergence.svg")
		if err := os.WriteFile(convPath, []byte(export.ConvergenceSVG(traj, 800, 450)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s and %s\n", regPath, convPath)
	}

	if outPath != "" {
		return st.ExportJSON(outPath, runID)
	}
	return st.ExportJSONStdout(runID)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("running stability analysis (B=%d, folds=%d)...\n", cfg.Replicates, cfg.Folds)
	_, conv, _, _, _, _, err := analyze(cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(conv, frameRate))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
