package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/slotplanner/slotplanner/core/events"
	"github.com/slotplanner/slotplanner/core/model"
	"github.com/slotplanner/slotplanner/core/slotgrid"
	"github.com/slotplanner/slotplanner/core/solver"
	"github.com/slotplanner/slotplanner/infra/logger"
	"github.com/slotplanner/slotplanner/internal/eventbus"
	"github.com/slotplanner/slotplanner/pkg/dataset"
	"github.com/slotplanner/slotplanner/pkg/export"
)

var (
	dataPath  string
	outPath   string
	csvPath   string
	timeLimit time.Duration
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Compute the weekly session plan for a dataset",
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&dataPath, "data", "d", "", "dataset file (json or yaml)")
	solveCmd.Flags().StringVarP(&outPath, "out", "o", "-", "plan output file, - for stdout")
	solveCmd.Flags().StringVar(&csvPath, "csv", "", "optional CSV output file for the assignments")
	solveCmd.Flags().DurationVar(&timeLimit, "time-limit", 0, "search time budget, 0 uses the configured default")
	_ = solveCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	grid, err := slotgrid.New(cfg.Grid)
	if err != nil {
		return fmt.Errorf("build grid: %w", err)
	}
	doc, err := dataset.Load(dataPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	children, teachers, tandems, weights, previous, err := doc.Decode(cfg.Grid.RasterMinutes)
	if err != nil {
		return fmt.Errorf("decode dataset: %w", err)
	}

	logg := logger.New("solve-command")
	bus := eventbus.New()
	defer bus.Close()
	go watchProgress(bus, logg)

	sol, err := solver.New(grid, cfg.Solver, logg, bus)
	if err != nil {
		return err
	}
	plan, err := sol.Solve(ctx, solver.Input{
		Children:  children,
		Teachers:  teachers,
		Tandems:   tandems,
		Weights:   weights,
		Previous:  previous,
		TimeLimit: timeLimit,
	})
	if err != nil {
		return err
	}

	if err := writePlan(plan, outPath); err != nil {
		return err
	}
	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteCSV(f, plan); err != nil {
			return err
		}
	}
	return nil
}

func watchProgress(bus eventbus.EventBus, logg logger.Logger) {
	for ev := range bus.Subscribe() {
		switch e := ev.(type) {
		case events.ProgressEvent:
			logg.Infof("best so far: %d assigned, score %.3f after %s (%d nodes)",
				e.BestAssigned, e.BestScore, e.Elapsed.Round(time.Millisecond), e.Nodes)
		case events.ResultEvent:
			logg.Infof("run %s finished with status %s in %s", e.RunID, e.Status, e.Runtime)
		}
	}
}

func writePlan(plan *model.Plan, path string) error {
	if path == "-" || path == "" {
		return export.WriteJSON(os.Stdout, plan)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteJSON(f, plan)
}
