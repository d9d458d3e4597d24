package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slotplanner/slotplanner/core/slotgrid"
	"github.com/slotplanner/slotplanner/core/solver"
	"github.com/slotplanner/slotplanner/pkg/dataset"
	"github.com/slotplanner/slotplanner/pkg/export"
)

var explainPlanPath string

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "List unmet goals of a stored plan",
	RunE:  runExplain,
}

func init() {
	explainCmd.Flags().StringVarP(&dataPath, "data", "d", "", "dataset file (json or yaml)")
	explainCmd.Flags().StringVarP(&explainPlanPath, "plan", "p", "", "plan file written by solve")
	_ = explainCmd.MarkFlagRequired("data")
	_ = explainCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
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
	children, teachers, tandems, _, _, err := doc.Decode(cfg.Grid.RasterMinutes)
	if err != nil {
		return fmt.Errorf("decode dataset: %w", err)
	}

	f, err := os.Open(explainPlanPath)
	if err != nil {
		return err
	}
	defer f.Close()
	plan, err := export.ReadJSON(f)
	if err != nil {
		return fmt.Errorf("read plan: %w", err)
	}

	violations := solver.Explain(grid, plan, children, teachers, tandems)
	out := cmd.OutOrStdout()
	if len(violations) == 0 {
		fmt.Fprintln(out, "no violations")
		return nil
	}
	for _, v := range violations {
		fmt.Fprintf(out, "%s\t%s\t%s\n", v.Kind, strings.Join(v.Subjects, ","), v.Detail)
	}
	return nil
}
