package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slotplanner/slotplanner/core/model"
	"github.com/slotplanner/slotplanner/core/solver"
	"github.com/slotplanner/slotplanner/pkg/dataset"
	"github.com/slotplanner/slotplanner/pkg/export"
)

var diffPlanPath string

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare a plan against the dataset's previous plan",
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().StringVarP(&dataPath, "data", "d", "", "dataset file (json or yaml)")
	diffCmd.Flags().StringVarP(&diffPlanPath, "plan", "p", "", "plan file written by solve")
	_ = diffCmd.MarkFlagRequired("data")
	_ = diffCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	doc, err := dataset.Load(dataPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	_, _, _, _, previous, err := doc.Decode(cfg.Grid.RasterMinutes)
	if err != nil {
		return fmt.Errorf("decode dataset: %w", err)
	}

	f, err := os.Open(diffPlanPath)
	if err != nil {
		return err
	}
	defer f.Close()
	plan, err := export.ReadJSON(f)
	if err != nil {
		return fmt.Errorf("read plan: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, e := range solver.Diff(plan, previous) {
		fmt.Fprintf(out, "%s\t%s\t%s -> %s\n", e.ChildID, e.Kind, describe(e.Old), describe(e.New))
	}
	return nil
}

func describe(a *model.Assignment) string {
	if a == nil {
		return "unassigned"
	}
	return fmt.Sprintf("%s @ %s", a.TeacherID, a.Slot)
}
