// Package main - plan command: preview the next chapter without mutating.
package main

import (
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [novel-id]",
	Short: "Preview the selection and directive for the next chapter",
	Long: `Re-runs the director over the stored snapshot and prints the
directive for the next chapter without touching any state. Useful to see
what the engine will demand before sitting down to write.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.LoadSnapshot(args[0])
	if err != nil {
		return err
	}

	engine := buildEngine(cmd.Context(), cfg)
	result, err := engine.Plan(cmd.Context(), snap)
	if err != nil {
		return err
	}

	printDirective(result)
	return nil
}
