// Package main - advance command: process one finished chapter.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/pipeline"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/store"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/thread"
)

var advanceCmd = &cobra.Command{
	Use:   "advance [novel-id] [chapter-number] [chapter-file]",
	Short: "Audit a finished chapter and plan the next one",
	Long: `Feeds one finished chapter through the engine:
  1. The external auditor classifies the chapter into thread events
  2. The events are applied deterministically; every thread re-scored
  3. The director selects the threads the next chapter must address
  4. The enforceable directive for the next chapter is printed

Chapters must be fed in order, exactly once each. A missing or failing
auditor degrades to physics-only aging; it never blocks the chapter.

Example:
  jade advance my-novel 12 chapters/012.md`,
	Args: cobra.ExactArgs(3),
	RunE: runAdvance,
}

func runAdvance(cmd *cobra.Command, args []string) error {
	novelID := args[0]
	chapter, err := strconv.Atoi(args[1])
	if err != nil || chapter < 1 {
		return fmt.Errorf("invalid chapter number %q", args[1])
	}
	text, err := os.ReadFile(args[2])
	if err != nil {
		return fmt.Errorf("failed to read chapter file: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.LoadSnapshot(novelID)
	if errors.Is(err, store.ErrNotFound) {
		logger.Info("no snapshot yet, starting fresh", zap.String("novel", novelID))
		snap = thread.Snapshot{NovelID: novelID}
	} else if err != nil {
		return err
	}

	engine := buildEngine(cmd.Context(), cfg)
	result, err := engine.Chapter(cmd.Context(), snap, string(text), chapter)
	if err != nil {
		if errors.Is(err, pipeline.ErrChapterOutOfOrder) {
			return fmt.Errorf("%w (the engine is exactly-once per chapter; re-running a chapter would double-count)", err)
		}
		return err
	}

	if err := st.SaveSnapshot(result.Snapshot); err != nil {
		return err
	}

	printReport(result)
	printDirective(result)
	return nil
}

func printReport(result *pipeline.Result) {
	r := result.Report
	fmt.Printf("# Chapter %d audit\n\n", r.Chapter)
	fmt.Printf("Created: %d  Updated: %d  Resolved: %d  Stalled: %d\n",
		len(r.Created), len(r.Updated), len(r.Resolved), len(r.Stalled))
	if len(r.DroppedCreates) > 0 {
		fmt.Printf("Dropped creates (over budget): %s\n", strings.Join(r.DroppedCreates, ", "))
	}
	for _, w := range r.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	for _, w := range result.ConsistencyWarnings {
		fmt.Printf("  continuity: %s\n", w)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  engine: %s\n", w)
	}
	fmt.Println()
}

func printDirective(result *pipeline.Result) {
	d := result.Directive
	fmt.Printf("# Directive for chapter %d (health %d/100)\n\n", d.ChapterNumber, result.Health)
	fmt.Printf("Goal: %s\n", d.PrimaryGoal)
	fmt.Printf("Pacing: %s, ~%d words, %s\n\n", d.Pacing.Intensity, d.Pacing.WordCountTarget, d.Pacing.TensionCurve)

	if len(d.ThreadAnchors) > 0 {
		fmt.Println("## Must address")
		for _, a := range d.ThreadAnchors {
			fmt.Printf("- [%s] %s", a.RequiredAction, a.Signature)
			if a.MandatoryDetail != "" {
				fmt.Printf(": %s", a.MandatoryDetail)
			}
			fmt.Println()
		}
		fmt.Println()
	}

	if len(d.ForbiddenOutcomes) > 0 {
		fmt.Println("## Forbidden")
		for _, f := range d.ForbiddenOutcomes {
			fmt.Printf("- %s\n", f)
		}
		fmt.Println()
	}

	if len(result.Selection.StaleWarnings) > 0 {
		fmt.Println("## Going stale")
		for _, c := range result.Selection.StaleWarnings {
			fmt.Printf("- %s (quiet for %d chapters)\n", c.Signature, c.Gap)
		}
		fmt.Println()
	}
}
