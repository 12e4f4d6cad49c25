// Package main - health command: pacing reports per novel.
package main

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/director"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/thread"
)

var healthAll bool

var healthCmd = &cobra.Command{
	Use:   "health [novel-id]",
	Short: "Show the pacing health of a novel's thread set",
	Long: `Scores overall pacing 0..100: the karma-weighted share of live
threads that are neither stalled nor past the high-entropy line. With
--all, reports every novel in the store; novels are independent, so the
reports run in parallel.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthAll, "all", false, "report every novel in the store")
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var novels []string
	if healthAll {
		novels, err = st.ListNovels()
		if err != nil {
			return err
		}
	} else {
		if len(args) != 1 {
			return fmt.Errorf("novel-id required unless --all is set")
		}
		novels = args
	}

	var mu sync.Mutex
	reports := make(map[string]director.PacingReport, len(novels))

	g, _ := errgroup.WithContext(cmd.Context())
	for _, id := range novels {
		g.Go(func() error {
			snap, err := st.LoadSnapshot(id)
			if err != nil {
				return err
			}
			r := director.Report(snap, snap.Chapter+1, cfg)
			mu.Lock()
			reports[id] = r
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ids := make([]string, 0, len(reports))
	for id := range reports {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		printPacing(id, reports[id])
	}
	return nil
}

func printPacing(novelID string, r director.PacingReport) {
	fmt.Printf("# %s - health %d/100 (chapter %d)\n", novelID, r.Health, r.Chapter)

	statuses := []string{
		string(thread.StatusSeed), string(thread.StatusOpen), string(thread.StatusBlooming),
		string(thread.StatusStalled), string(thread.StatusClosed), string(thread.StatusAbandoned),
	}
	for _, s := range statuses {
		if n := r.StatusCounts[s]; n > 0 {
			fmt.Printf("  %-9s %d\n", s, n)
		}
	}
	fmt.Printf("  total payoff debt: %.1f\n", r.TotalDebt)
	for _, sig := range r.Overdue {
		fmt.Printf("  overdue payoff: %s\n", sig)
	}
	fmt.Println()
}
