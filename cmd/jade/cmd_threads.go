// Package main - thread inspection and manual director controls.
package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Inspect and steer individual threads",
}

var threadsListCmd = &cobra.Command{
	Use:   "list [novel-id]",
	Short: "List all threads with their scores",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadsList,
}

var threadsPinCmd = &cobra.Command{
	Use:   "pin [novel-id] [signature]",
	Short: "Force director attention onto a thread",
	Long: `Pins a thread so the director always selects it, bypassing the
urgency ranking. Pins never count against the per-chapter budget: if
pins alone exceed it, the budget stretches to fit them.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error { return setPin(args[0], args[1], true) },
}

var threadsUnpinCmd = &cobra.Command{
	Use:   "unpin [novel-id] [signature]",
	Short: "Release a pinned thread back to normal ranking",
	Args:  cobra.ExactArgs(2),
	RunE:  func(cmd *cobra.Command, args []string) error { return setPin(args[0], args[1], false) },
}

var threadsBoostCmd = &cobra.Command{
	Use:   "boost [novel-id] [signature] [delta]",
	Short: "Raise a thread's karma weight",
	Args:  cobra.ExactArgs(3),
	RunE:  runThreadsBoost,
}

var abandonReason string

var threadsAbandonCmd = &cobra.Command{
	Use:   "abandon [novel-id] [signature]",
	Short: "Intentionally abandon a thread",
	Long: `Marks a thread as deliberately dropped. This is terminal and the
only way a thread is ever abandoned; the engine never does it on its
own. The thread is kept forever for the record, and its signature is
freed for reuse.`,
	Args: cobra.ExactArgs(2),
	RunE: runThreadsAbandon,
}

func init() {
	threadsAbandonCmd.Flags().StringVarP(&abandonReason, "reason", "r", "", "why the thread is being dropped")
	threadsCmd.AddCommand(threadsListCmd)
	threadsCmd.AddCommand(threadsPinCmd)
	threadsCmd.AddCommand(threadsUnpinCmd)
	threadsCmd.AddCommand(threadsBoostCmd)
	threadsCmd.AddCommand(threadsAbandonCmd)
}

func runThreadsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.LoadSnapshot(args[0])
	if err != nil {
		return err
	}

	threads := append(snap.Threads[:0:0], snap.Threads...)
	sort.Slice(threads, func(a, b int) bool {
		return threads[a].UrgencyScore > threads[b].UrgencyScore
	})

	fmt.Printf("# %s - chapter %d, %d threads\n\n", snap.NovelID, snap.Chapter, len(threads))
	for _, t := range threads {
		pin := " "
		if t.DirectorAttentionForced {
			pin = "*"
		}
		fmt.Printf("%s %-9s %-10s urg %4.0f  karma %3d  debt %5.1f  entropy %5.1f  %s\n",
			pin, t.Status, t.Category, t.UrgencyScore, t.KarmaWeight, t.PayoffDebt, t.Entropy, t.Signature)
	}
	return nil
}

func setPin(novelID, signature string, pinned bool) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.LoadSnapshot(novelID)
	if err != nil {
		return err
	}
	snap, err = snap.SetPin(signature, pinned)
	if err != nil {
		return err
	}
	if err := st.SaveSnapshot(snap); err != nil {
		return err
	}
	if pinned {
		fmt.Printf("pinned %q\n", signature)
	} else {
		fmt.Printf("unpinned %q\n", signature)
	}
	return nil
}

func runThreadsBoost(cmd *cobra.Command, args []string) error {
	delta, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid delta %q", args[2])
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
	snap, err = snap.BoostKarma(args[1], delta)
	if err != nil {
		return err
	}
	if err := st.SaveSnapshot(snap); err != nil {
		return err
	}
	fmt.Printf("boosted %q by %d\n", args[1], delta)
	return nil
}

func runThreadsAbandon(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.LoadSnapshot(args[0])
	if err != nil {
		return err
	}
	snap, err = snap.Abandon(args[1], abandonReason)
	if err != nil {
		return err
	}
	if err := st.SaveSnapshot(snap); err != nil {
		return err
	}
	fmt.Printf("abandoned %q\n", args[1])
	return nil
}
