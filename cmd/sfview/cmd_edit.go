package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"sfview/internal/models"
)

var (
	threshold float64
	quiet     bool

	interpolateCmd = &cobra.Command{
		Use:   "interpolate [dataset] [x/y/z] [global-index...]",
		Short: "Replace a voxel by the weighted mean of its neighbours",
		Long: `Replaces the voxel at x/y/z of every listed global index by the
inverse-distance-weighted mean of its neighbours, where that lowers the
magnitude by more than the threshold. All replacements form one change.`,
		Args: cobra.MinimumNArgs(3),
		RunE: runInterpolate,
	}

	interpolateChannelCmd = &cobra.Command{
		Use:   "interpolate-channel [dataset] [receiver] [x/y/z]",
		Short: "Interpolate one voxel across all frequencies of a receiver",
		Args:  cobra.ExactArgs(3),
		RunE:  runInterpolateChannel,
	}

	undoCmd = &cobra.Command{
		Use:   "undo [dataset]",
		Short: "Revert the most recent change",
		Args:  cobra.ExactArgs(1),
		RunE:  runUndo,
	}

	undoAllCmd = &cobra.Command{
		Use:   "undo-all [dataset]",
		Short: "Revert every recorded change",
		Args:  cobra.ExactArgs(1),
		RunE:  runUndoAll,
	}
)

func registerEditCommands(root *cobra.Command) {
	for _, c := range []*cobra.Command{interpolateCmd, interpolateChannelCmd} {
		c.Flags().Float64VarP(&threshold, "threshold", "t", 0, "Minimum relative magnitude drop (default from config)")
	}
	for _, c := range []*cobra.Command{interpolateCmd, interpolateChannelCmd, undoAllCmd} {
		c.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print progress")
	}

	root.AddCommand(interpolateCmd, interpolateChannelCmd, undoCmd, undoAllCmd)
}

// editThreshold returns the flag value if set, else the configured default.
func editThreshold(cmd *cobra.Command) (float64, error) {
	if !cmd.Flags().Changed("threshold") {
		return cfg.Edit.Threshold, nil
	}
	if threshold < 0 || threshold >= 1 {
		return 0, fmt.Errorf("threshold must be in [0,1), got %g", threshold)
	}
	return threshold, nil
}

// progressPrinter reports batch progress on w unless --quiet is set.
func progressPrinter(w io.Writer) func(completed, total int, message string) {
	if quiet {
		return nil
	}
	return func(completed, total int, message string) {
		fmt.Fprintf(w, "\r[%d/%d] %s", completed, total, message)
		if completed == total {
			fmt.Fprintln(w)
		}
	}
}

func runInterpolate(cmd *cobra.Command, args []string) error {
	thr, err := editThreshold(cmd)
	if err != nil {
		return err
	}
	pos, err := models.ParsePosition(args[1])
	if err != nil {
		return err
	}

	m, err := openMatrix(args[0], models.Editor)
	if err != nil {
		return err
	}
	defer m.Close()

	if !m.ValidPosition(pos) {
		return fmt.Errorf("position %s outside grid %v", pos, m.Grid())
	}
	indices := make([]int, 0, len(args)-2)
	for _, a := range args[2:] {
		g, err := parseGlobalIndex(a, m.MaxGlobalIndex())
		if err != nil {
			return err
		}
		indices = append(indices, g)
	}

	changed, err := m.InterpolateIndices(indices, pos, thr, progressPrinter(cmd.ErrOrStderr()))
	return reportEdit(cmd.OutOrStdout(), changed, len(indices), m.LastChangeDescription(), err)
}

func runInterpolateChannel(cmd *cobra.Command, args []string) error {
	thr, err := editThreshold(cmd)
	if err != nil {
		return err
	}
	receiver, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("receiver %q: %w", args[1], err)
	}
	pos, err := models.ParsePosition(args[2])
	if err != nil {
		return err
	}

	m, err := openMatrix(args[0], models.Editor)
	if err != nil {
		return err
	}
	defer m.Close()

	if receiver < 0 || receiver >= m.NumberOfReceivers() {
		return fmt.Errorf("receiver %d outside [0,%d)", receiver, m.NumberOfReceivers())
	}
	if !m.ValidPosition(pos) {
		return fmt.Errorf("position %s outside grid %v", pos, m.Grid())
	}

	changed, err := m.InterpolateChannel(receiver, pos, thr, progressPrinter(cmd.ErrOrStderr()))
	return reportEdit(cmd.OutOrStdout(), changed, m.NumberOfFrequencies(), m.LastChangeDescription(), err)
}

// reportEdit prints the outcome of an interpolation. A persistence error is
// returned after the summary since the data was modified regardless.
func reportEdit(out io.Writer, changed, total int, last string, err error) error {
	if changed == 0 {
		fmt.Fprintf(out, "No voxel changed (0 of %d indices)\n", total)
		return err
	}
	fmt.Fprintf(out, "Changed %d of %d indices: %s\n", changed, total, last)
	if err != nil {
		return fmt.Errorf("change applied but not saved: %w", err)
	}
	return nil
}

func runUndo(cmd *cobra.Command, args []string) error {
	m, err := openMatrix(args[0], models.Editor)
	if err != nil {
		return err
	}
	defer m.Close()

	out := cmd.OutOrStdout()
	if !m.IsModified() {
		fmt.Fprintln(out, "Nothing to undo")
		return nil
	}
	last := m.LastChangeDescription()
	if err := m.UndoLast(); err != nil {
		return fmt.Errorf("undo applied but not saved: %w", err)
	}
	fmt.Fprintf(out, "Reverted %s\n", last)
	return nil
}

func runUndoAll(cmd *cobra.Command, args []string) error {
	m, err := openMatrix(args[0], models.Editor)
	if err != nil {
		return err
	}
	defer m.Close()

	out := cmd.OutOrStdout()
	n := len(m.Changes())
	if n == 0 {
		fmt.Fprintln(out, "Nothing to undo")
		return nil
	}
	if err := m.UndoAll(progressPrinter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("undo applied but not saved: %w", err)
	}
	fmt.Fprintf(out, "Reverted %d changes\n", n)
	return nil
}
