package main

import (
	"fmt"
	"math/cmplx"
	"strconv"

	"github.com/spf13/cobra"

	"sfview/internal/models"
)

var (
	rankTop       int
	voxelCorrect  bool
	mixingAllTerm bool

	infoCmd = &cobra.Command{
		Use:   "info [dataset]",
		Short: "Print acquisition parameters and SNR statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	rankCmd = &cobra.Command{
		Use:   "rank [dataset]",
		Short: "List global indices by descending SNR",
		Args:  cobra.ExactArgs(1),
		RunE:  runRank,
	}

	mixingCmd = &cobra.Command{
		Use:   "mixing [dataset] [global-index]",
		Short: "Print the mixing terms explaining the frequency of a global index",
		Args:  cobra.ExactArgs(2),
		RunE:  runMixing,
	}

	voxelCmd = &cobra.Command{
		Use:   "voxel [dataset] [global-index] [x/y/z]",
		Short: "Print the calibrated and interpolated value of one voxel",
		Args:  cobra.ExactArgs(3),
		RunE:  runVoxel,
	}
)

func registerInfoCommands(root *cobra.Command) {
	rankCmd.Flags().IntVarP(&rankTop, "top", "n", 20, "Number of indices to list (0 for all)")
	voxelCmd.Flags().BoolVar(&voxelCorrect, "corrected", true, "Read the background-corrected plane")
	mixingCmd.Flags().BoolVar(&mixingAllTerm, "all", false, "List every term, not only the lowest order")

	root.AddCommand(infoCmd, rankCmd, mixingCmd, voxelCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	m, err := openMatrix(args[0], models.Viewer)
	if err != nil {
		return err
	}
	defer m.Close()

	out := cmd.OutOrStdout()
	md := m.Metadata()
	grid := m.Grid()

	fmt.Fprintln(out, "================================")
	fmt.Fprintf(out, "System matrix: %s\n", m.Path())
	fmt.Fprintln(out, "================================")
	fmt.Fprintf(out, "Institution:    %s\n", md.Institution)
	fmt.Fprintf(out, "System:         %s (%s, %s)\n", md.SystemName, md.SystemID, md.Manufacturer)
	fmt.Fprintf(out, "Experiment:     %s\n", md.ExperimentName)
	if !md.ExperimentDate.IsZero() {
		fmt.Fprintf(out, "Date:           %s\n", md.ExperimentDate.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(out, "Averages:       %d\n", md.Averages)
	fmt.Fprintf(out, "Tracer:         %s (%g mmol/L, %g uL)\n", md.TracerName, md.TracerConcentration, md.TracerVolume)

	fmt.Fprintf(out, "\nGrid:           %d x %d x %d\n", grid[0], grid[1], grid[2])
	fmt.Fprintf(out, "Extent [mm]:    %g x %g x %g\n",
		m.SpatialExtent(models.AxisX), m.SpatialExtent(models.AxisY), m.SpatialExtent(models.AxisZ))
	fmt.Fprintf(out, "Receivers:      %d\n", m.NumberOfReceivers())
	fmt.Fprintf(out, "Frequencies:    %d (bandwidth %g Hz)\n", m.NumberOfFrequencies(), m.Bandwidth())
	fmt.Fprintf(out, "Selection field: %g T/m\n", m.SelectionField())
	for ch := 0; ch < 3; ch++ {
		fmt.Fprintf(out, "Drive field %d:  %g mT\n", ch, m.DriveField(ch))
	}

	summary, err := m.SNRSummary()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nSNR statistics:\n")
	fmt.Fprintf(out, "- Count: %d\n", summary.Count)
	fmt.Fprintf(out, "- Min/Mean/Max: %.3f / %.3f / %.3f\n", summary.Min, summary.Mean, summary.Max)
	fmt.Fprintf(out, "- P50/P90/P99: %.3f / %.3f / %.3f\n", summary.P50, summary.P90, summary.P99)

	if m.IsModified() {
		fmt.Fprintf(out, "\nModified voxels: %d entries, last: %s\n", len(m.Changes()), m.LastChangeDescription())
	}
	return nil
}

func runRank(cmd *cobra.Command, args []string) error {
	m, err := openMatrix(args[0], models.Viewer)
	if err != nil {
		return err
	}
	defer m.Close()

	out := cmd.OutOrStdout()
	n := m.MaxGlobalIndex() + 1
	if rankTop > 0 && rankTop < n {
		n = rankTop
	}

	fmt.Fprintf(out, "%6s %8s %9s %12s %10s\n", "rank", "index", "receiver", "freq [kHz]", "SNR")
	for r := 0; r < n; r++ {
		g := m.GlobalIndexByRank(r)
		fmt.Fprintf(out, "%6d %8d %9d %12.3f %10.3f\n", r, g, m.Receiver(g), m.Frequency(g)/1000, m.SNR(g))
	}
	return nil
}

func runMixing(cmd *cobra.Command, args []string) error {
	m, err := openMatrix(args[0], models.Viewer)
	if err != nil {
		return err
	}
	defer m.Close()

	g, err := parseGlobalIndex(args[1], m.MaxGlobalIndex())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	term, order := m.MixingOrder(g)
	if order < 0 {
		fmt.Fprintf(out, "No mixing term explains index %d (%.3f kHz)\n", g, m.Frequency(g)/1000)
		return nil
	}
	fmt.Fprintf(out, "Index %d (%.3f kHz): order %d, term %s\n", g, m.Frequency(g)/1000, order, term)

	if mixingAllTerm {
		for _, t := range m.MixingTerms(g) {
			fmt.Fprintf(out, "- %s order %d\n", t, t.Order())
		}
	}
	return nil
}

func runVoxel(cmd *cobra.Command, args []string) error {
	m, err := openMatrix(args[0], models.Viewer)
	if err != nil {
		return err
	}
	defer m.Close()

	g, err := parseGlobalIndex(args[1], m.MaxGlobalIndex())
	if err != nil {
		return err
	}
	pos, err := models.ParsePosition(args[2])
	if err != nil {
		return err
	}
	if !m.ValidPosition(pos) {
		return fmt.Errorf("position %s outside grid %v", pos, m.Grid())
	}

	out := cmd.OutOrStdout()
	value := m.DataPoint(g, pos, voxelCorrect)
	interp := m.Interpolated(g, pos, voxelCorrect)

	fmt.Fprintf(out, "Index %d at %s (receiver %d, %.3f kHz, SNR %.3f)\n",
		g, pos, m.Receiver(g), m.Frequency(g)/1000, m.SNR(g))
	fmt.Fprintf(out, "Correction:   %v\n", m.CorrectionFactor(g))
	fmt.Fprintf(out, "Calibrated:   %v (|%g|)\n", value, cmplx.Abs(value))
	fmt.Fprintf(out, "Interpolated: %v (|%g|)\n", interp, cmplx.Abs(interp))
	return nil
}

func parseGlobalIndex(s string, maxIndex int) (int, error) {
	g, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("global index %q: %w", s, err)
	}
	if g < 0 || g > maxIndex {
		return 0, fmt.Errorf("global index %d outside [0,%d]", g, maxIndex)
	}
	return g, nil
}
