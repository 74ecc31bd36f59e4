package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sfview/internal/models"
	"sfview/pkg/visualization"
)

var (
	sliceAxis      string
	slicePosition  int
	sliceOutput    string
	sliceCorrected bool

	exportSliceCmd = &cobra.Command{
		Use:   "export-slice [dataset] [global-index]",
		Short: "Save the magnitude of a voxel block as grayscale PNG slices",
		Long: `Writes one slice normal to --axis at --position, or every slice along
the axis when --position is negative. Gray levels are scaled to the largest
magnitude of the block.`,
		Args: cobra.ExactArgs(2),
		RunE: runExportSlice,
	}
)

func registerSliceCommands(root *cobra.Command) {
	exportSliceCmd.Flags().StringVarP(&sliceAxis, "axis", "a", "z", "Slice normal (x, y or z)")
	exportSliceCmd.Flags().IntVarP(&slicePosition, "position", "p", -1, "Slice index along the axis, negative for all")
	exportSliceCmd.Flags().StringVarP(&sliceOutput, "output", "o", "slices", "Output directory")
	exportSliceCmd.Flags().BoolVar(&sliceCorrected, "corrected", true, "Use the background-corrected plane")

	root.AddCommand(exportSliceCmd)
}

func runExportSlice(cmd *cobra.Command, args []string) error {
	axis, err := models.ParseAxis(sliceAxis)
	if err != nil {
		return err
	}

	m, err := openMatrix(args[0], models.Viewer)
	if err != nil {
		return err
	}
	defer m.Close()

	g, err := parseGlobalIndex(args[1], m.MaxGlobalIndex())
	if err != nil {
		return err
	}

	// RawData may return a cached block that the next call reuses
	block := append([]complex128(nil), m.RawData(g, sliceCorrected)...)
	viewer, err := visualization.NewViewer(block, m.Grid())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if slicePosition < 0 {
		files, err := viewer.SaveSliceSequence(axis, sliceOutput)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %d %s-axis slices of index %d to: %s\n", len(files), axis, g, sliceOutput)
		return nil
	}

	img, err := viewer.ExtractSlice(axis, slicePosition)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(sliceOutput, 0755); err != nil {
		return err
	}
	filename := filepath.Join(sliceOutput, fmt.Sprintf("index%d_%s_%03d.png", g, axis, slicePosition))
	if err := viewer.SaveSlice(img, filename); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved slice to: %s\n", filename)
	return nil
}
