// Command sfview inspects and edits MPI system matrices stored in a
// processed-data directory.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sfview/internal/models"
	"sfview/pkg/config"
	"sfview/pkg/logging"
	"sfview/pkg/systemmatrix"
)

// --- Global flags ---
var (
	configPath string
	logLevel   string
	logJSON    bool

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "sfview",
		Short: "Inspect and edit MPI system matrices",
		Long: `sfview opens the processed-data directory of an MPI system matrix,
reports its acquisition parameters, SNR ranking and mixing orders, and
suppresses outlier voxels by neighbour interpolation.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "sfview.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write log records as JSON")

	registerInfoCommands(rootCmd)
	registerEditCommands(rootCmd)
	registerSliceCommands(rootCmd)
}

// loadConfig reads the configuration and initializes logging before any
// subcommand runs.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logging.Init(logging.ParseLevel(level), cfg.Logging.JSON || logJSON)
	return nil
}

// openMatrix opens the dataset at path in the given mode with the loaded
// configuration.
func openMatrix(path string, mode models.Mode) (*systemmatrix.Matrix, error) {
	m, err := systemmatrix.Open(path, systemmatrix.Options{
		Mode:   mode,
		Config: cfg,
		Logger: logging.Component("systemmatrix"),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return m, nil
}
