// Command iris-pipeline downloads the Iris dataset and runs the k-means notebook on it.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "iris-pipeline",
	Short: "Iris k-means pipeline",
	Long: `iris-pipeline downloads the Iris dataset (download_file) and clusters it with
the k-means notebook (k_means_iris). The executed notebook is stored with the
file manager resource (output_notebook).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	runCmd.Flags().StringVarP(&runFlags.config, "config", "c", "", "Run config file (YAML)")
	runCmd.Flags().StringVar(&runFlags.graph, "graph", "", "Write the step graph as a DOT file")
	runCmd.Flags().StringVar(&runFlags.metrics, "metrics", "", "Write the step metrics in the Prometheus text format")
	_ = runCmd.MarkFlagRequired("config")

	describeCmd.Flags().StringVarP(&describeFlags.config, "config", "c", "", "Run config file (YAML)")

	rootCmd.AddCommand(runCmd, describeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
