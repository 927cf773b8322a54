package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/revanced-builder/internal/config"
	"github.com/oshokin/revanced-builder/internal/logger"
	"github.com/oshokin/revanced-builder/internal/service/build"
	"github.com/oshokin/revanced-builder/internal/service/update"
	"github.com/oshokin/revanced-builder/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// outputFile is the name the patched package is saved under.
	outputFile string

	// logLevel adjusts how chatty the builder is.
	logLevel string

	// forceUpdate applies the latest release even when it is not newer.
	forceUpdate bool

	// rootCmd represents the base command that runs a full build.
	rootCmd = &cobra.Command{
		Use:   "revanced-builder",
		Short: "Build a patched YouTube or YouTube Music package",
		Long: "revanced-builder downloads the patcher toolchain and the target package, " +
			"asks which patches to keep and leaves a patched package in the current directory.",
		Args: cobra.NoArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &build.Options{
				ConfigPath: configPath,
				OutputFile: outputFile,
			}

			return build.Run(ctx, options)
		},
	}

	// updateCmd replaces the builder with the latest released build.
	updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Update revanced-builder to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return update.Run(ctx, &update.Options{Force: forceUpdate})
		},
	}
)

// Execute runs the revanced-builder CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(updateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "name of the patched package (defaults to the configured one)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "logging level (debug, info, warn, error)")
	updateCmd.Flags().BoolVarP(&forceUpdate, "force", "f", false, "apply the latest release even if it is not newer")
}
