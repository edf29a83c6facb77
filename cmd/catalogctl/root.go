package main

import (
	"github.com/spf13/cobra"

	"github.com/martinmanurung/cinecatalog/internal/platform/config"
	"github.com/martinmanurung/cinecatalog/pkg/logger"
)

func newRootCommand() *cobra.Command {
	var catalogFlag string
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Inspect and convert movie catalog files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := logger.Setup(logger.Options{Level: logLevel})
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&catalogFlag, "catalog", "f", "~/catalog.json", "Catalog file (.json or .csv)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level")

	catalogPath := func() (string, error) {
		return config.CatalogConfig{Path: catalogFlag}.CatalogPath()
	}

	rootCmd.AddCommand(newListCommand(catalogPath))
	rootCmd.AddCommand(newStatsCommand(catalogPath))
	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newHashPasswordCommand())

	return rootCmd
}
