package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/tagspan/internal/logger"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tagspan",
		Short:         "Turn classifier token labels into entity annotations",
		Long:          "tagspan aggregates per-token entity labels into spans and writes annotated documents to rotated batch files.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("log-json", false, "Log in JSON format")

	cmd.AddCommand(runCmd(), scanCmd())
	return cmd
}

// newLogger builds a logger from the persistent flags, falling back to level
func newLogger(cmd *cobra.Command, level string, json bool) (logger.Logger, error) {
	flagLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	if flagLevel != "" {
		level = flagLevel
	}
	if cmd.Flags().Changed("log-json") {
		json, err = cmd.Flags().GetBool("log-json")
		if err != nil {
			return nil, err
		}
	}
	return logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(level),
		Output:     cmd.ErrOrStderr(),
		JSON:       json,
		TimeFormat: "15:04:05",
	}), nil
}
