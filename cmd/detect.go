package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"photofix/internal"
)

var detectCmd = &cobra.Command{
	Use:   "detect [archive.zip|folder]",
	Short: "Detect whether an export is Google-style, Apple-style, or generic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		if _, err := os.Stat(input); err != nil {
			return fmt.Errorf("input does not exist: %s", input)
		}

		cfg, err := internal.LoadConfig()
		if err != nil {
			return err
		}
		logger, err := internal.NewLogger(verboseFlag)
		if err != nil {
			return err
		}
		defer logger.Sync()

		staging, err := internal.NewStaging(logger)
		if err != nil {
			return err
		}
		defer staging.Close()

		if err := stageInput(cmd.Context(), staging, input, cfg); err != nil {
			return err
		}

		exportType := internal.DetectExportType(staging.MediaFiles(), staging.JSONFiles())
		fmt.Println(exportType)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
