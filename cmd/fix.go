package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"photofix/internal"
)

var (
	outputFlag          string
	missingMetadataFlag string
	noMtimeFallbackFlag bool
	workersFlag         int
	manifestFlag        string
)

var fixCmd = &cobra.Command{
	Use:   "fix [archive.zip|folder]",
	Short: "Restore capture timestamps and repack photos chronologically",
	Long: `Resolve the best-available capture timestamp for every photo in a
Google Photos download, Apple Photos export, or plain folder of images,
write it back into the embedded metadata, and repack the photos into
year-based directories inside a new archive.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		if _, err := os.Stat(input); err != nil {
			return fmt.Errorf("input does not exist: %s", input)
		}

		cfg, err := internal.LoadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("missing-metadata") {
			cfg.MissingMetadata = missingMetadataFlag
		}
		if cmd.Flags().Changed("no-mtime-fallback") {
			cfg.MtimeFallback = !noMtimeFallbackFlag
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = workersFlag
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := internal.NewLogger(verboseFlag)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx := cmd.Context()

		staging, err := internal.NewStaging(logger)
		if err != nil {
			return err
		}
		defer staging.Close()

		if err := stageInput(ctx, staging, input, cfg); err != nil {
			return err
		}

		files := staging.MediaFiles()
		if len(files) == 0 {
			return fmt.Errorf("no photos found in %s", input)
		}

		exportType := internal.DetectExportType(files, staging.JSONFiles())
		fmt.Printf("Detected export type: %s\n", exportType)
		fmt.Printf("Found %d photos\n", len(files))

		var backWriter internal.BackWriter
		if writer, err := internal.NewMetadataWriter(); err != nil {
			logger.Warn("exiftool unavailable, timestamps cannot be written back; affected files will land in Needs_Review")
			fmt.Println("Warning: exiftool not found, metadata will not be written")
		} else {
			defer writer.Close()
			backWriter = writer
		}

		proc := internal.NewProcessor(cfg, logger, backWriter)
		plan, summary, err := proc.ProcessBatch(ctx, files)
		if err != nil {
			return err
		}

		output := outputFlag
		if output == "" {
			output = cfg.OutputName
		}
		if err := internal.PackOutput(ctx, plan, output); err != nil {
			return err
		}

		if manifestFlag != "" {
			if err := writeManifest(manifestFlag, exportType, len(files), plan, summary); err != nil {
				logger.Warn("failed to write manifest", zap.Error(err))
				fmt.Printf("Warning: could not write manifest: %v\n", err)
			}
		}

		fmt.Printf("\nWrote %s\n", output)
		fmt.Printf("  fixed:                  %d\n", summary.Fixed)
		fmt.Printf("  restored from filename: %d\n", summary.RestoredFromFilename)
		fmt.Printf("  renamed only:           %d\n", summary.RenamedOnly)
		fmt.Printf("  skipped:                %d\n", summary.Skipped)
		return nil
	},
}

func stageInput(ctx context.Context, staging *internal.Staging, input string, cfg *internal.Config) error {
	info, err := os.Stat(input)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return staging.StageDirectory(input, cfg)
	}
	return staging.UnpackArchive(ctx, input, cfg)
}

func writeManifest(path string, exportType internal.ExportType, total int, plan []internal.PlanEntry, sum internal.Summary) error {
	manifest, err := internal.NewManifest(path)
	if err != nil {
		return err
	}
	defer manifest.Close()

	if err := manifest.LogBatchStart(exportType, total); err != nil {
		return err
	}
	for _, entry := range plan {
		if err := manifest.LogFile(entry); err != nil {
			return err
		}
	}
	return manifest.LogBatchEnd(sum)
}

func init() {
	fixCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output archive path (default from config)")
	fixCmd.Flags().StringVar(&missingMetadataFlag, "missing-metadata", internal.MissingMetadataKeep,
		"What to do with files that have no resolvable date: keep or skip")
	fixCmd.Flags().BoolVar(&noMtimeFallbackFlag, "no-mtime-fallback", false,
		"Do not fall back to the file modification time")
	fixCmd.Flags().IntVar(&workersFlag, "workers", 0, "Number of concurrent workers")
	fixCmd.Flags().StringVar(&manifestFlag, "manifest", "", "Write a JSONL manifest of per-file outcomes to this path")

	rootCmd.AddCommand(fixCmd)
}
