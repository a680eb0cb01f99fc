package cli

// inspect.go - The inspect command: metadata without service contact.

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seqstack-labs/flowsync/internal/report"
	"github.com/seqstack-labs/flowsync/pkg/illumina"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <run-dir>...",
		Short: "Read run directory metadata without contacting the service",
		Long: `Parse the metadata documents of one or more run directories and print
what an ingestion pass would see: run identity, read structure, folder
layout, and completion state. Nothing is written anywhere.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInspect,
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg := GetConfig(cmd.Context())
	logger := GetLogger(cmd.Context())

	format, err := report.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}

	descs := make([]*illumina.Descriptor, 0, len(args))
	var failed int
	for _, path := range args {
		desc, err := illumina.ReadFolder(path)
		if err != nil {
			failed++
			logger.Error("failed to read run directory", "path", path, "error", err)
			continue
		}
		descs = append(descs, desc)
	}

	if len(descs) > 0 {
		if err := report.RenderDescriptors(cmd.OutOrStdout(), descs, format); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d run directories could not be read", failed, len(args))
	}
	return nil
}
