package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/partsupport/internal/domain/part"
	"github.com/kailas-cloud/partsupport/internal/ingest"
)

func partsCMD(flags *loaderFlags) *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:     "parts",
		Short:   "Load part catalogs",
		Example: "  partsupport-loader parts -f fake_refrigerator_parts.json -f fake_dishwasher_parts.json",
		RunE: func(_ *cobra.Command, _ []string) error {
			items, err := readPartFiles(files)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			s, err := openSession(ctx, flags)
			if err != nil {
				return err
			}
			defer s.stop()

			s.logger.Info("Loading parts", zap.Int("total", len(items)))
			ing := ingest.New[part.Record](s.app.Parts, s.app.DocumentEmbedder, s.opts, s.logger)
			res, err := ing.Run(ctx, items)
			if err != nil {
				return err
			}
			return report(s.logger, s.app.Parts.Name(), res)
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "catalog JSON file (repeatable, ids continue across files)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// readPartFiles reads every catalog in order. Ids run part_0..part_N-1 across all files.
func readPartFiles(files []string) ([]ingest.Item[part.Record], error) {
	var items []ingest.Item[part.Record]
	for _, name := range files {
		f, err := os.Open(filepath.Clean(name))
		if err != nil {
			return nil, err
		}
		records, err := ingest.ReadParts(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		items = append(items, ingest.PartItems(records, len(items))...)
	}
	return items, nil
}
