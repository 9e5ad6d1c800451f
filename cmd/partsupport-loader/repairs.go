package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/partsupport/internal/domain/repair"
	"github.com/kailas-cloud/partsupport/internal/ingest"
)

func repairsCMD(flags *loaderFlags) *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:     "repairs",
		Short:   "Load repair guides",
		Example: "  partsupport-loader repairs -f dishwasher=repair_data/dishwasher_repairs.json " +
			"-f refrigerator=repair_data/refrigerator_repairs.json",
		RunE: func(_ *cobra.Command, _ []string) error {
			items, err := readRepairFiles(files)
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

			s.logger.Info("Loading repair guides", zap.Int("total", len(items)))
			ing := ingest.New[repair.Record](s.app.Repairs, s.app.DocumentEmbedder, s.opts, s.logger)
			res, err := ing.Run(ctx, items)
			if err != nil {
				return err
			}
			return report(s.logger, s.app.Repairs.Name(), res)
		},
	}
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "appliance=path of a repair guide (repeatable)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readRepairFiles(pairs []string) ([]ingest.Item[repair.Record], error) {
	var items []ingest.Item[repair.Record]
	for _, pair := range pairs {
		name, path, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("expected appliance=path, got %q", pair)
		}
		appliance := repair.Appliance(strings.ToLower(strings.TrimSpace(name)))

		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, err
		}
		records, err := ingest.ReadRepairs(f, appliance)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		items = append(items, ingest.RepairItems(records)...)
	}
	return items, nil
}
