package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func indexesCMD(flags *loaderFlags) *cobra.Command {
	var recreate bool

	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Create the parts and repairs search indexes",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			s, err := openSession(ctx, flags)
			if err != nil {
				return err
			}
			defer s.stop()

			type ensurer interface {
				Name() string
				EnsureIndex(ctx context.Context, recreate bool) (bool, error)
			}
			for _, idx := range []ensurer{s.app.Parts, s.app.Repairs} {
				created, err := idx.EnsureIndex(ctx, recreate)
				if err != nil {
					return err
				}
				s.logger.Info("Index ready",
					zap.String("collection", idx.Name()),
					zap.Bool("created", created),
				)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&recreate, "recreate", false, "drop existing indexes first (records are kept)")

	return cmd
}
