package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/shelf"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize shelf storage",
		Long: "Create the configuration and data directories, then seed every\n" +
			"collection that does not exist yet with an empty array.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withShelf(cmd, func(ctx context.Context, s *shelf.Shelf) error {
				store, err := s.Store()
				if err != nil {
					return systemErr(err)
				}
				seeded := 0
				for _, name := range types.StandardCollections {
					present, err := hasKey(ctx, store.Medium(), name)
					if err != nil {
						return systemErr(err)
					}
					if present {
						continue
					}
					if err := store.Save(ctx, name, nil); err != nil {
						return systemErr(fmt.Errorf("seed %s: %w", name, err))
					}
					seeded++
				}
				cfg := s.Config()
				fmt.Fprintf(cmd.OutOrStdout(), "Shelf initialized (%s backend, %s)\n", cfg.Backend, cfg.DataDir)
				fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n", a.resolvedConfigDir)
				if seeded > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d empty collection(s)\n", seeded)
				}
				return nil
			})
		},
	}
}

func hasKey(ctx context.Context, m types.Medium, name string) (bool, error) {
	keys, err := m.Keys(ctx)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k == name {
			return true, nil
		}
	}
	return false, nil
}
