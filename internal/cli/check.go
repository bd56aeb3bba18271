package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/shelf"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// collectionHealth is one row of the check report.
type collectionHealth struct {
	Collection string `json:"collection"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report collections whose stored value is unreadable",
		Long: "Check reads every collection. A value that is not a JSON array reads\n" +
			"as empty and is replaced on the next write; check lists such values\n" +
			"before that happens.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withShelf(cmd, func(ctx context.Context, s *shelf.Shelf) error {
				store, err := s.Store()
				if err != nil {
					return classify(err)
				}
				report := make([]collectionHealth, 0, len(types.StandardCollections))
				corrupt := 0
				for _, name := range types.StandardCollections {
					h := collectionHealth{Collection: name, OK: true}
					if err := store.Check(ctx, name); err != nil {
						if !errors.Is(err, types.ErrStorageCorrupt) {
							return systemErr(fmt.Errorf("check %s: %w", name, err))
						}
						h.OK = false
						h.Error = err.Error()
						corrupt++
					}
					report = append(report, h)
				}

				if a.jsonMode {
					if err := printJSON(cmd.OutOrStdout(), report); err != nil {
						return err
					}
				} else {
					rows := make([][]string, 0, len(report))
					for _, h := range report {
						status := "ok"
						if !h.OK {
							status = "corrupt"
						}
						rows = append(rows, []string{h.Collection, status})
					}
					printTable(cmd.OutOrStdout(), []string{"COLLECTION", "STATUS"}, rows)
				}
				if corrupt > 0 {
					return systemErr(fmt.Errorf("%d %s: %w", corrupt, plural(corrupt, "collection is corrupt", "collections are corrupt"), types.ErrStorageCorrupt))
				}
				return nil
			})
		},
	}
}
