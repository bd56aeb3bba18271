package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/query"
	"github.com/mesh-intelligence/shelf/internal/shelf"
	"github.com/mesh-intelligence/shelf/internal/trash"
)

func newTrashCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "List, restore and purge deleted records",
	}
	cmd.AddCommand(newTrashListCmd(a))
	cmd.AddCommand(newTrashBatchCmd(a, "restore", "Restore records to their collections",
		func(ctx context.Context, m *trash.Manager, ids []int64) trash.BatchResult { return m.RestoreMany(ctx, ids) }))
	cmd.AddCommand(newTrashBatchCmd(a, "purge", "Delete records from the trash permanently",
		func(ctx context.Context, m *trash.Manager, ids []int64) trash.BatchResult { return m.PurgeMany(ctx, ids) }))
	cmd.AddCommand(newTrashEmptyCmd(a))
	return cmd
}

func newTrashListCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of the trash",
		Long:  "Sort keys: label, type.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.criteria(query.TrashSchema.SortKeys(), false)
			if err != nil {
				return err
			}
			return a.withShelf(cmd, func(ctx context.Context, s *shelf.Shelf) error {
				m, err := s.Trash()
				if err != nil {
					return classify(err)
				}
				ledger, err := m.List(ctx)
				if err != nil {
					return classify(err)
				}
				cfg := s.Config()
				page, err := query.NewView(query.TrashSchema, cfg.EffectiveLocale(), cfg.EffectivePageSize()).Apply(ledger, c)
				if err != nil {
					return classify(err)
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), page)
				}

				w := cmd.OutOrStdout()
				if page.TotalCount == 0 {
					fmt.Fprintln(w, "Trash is empty")
					return nil
				}
				rows := make([][]string, 0, len(page.Items))
				for _, e := range page.Items {
					rows = append(rows, []string{
						strconv.FormatInt(e.ID, 10),
						string(e.Type),
						truncate(e.Label, 40),
					})
				}
				printTable(w, []string{"ID", "TYPE", "LABEL"}, rows)
				fmt.Fprintf(w, "\nPage %d of %d (%d in trash)\n", page.PageIndex, max(page.PageCount, 1), page.TotalCount)
				return nil
			})
		},
	}
	f.register(cmd, false)
	return cmd
}

type batchFunc func(ctx context.Context, m *trash.Manager, ids []int64) trash.BatchResult

func newTrashBatchCmd(a *app, use, short string, run batchFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return a.withShelf(cmd, func(ctx context.Context, s *shelf.Shelf) error {
				m, err := s.Trash()
				if err != nil {
					return classify(err)
				}
				res := run(ctx, m, ids)
				if a.jsonMode {
					if err := printJSON(cmd.OutOrStdout(), res); err != nil {
						return err
					}
				} else {
					printBatch(cmd, use, res)
				}
				if len(res.Failed) > 0 {
					return classify(fmt.Errorf("%s: %d of %d failed: %w", use, len(res.Failed), len(res.Failed)+len(res.Succeeded), res.Err()))
				}
				return nil
			})
		},
	}
}

func printBatch(cmd *cobra.Command, verb string, res trash.BatchResult) {
	w := cmd.OutOrStdout()
	for _, id := range res.Succeeded {
		fmt.Fprintf(w, "%s %d: ok\n", verb, id)
	}
	for _, f := range res.Failed {
		fmt.Fprintf(w, "%s %d: %s\n", verb, f.ID, f.Reason)
	}
}

func newTrashEmptyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "empty",
		Short: "Delete everything in the trash permanently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withShelf(cmd, func(ctx context.Context, s *shelf.Shelf) error {
				m, err := s.Trash()
				if err != nil {
					return classify(err)
				}
				n, err := m.Empty(ctx)
				if err != nil {
					return classify(err)
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), map[string]int{"purged": n})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Emptied trash (%d %s)\n", n, plural(n, "record", "records"))
				return nil
			})
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
