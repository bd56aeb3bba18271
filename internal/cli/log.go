package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/shelf"
)

func newLogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show or toggle the activity log",
	}
	cmd.AddCommand(newLogListCmd(a))
	cmd.AddCommand(newLogToggleCmd(a, "enable", true))
	cmd.AddCommand(newLogToggleCmd(a, "disable", false))
	return cmd
}

func newLogListCmd(a *app) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activity log entries, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withShelf(cmd, func(ctx context.Context, s *shelf.Shelf) error {
				j, err := s.Journal()
				if err != nil {
					return classify(err)
				}
				entries := j.Search(ctx, search)
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), entries)
				}
				w := cmd.OutOrStdout()
				if !j.Enabled() {
					fmt.Fprintln(w, "Activity log is disabled; run \"shelf log enable\" to record activity")
				}
				if len(entries) == 0 {
					fmt.Fprintln(w, "No log entries")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{e.Timestamp, e.Message})
				}
				printTable(w, []string{"TIME", "MESSAGE"}, rows)
				fmt.Fprintf(w, "\nTotal: %d %s\n", len(entries), plural(len(entries), "entry", "entries"))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive substring of message or timestamp")
	return cmd
}

func newLogToggleCmd(a *app, use string, on bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("%s the activity log in config.yaml", map[bool]string{true: "Enable", false: "Disable"}[on]),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := persist(a.v, a.resolvedConfigDir, cfgKeyJournalEnabled, on); err != nil {
				return systemErr(err)
			}
			state := "disabled"
			if on {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Activity log %s\n", state)
			return nil
		},
	}
}
