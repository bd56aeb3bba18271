package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/collection"
	"github.com/mesh-intelligence/shelf/internal/query"
	"github.com/mesh-intelligence/shelf/internal/shelf"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

const kindsHelp = "Kinds: news, activity, achievement, faq (collection names such as\n\"activities\" are accepted too)."

func newCreateCmd(a *app) *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "create <kind> [json]",
		Short: "Create a record",
		Long: "Create validates and stores a new record with a fresh id. Fields come\n" +
			"from a JSON object, --field key=value pairs, or both; --field wins.\n" +
			"The status defaults to draft.\n\n" + kindsHelp + "\n\n" +
			"Example:\n" +
			"  shelf create news --field title=\"Open day\" --field description=\"Doors open\" --field date=2024-03-01\n" +
			"  shelf create faq '{\"question\":\"When?\",\"answer\":\"Saturday\",\"status\":\"published\"}'",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := types.ParseKind(args[0])
			if err != nil {
				return err
			}
			values, err := fieldValues(args[1:], fields)
			if err != nil {
				return err
			}
			draft, err := decodeDraft(kind, values)
			if err != nil {
				return err
			}
			return a.withShelf(cmd, func(ctx context.Context, s *shelf.Shelf) error {
				acc, err := s.Collection(kind)
				if err != nil {
					return classify(err)
				}
				created, err := acc.CreateRecord(ctx, draft)
				if err != nil {
					return classify(err)
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), created)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s %d\n", kind, created.RecordID())
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "field value as key=value (repeatable)")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <kind> <id>",
		Short: "Show a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := types.ParseKind(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return a.withShelf(cmd, func(ctx context.Context, s *shelf.Shelf) error {
				acc, err := s.Collection(kind)
				if err != nil {
					return classify(err)
				}
				rec, err := acc.Find(ctx, id)
				if err != nil {
					return classify(err)
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), rec)
				}
				printRecordDetails(cmd.OutOrStdout(), rec)
				return nil
			})
		},
	}
}

// listFlags are the query options shared by list and trash list.
type listFlags struct {
	search   string
	statuses []string
	sortBy   string
	order    string
	orderBy  string
	page     int
	pageSize int
}

func (f *listFlags) register(cmd *cobra.Command, withStatus bool) {
	fl := cmd.Flags()
	fl.StringVarP(&f.search, "search", "s", "", "case-insensitive substring to match")
	if withStatus {
		fl.StringSliceVar(&f.statuses, "status", []string{string(types.StatusDraft), string(types.StatusPublished)}, "statuses to show (an empty value shows nothing)")
	}
	fl.StringVar(&f.sortBy, "sort", "", "sort key")
	fl.StringVar(&f.order, "order", "asc", "sort direction: asc or desc")
	fl.StringVar(&f.orderBy, "order-by", "", `sort as an order_by expression, e.g. "date desc" (overrides --sort and --order)`)
	fl.IntVar(&f.page, "page", 1, "page number, starting at 1")
	fl.IntVar(&f.pageSize, "page-size", 0, "records per page (default: page_size from config)")
}

// criteria converts the flags into query criteria. keys are the sort keys
// valid for the listing.
func (f *listFlags) criteria(keys []string, withStatus bool) (types.Criteria, error) {
	c := types.Criteria{
		Search:    f.search,
		SortBy:    f.sortBy,
		PageIndex: f.page,
		PageSize:  f.pageSize,
	}
	order, ok := types.ParseSortOrder(f.order)
	if !ok {
		return c, fmt.Errorf("%w: order must be asc or desc, got %q", types.ErrValidation, f.order)
	}
	c.Order = order
	if f.orderBy != "" {
		key, order, err := query.ParseOrderBy(f.orderBy, keys)
		if err != nil {
			return c, err
		}
		c.SortBy, c.Order = key, order
	}
	if f.page < 1 {
		return c, fmt.Errorf("%w: page must be at least 1", types.ErrValidation)
	}
	if f.pageSize < 0 {
		return c, fmt.Errorf("%w: page size must not be negative", types.ErrValidation)
	}
	if withStatus {
		c.Statuses = []types.Status{}
		for _, raw := range f.statuses {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			st := types.NormalizeStatus(types.Status(raw))
			if !st.Valid() {
				return c, fmt.Errorf("%w: unknown status %q", types.ErrValidation, raw)
			}
			c.Statuses = append(c.Statuses, st)
		}
	}
	return c, nil
}

func newListCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List one page of records",
		Long: "List filters a collection by search text and status, sorts it, and\n" +
			"prints one page. Sort keys: title or date (news, activity), name or\n" +
			"date (achievement), question (faq).\n\n" + kindsHelp + "\n\n" +
			"Example:\n" +
			"  shelf list news --search exam --status published --sort date --order desc\n" +
			"  shelf list achievement --order-by \"name\" --page 2",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := types.ParseKind(args[0])
			if err != nil {
				return err
			}
			schema, err := query.SchemaFor(kind)
			if err != nil {
				return err
			}
			c, err := f.criteria(schema.SortKeys(), true)
			if err != nil {
				return err
			}
			return a.withShelf(cmd, func(ctx context.Context, s *shelf.Shelf) error {
				acc, err := s.Collection(kind)
				if err != nil {
					return classify(err)
				}
				records, err := acc.Records(ctx)
				if err != nil {
					return classify(err)
				}
				cfg := s.Config()
				page, err := query.NewView(schema, cfg.EffectiveLocale(), cfg.EffectivePageSize()).Apply(records, c)
				if err != nil {
					return classify(err)
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), page)
				}
				printRecordPage(cmd, acc, page)
				return nil
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func printRecordPage(cmd *cobra.Command, acc collection.Accessor, page query.Page[types.Record]) {
	w := cmd.OutOrStdout()
	if page.TotalCount == 0 {
		fmt.Fprintf(w, "No %s found\n", acc.Name())
		return
	}
	rows := make([][]string, 0, len(page.Items))
	for _, r := range page.Items {
		rows = append(rows, recordRow(r))
	}
	printTable(w, []string{"ID", "LABEL", "STATUS", "DATE"}, rows)
	fmt.Fprintf(w, "\nPage %d of %d (%d %s)\n", page.PageIndex, max(page.PageCount, 1), page.TotalCount, acc.Name())
}

func newUpdateCmd(a *app) *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "update <kind> <id> [json]",
		Short: "Update fields of a record",
		Long: "Update merges the given fields into a record and revalidates it. The\n" +
			"id never changes.\n\n" +
			"Example:\n" +
			"  shelf update news 3 --field status=published",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := types.ParseKind(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			values, err := fieldValues(args[2:], fields)
			if err != nil {
				return err
			}
			if len(values) == 0 {
				return fmt.Errorf("%w: nothing to update", types.ErrValidation)
			}
			return a.withShelf(cmd, func(ctx context.Context, s *shelf.Shelf) error {
				acc, err := s.Collection(kind)
				if err != nil {
					return classify(err)
				}
				updated, err := acc.UpdateRecord(ctx, id, types.Patch(values))
				if err != nil {
					return classify(err)
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), updated)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %d\n", kind, id)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "field value as key=value (repeatable)")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id>...",
		Short: "Move records to the trash",
		Long: "Delete moves records into the trash, from where they can be restored\n" +
			"to their collection or purged.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := types.ParseKind(args[0])
			if err != nil {
				return err
			}
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			return a.withShelf(cmd, func(ctx context.Context, s *shelf.Shelf) error {
				tr, err := s.Trash()
				if err != nil {
					return classify(err)
				}
				var entries []types.TrashEntry
				var firstErr error
				for _, id := range ids {
					entry, err := tr.SoftDelete(ctx, kind, id)
					if err != nil {
						if firstErr == nil {
							firstErr = classify(err)
						}
						fmt.Fprintf(cmd.ErrOrStderr(), "%s %d: %v\n", kind, id, err)
						continue
					}
					entries = append(entries, entry)
				}
				if a.jsonMode {
					if err := printJSON(cmd.OutOrStdout(), entries); err != nil {
						return err
					}
				} else {
					for _, e := range entries {
						fmt.Fprintf(cmd.OutOrStdout(), "Moved %s %d to trash\n", e.Type, e.ID)
					}
				}
				return firstErr
			})
		},
	}
}

// fieldValues merges an optional JSON object argument with key=value
// pairs. Pair values are strings; every record field is a string.
func fieldValues(jsonArgs []string, pairs []string) (map[string]any, error) {
	values := map[string]any{}
	if len(jsonArgs) > 0 && strings.TrimSpace(jsonArgs[0]) != "" {
		dec := json.NewDecoder(strings.NewReader(jsonArgs[0]))
		dec.UseNumber()
		if err := dec.Decode(&values); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
		}
	}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: field %q is not key=value", types.ErrInvalidData, p)
		}
		values[key] = value
	}
	return values, nil
}

// decodeDraft builds a record of kind from values, rejecting unknown
// fields.
func decodeDraft(kind types.Kind, values map[string]any) (types.Record, error) {
	rec, err := types.NewRecord(kind)
	if err != nil {
		return nil, err
	}
	delete(values, "id")
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrInvalidData, kind, err)
	}
	return rec, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", types.ErrInvalidData, s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, s := range args {
		id, err := parseID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
