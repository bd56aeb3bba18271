package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// printTable renders rows under header with aligned columns and a dashed
// rule, trimming trailing padding from each line.
func printTable(w io.Writer, header []string, rows [][]string) {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	rule := make([]string, len(header))
	for i, h := range header {
		rule[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(rule, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	tw.Flush()

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// recordRow is the list-table row of r.
func recordRow(r types.Record) []string {
	return []string{
		strconv.FormatInt(r.RecordID(), 10),
		truncate(types.Label(r), 40),
		string(types.NormalizeStatus(r.RecordStatus())),
		recordDate(r),
	}
}

func recordDate(r types.Record) string {
	switch v := r.(type) {
	case *types.News:
		return v.Date
	case *types.Activity:
		return v.Date
	case *types.Achievement:
		return v.Date
	}
	return ""
}

// printRecordDetails prints the fields of r, one per line.
func printRecordDetails(w io.Writer, r types.Record) {
	var fields [][2]string
	switch v := r.(type) {
	case *types.News:
		fields = [][2]string{
			{"Title", v.Title}, {"Description", v.Description}, {"Date", v.Date},
			{"Category", v.Category}, {"Author", v.Author}, {"Photo", v.Photo}, {"Link", v.Link},
		}
	case *types.Activity:
		fields = [][2]string{
			{"Title", v.Title}, {"Description", v.Description}, {"Date", v.Date}, {"Photo", v.Photo},
		}
	case *types.Achievement:
		fields = [][2]string{
			{"Name", v.Name}, {"Achievement", v.Achievement}, {"Link", v.Link},
			{"Date", v.Date}, {"Category", v.Category}, {"Photo", v.Photo},
		}
	case *types.FAQ:
		fields = [][2]string{{"Question", v.Question}, {"Answer", v.Answer}}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", r.RecordID())
	fmt.Fprintf(tw, "Kind:\t%s\n", r.Kind())
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", f[0], f[1])
	}
	fmt.Fprintf(tw, "Status:\t%s\n", types.NormalizeStatus(r.RecordStatus()))
	tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
