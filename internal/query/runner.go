package query

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"banketl/internal/store"
)

// Querier executes a read-only statement.
type Querier interface {
	Query(ctx context.Context, query string) (*store.Result, error)
}

// Run executes statement and prints it followed by the result table.
func Run(ctx context.Context, q Querier, statement string, w io.Writer) error {
	res, err := q.Query(ctx, statement)
	if err != nil {
		return fmt.Errorf("run query %q: %w", statement, err)
	}
	if _, err := fmt.Fprintln(w, statement); err != nil {
		return err
	}
	if err := Print(w, res); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

// Print writes res as an aligned table with a leading row number column.
func Print(w io.Writer, res *store.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(res.Columns, "\t"))
	for i, row := range res.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = FormatValue(v)
		}
		fmt.Fprintf(tw, "%d\t%s\t\n", i, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// FormatValue renders a scanned column value for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
