package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/querygrid/querygrid/internal/schema"
	"github.com/querygrid/querygrid/internal/source"
	"github.com/querygrid/querygrid/internal/store"
	"github.com/querygrid/querygrid/internal/value"
)

// QueryResult is the JSON payload for the query command.
type QueryResult struct {
	Dataset string           `json:"dataset"`
	Total   int              `json:"total"`
	Rows    []map[string]any `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	var schemaPath, dbPath string
	grid := &gridFlags{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a grid query against a dataset",
		Long: `Compile the grid state to SQL, run it against the dataset store,
and show the matching page of rows plus the total match count.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, schemaPath, dbPath, grid, cmd)
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "CUE schema file (required)")
	cmd.MarkFlagRequired("schema")
	cmd.Flags().StringVar(&dbPath, "db", "querygrid.db", "SQLite database path")
	grid.register(cmd)
	return cmd
}

func runQuery(opts *RootOptions, schemaPath, dbPath string, grid *gridFlags, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	ctx := cmd.Context()

	s, err := loadSchema(formatter, schemaPath)
	if err != nil {
		return err
	}
	q, err := grid.build()
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "bad grid flags", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeQuery, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer st.Close()

	res, err := source.NewSQLite(s, st).Query(ctx, q)
	if err != nil {
		return outputFilterError(formatter, err)
	}

	cols := resultColumns(s, q)
	result := QueryResult{
		Dataset: s.Name,
		Total:   res.Total,
		Rows:    make([]map[string]any, len(res.Rows)),
	}
	for i, row := range res.Rows {
		out := make(map[string]any, len(cols))
		for _, col := range cols {
			out[col] = jsonValue(row.Get(col))
		}
		result.Rows[i] = out
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, strings.Join(cols, "\t"))
	for _, row := range res.Rows {
		cells := make([]string, len(cols))
		for j, col := range cols {
			cells[j] = textValue(row.Get(col))
		}
		fmt.Fprintln(formatter.Writer, strings.Join(cells, "\t"))
	}
	fmt.Fprintf(formatter.Writer, "%d of %d row(s)\n", len(res.Rows), res.Total)
	return nil
}

// resultColumns returns the display columns in a stable order: the
// dataset id, then the projection, or every schema field when no
// projection was given.
func resultColumns(s *schema.Schema, q source.Query) []string {
	cols := []string{"id"}
	if q.Select != nil && q.Select.Len() > 0 {
		for _, sel := range q.Select.Selections() {
			cols = append(cols, sel.Name())
		}
		return cols
	}
	for _, f := range s.Fields {
		cols = append(cols, f.Path)
	}
	return cols
}

// jsonValue converts a domain value to its JSON representation.
func jsonValue(v value.Value) any {
	switch val := v.(type) {
	case value.Bool:
		return bool(val)
	case value.Int:
		return int64(val)
	case value.Float:
		return float64(val)
	case value.String:
		return string(val)
	case value.Time:
		return val.Std().Format(time.RFC3339Nano)
	default:
		return nil
	}
}

func textValue(v value.Value) string {
	if value.IsNull(v) {
		return "<null>"
	}
	return fmt.Sprintf("%v", jsonValue(v))
}
