package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/querygrid/querygrid/internal/store"
)

// LoadResult is the JSON payload for the load command.
type LoadResult struct {
	Dataset string `json:"dataset"`
	Rows    int    `json:"rows"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	var schemaPath, dbPath string

	cmd := &cobra.Command{
		Use:   "load <rows.yaml>",
		Short: "Load rows into a dataset",
		Long: `Create the dataset table for a schema (if missing) and load rows
from a YAML or JSON file. Each document entry is one row keyed by
field path; nested maps flatten to dotted paths.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, schemaPath, dbPath, args[0], cmd)
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "CUE schema file (required)")
	cmd.MarkFlagRequired("schema")
	cmd.Flags().StringVar(&dbPath, "db", "querygrid.db", "SQLite database path")
	return cmd
}

func runLoad(opts *RootOptions, schemaPath, dbPath, rowsPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	ctx := cmd.Context()

	s, err := loadSchema(formatter, schemaPath)
	if err != nil {
		return err
	}

	f, err := os.Open(rowsPath)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open rows file", err)
	}
	defer f.Close()

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeQuery, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer st.Close()

	if err := st.CreateDataset(ctx, s); err != nil {
		_ = formatter.Error(ErrCodeQuery, err.Error(), nil)
		return WrapExitError(ExitCommandError, "create dataset", err)
	}
	n, err := st.LoadRows(ctx, s, f)
	if err != nil {
		_ = formatter.Error(ErrCodeQuery, err.Error(), nil)
		return WrapExitError(ExitFailure, "load rows", err)
	}
	formatter.VerboseLog("Loaded %d row(s) into %q", n, s.Name)

	result := LoadResult{Dataset: s.Name, Rows: n}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "loaded %d row(s) into %s\n", n, s.Name)
	return nil
}
