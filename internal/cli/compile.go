package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querygrid/querygrid/internal/querysql"
	"github.com/querygrid/querygrid/internal/source"
)

// CompileResult is the JSON payload for the compile command.
type CompileResult struct {
	SQL      string `json:"sql"`
	Args     []any  `json:"args"`
	CountSQL string `json:"count_sql,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	var schemaPath string
	var withCount bool
	grid := &gridFlags{}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a grid query to SQL",
		Long: `Compile the grid state - filter, search, sort, projection, page -
to the parameterized SQL that the query command would run, without
executing it.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(rootOpts, schemaPath, grid, withCount, cmd)
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "CUE schema file (required)")
	cmd.MarkFlagRequired("schema")
	cmd.Flags().BoolVar(&withCount, "count", false, "also show the match count query")
	grid.register(cmd)
	return cmd
}

func runCompile(opts *RootOptions, schemaPath string, grid *gridFlags, withCount bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	s, err := loadSchema(formatter, schemaPath)
	if err != nil {
		return err
	}
	q, err := grid.build()
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "bad grid flags", err)
	}

	r, err := source.Resolve(s, q)
	if err != nil {
		return outputFilterError(formatter, err)
	}

	compiler := querysql.NewCompiler(s)
	sql, args, err := compiler.Compile(r.Input())
	if err != nil {
		return outputFilterError(formatter, err)
	}

	result := CompileResult{SQL: sql, Args: args}
	if args == nil {
		result.Args = []any{}
	}
	if withCount {
		countSQL, _, err := compiler.CompileCount(r.Input())
		if err != nil {
			return outputFilterError(formatter, err)
		}
		result.CountSQL = countSQL
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, result.SQL)
	for i, a := range result.Args {
		fmt.Fprintf(formatter.Writer, "  ?%d = %v\n", i+1, a)
	}
	if result.CountSQL != "" {
		fmt.Fprintln(formatter.Writer, result.CountSQL)
	}
	return nil
}
