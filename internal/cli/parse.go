package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querygrid/querygrid/internal/filter"
)

// ParseResult is the JSON payload for the parse command.
type ParseResult struct {
	Canonical string `json:"canonical"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <expression>",
		Short: "Parse a filter expression",
		Long: `Parse a filter expression and print its canonical form with
explicit grouping, e.g.

	querygrid parse "price > 100 and contains(name, 'desk')"
	((price > 100) && contains(name, 'desk'))`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], cmd)
		},
	}
}

func runParse(opts *RootOptions, src string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	e, err := filter.Parse(src)
	if err != nil {
		return outputFilterError(formatter, err)
	}

	canonical := filter.Sprint(e)
	if formatter.Format == "json" {
		return formatter.Success(ParseResult{Canonical: canonical})
	}
	fmt.Fprintln(formatter.Writer, canonical)
	return nil
}

// outputFilterError formats a parse or bind failure and maps it to
// exit code 1: the command ran, the expression is at fault.
func outputFilterError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var details interface{}

	var syntaxErr *filter.SyntaxError
	var bindErr *filter.BindError
	switch {
	case errors.As(err, &syntaxErr):
		code = ErrCodeParse
		details = map[string]int{"offset": syntaxErr.Offset}
	case errors.As(err, &bindErr):
		code = ErrCodeBind
		details = map[string]int{"offset": bindErr.Offset}
	}

	_ = formatter.Error(code, err.Error(), details)
	return WrapExitError(ExitFailure, code, err)
}
