package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querygrid/querygrid/internal/filter"
)

// CheckResult is the JSON payload for the check command.
type CheckResult struct {
	Valid     bool   `json:"valid"`
	Kind      string `json:"kind,omitempty"`
	Canonical string `json:"canonical,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var schemaPath string

	cmd := &cobra.Command{
		Use:   "check <expression>",
		Short: "Typecheck a filter expression against a schema",
		Long: `Parse a filter expression and bind it against an entity schema,
reporting the result kind or the first type error.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, schemaPath, args[0], cmd)
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "CUE schema file (required)")
	cmd.MarkFlagRequired("schema")
	return cmd
}

func runCheck(opts *RootOptions, schemaPath, src string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	s, err := loadSchema(formatter, schemaPath)
	if err != nil {
		return err
	}

	e, err := filter.Parse(src)
	if err != nil {
		return outputFilterError(formatter, err)
	}
	kind, err := filter.Bind(e, s)
	if err != nil {
		return outputFilterError(formatter, err)
	}

	result := CheckResult{
		Valid:     true,
		Kind:      kind.String(),
		Canonical: filter.Sprint(e),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "ok: %s (%s)\n", result.Canonical, result.Kind)
	return nil
}
