package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querygrid/querygrid/internal/schema"
)

// SchemaResult is the JSON payload for the schema command.
type SchemaResult struct {
	Name   string        `json:"name"`
	Fields []SchemaField `json:"fields"`
}

// SchemaField is one field of a schema in CLI output form.
type SchemaField struct {
	Path     string `json:"path"`
	Column   string `json:"column"`
	Kind     string `json:"kind"`
	Nullable bool   `json:"nullable,omitempty"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <schema.cue>",
		Short: "Compile and show an entity schema",
		Long: `Compile a CUE entity schema and show its fields.

The schema file declares an entity with an ordered field list:

	entity: {
		name: "products"
		fields: [
			{path: "name", kind: "string"},
			{path: "price", kind: "float", nullable: true},
		]
	}`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, args[0], cmd)
		},
	}
}

func runSchema(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	s, err := loadSchema(formatter, path)
	if err != nil {
		return err
	}

	result := schemaResult(s)
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "entity %s (%d fields)\n", s.Name, len(s.Fields))
	for _, f := range result.Fields {
		null := ""
		if f.Nullable {
			null = " nullable"
		}
		fmt.Fprintf(formatter.Writer, "  %-24s %-8s%s  -> %s\n", f.Path, f.Kind, null, f.Column)
	}
	return nil
}

func schemaResult(s *schema.Schema) SchemaResult {
	fields := make([]SchemaField, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = SchemaField{
			Path:     f.Path,
			Column:   f.Column,
			Kind:     f.Kind.String(),
			Nullable: f.Nullable,
		}
	}
	return SchemaResult{Name: s.Name, Fields: fields}
}

// loadSchema loads a CUE schema file, emitting a formatted error and
// command-level exit code on failure.
func loadSchema(formatter *OutputFormatter, path string) (*schema.Schema, error) {
	s, err := schema.LoadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeSchema, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "load schema", err)
	}
	formatter.VerboseLog("Loaded schema %q with %d field(s)", s.Name, len(s.Fields))
	return s, nil
}
