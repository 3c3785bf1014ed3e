package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-specviz/pkg/jsonschema"
	"github.com/goliatone/go-specviz/pkg/preview"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	var (
		format    string
		fromDraft bool
		output    string
	)
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Print a registered document or its saved draft",
		Long: `Prints the registered document for <name>. YAML output is the document
text as read; JSON output is the parsed document re-encoded. With --draft the
saved draft is printed instead ({} when none exists), ordered like the form.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			spec, err := a.loader.Load(ctx, args[0])
			if err != nil {
				return err
			}
			f := preview.ParseFormat(format)

			var out []byte
			switch {
			case fromDraft:
				store, err := a.openStore(ctx)
				if err != nil {
					return err
				}
				defer store.Close()
				value, ok, err := store.Load(ctx, spec.Name)
				if err != nil {
					return fmt.Errorf("load draft: %w", err)
				}
				if !ok {
					value = map[string]any{}
				}
				out = []byte(preview.Render(value, f, spec.Schema) + "\n")
			case f == preview.FormatJSON:
				out, err = json.MarshalIndent(jsonschema.Plain(spec.Value), "", "  ")
				if err != nil {
					return fmt.Errorf("encode %s: %w", spec.Name, err)
				}
				out = append(out, '\n')
			default:
				out = spec.Raw
			}
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")
	cmd.Flags().BoolVar(&fromDraft, "draft", false, "export the saved draft instead of the registered document")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "Written to %s\n", path)
	return nil
}
