package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered specs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTITLE\tDOCUMENT\tUI HINTS")
			for _, desc := range a.reg.List() {
				hints := "-"
				if desc.HasHints() {
					hints = desc.UIHints.Location()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", desc.Name, desc.Title, desc.Document.Location(), hints)
			}
			return w.Flush()
		},
	}
}
