package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/anseconv/internal/schema"
)

func newSchemaCmd(a *app) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Validate a schema file and summarize its record types",
		Long: `Load the schema named by -c, report any configuration error, and list each
record type with its number of layouts, its fields and the workbook sheet the
export writes it to. --dump prints the whole parsed model instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema()
			if err != nil {
				return err
			}
			if dump {
				dumpSchema(cmd.OutOrStdout(), s)
				return nil
			}
			return summarizeSchema(cmd.OutOrStdout(), s)
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "Print the full parsed schema")
	return cmd
}

func dumpSchema(w io.Writer, s *schema.Schema) {
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
	cfg.Fdump(w, s)
}

func summarizeSchema(w io.Writer, s *schema.Schema) error {
	opts := s.Options
	fmt.Fprintf(w, "comment %q, delimiters %q %q, splitter %q, min crumb %s, column offset %d\n\n",
		opts.Comment, opts.DelimitHead, opts.DelimitTail, opts.Splitter, opts.MinCrumb.String(), opts.ColOffset)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tLAYOUTS\tSHEET\tFIELDS")
	for _, name := range s.TypeNames() {
		layouts, _ := s.Layouts(name)
		fields := make([]string, len(layouts))
		for i, l := range layouts {
			fields[i] = strings.Join(l.FieldNames(), ",")
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", name, len(layouts), s.SheetFor(name), strings.Join(fields, " | "))
	}
	return tw.Flush()
}
