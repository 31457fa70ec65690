// Command docskema converts, inspects, and stores document-class schemas
// from the command line. It is a thin front end over the designer core: read
// a schema file (JSON or YAML), run the converter, and export one schema
// document per document type.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "docskema:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docskema",
		Short:         "Document-class schema designer toolbox",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExportCmd(), newInspectCmd(), newRegistryCmd())
	return root
}
