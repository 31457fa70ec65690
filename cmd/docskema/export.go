package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	docskema "github.com/reoring/docskema"
	js "github.com/reoring/docskema/jsonschema"
)

// loadClasses reads a schema file and runs the converter. YAML is selected by
// file extension, everything else is treated as JSON.
func loadClasses(path string) ([]*docskema.Class, docskema.Diag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return docskema.ImportYAML(data)
	default:
		return docskema.ImportJSON(data)
	}
}

func printWarnings(cmd *cobra.Command, diag docskema.Diag) {
	if diag == nil || !diag.HasWarnings() {
		return
	}
	for _, iss := range diag.Warnings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s at %s: %s\n", iss.Code, iss.Path, iss.Message)
	}
}

func newExportCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export <schema-file>",
		Short: "Convert a schema file and emit one document per document type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classes, diag, err := loadClasses(args[0])
			if err != nil {
				return err
			}
			printWarnings(cmd, diag)
			docs, exDiag := docskema.Export(classes)
			printWarnings(cmd, exDiag)
			if outDir == "" {
				b, err := json.MarshalIndent(docs, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for _, doc := range docs {
				b, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return err
				}
				name := doc.ID
				if name == "" {
					name = "schema"
				}
				target := filepath.Join(outDir, name+".schema.json")
				if err := os.WriteFile(target, append(b, '\n'), 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), target)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "write one <name>.schema.json per document type into this directory")
	return cmd
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <schema-file>",
		Short: "Show the converted class list and per-type $defs reachability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classes, diag, err := loadClasses(args[0])
			if err != nil {
				return err
			}
			printWarnings(cmd, diag)
			out := cmd.OutOrStdout()
			for _, c := range classes {
				kind := "shared"
				if c.IsDocumentType {
					kind = "document"
				}
				fmt.Fprintf(out, "%-8s %s", kind, c.Name)
				if c.Attributes != nil {
					fmt.Fprintf(out, " (%d attributes)", c.Attributes.Properties.Len())
				}
				fmt.Fprintln(out)
			}
			docs, exDiag := docskema.Export(classes)
			printWarnings(cmd, exDiag)
			for _, doc := range docs {
				fmt.Fprintf(out, "export %s: %d $defs\n", doc.ID, len(doc.Defs))
				for _, name := range sortedDefs(doc) {
					fmt.Fprintf(out, "  $defs/%s\n", name)
				}
			}
			return nil
		},
	}
	return cmd
}

func sortedDefs(doc *js.Schema) []string {
	names := make([]string, 0, len(doc.Defs))
	for n := range doc.Defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
