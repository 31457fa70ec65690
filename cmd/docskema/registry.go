package main

import (
	"fmt"

	"github.com/spf13/cobra"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/registry"
)

func newRegistryCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Persist and list exported schemas in a SQLite registry",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "docskema.db", "path to the registry database")

	save := &cobra.Command{
		Use:   "save <schema-file>",
		Short: "Convert, export, and store every document type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classes, diag, err := loadClasses(args[0])
			if err != nil {
				return err
			}
			printWarnings(cmd, diag)
			docs, exDiag := docskema.Export(classes)
			printWarnings(cmd, exDiag)

			reg, err := registry.Open(dbPath)
			if err != nil {
				return err
			}
			defer reg.Close()
			ctx := cmd.Context()
			if err := reg.Migrate(ctx); err != nil {
				return err
			}
			if err := reg.PutSnapshot(ctx, docs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d schema(s) in %s\n", len(docs), dbPath)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.Open(dbPath)
			if err != nil {
				return err
			}
			defer reg.Close()
			ctx := cmd.Context()
			if err := reg.Migrate(ctx); err != nil {
				return err
			}
			entries, err := reg.List(ctx)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d bytes\n",
					e.Name, e.UpdatedAt.Format("2006-01-02 15:04:05"), len(e.Document))
			}
			return nil
		},
	}

	cmd.AddCommand(save, list)
	return cmd
}
