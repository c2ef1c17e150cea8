// cmd_catalog.go
//
// `qgisgame catalog` subcommands:
//   - validate: load a catalog file (or the embedded default) and print its counts.
//   - import:   write a catalog into a SQLite database.
//   - export:   print the catalog stored in a SQLite database as YAML.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pierridotite/QGISGame/internal/catalog"
	"github.com/pierridotite/QGISGame/internal/catalogdb"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate, import and export card catalogs",
	}

	var file string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate a catalog file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := catalog.Load(file)
			if err != nil {
				return err
			}
			printCounts(cmd, c)
			return nil
		},
	}
	validate.Flags().StringVar(&file, "file", "", "catalog YAML file (default: embedded catalog)")

	var importFile, importDB string
	imp := &cobra.Command{
		Use:   "import",
		Short: "Write a catalog into a SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := catalog.Load(importFile)
			if err != nil {
				return err
			}
			db, err := catalogdb.Open(importDB)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := catalogdb.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			if err := catalogdb.Import(cmd.Context(), db, c); err != nil {
				return fmt.Errorf("import into %s: %w", importDB, err)
			}
			printCounts(cmd, c)
			return nil
		},
	}
	imp.Flags().StringVar(&importFile, "file", "", "catalog YAML file (default: embedded catalog)")
	imp.Flags().StringVar(&importDB, "db", "", "SQLite database path")
	_ = imp.MarkFlagRequired("db")

	var exportDB string
	exp := &cobra.Command{
		Use:   "export",
		Short: "Print the catalog stored in a SQLite database as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := catalogdb.Open(exportDB)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := catalogdb.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			c, err := catalogdb.Load(cmd.Context(), db)
			if err != nil {
				return err
			}
			out, err := catalog.Marshal(c)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	exp.Flags().StringVar(&exportDB, "db", "", "SQLite database path")
	_ = exp.MarkFlagRequired("db")

	cmd.AddCommand(validate, imp, exp)
	return cmd
}

func printCounts(cmd *cobra.Command, c *catalog.Catalog) {
	cards, chains := c.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d cards, %d chains\n", cards, chains)
	for _, cat := range catalog.Categories {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-9s %d\n", cat, len(c.Drawer(cat)))
	}
}
