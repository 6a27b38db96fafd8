// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"heritage/internal/database"
	"heritage/internal/importer"
	"heritage/internal/store"
	"heritage/internal/taxonomy"
	"heritage/internal/taxonomy/dynamo"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and print their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return database.MigrationStatus(db)
	},
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load provinces and taxonomy trees from a YAML seed file",
	Long: `Seed loads provinces, categories and regions from a YAML file. Without
--file the built-in seed is used. Existing rows are kept. When ADMIN_EMAIL
and ADMIN_PASSWORD are set, the first admin account is created as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := database.LoadSeed(seedFile)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := sf.Apply(cmd.Context(), db); err != nil {
			return err
		}
		slog.Info("seed applied", "provinces", len(sf.Provinces), "terms", sf.Count())

		if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
			return database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import data from files",
}

var importSitesCmd = &cobra.Command{
	Use:   "sites <file.csv>",
	Short: "Upsert heritage listings from a CSV file",
	Long: `Sites reads a CSV file with a header row. "title" is required; "slug"
defaults to the slugified title. Any listing column may appear by name, plus
"province" (by name) and "categories"/"regions" (term slugs separated by ";").`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		imp := importer.NewCSVImporter(f, store.NewSiteStore(db), store.NewTermStore(db), store.NewProvinceStore(db))
		res, err := imp.Run(cmd.Context())
		if res != nil {
			slog.Info("import finished", "imported", res.Imported, "created", res.Created, "unknown_terms", len(res.Unknown))
		}
		return err
	},
}

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Taxonomy maintenance",
}

var mirrorTable string

var taxonomyMirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Copy categories and regions into a DynamoDB table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		table := mirrorTable
		if table == "" {
			table = cfg.DynamoTable
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		client, err := dynamo.NewClient(ctx, cfg.DynamoRegion, cfg.DynamoEndpoint)
		if err != nil {
			return err
		}
		target := dynamo.New(client, table)
		source := store.NewTermStore(db)

		for _, kind := range taxonomy.Kinds {
			terms, err := source.List(ctx, kind)
			if err != nil {
				return err
			}
			res, err := target.Mirror(ctx, kind, terms)
			if err != nil {
				return err
			}
			slog.Info("taxonomy mirrored", "kind", kind, "written", res.Written, "removed", res.Removed, "table", table)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "seed YAML file (default: built-in seed)")
	importCmd.AddCommand(importSitesCmd)
	taxonomyMirrorCmd.Flags().StringVar(&mirrorTable, "table", "", "DynamoDB table (default: $DYNAMODB_TABLE)")
	taxonomyCmd.AddCommand(taxonomyMirrorCmd)
}
