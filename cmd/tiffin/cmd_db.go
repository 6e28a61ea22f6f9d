package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tiffinbox/tiffin/database/seeders"
	"github.com/tiffinbox/tiffin/pkg/app"
)

// tiffin migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.BootDB()
		if err != nil {
			return err
		}
		return app.Migrate(os.Stdout, db)
	},
}

// tiffin migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.BootDB()
		if err != nil {
			return err
		}
		return app.Rollback(os.Stdout, db)
	},
}

// tiffin migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.BootDB()
		if err != nil {
			return err
		}
		return app.MigrationStatus(os.Stdout, db)
	},
}

// tiffin seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo admin, owner, restaurant and menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.BootDB()
		if err != nil {
			return err
		}
		fmt.Println("Seeding demo data")
		return seeders.RunAll(cmd.Context(), db, os.Stdout)
	},
}
