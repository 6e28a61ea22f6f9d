package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/tiffinbox/tiffin/pkg/console"
	"github.com/tiffinbox/tiffin/pkg/migration"
	"github.com/tiffinbox/tiffin/pkg/router"
	"gorm.io/gorm"
)

// Migrate runs every pending migration and reports what ran.
func Migrate(w io.Writer, db *gorm.DB) error {
	ran, err := migration.New(db).Run()
	if err != nil {
		return err
	}
	if len(ran) == 0 {
		fmt.Fprintln(w, "Nothing to migrate.")
		return nil
	}
	for _, name := range ran {
		fmt.Fprintln(w, "Migrated:", name)
	}
	return nil
}

// Rollback reverses the last batch.
func Rollback(w io.Writer, db *gorm.DB) error {
	undone, err := migration.New(db).Rollback()
	if err != nil {
		return err
	}
	if len(undone) == 0 {
		fmt.Fprintln(w, "Nothing to roll back.")
		return nil
	}
	for _, name := range undone {
		fmt.Fprintln(w, "Rolled back:", name)
	}
	return nil
}

// MigrationStatus prints every known migration with its batch.
func MigrationStatus(w io.Writer, db *gorm.DB) error {
	status, err := migration.New(db).Status()
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(status))
	for _, s := range status {
		ran, batch := "No", ""
		if s.Ran {
			ran, batch = "Yes", strconv.Itoa(s.Batch)
		}
		rows = append(rows, []string{s.Name, ran, batch})
	}
	return console.Table(w, []string{"Migration", "Ran", "Batch"}, rows)
}

// RouteList prints the routes of r ordered by path then method.
func RouteList(w io.Writer, r *router.Router) error {
	routes := r.Routes()
	if len(routes) == 0 {
		fmt.Fprintln(w, "No routes registered.")
		return nil
	}
	rows := make([][]string, 0, len(routes))
	for _, ri := range routes {
		rows = append(rows, []string{ri.Method, ri.Path, ri.Name})
	}
	return console.Table(w, []string{"Method", "Path", "Name"}, rows)
}
