// Package migrations holds the schema history. Each file registers its
// migrations from init(), so importing the package is enough for
// `tiffin migrate` to see them.
package migrations

import "gorm.io/gorm"

// table is the common shape of a create-table migration: AutoMigrate on the
// way up, DropTable on the way down.
type table struct {
	model any
	name  string
}

func (m table) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.model)
}

func (m table) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.name)
}
