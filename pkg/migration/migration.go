// Package migration runs versioned schema changes and records them in the
// tiffin_migrations table.
//
//	func init() {
//	    migration.Register("20260101000100_create_orders_table", &CreateOrdersTable{})
//	}
//
//	tiffin migrate            // run everything pending as one batch
//	tiffin migrate:rollback   // undo the last batch
//	tiffin migrate:status
package migration

import (
	"fmt"
	"sort"
	"time"

	"github.com/tiffinbox/tiffin/pkg/logger"
	"gorm.io/gorm"
)

// Migration is one reversible schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type record struct {
	ID    uint64    `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "tiffin_migrations" }

type entry struct {
	name string
	m    Migration
}

var registry []entry

// Register adds m to the global registry. Names are timestamp-prefixed and
// run in name order.
func Register(name string, m Migration) {
	registry = append(registry, entry{name: name, m: m})
}

// Runner applies migrations to one database.
type Runner struct {
	db      *gorm.DB
	entries []entry
}

// New returns a runner over the global registry.
func New(db *gorm.DB) *Runner {
	return &Runner{db: db, entries: sorted(registry)}
}

// NewWith returns a runner over an explicit set of migrations.
func NewWith(db *gorm.DB, migrations map[string]Migration) *Runner {
	var es []entry
	for name, m := range migrations {
		es = append(es, entry{name: name, m: m})
	}
	return &Runner{db: db, entries: sorted(es)}
}

func sorted(es []entry) []entry {
	out := append([]entry(nil), es...)
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (r *Runner) ensureTable() error {
	return r.db.AutoMigrate(&record{})
}

func (r *Runner) ran() (map[string]record, error) {
	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]record, len(rows))
	for _, rec := range rows {
		out[rec.Name] = rec
	}
	return out, nil
}

// Run applies every pending migration as one batch and returns their names.
func (r *Runner) Run() ([]string, error) {
	if err := r.ensureTable(); err != nil {
		return nil, fmt.Errorf("migration: ensure table: %w", err)
	}
	done, err := r.ran()
	if err != nil {
		return nil, fmt.Errorf("migration: load history: %w", err)
	}

	batch, err := r.lastBatch()
	if err != nil {
		return nil, err
	}
	batch++

	var applied []string
	for _, e := range r.entries {
		if _, ok := done[e.name]; ok {
			continue
		}
		logger.Info("migration: running", "name", e.name)
		if err := e.m.Up(r.db); err != nil {
			return applied, fmt.Errorf("migration: %s up: %w", e.name, err)
		}
		if err := r.db.Create(&record{Name: e.name, Batch: batch}).Error; err != nil {
			return applied, fmt.Errorf("migration: record %s: %w", e.name, err)
		}
		applied = append(applied, e.name)
	}

	if len(applied) > 0 {
		logger.Info("migration: done", "ran", len(applied), "batch", batch)
	}
	return applied, nil
}

// Rollback reverses the most recent batch and returns the names undone.
func (r *Runner) Rollback() ([]string, error) {
	if err := r.ensureTable(); err != nil {
		return nil, fmt.Errorf("migration: ensure table: %w", err)
	}
	batch, err := r.lastBatch()
	if err != nil || batch == 0 {
		return nil, err
	}

	var recs []record
	if err := r.db.Where("batch = ?", batch).Order("id desc").Find(&recs).Error; err != nil {
		return nil, err
	}

	byName := make(map[string]Migration, len(r.entries))
	for _, e := range r.entries {
		byName[e.name] = e.m
	}

	var undone []string
	for _, rec := range recs {
		m, ok := byName[rec.Name]
		if !ok {
			return undone, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		logger.Info("migration: rolling back", "name", rec.Name)
		if err := m.Down(r.db); err != nil {
			return undone, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := r.db.Delete(&record{}, rec.ID).Error; err != nil {
			return undone, err
		}
		undone = append(undone, rec.Name)
	}
	return undone, nil
}

// Status is one row of `migrate:status`.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

// Status lists every known migration with its state.
func (r *Runner) Status() ([]Status, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	done, err := r.ran()
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(r.entries))
	for _, e := range r.entries {
		rec, ok := done[e.name]
		out = append(out, Status{Name: e.name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

func (r *Runner) lastBatch() (int, error) {
	var last struct{ Max int }
	err := r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("migration: last batch: %w", err)
	}
	return last.Max, nil
}
