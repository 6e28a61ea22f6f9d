// Package seeders inserts the demo data `tiffin seed` loads. Every seeder
// is idempotent, so the command can run against a populated database.
package seeders

import (
	"context"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"
)

// Seeder fills one slice of demo data.
type Seeder struct {
	Name string
	Run  func(ctx context.Context, db *gorm.DB) error
}

// All lists the seeders in the order they run. Later seeders may rely on
// rows inserted by earlier ones.
var All = []Seeder{
	{Name: "users", Run: SeedUsers},
	{Name: "restaurant", Run: SeedRestaurant},
}

// RunAll runs every seeder in order and reports progress to w. It stops
// at the first failure.
func RunAll(ctx context.Context, db *gorm.DB, w io.Writer) error {
	for _, s := range All {
		start := time.Now()
		if err := s.Run(ctx, db.WithContext(ctx)); err != nil {
			fmt.Fprintf(w, "  %-12s FAILED\n", s.Name)
			return fmt.Errorf("seed %s: %w", s.Name, err)
		}
		fmt.Fprintf(w, "  %-12s done (%s)\n", s.Name, time.Since(start).Round(time.Millisecond))
	}
	return nil
}
