// Package orm is a small chainable query builder over gorm with an optional
// Redis read-through cache.
//
//	var out []models.Restaurant
//	err := orm.Use(db).WithContext(ctx).
//	    Model(&models.Restaurant{}).
//	    Joins("Address").
//	    Where("LOWER(Address.city) LIKE ?", "%pune%").
//	    Order("restaurants.name").
//	    Cache("restaurants:search:pune", time.Minute, &out)
package orm

import (
	"context"
	"time"

	"github.com/tiffinbox/tiffin/pkg/cache"
	"github.com/tiffinbox/tiffin/pkg/database"
	"gorm.io/gorm"
)

type Query struct {
	db *gorm.DB
}

// DB starts a query on the process-wide connection.
func DB() *Query {
	return &Query{db: database.DB}
}

// Use starts a query on db, which may be a transaction.
func Use(db *gorm.DB) *Query {
	return &Query{db: db}
}

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

func (q *Query) Model(v any) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query any, args ...any) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Joins(query string, args ...any) *Query {
	return &Query{db: q.db.Joins(query, args...)}
}

func (q *Query) Preload(query string, args ...any) *Query {
	return &Query{db: q.db.Preload(query, args...)}
}

func (q *Query) Order(value any) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

func (q *Query) Select(query any, args ...any) *Query {
	return &Query{db: q.db.Select(query, args...)}
}

func (q *Query) Get(dest any) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest any) error {
	return q.db.First(dest).Error
}

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

// Gorm exposes the underlying statement for anything the builder lacks.
func (q *Query) Gorm() *gorm.DB { return q.db }

// Cache answers from Redis when key is present and otherwise runs the query
// and stores the result for ttl. Without Redis it simply runs the query.
func (q *Query) Cache(key string, ttl time.Duration, dest any) error {
	if cache.Get(key, dest) {
		return nil
	}

	if err := q.db.Find(dest).Error; err != nil {
		return err
	}

	_ = cache.Set(key, dest, ttl)
	return nil
}
