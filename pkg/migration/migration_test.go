package migration_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/pkg/database"
	"github.com/tiffinbox/tiffin/pkg/migration"
	"gorm.io/gorm"
)

type widget struct {
	ID   uint64
	Name string
}

type createWidgets struct{}

func (createWidgets) Up(db *gorm.DB) error   { return db.AutoMigrate(&widget{}) }
func (createWidgets) Down(db *gorm.DB) error { return db.Migrator().DropTable(&widget{}) }

type addIndex struct{}

func (addIndex) Up(db *gorm.DB) error {
	return db.Exec("CREATE INDEX idx_widgets_name ON widgets(name)").Error
}
func (addIndex) Down(db *gorm.DB) error {
	return db.Exec("DROP INDEX idx_widgets_name").Error
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	return db
}

func TestRunIsIdempotentAndRollbackUndoesBatch(t *testing.T) {
	db := openDB(t)
	r := migration.NewWith(db, map[string]migration.Migration{
		"20260101000000_create_widgets": createWidgets{},
		"20260101000001_index_widgets":  addIndex{},
	})

	applied, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"20260101000000_create_widgets", "20260101000001_index_widgets"}, applied)
	assert.True(t, db.Migrator().HasTable(&widget{}))

	applied, err = r.Run()
	require.NoError(t, err)
	assert.Empty(t, applied)

	status, err := r.Status()
	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.True(t, status[0].Ran)
	assert.Equal(t, 1, status[0].Batch)

	undone, err := r.Rollback()
	require.NoError(t, err)
	assert.Equal(t, []string{"20260101000001_index_widgets", "20260101000000_create_widgets"}, undone)
	assert.False(t, db.Migrator().HasTable(&widget{}))

	undone, err = r.Rollback()
	require.NoError(t, err)
	assert.Empty(t, undone)
}
