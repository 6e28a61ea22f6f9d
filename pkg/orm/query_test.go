package orm_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/pkg/database"
	"github.com/tiffinbox/tiffin/pkg/orm"
)

type dish struct {
	ID    uint64
	Name  string
	IsVeg bool
}

func TestQueryChainAndCacheFallback(t *testing.T) {
	db, err := database.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&dish{}))
	require.NoError(t, db.Create(&[]dish{{Name: "Dal"}, {Name: "Paneer", IsVeg: true}, {Name: "Aloo", IsVeg: true}}).Error)

	var veg []dish
	err = orm.Use(db).WithContext(context.Background()).
		Model(&dish{}).
		Where("is_veg = ?", true).
		Order("name").
		Cache("dishes:veg", time.Minute, &veg)
	require.NoError(t, err)
	require.Len(t, veg, 2)
	assert.Equal(t, "Aloo", veg[0].Name)

	n, err := orm.Use(db).Model(&dish{}).Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	var first dish
	require.NoError(t, orm.Use(db).Order("id").First(&first))
	assert.Equal(t, "Dal", first.Name)
}
