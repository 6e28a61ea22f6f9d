package seeders_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/app/models"
	_ "github.com/tiffinbox/tiffin/database/migrations"
	"github.com/tiffinbox/tiffin/database/seeders"
	"github.com/tiffinbox/tiffin/pkg/auth"
	"github.com/tiffinbox/tiffin/pkg/testkit"
)

func TestSeedersAreIdempotent(t *testing.T) {
	db := testkit.DB(t)

	ctx := context.Background()
	require.NoError(t, seeders.RunAll(ctx, db, io.Discard))
	require.NoError(t, seeders.RunAll(ctx, db, io.Discard))

	var users, restaurants, items int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Restaurant{}).Count(&restaurants).Error)
	require.NoError(t, db.Model(&models.MenuItem{}).Count(&items).Error)
	assert.EqualValues(t, 2, users)
	assert.EqualValues(t, 1, restaurants)
	assert.EqualValues(t, 3, items)

	var admin models.User
	require.NoError(t, db.Where("user_type = ?", models.RoleAdmin).First(&admin).Error)
	assert.True(t, auth.CheckPassword(admin.Password, seeders.DemoPassword))
}
