package storage_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/pkg/storage"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := storage.NewLocalDisk(t.TempDir(), "http://localhost:8080/storage/")

	require.NoError(t, d.PutStream(ctx, "menuImages/1_a_paneer", strings.NewReader("jpeg")))
	assert.True(t, d.Exists(ctx, "menuImages/1_a_paneer"))

	got, err := d.Get(ctx, "menuImages/1_a_paneer")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(got))

	url := d.URL("menuImages/1_a_paneer")
	assert.Equal(t, "http://localhost:8080/storage/menuImages/1_a_paneer", url)

	key, ok := d.Key(url)
	require.True(t, ok)
	assert.Equal(t, "menuImages/1_a_paneer", key)

	require.NoError(t, d.Delete(ctx, key))
	assert.False(t, d.Exists(ctx, key))
	assert.NoError(t, d.Delete(ctx, key), "deleting a missing object is not an error")
}

func TestLocalDiskRejectsEscapingPaths(t *testing.T) {
	d := storage.NewLocalDisk(t.TempDir(), "http://x")
	assert.Error(t, d.Put(context.Background(), "../outside", []byte("x")))
}

func TestStoreAndDeleteURLUseRegisteredDisks(t *testing.T) {
	ctx := context.Background()
	d := storage.NewLocalDisk(t.TempDir(), "http://cdn.test/files")
	storage.RegisterDisk("test", d)
	storage.SetDefault("test")
	defer storage.SetDefault("local")

	url, err := storage.Store(ctx, "menuImages/2_b_dosa", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/files/menuImages/2_b_dosa", url)
	assert.True(t, d.Exists(ctx, "menuImages/2_b_dosa"))

	require.NoError(t, storage.DeleteURL(ctx, url))
	assert.False(t, d.Exists(ctx, "menuImages/2_b_dosa"))

	assert.NoError(t, storage.DeleteURL(ctx, "https://elsewhere.example/x.png"))
	assert.NoError(t, storage.DeleteURL(ctx, ""))
}

func TestUseUnknownDisk(t *testing.T) {
	_, err := storage.Use("ftp")
	assert.Error(t, err)
}
