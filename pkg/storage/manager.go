package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/tiffinbox/tiffin/config"
	"github.com/tiffinbox/tiffin/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect boots the local disk, and the s3 disk when S3_BUCKET is set.
// It fails when STORAGE_DISK names a disk that could not be booted.
func Connect(ctx context.Context) error {
	RegisterDisk("local", NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()))

	if config.StorageS3Bucket() != "" {
		d, err := NewS3Disk(ctx, S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			RegisterDisk("s3", d)
		}
	}

	name := config.StorageDefault()
	if _, err := Use(name); err != nil {
		return err
	}
	managerMu.Lock()
	defaultDisk = name
	managerMu.Unlock()
	return nil
}

// RegisterDisk plugs in a disk under name.
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}

// SetDefault selects the disk the package-level helpers use.
func SetDefault(name string) {
	managerMu.Lock()
	defaultDisk = name
	managerMu.Unlock()
}

// Use returns the named disk.
func Use(name string) (Disk, error) {
	managerMu.RLock()
	d, ok := disks[name]
	managerMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the default disk.
func Default() (Disk, error) {
	managerMu.RLock()
	name := defaultDisk
	managerMu.RUnlock()
	return Use(name)
}

// Disks lists the registered disk names.
func Disks() []string {
	managerMu.RLock()
	defer managerMu.RUnlock()
	out := make([]string, 0, len(disks))
	for name := range disks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Store writes r to path on the default disk and returns its public URL.
func Store(ctx context.Context, path string, r io.Reader) (string, error) {
	d, err := Default()
	if err != nil {
		return "", err
	}
	if err := d.PutStream(ctx, path, r); err != nil {
		return "", err
	}
	return d.URL(path), nil
}

// DeleteURL removes the object behind a URL produced by any registered disk.
// URLs no disk recognises are ignored.
func DeleteURL(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	managerMu.RLock()
	candidates := make([]Disk, 0, len(disks))
	for _, d := range disks {
		candidates = append(candidates, d)
	}
	managerMu.RUnlock()

	for _, d := range candidates {
		if key, ok := d.Key(url); ok {
			return d.Delete(ctx, key)
		}
	}
	logger.Warn("storage: no disk owns url", "url", url)
	return nil
}
