package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes images under a local media root served at urlPrefix.
// It backs development setups without a bucket.
type DiskStore struct {
	root      string
	urlPrefix string
}

func NewDiskStore(root, urlPrefix string) *DiskStore {
	return &DiskStore{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (d *DiskStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	path, err := d.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return d.urlPrefix + "/" + key, nil
}

func (d *DiskStore) Delete(_ context.Context, ref string) error {
	prefix := d.urlPrefix + "/"
	if !strings.HasPrefix(ref, prefix) {
		return nil
	}
	path, err := d.path(strings.TrimPrefix(ref, prefix))
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", ref, err)
	}
	return nil
}

func (d *DiskStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("empty media key")
	}
	return filepath.Join(d.root, clean), nil
}
