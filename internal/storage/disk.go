package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	BucketProducts = "products"
	BucketReviews  = "reviews"
)

// Disk stores uploaded images under Root/{bucket}/ and hands back the
// bucket-relative path that gets persisted next to the owning row.
type Disk struct {
	Root string
}

func (d *Disk) Save(bucket, filename string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	rel := filepath.Join(bucket, uuid.NewString()+ext)
	abs := filepath.Join(d.Root, rel)

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}
	f, err := os.Create(abs)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, src); err != nil {
		os.Remove(abs)
		return "", fmt.Errorf("write file: %w", err)
	}
	return rel, nil
}

// Delete removes a stored file; a missing file is not an error.
func (d *Disk) Delete(rel string) error {
	err := os.Remove(filepath.Join(d.Root, rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (d *Disk) DeleteAll(rels []string) {
	for _, rel := range rels {
		_ = d.Delete(rel)
	}
}
