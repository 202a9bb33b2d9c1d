// Package storage keeps uploaded files on a public local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Disk stores files under root and serves them below urlPrefix.
type Disk struct {
	root      string
	urlPrefix string
}

// NewDisk creates root when missing.
func NewDisk(root, urlPrefix string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &Disk{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Store writes the upload as <area>/<uuid><ext> and returns that relative path.
func (d *Disk) Store(ctx context.Context, area string, up *Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if up == nil {
		return "", errors.New("storage: nil upload")
	}
	area = strings.Trim(path.Clean("/"+area), "/")
	if err := os.MkdirAll(filepath.Join(d.root, area), 0o755); err != nil {
		return "", fmt.Errorf("storage: create area: %w", err)
	}

	rel := path.Join(area, uuid.NewString()+up.Extension())
	f, err := os.OpenFile(d.abs(rel), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	if _, err := io.Copy(f, up.Reader()); err != nil {
		_ = f.Close()
		_ = os.Remove(d.abs(rel))
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(d.abs(rel))
		return "", fmt.Errorf("storage: close file: %w", err)
	}
	return rel, nil
}

// Delete removes a stored file. A missing file is not an error.
func (d *Disk) Delete(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(rel) == "" {
		return nil
	}
	if err := os.Remove(d.abs(rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", rel, err)
	}
	return nil
}

// Exists reports whether rel is stored.
func (d *Disk) Exists(rel string) bool {
	info, err := os.Stat(d.abs(rel))
	return err == nil && !info.IsDir()
}

// ModTime returns when rel was written.
func (d *Disk) ModTime(rel string) (time.Time, error) {
	info, err := os.Stat(d.abs(rel))
	if err != nil {
		return time.Time{}, fmt.Errorf("storage: stat %s: %w", rel, err)
	}
	return info.ModTime(), nil
}

// URL returns the public address of rel, empty for an empty path.
func (d *Disk) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return d.urlPrefix + "/" + strings.TrimLeft(rel, "/")
}

// List returns the stored paths of area in lexical order.
func (d *Disk) List(ctx context.Context, area string) ([]string, error) {
	area = strings.Trim(path.Clean("/"+area), "/")
	entries, err := os.ReadDir(filepath.Join(d.root, area))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: list %s: %w", area, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		paths = append(paths, path.Join(area, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Handler serves stored files; mount it under the URL prefix with the prefix stripped.
func (d *Disk) Handler() http.Handler {
	return http.FileServer(noListing{http.Dir(d.root)})
}

// abs confines rel below root.
func (d *Disk) abs(rel string) string {
	clean := path.Clean("/" + rel)
	return filepath.Join(d.root, filepath.FromSlash(clean))
}

type noListing struct{ fs http.FileSystem }

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
