package texture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no indexed file matches a reference.
var ErrNotFound = errors.New("texture not found")

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".tga": true,
}

// Index maps lowercase texture stems to image files found under a set of
// directories. Sidecars written by other tools often name a texture with
// a different extension or directory than the file shipped next to it.
type Index struct {
	entries map[string][]string // stem.lower() -> paths, in walk order
}

// BuildIndex walks dirs recursively for decodable images.
func BuildIndex(dirs ...string) *Index {
	idx := &Index{entries: make(map[string][]string)}
	for _, dir := range dirs {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if !imageExts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			stem := stemOf(path)
			idx.entries[stem] = append(idx.entries[stem], path)
			return nil
		})
	}
	return idx
}

func stemOf(ref string) string {
	base := filepath.Base(strings.ReplaceAll(ref, "\\", "/"))
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// ResolvePath returns the file for a texture reference. A file with the
// reference's own extension wins over other extensions.
func (idx *Index) ResolvePath(ref string) (string, bool) {
	paths := idx.entries[stemOf(ref)]
	if len(paths) == 0 {
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(ref))
	for _, p := range paths {
		if strings.ToLower(filepath.Ext(p)) == ext {
			return p, true
		}
	}
	return paths[0], true
}

// ResolveTexture makes an Index usable as a sidecar texture resolver.
func (idx *Index) ResolveTexture(ref string) (string, error) {
	if p, ok := idx.ResolvePath(ref); ok {
		return p, nil
	}
	return "", fmt.Errorf("%s: %w", ref, ErrNotFound)
}

// Len returns the number of indexed texture stems.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Chain tries each resolver in order and returns the first hit.
type Chain []PathResolver

// PathResolver maps a texture reference to a file on disk.
type PathResolver interface {
	ResolveTexture(ref string) (string, error)
}

func (c Chain) ResolveTexture(ref string) (string, error) {
	var errs []error
	for _, r := range c {
		p, err := r.ResolveTexture(ref)
		if err == nil {
			return p, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	return "", errors.Join(errs...)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
