// Package datastore exposes hierarchical content storage to the definition
// loaders. Paths are slash-separated and relative to the store root; listings
// classify entries as regular files, directories, and symlinks.
package datastore

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Dir is an OS-directory-backed content store.
type Dir struct {
	root string
}

// NewDir opens a content store rooted at root.
//
// Precondition: root must name an existing directory.
func NewDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("datastore: opening %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("datastore: %q is not a directory", root)
	}
	return &Dir{root: root}, nil
}

// Root returns the store's root directory.
func (d *Dir) Root() string {
	return d.root
}

// resolve maps a root-relative slash path to an OS path.
func (d *Dir) resolve(p string) string {
	return filepath.Join(d.root, filepath.FromSlash(p))
}

// Listing enumerates the entries under p, classified as regular files,
// directories, and symlinks, each returned as a root-relative slash path.
// When recursive is true the listing descends into subdirectories; symlinked
// directories are reported but never followed.
func (d *Dir) Listing(p string, recursive bool) (files, dirs, symlinks []string, err error) {
	entries, err := os.ReadDir(d.resolve(p))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("datastore: listing %q: %w", p, err)
	}
	for _, entry := range entries {
		rel := path.Join(p, entry.Name())
		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			symlinks = append(symlinks, rel)
		case entry.IsDir():
			dirs = append(dirs, rel)
			if recursive {
				subFiles, subDirs, subLinks, err := d.Listing(rel, true)
				if err != nil {
					return nil, nil, nil, err
				}
				files = append(files, subFiles...)
				dirs = append(dirs, subDirs...)
				symlinks = append(symlinks, subLinks...)
			}
		default:
			files = append(files, rel)
		}
	}
	return files, dirs, symlinks, nil
}

// ReadFile returns the contents of the file at p.
func (d *Dir) ReadFile(p string) ([]byte, error) {
	data, err := os.ReadFile(d.resolve(p))
	if err != nil {
		return nil, fmt.Errorf("datastore: reading %q: %w", p, err)
	}
	return data, nil
}

// Exists classifies p. Both results are false when nothing is there.
func (d *Dir) Exists(p string) (isFile, isDir bool) {
	info, err := os.Stat(d.resolve(p))
	if err != nil {
		return false, false
	}
	return !info.IsDir(), info.IsDir()
}
