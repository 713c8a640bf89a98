package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const entryPerm = 0o644

var errIsDirectory = errors.New("is a directory")

// EntryInfo describes one entry file for listing and debugging.
type EntryInfo struct {
	Tool    string
	Hash    string
	Path    string
	Size    int64
	ModTime time.Time
	Fresh   bool
}

// DiskStore reads and writes entry files in a single flat directory.
type DiskStore struct {
	root string
}

// NewDiskStore creates a store rooted at root. The directory is not created.
func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root}
}

// Root returns the store directory.
func (s *DiskStore) Root() string {
	return s.root
}

// Read returns the raw entry bytes; false on any read failure.
func (s *DiskStore) Read(path string) ([]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// ModTime returns the last-write time of a regular entry file.
func (s *DiskStore) ModTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Write replaces the entry at path with data. The bytes go to a temporary
// file in the same directory first and are renamed into place.
func (s *DiskStore) Write(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, entryPerm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// RemoveAll deletes every entry file directly under the root.
// Failures are collected as "<path>: <error>" and do not stop the sweep;
// err is set only when the directory cannot be listed.
func (s *DiskStore) RemoveAll() (removed int, failures []string, err error) {
	dirents, err := os.ReadDir(s.root)
	if err != nil {
		return 0, nil, err
	}

	for _, de := range dirents {
		if filepath.Ext(de.Name()) != EntryExt {
			continue
		}
		path := filepath.Join(s.root, de.Name())
		if de.IsDir() {
			failures = append(failures, fmt.Sprintf("%s: %v", path, errIsDirectory))
			continue
		}
		if err := os.Remove(path); err != nil {
			// already gone: a concurrent clear got there first
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		removed++
	}
	return removed, failures, nil
}

// List returns the entry files under the root sorted by filename.
// Fresh is left false; the caller owns the TTL.
func (s *DiskStore) List() ([]EntryInfo, error) {
	dirents, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}

	entries := make([]EntryInfo, 0, len(dirents))
	for _, de := range dirents {
		tool, hash, ok := parseEntryName(de.Name())
		if de.IsDir() || !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, EntryInfo{
			Tool:    tool,
			Hash:    hash,
			Path:    filepath.Join(s.root, de.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

// parseEntryName splits <tool>_<hash>.json at the last underscore.
func parseEntryName(name string) (tool, hash string, ok bool) {
	base, found := strings.CutSuffix(name, EntryExt)
	if !found {
		return "", "", false
	}
	i := strings.LastIndexByte(base, '_')
	if i <= 0 || i == len(base)-1 {
		return "", "", false
	}
	return base[:i], base[i+1:], true
}
