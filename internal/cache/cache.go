// Package cache persists decompiled module source under a
// package-id-scoped directory tree so repeated requests skip the
// decompiler. The tree is shared with the host, so entries are plain
// .move files; failures keep a .move.failed marker beside them.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	sourceExt = ".move"
	failedExt = ".move.failed"
)

// Entry is one cached decompilation result: source text on success,
// a failure reason otherwise.
type Entry struct {
	Source     string
	FailReason string
}

// Failed reports whether the entry is a failure marker.
func (e Entry) Failed() bool {
	return e.FailReason != ""
}

// Store is a directory-backed cache keyed by (package id, module name).
// Writes are atomic with respect to readers: a reader never observes a
// half-written file. Nothing is ever evicted here; retention is the
// host's concern.
type Store struct {
	root string
}

// New creates the cache root if needed and returns a store scoped to it.
// The store never writes outside root.
func New(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("cache root must not be empty")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create cache root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the cache root directory.
func (s *Store) Root() string {
	return s.root
}

// PackageDir returns the directory holding one package's sources.
func (s *Store) PackageDir(packageID string) string {
	return filepath.Join(s.root, packageID)
}

// Get returns the cached entry for a module, or ok=false when absent.
// A success entry shadows any stale failure marker.
func (s *Store) Get(packageID, moduleName string) (Entry, bool) {
	if err := checkName(packageID); err != nil {
		return Entry{}, false
	}
	if err := checkName(moduleName); err != nil {
		return Entry{}, false
	}

	dir := s.PackageDir(packageID)
	if data, err := os.ReadFile(filepath.Join(dir, moduleName+sourceExt)); err == nil {
		return Entry{Source: string(data)}, true
	}
	if data, err := os.ReadFile(filepath.Join(dir, moduleName+failedExt)); err == nil {
		reason := strings.TrimSpace(string(data))
		if reason == "" {
			reason = "decompilation failed"
		}
		return Entry{FailReason: reason}, true
	}
	return Entry{}, false
}

// Put stores an entry. Success entries replace failure markers; a failure
// never overwrites an existing success. Concurrent writers to the same
// key are safe because the final step is a rename.
func (s *Store) Put(packageID, moduleName string, entry Entry) error {
	if err := checkName(packageID); err != nil {
		return err
	}
	if err := checkName(moduleName); err != nil {
		return err
	}

	dir := s.PackageDir(packageID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create package dir: %w", err)
	}

	sourcePath := filepath.Join(dir, moduleName+sourceExt)
	failedPath := filepath.Join(dir, moduleName+failedExt)

	if entry.Failed() {
		// Keep an existing good result over a new failure.
		if _, err := os.Stat(sourcePath); err == nil {
			return nil
		}
		if err := writeAtomic(dir, failedPath, entry.FailReason); err != nil {
			return err
		}
		return nil
	}

	if err := writeAtomic(dir, sourcePath, entry.Source); err != nil {
		return err
	}
	_ = os.Remove(failedPath)
	return nil
}

// writeAtomic writes content to a unique temp file in dir and renames it
// into place.
func writeAtomic(dir, dest, content string) error {
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// checkName rejects keys that would escape the cache tree.
func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("empty cache key")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || strings.Contains(name, "..") {
		return fmt.Errorf("invalid cache key %q", name)
	}
	return nil
}
