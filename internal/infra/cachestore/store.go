// Package cachestore provides a file-based implementation of CacheStore.
//
// Each task owns a pair of files in the cache directory: <task>.in holds the
// raw input digest and <task>.out the raw output digest. A missing .out file
// stands for the empty output digest.
package cachestore

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/borca-dev/borca/internal/domain"
)

// Ensure Store implements domain.CacheStore interface.
var _ domain.CacheStore = (*Store)(nil)

const lockFileName = ".lock"

// Store implements domain.CacheStore using files under the cache directory.
type Store struct {
	dir      string
	lockPath string
}

// New creates a new Store for the given cache directory.
// The directory does not need to exist; it is created on first write.
func New(dir string) *Store {
	return &Store{
		dir:      dir,
		lockPath: filepath.Join(dir, lockFileName),
	}
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// Load retrieves the digests recorded for a task.
func (s *Store) Load(name string) (domain.CacheRecord, error) {
	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		return domain.CacheRecord{}, nil
	}

	var record domain.CacheRecord
	err := s.withReadLock(func() error {
		in, err := os.ReadFile(s.recordPath(name, domain.InputRecordExt))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("read input record: %w", err)
		}

		out, err := os.ReadFile(s.recordPath(name, domain.OutputRecordExt))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read output record: %w", err)
		}

		record = domain.CacheRecord{Input: in, Output: out, Found: true}
		return nil
	})
	return record, err
}

// Save records both digests of a task.
// The output record is written first and the input record last, each through
// a temporary file and rename, so an interrupted save leaves a record that no
// longer matches rather than a truncated one.
func (s *Store) Save(name string, input, output domain.Digest) error {
	return s.withLock(syscall.LOCK_EX, func() error {
		outPath := s.recordPath(name, domain.OutputRecordExt)
		if output.IsEmpty() {
			if err := os.Remove(outPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("remove output record: %w", err)
			}
		} else if err := writeAtomic(outPath, output, 0o600); err != nil {
			return fmt.Errorf("write output record: %w", err)
		}

		if err := writeAtomic(s.recordPath(name, domain.InputRecordExt), input, 0o600); err != nil {
			return fmt.Errorf("write input record: %w", err)
		}
		return nil
	})
}

// Purge removes every task record except the project record.
func (s *Store) Purge() error {
	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return s.withLock(syscall.LOCK_EX, func() error {
		entries, err := os.ReadDir(s.dir)
		if err != nil {
			return fmt.Errorf("read cache directory: %w", err)
		}

		project := url.PathEscape(domain.ProjectRecordName)
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := filepath.Ext(e.Name())
			if ext != domain.InputRecordExt && ext != domain.OutputRecordExt {
				continue
			}
			if strings.TrimSuffix(e.Name(), ext) == project {
				continue
			}
			if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("remove record %s: %w", e.Name(), err)
			}
		}
		return nil
	})
}

// Clear removes the cache directory and everything in it.
func (s *Store) Clear() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("remove cache directory: %w", err)
	}
	return nil
}

// recordPath returns the path of a record file. Path separators in task
// names are escaped so every record stays directly inside the cache directory.
func (s *Store) recordPath(name, ext string) string {
	return filepath.Join(s.dir, url.PathEscape(name)+ext)
}

func (s *Store) withLock(lockType int, fn func() error) error {
	lock, err := s.acquireLock(lockType)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)
	return fn()
}

// withReadLock runs fn under a shared lock. Readers never create files, so a
// cache directory without a lock file is read unlocked.
func (s *Store) withReadLock(fn func() error) error {
	lock, err := os.Open(s.lockPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fn()
		}
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), syscall.LOCK_SH); err != nil {
		_ = lock.Close()
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer s.releaseLock(lock)
	return fn()
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

func writeAtomic(path string, content []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, perm); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
