// Package digest computes content digests of the files matched by task patterns.
package digest

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/borca-dev/borca/internal/domain"
)

// Ensure Hasher implements domain.Digester interface.
var _ domain.Digester = (*Hasher)(nil)

// Hasher resolves glob patterns against a base directory and hashes the
// content of every matched regular file.
type Hasher struct {
	baseDir     string
	excludeDirs map[string]bool // directory names never descended into
}

// NewHasher creates a Hasher rooted at baseDir.
// Directories whose base name is in excludeDirs are never matched or walked.
func NewHasher(baseDir string, excludeDirs ...string) *Hasher {
	ex := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		ex[d] = true
	}
	return &Hasher{
		baseDir:     baseDir,
		excludeDirs: ex,
	}
}

// DigestOf returns the SHA-256 digest of all regular files matched by patterns.
//
// Matched paths are de-duplicated and sorted before hashing, so the digest does
// not depend on filesystem enumeration order. Each file contributes its
// length-prefixed relative path followed by its length-prefixed content.
// Zero patterns yield the empty digest. Patterns matching nothing are not an error.
func (h *Hasher) DigestOf(taskName string, patterns []string) (domain.Digest, error) {
	if len(patterns) == 0 {
		return domain.Digest{}, nil
	}

	matched := make(map[string]struct{})
	for _, pattern := range patterns {
		files, err := h.expand(pattern)
		if err != nil {
			return nil, &domain.DigestError{Task: taskName, Path: pattern, Err: err}
		}
		for _, f := range files {
			matched[f] = struct{}{}
		}
	}

	paths := make([]string, 0, len(matched))
	for p := range matched {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	sum := sha256.New()
	for _, p := range paths {
		content, err := os.ReadFile(filepath.FromSlash(p))
		if err != nil {
			return nil, &domain.DigestError{Task: taskName, Path: p, Err: err}
		}
		writeField(sum, []byte(h.relative(p)))
		writeField(sum, content)
	}

	return sum.Sum(nil), nil
}

// writeField writes an 8-byte big-endian length prefix followed by data.
func writeField(w hash.Hash, data []byte) {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(data)))
	_, _ = w.Write(length[:])
	_, _ = w.Write(data)
}

// relative returns p relative to the base directory when possible.
func (h *Hasher) relative(p string) string {
	rel, err := filepath.Rel(h.baseDir, filepath.FromSlash(p))
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return filepath.ToSlash(rel)
}

// expand resolves one pattern to the slash-separated paths of matching regular files.
//
// Relative patterns are matched against paths relative to the base directory,
// so wildcard characters in the base directory itself are never interpreted.
// An absolute pattern naming an existing file is taken literally.
func (h *Hasher) expand(pattern string) ([]string, error) {
	pat := path.Clean(filepath.ToSlash(pattern))
	base := ""
	if !filepath.IsAbs(pattern) {
		base = filepath.ToSlash(h.baseDir)
	} else if files, err := h.literal(pat); err != nil || len(files) > 0 {
		return files, err
	}

	if !containsGlobChar(pat) {
		return h.literal(path.Join(base, pat))
	}

	matchers, err := compile(pat)
	if err != nil {
		return nil, err
	}

	root, maxDepth := splitPattern(pat)
	walkRoot := filepath.FromSlash(path.Join(base, root))
	var out []string
	walkErr := filepath.WalkDir(walkRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable or vanished directories cannot contribute files.
			if d != nil && d.IsDir() && p != walkRoot {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if p != walkRoot && h.excludeDirs[d.Name()] {
				return fs.SkipDir
			}
			if maxDepth >= 0 && depth(walkRoot, p) >= maxDepth {
				return fs.SkipDir
			}
			return nil
		}

		slashPath := filepath.ToSlash(p)
		name := slashPath
		if base != "" {
			rel, err := filepath.Rel(h.baseDir, p)
			if err != nil {
				return nil
			}
			name = filepath.ToSlash(rel)
		}
		if !matchAny(matchers, name) {
			return nil
		}
		if regular, err := isRegular(p, d); err != nil || !regular {
			return nil
		}
		out = append(out, slashPath)
		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, fs.ErrNotExist) {
		return nil, walkErr
	}

	return out, nil
}

// compile builds one matcher per spelling of the pattern. Each "**/" segment
// also matches zero directories, so "src/**/*.py" covers "src/a.py".
func compile(pattern string) ([]glob.Glob, error) {
	variants := []string{pattern}
	for i := 0; i < len(variants); i++ {
		v := variants[i]
		for j := strings.Index(v, "**/"); j >= 0; {
			if j == 0 || v[j-1] == '/' {
				variants = appendUnique(variants, v[:j]+v[j+3:])
			}
			next := strings.Index(v[j+3:], "**/")
			if next < 0 {
				break
			}
			j += 3 + next
		}
	}

	matchers := make([]glob.Glob, 0, len(variants))
	for _, v := range variants {
		g, err := glob.Compile(v, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern: %w", err)
		}
		matchers = append(matchers, g)
	}
	return matchers, nil
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func matchAny(matchers []glob.Glob, name string) bool {
	for _, g := range matchers {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// literal resolves a pattern without wildcards.
func (h *Hasher) literal(full string) ([]string, error) {
	info, err := os.Stat(filepath.FromSlash(full))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}
	return []string{full}, nil
}

// isRegular reports whether a walked entry is a regular file, following symlinks.
func isRegular(p string, d fs.DirEntry) (bool, error) {
	if d.Type().IsRegular() {
		return true, nil
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false, nil
	}
	info, err := os.Stat(p)
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// splitPattern returns the longest directory prefix of a slash pattern that
// contains no wildcard, and the maximum walk depth below it (-1 if unbounded).
// The prefix of a relative pattern starting with a wildcard is ".".
func splitPattern(pattern string) (string, int) {
	parts := strings.Split(pattern, "/")
	i := 0
	for i < len(parts) && !containsGlobChar(parts[i]) {
		i++
	}

	root := strings.Join(parts[:i], "/")
	switch {
	case i == 0:
		root = "."
	case root == "":
		root = "/"
	}

	rest := parts[i:]
	for _, part := range rest {
		if strings.Contains(part, "**") {
			return root, -1
		}
	}
	return root, len(rest)
}

// depth returns how many path components p is below root.
func depth(root, p string) int {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

// containsGlobChar returns true if the pattern contains glob special characters.
func containsGlobChar(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
