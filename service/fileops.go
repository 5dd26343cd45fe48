// Package service orchestrates fingerprint computation over files: input
// collection, concurrent hashing, near-duplicate scanning, progress, and
// report formatting.
package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// binarySniffLen is how many leading bytes are inspected for NUL bytes when
// deciding whether a file is text.
const binarySniffLen = 512

// CollectFiles expands the given paths into a sorted, de-duplicated list of
// text files. Directories are walked recursively; include/exclude doublestar
// patterns are matched against paths relative to the walked root (explicit
// file arguments bypass pattern filtering). Files whose leading bytes
// contain a NUL are skipped as binary.
func CollectFiles(paths, includePatterns, excludePatterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", root, err)
		}

		if !info.IsDir() {
			if isTextFile(root) {
				add(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				return nil
			}
			if !matchesAny(includePatterns, rel) {
				return nil
			}
			if matchesAny(excludePatterns, rel) {
				return nil
			}
			if isTextFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// isTextFile sniffs the first bytes of a file for NULs. Unreadable files
// are treated as non-text and skipped.
func isTextFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, binarySniffLen)
	n, err := f.Read(buf)
	if n == 0 {
		// Empty files fingerprint to defined outputs; keep them.
		return err == nil || errors.Is(err, io.EOF)
	}
	return !bytes.ContainsRune(buf[:n], 0)
}
