// Copyright (c) 2025 Justin Cranford
//
//

// Package files provides small filesystem helpers: writing string/byte
// content with explicit permissions, and walking a directory tree grouping
// files by extension.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteFile writes content (a string or []byte) to path with the given
// permissions.
func WriteFile(path string, content any, permissions os.FileMode) error {
	if permissions == 0 {
		return fmt.Errorf("missing file permissions")
	}

	var data []byte

	switch v := content.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("content must be string or []byte, got %T", content)
	}

	if err := os.WriteFile(path, data, permissions); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}

// ListAllFiles walks root and groups every file it finds by extension
// (without the leading dot; dotfiles like ".gitignore" are grouped under
// "gitignore").
func ListAllFiles(root string) (map[string][]string, error) {
	return ListAllFilesWithOptions(root, nil, nil)
}

// ListAllFilesWithOptions walks root, grouping files by extension. If
// inclusions is non-empty, only those extensions are kept. Any directory
// whose slash-normalized path matches an entry in exclusions (as a prefix)
// is skipped entirely.
func ListAllFilesWithOptions(root string, inclusions []string, exclusions []string) (map[string][]string, error) {
	result := make(map[string][]string)

	includeSet := make(map[string]bool, len(inclusions))
	for _, ext := range inclusions {
		includeSet[ext] = true
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		normalized := filepath.ToSlash(path)

		if info.IsDir() {
			for _, excluded := range exclusions {
				if normalized == excluded || strings.HasPrefix(normalized, excluded+"/") {
					return filepath.SkipDir
				}
			}

			return nil
		}

		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if ext == "" {
			ext = strings.TrimPrefix(filepath.Base(path), ".")
		}

		if len(includeSet) > 0 && !includeSet[ext] {
			return nil
		}

		result[ext] = append(result[ext], path)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", root, err)
	}

	return result, nil
}
