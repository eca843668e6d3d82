// Package scan discovers beatmap files beneath user-supplied roots.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrNoRoots is returned when Discover is called without any roots.
var ErrNoRoots = errors.New("no paths to scan")

// Options controls which files Discover returns.
type Options struct {
	// Extensions are matched case-insensitively, with the leading dot. Defaults to .osu.
	Extensions    []string
	IncludeHidden bool
}

// Discover walks each root and returns the sorted, de-duplicated absolute
// paths of matching files. A root may be a file, which is returned as-is when
// its extension matches.
func Discover(ctx context.Context, roots []string, opts Options) ([]string, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}
	exts := normalizeExtensions(opts.Extensions)

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, root := range roots {
		abs, err := filepath.Abs(filepath.Clean(strings.TrimSpace(root)))
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", root, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
		if !info.IsDir() {
			if hasExtension(abs, exts) {
				add(abs)
			}
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if path != abs && !opts.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if hasExtension(path, exts) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}

	slices.Sort(files)
	return files, nil
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	if len(out) == 0 {
		return []string{".osu"}
	}
	return out
}

func hasExtension(path string, exts []string) bool {
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}
