package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/debarkoder/internal/utils"
)

// nameFilter selects files by glob patterns on their base name. Exclude
// patterns win over include patterns; no include patterns admits all.
type nameFilter struct {
	include, exclude []string
}

func (f nameFilter) allows(path string) bool {
	base := filepath.Base(path)
	if matchAny(base, f.exclude) {
		return false
	}
	return len(f.include) == 0 || matchAny(base, f.include)
}

func matchAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// discoverImageFiles expands args into image files in argument order.
// Files named explicitly are kept whatever their extension; directories
// contribute supported images in lexical order. A path reached twice is
// listed once.
func discoverImageFiles(args []string, recursive bool, include, exclude []string) ([]string, error) {
	filter := nameFilter{include: include, exclude: exclude}
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		key := filepath.Clean(path)
		if !seen[key] {
			seen[key] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			if filter.allows(arg) {
				add(arg)
			}
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			switch {
			case err != nil:
				return err
			case d.IsDir():
				if !recursive && path != arg {
					return filepath.SkipDir
				}
			case utils.IsSupportedImage(path) && filter.allows(path):
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", arg, err)
		}
	}
	return files, nil
}
