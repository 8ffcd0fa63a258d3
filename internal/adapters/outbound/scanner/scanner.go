package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var skipDirs = map[string]bool{
	"bin":          true,
	"obj":          true,
	".git":         true,
	".vs":          true,
	".idea":        true,
	"node_modules": true,
	"packages":     true,
	".fixie2nunit": true,
}

// FileScanner finds C# sources below a project directory the way an SDK-style
// project includes them by default.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

// Scan returns the absolute paths of all .cs files under dir, sorted.
// excludePaths are directory names or slash-separated paths relative to dir.
func (s *FileScanner) Scan(dir string, excludePaths ...string) ([]string, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	// Merge extra excludes with built-in skip dirs.
	extraSkip := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		extraSkip[strings.Trim(filepath.ToSlash(p), "/")] = true
	}

	var files []string
	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, _ := filepath.Rel(absPath, path)
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if path == absPath {
				return nil
			}
			if skipDirs[d.Name()] || extraSkip[d.Name()] || extraSkip[relPath] {
				return filepath.SkipDir
			}
			return nil
		}

		if extraSkip[relPath] {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".cs") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
