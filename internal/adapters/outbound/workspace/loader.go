// Package workspace opens .NET solutions and projects from disk.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/scanner"
	"github.com/abdidvp/fixie2nunit/internal/domain"
)

// Loader implements domain.WorkspaceLoader.
type Loader struct {
	scanner *scanner.FileScanner
}

func New() *Loader {
	return &Loader{scanner: scanner.New()}
}

// Load opens descriptor, which is a .sln, .slnx or .csproj file, or a
// directory holding exactly one of them. Solutions win over projects when a
// directory holds both. Projects that cannot be read are reported as
// diagnostics instead of failing the load.
func (l *Loader) Load(ctx context.Context, descriptor string, excludePaths ...string) (*domain.Workspace, error) {
	path, err := Resolve(descriptor)
	if err != nil {
		return nil, err
	}

	ws := &domain.Workspace{
		Descriptor: path,
		RootPath:   filepath.Dir(path),
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".sln", ".slnx":
		ws.Kind = domain.DescriptorSolution
		refs, err := readSolution(path)
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			project, err := l.loadProject(ref.Path, excludePaths)
			if err != nil {
				ws.Diagnostics = append(ws.Diagnostics, domain.Diagnostic{Path: ref.Path, Message: err.Error()})
				continue
			}
			if ref.Name != "" {
				project.Name = ref.Name
			}
			ws.Projects = append(ws.Projects, *project)
		}
	default:
		ws.Kind = domain.DescriptorProject
		project, err := l.loadProject(path, excludePaths)
		if err != nil {
			return nil, err
		}
		ws.Projects = append(ws.Projects, *project)
	}

	return ws, nil
}

func (l *Loader) Resolve(descriptor string) (string, error) {
	return Resolve(descriptor)
}

// Resolve turns a descriptor argument into the absolute path of a solution
// or project file.
func Resolve(descriptor string) (string, error) {
	if strings.TrimSpace(descriptor) == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrNoDescriptor)
	}
	path, err := filepath.Abs(descriptor)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", descriptor, err)
	}

	if !info.IsDir() {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".sln", ".slnx", ".csproj":
			return path, nil
		}
		return "", fmt.Errorf("%w: %s (want .sln, .slnx or .csproj)", domain.ErrUnsupportedDescriptor, descriptor)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", err
	}
	var solutions, projects []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".sln", ".slnx":
			solutions = append(solutions, e.Name())
		case ".csproj":
			projects = append(projects, e.Name())
		}
	}

	for _, candidates := range [][]string{solutions, projects} {
		switch len(candidates) {
		case 0:
			continue
		case 1:
			return filepath.Join(path, candidates[0]), nil
		default:
			sort.Strings(candidates)
			return "", fmt.Errorf("%w in %s: %s", domain.ErrAmbiguousDescriptor, descriptor, strings.Join(candidates, ", "))
		}
	}
	return "", fmt.Errorf("%w in %s", domain.ErrNoDescriptor, descriptor)
}

func (l *Loader) loadProject(path string, excludePaths []string) (*domain.Project, error) {
	pf, err := readProject(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)

	var files []string
	if pf.defaultCompileItems() {
		files, err = l.scanner.Scan(dir, excludePaths...)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
	}
	files, err = applyCompileItems(dir, files, pf.compileItems())
	if err != nil {
		return nil, err
	}

	project := &domain.Project{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path: path,
	}
	for _, f := range files {
		project.Documents = append(project.Documents, domain.Document{Path: f})
	}
	return project, nil
}
