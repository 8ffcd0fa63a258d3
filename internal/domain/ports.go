package domain

import (
	"context"

	"github.com/abdidvp/fixie2nunit/internal/domain/syntax"
)

// WorkspaceLoader opens a solution, a project file, or a directory holding one.
type WorkspaceLoader interface {
	Resolve(descriptor string) (string, error)
	Load(ctx context.Context, descriptor string, excludePaths ...string) (*Workspace, error)
}

// SourceParser builds the syntax tree of one C# file.
type SourceParser interface {
	Parse(ctx context.Context, path string, src []byte) (*syntax.CompilationUnit, error)
}

// FileStore reads and writes back source files.
type FileStore interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
}

// Formatter returns the canonical text of a compilation unit.
type Formatter interface {
	Format(ctx context.Context, unit *syntax.CompilationUnit, cfg FormatterConfig) ([]byte, error)
}

// ConfigLoader loads the tool configuration for a workspace root.
type ConfigLoader interface {
	Load(rootPath string) (ProjectConfig, error)
}

// CacheStore persists fingerprints of settled files between runs.
type CacheStore interface {
	Load(rootPath string) (*ProjectCache, error)
	Save(cache *ProjectCache) error
	Invalidate(rootPath string) error
}

// RunHistory records past runs.
type RunHistory interface {
	Save(rootPath string, entry RunEntry) error
	Load(rootPath string) ([]RunEntry, error)
}

// GitInfo inspects the repository around a workspace.
type GitInfo interface {
	IsGitRepo(path string) bool
	CommitHash(path string) (string, error)
	IsClean(path string) (bool, error)
}

// Differ renders a unified diff between two versions of a file.
type Differ interface {
	Diff(path string, before, after []byte) (string, error)
}
