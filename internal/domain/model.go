package domain

import (
	"time"

	"github.com/abdidvp/fixie2nunit/internal/domain/migrate"
)

// DescriptorKind tells how the workspace was opened.
type DescriptorKind string

const (
	DescriptorSolution DescriptorKind = "solution"
	DescriptorProject  DescriptorKind = "project"
)

// Workspace is the loaded project graph.
type Workspace struct {
	Descriptor  string         `json:"descriptor"`
	Kind        DescriptorKind `json:"kind"`
	RootPath    string         `json:"root_path"`
	Projects    []Project      `json:"projects"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
}

// Project is one compilation unit group.
type Project struct {
	Name      string     `json:"name"`
	Path      string     `json:"path"`
	Documents []Document `json:"documents"`
}

// Document is one source file of a project.
type Document struct {
	Path string `json:"path"`
}

// Diagnostic is a non-fatal problem found while loading the workspace.
type Diagnostic struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// FileStatus is the outcome for a single document.
type FileStatus string

const (
	StatusUnchanged FileStatus = "unchanged"
	StatusChanged   FileStatus = "changed"
	StatusCached    FileStatus = "cached"
	StatusFailed    FileStatus = "failed"
)

// FileResult records what happened to a document across both passes.
type FileResult struct {
	Path       string           `json:"path"`
	Project    string           `json:"project"`
	Status     FileStatus       `json:"status"`
	UsingAdded bool             `json:"using_added,omitempty"`
	Formatted  bool             `json:"formatted,omitempty"`
	Changes    []migrate.Change `json:"changes,omitempty"`
	Error      string           `json:"error,omitempty"`
	Diff       string           `json:"diff,omitempty"`
}

// Summary counts file outcomes.
type Summary struct {
	Files     int `json:"files"`
	Changed   int `json:"changed"`
	Formatted int `json:"formatted"`
	Cached    int `json:"cached"`
	Failed    int `json:"failed"`
	Fixtures  int `json:"fixtures"`
	Tests     int `json:"tests"`
}

// MigrationReport is the result of one run.
type MigrationReport struct {
	RunID       string         `json:"run_id,omitempty"`
	Descriptor  string         `json:"descriptor"`
	Kind        DescriptorKind `json:"kind"`
	Target      Target         `json:"target"`
	DryRun      bool           `json:"dry_run"`
	Projects    []string       `json:"projects"`
	Files       []FileResult   `json:"files"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
	Summary     Summary        `json:"summary"`
	CommitHash  string         `json:"commit_hash,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Tally recomputes the summary from the file results.
func (r *MigrationReport) Tally() {
	s := Summary{Files: len(r.Files)}
	for _, f := range r.Files {
		switch f.Status {
		case StatusChanged:
			s.Changed++
		case StatusCached:
			s.Cached++
		case StatusFailed:
			s.Failed++
		}
		if f.Formatted {
			s.Formatted++
		}
		for _, c := range f.Changes {
			switch c.Kind {
			case migrate.ChangeFixture:
				s.Fixtures++
			case migrate.ChangeTest:
				s.Tests++
			}
		}
	}
	r.Summary = s
}

// MigrateOptions tunes a run.
type MigrateOptions struct {
	DryRun   bool `json:"dry_run"`
	NoFormat bool `json:"no_format"`
	NoCache  bool `json:"no_cache"`
	Diff     bool `json:"diff"`
	// RequireClean refuses to run when the git worktree has uncommitted changes.
	RequireClean bool `json:"require_clean"`
}

// SourceResult is the pass-1 outcome for a single in-memory file.
type SourceResult struct {
	Path       string           `json:"path"`
	Changed    bool             `json:"changed"`
	UsingAdded bool             `json:"using_added,omitempty"`
	Changes    []migrate.Change `json:"changes,omitempty"`
	Output     string           `json:"output"`
	Diff       string           `json:"diff,omitempty"`
}
