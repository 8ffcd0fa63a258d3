package domain

import "errors"

var (
	// ErrNoDescriptor means a directory holds no solution or project file.
	ErrNoDescriptor = errors.New("no .sln or .csproj found")
	// ErrAmbiguousDescriptor means a directory holds several candidates.
	ErrAmbiguousDescriptor = errors.New("more than one descriptor found")
	// ErrUnsupportedDescriptor means the path is neither .sln nor .csproj.
	ErrUnsupportedDescriptor = errors.New("unsupported descriptor")
	// ErrSyntax means the front end reported syntax errors in a file.
	ErrSyntax = errors.New("syntax error")
	// ErrDirtyWorktree means the git worktree has uncommitted changes.
	ErrDirtyWorktree = errors.New("git worktree has uncommitted changes")
)
