// Package differ renders unified diffs of rewritten sources.
package differ

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiffer implements domain.Differ with go-difflib.
type UnifiedDiffer struct {
	context int
}

func New() *UnifiedDiffer {
	return &UnifiedDiffer{context: 3}
}

// Diff returns a git-style unified diff of path, or "" when before and after
// are equal. Line endings are compared as written.
func (d *UnifiedDiffer) Diff(path string, before, after []byte) (string, error) {
	if string(before) == string(after) {
		return "", nil
	}
	name := strings.TrimPrefix(path, "/")
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  d.context,
	})
}
