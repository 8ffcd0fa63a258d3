package syntax

import "strings"

// QualifiedName is a dotted name held as its identifier segments.
type QualifiedName []string

// ParseQualifiedName splits a dotted name such as "NUnit.Framework".
// Whitespace and a leading "global::" qualifier are ignored.
func ParseQualifiedName(s string) QualifiedName {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(s, "global::")
	if s == "" {
		return nil
	}
	var q QualifiedName
	for _, seg := range strings.Split(s, ".") {
		if seg != "" {
			q = append(q, seg)
		}
	}
	return q
}

// Equal compares segment by segment.
func (q QualifiedName) Equal(other QualifiedName) bool {
	if len(q) != len(other) {
		return false
	}
	for i := range q {
		if q[i] != other[i] {
			return false
		}
	}
	return true
}

// Last returns the rightmost segment, or "" for an empty name.
func (q QualifiedName) Last() string {
	if len(q) == 0 {
		return ""
	}
	return q[len(q)-1]
}

func (q QualifiedName) String() string {
	return strings.Join(q, ".")
}
