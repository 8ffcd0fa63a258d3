package syntax

import "fmt"

// PostFunc is applied to a node after all of its children have been
// transformed. It returns either the node itself or a replacement of the same
// concrete type.
type PostFunc func(Node) Node

// Transform rewrites the tree rooted at n bottom-up.
//
// A node is copied only when one of its children came back as a different
// pointer; otherwise the original node is handed to post. Untouched subtrees
// are therefore shared with the input, and comparing the returned root with n
// tells whether anything changed.
func Transform(n Node, post PostFunc) Node {
	switch n := n.(type) {
	case *CompilationUnit:
		usings, uc := transformList(n.Usings, post)
		members, mc := transformList(n.Members, post)
		if uc || mc {
			cp := *n
			cp.Usings, cp.Members = usings, members
			n = &cp
		}
		return post(n)
	case *NamespaceDecl:
		usings, uc := transformList(n.Usings, post)
		members, mc := transformList(n.Members, post)
		if uc || mc {
			cp := *n
			cp.Usings, cp.Members = usings, members
			n = &cp
		}
		return post(n)
	case *ClassDecl:
		attrs, ac := transformList(n.Attributes, post)
		members, mc := transformList(n.Members, post)
		if ac || mc {
			cp := *n
			cp.Attributes, cp.Members = attrs, members
			n = &cp
		}
		return post(n)
	case *TypeDecl:
		members, mc := transformList(n.Members, post)
		if mc {
			cp := *n
			cp.Members = members
			n = &cp
		}
		return post(n)
	case *MethodDecl:
		attrs, ac := transformList(n.Attributes, post)
		if ac {
			cp := *n
			cp.Attributes = attrs
			n = &cp
		}
		return post(n)
	case *UsingDirective, *AttributeList, *Opaque:
		return post(n)
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("syntax: unexpected node %T", n))
	}
}

// TransformUnit is Transform for a compilation unit root.
func TransformUnit(u *CompilationUnit, post PostFunc) *CompilationUnit {
	return mustBe[*CompilationUnit](Transform(u, post))
}

// transformList transforms every element and reports whether any changed.
// The input slice is never modified.
func transformList[T Node](list []T, post PostFunc) ([]T, bool) {
	var out []T
	for i, elem := range list {
		got := mustBe[T](Transform(elem, post))
		if out == nil {
			if Node(got) == Node(elem) {
				continue
			}
			out = make([]T, len(list))
			copy(out, list[:i])
		}
		out[i] = got
	}
	if out == nil {
		return list, false
	}
	return out, true
}

func mustBe[T Node](n Node) T {
	t, ok := n.(T)
	if !ok {
		var want T
		panic(fmt.Sprintf("syntax: rewrite replaced %T with %T", want, n))
	}
	return t
}

// Inspect walks the tree in pre-order. Children are skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch n := n.(type) {
	case *CompilationUnit:
		inspectList(n.Usings, f)
		inspectList(n.Members, f)
	case *NamespaceDecl:
		inspectList(n.Usings, f)
		inspectList(n.Members, f)
	case *ClassDecl:
		inspectList(n.Attributes, f)
		inspectList(n.Members, f)
	case *TypeDecl:
		inspectList(n.Members, f)
	case *MethodDecl:
		inspectList(n.Attributes, f)
	}
}

func inspectList[T Node](list []T, f func(Node) bool) {
	for _, elem := range list {
		Inspect(elem, f)
	}
}
