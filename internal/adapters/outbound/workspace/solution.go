package workspace

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type projectRef struct {
	Name string
	Path string
}

// Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Shop.Orders", "src\Shop.Orders\Shop.Orders.csproj", "{...}"
var slnProjectLine = regexp.MustCompile(`^\s*Project\("\{[^}]*\}"\)\s*=\s*"([^"]*)"\s*,\s*"([^"]*)"`)

// readSolution lists the C# projects referenced by a solution file. Solution
// folders and projects of other languages are skipped.
func readSolution(path string) ([]projectRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading solution: %w", err)
	}
	defer f.Close()

	var refs []projectRef
	if strings.EqualFold(filepath.Ext(path), ".slnx") {
		refs, err = parseSlnx(f)
	} else {
		refs, err = parseSln(f)
	}
	if err != nil {
		return nil, fmt.Errorf("reading solution %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range refs {
		refs[i].Path = resolveRef(dir, refs[i].Path)
	}
	return refs, nil
}

func parseSln(r io.Reader) ([]projectRef, error) {
	var refs []projectRef
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		m := slnProjectLine.FindStringSubmatch(sc.Text())
		if m == nil || !isCSharpProject(m[2]) {
			continue
		}
		refs = append(refs, projectRef{Name: m[1], Path: m[2]})
	}
	return refs, sc.Err()
}

// parseSlnx reads the XML solution format, where projects may sit inside
// nested Folder elements.
func parseSlnx(r io.Reader) ([]projectRef, error) {
	var refs []projectRef
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return refs, nil
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Project" {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local == "Path" && isCSharpProject(attr.Value) {
				refs = append(refs, projectRef{Path: attr.Value})
			}
		}
	}
}

func isCSharpProject(p string) bool {
	return strings.EqualFold(filepath.Ext(normalizeSeparators(p)), ".csproj")
}

// resolveRef makes a solution-relative project path absolute. Solutions
// written on Windows use backslashes.
func resolveRef(dir, p string) string {
	p = filepath.FromSlash(normalizeSeparators(p))
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

func normalizeSeparators(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
