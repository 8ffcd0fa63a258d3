package workspace

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type projectFile struct {
	Sdk            string          `xml:"Sdk,attr"`
	SdkElements    []sdkElement    `xml:"Sdk"`
	PropertyGroups []propertyGroup `xml:"PropertyGroup"`
	ItemGroups     []itemGroup     `xml:"ItemGroup"`
}

type sdkElement struct {
	Name string `xml:"Name,attr"`
}

type propertyGroup struct {
	EnableDefaultCompileItems string `xml:"EnableDefaultCompileItems"`
	EnableDefaultItems        string `xml:"EnableDefaultItems"`
}

type itemGroup struct {
	Compile []compileItem `xml:"Compile"`
}

type compileItem struct {
	Include string `xml:"Include,attr"`
	Remove  string `xml:"Remove,attr"`
}

func readProject(path string) (*projectFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project: %w", err)
	}
	var pf projectFile
	if err := xml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing project %s: %w", path, err)
	}
	return &pf, nil
}

// defaultCompileItems reports whether the project compiles every .cs file
// below its directory. Only SDK-style projects do, unless switched off.
func (p *projectFile) defaultCompileItems() bool {
	if p.Sdk == "" && len(p.SdkElements) == 0 {
		return false
	}
	for _, g := range p.PropertyGroups {
		if strings.EqualFold(strings.TrimSpace(g.EnableDefaultCompileItems), "false") ||
			strings.EqualFold(strings.TrimSpace(g.EnableDefaultItems), "false") {
			return false
		}
	}
	return true
}

func (p *projectFile) compileItems() []compileItem {
	var items []compileItem
	for _, g := range p.ItemGroups {
		items = append(items, g.Compile...)
	}
	return items
}

// applyCompileItems adds and removes explicit Compile items on top of the
// default file set. Included files are not checked for existence; a missing
// file fails on its own when it is read.
func applyCompileItems(dir string, files []string, items []compileItem) ([]string, error) {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		set[f] = true
	}

	for _, item := range items {
		for _, pattern := range splitItems(item.Include) {
			abs := resolveRef(dir, pattern)
			if !hasMeta(pattern) {
				set[abs] = true
				continue
			}
			matches, err := doublestar.FilepathGlob(abs, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", pattern, err)
			}
			for _, m := range matches {
				set[m] = true
			}
		}
		for _, pattern := range splitItems(item.Remove) {
			abs := resolveRef(dir, pattern)
			for f := range set {
				if ok, _ := doublestar.PathMatch(abs, f); ok {
					delete(set, f)
				}
			}
		}
	}

	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out, nil
}

// splitItems splits an MSBuild item list. Entries using properties cannot be
// evaluated and are dropped.
func splitItems(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" || strings.Contains(part, "$(") {
			continue
		}
		out = append(out, normalizeSeparators(part))
	}
	return out
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
