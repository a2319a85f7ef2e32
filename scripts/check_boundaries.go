package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "lunchlauncher"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists the in-module prefixes a layer may import, relative to its
// own service directory. Stdlib imports are always allowed; third-party
// imports are allowed only when thirdParty is set.
type layerRule struct {
	allowed    []string
	external   []string
	thirdParty bool
}

var layerRules = map[string]layerRule{
	"domain": {
		allowed: []string{"domain"},
	},
	"application": {
		allowed:  []string{"application", "domain", "ports"},
		external: []string{modulePath + "/contracts"},
	},
	"ports": {
		allowed:  []string{"domain"},
		external: []string{modulePath + "/contracts"},
	},
	"adapters": {
		allowed:    []string{"domain", "ports"},
		external:   []string{modulePath + "/contracts"},
		thirdParty: true,
	},
}

func main() {
	violations := collectViolations("contexts")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Import < b.Import
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 3 {
			return nil
		}
		servicePrefix := strings.Join([]string{modulePath, "contexts", parts[0], parts[1]}, "/")

		imports, parseErr := parseImports(path)
		if parseErr != nil {
			violations = append(violations, violation{File: filepath.ToSlash(path), Line: 1, Rule: "file must parse"})
			return nil
		}
		violations = append(violations, checkImports(filepath.ToSlash(path), parts[2], servicePrefix, imports)...)
		return nil
	})

	return violations
}

type importLine struct {
	Path string
	Line int
}

func parseImports(path string) ([]importLine, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}
	out := make([]importLine, 0, len(file.Imports))
	for _, imp := range file.Imports {
		out = append(out, importLine{
			Path: strings.Trim(imp.Path.Value, "\""),
			Line: fset.Position(imp.Pos()).Line,
		})
	}
	return out, nil
}

func checkImports(file string, layer string, servicePrefix string, imports []importLine) []violation {
	var violations []violation
	add := func(imp importLine, rule string) {
		violations = append(violations, violation{File: file, Line: imp.Line, Import: imp.Path, Rule: rule})
	}

	rule, layered := layerRules[layer]
	for _, imp := range imports {
		if hasPrefix(imp.Path, modulePath+"/contexts") && !hasPrefix(imp.Path, servicePrefix) {
			add(imp, "cross-module imports are forbidden")
		}
		if !layered {
			continue
		}
		if strings.Contains(imp.Path, "/adapters/") {
			add(imp, layer+" must not import adapters")
		}
		if hasPrefix(imp.Path, modulePath+"/internal") {
			add(imp, layer+" must not import runtime infrastructure")
		}
		if isStdlib(imp.Path) || rule.permits(servicePrefix, imp.Path) {
			continue
		}
		add(imp, layer+" import is outside explicit allowlist")
	}
	return violations
}

func (r layerRule) permits(servicePrefix string, importPath string) bool {
	for _, p := range r.allowed {
		if hasPrefix(importPath, servicePrefix+"/"+p) {
			return true
		}
	}
	for _, p := range r.external {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return r.thirdParty && !hasPrefix(importPath, modulePath)
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isStdlib(importPath string) bool {
	if hasPrefix(importPath, modulePath) {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
