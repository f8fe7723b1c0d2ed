package generator

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/mod/modfile"
)

// Module is the Go module enclosing a directory.
type Module struct {
	// Root is the directory holding go.mod.
	Root string
	Path string
}

// FindModule walks up from dir to the nearest go.mod.
func FindModule(dir string) (*Module, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	for {
		goModPath := filepath.Join(current, "go.mod")
		data, err := os.ReadFile(goModPath)
		if err == nil {
			modulePath := modfile.ModulePath(data)
			if modulePath == "" {
				return nil, fmt.Errorf("no module directive in %s", goModPath)
			}
			return &Module{Root: current, Path: modulePath}, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, fmt.Errorf("go.mod not found in any parent of %s", dir)
		}
		current = parent
	}
}

// ImportPath returns the import path of dir, a directory inside the module.
func (m *Module) ImportPath(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(m.Root, absDir)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside module %s", dir, m.Path)
	}

	return path.Join(m.Path, filepath.ToSlash(rel)), nil
}

// DetectImportPath returns the import path of the package in dir.
func DetectImportPath(dir string) (string, error) {
	module, err := FindModule(dir)
	if err != nil {
		return "", err
	}
	return module.ImportPath(dir)
}

// detectPackageName reads the package clause of the Go files in dir. When
// there are none it derives a name from the last element of importPath, or
// of dir when the import path is unknown.
func detectPackageName(dir, importPath string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("cannot read directory %s: %w", dir, err)
	}

	fset := token.NewFileSet()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == OutputFile || !strings.HasSuffix(name, ".go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.PackageClauseOnly)
		if err == nil && f.Name != nil {
			return f.Name.Name, nil
		}
	}

	base := path.Base(importPath)
	if importPath == "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return "", err
		}
		base = filepath.Base(absDir)
	}
	if name := sanitizePackageName(base); name != "" {
		return name, nil
	}

	return "", fmt.Errorf("cannot derive package name for %s", dir)
}

// sanitizePackageName lowercases raw and replaces separators with
// underscores. Other characters that are invalid in identifiers are dropped.
func sanitizePackageName(raw string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return unicode.ToLower(r)
		case r == '-' || r == '.':
			return '_'
		default:
			return -1
		}
	}, strings.TrimLeft(raw, "-./"))

	if name != "" && unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	return name
}
