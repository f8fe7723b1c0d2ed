package comment_parser

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cola-bdd/cola/internal/generator"
	"github.com/cola-bdd/cola/pkg/binding"
)

const (
	BindPrefix = "@bind"

	colaImportPath = "github.com/cola-bdd/cola/pkg/cola"
)

var (
	// stepDirective matches `@given|@when|@then|@step` followed by a back-quoted pattern.
	stepDirective = regexp.MustCompile("^@(given|when|then|step)\\s+`(.*)`\\s*$")
	// bindDirective matches `@bind <param> <marker>...`.
	bindDirective = regexp.MustCompile(`^` + BindPrefix + `\s+(\w+)\s+(.+)$`)

	stepKinds = map[string]string{
		"given": "Given",
		"when":  "When",
		"then":  "Then",
		"step":  "",
	}
)

type GoSourceFileParser struct {
	// StrictBindings rejects parameters with more than one binding marker
	// instead of choosing one by precedence.
	StrictBindings bool
	engine         *binding.Engine
}

// NewGoSourceFileParser creates a parser. Step patterns are compiled with an
// engine built from options so that invalid patterns fail at generation time.
func NewGoSourceFileParser(strictBindings bool, options ...binding.Option) *GoSourceFileParser {
	return &GoSourceFileParser{
		StrictBindings: strictBindings,
		engine:         binding.NewEngine(options...),
	}
}

type stepDeclaration struct {
	kind    string
	pattern string
}

func (g *GoSourceFileParser) ParseFunctionCommentsOfGoFilesInDirectoryRecursively(ctx context.Context, parentDirectory string) (
	*generator.Output, error) {
	directories, err := getAllDirectories(parentDirectory)
	if err != nil {
		return nil, err
	}

	output := &generator.Output{
		ConfigFunctions: make([]*generator.FunctionLocator, 0),
		HooksFunctions:  make([]*generator.FunctionLocator, 0),
		StepFunctions:   make([]*generator.StepFunctionLocator, 0),
	}
	registered := make(map[string]string)

	for _, dir := range directories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := g.parseDirectory(dir, output, registered); err != nil {
			return nil, err
		}
	}

	return output, nil
}

// parseDirectory adds the config, hooks and step functions declared in the
// non-test Go files of dir. registered maps kind and pattern to the function
// that declared them.
func (g *GoSourceFileParser) parseDirectory(dir string, output *generator.Output, registered map[string]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var importPath string
	locator := func(fnDecl *ast.FuncDecl) (*generator.FunctionLocator, error) {
		if importPath == "" {
			path, err := generator.DetectImportPath(dir)
			if err != nil {
				return nil, err
			}
			importPath = path
		}
		return &generator.FunctionLocator{
			FullPackageName: importPath,
			FunctionName:    fnDecl.Name.Name,
		}, nil
	}

	fileSet := token.NewFileSet()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}

		file, err := parser.ParseFile(fileSet, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			return err
		}

		for _, decl := range file.Decls {
			fnDecl, ok := decl.(*ast.FuncDecl)
			if !ok || fnDecl.Recv != nil {
				continue
			}

			switch {
			case IsConfigFunction(fnDecl, file.Imports):
				location, err := locator(fnDecl)
				if err != nil {
					return err
				}
				output.ConfigFunctions = append(output.ConfigFunctions, location)

			case IsHooksFunction(fnDecl, file.Imports):
				location, err := locator(fnDecl)
				if err != nil {
					return err
				}
				output.HooksFunctions = append(output.HooksFunctions, location)

			default:
				steps, bindings, err := g.parseStepFunction(fnDecl)
				if err != nil {
					return fmt.Errorf("error in function %s: %w", fnDecl.Name.Name, err)
				}
				if len(steps) == 0 {
					continue
				}

				location, err := locator(fnDecl)
				if err != nil {
					return err
				}
				for _, step := range steps {
					key := step.kind + "\x00" + step.pattern
					if previous, ok := registered[key]; ok {
						return fmt.Errorf("duplicate step pattern %q in %s and %s.%s",
							step.pattern, previous, location.FullPackageName, location.FunctionName)
					}
					registered[key] = location.FullPackageName + "." + location.FunctionName

					output.StepFunctions = append(output.StepFunctions, &generator.StepFunctionLocator{
						Kind:            step.kind,
						StepName:        step.pattern,
						Bindings:        bindings,
						FunctionLocator: location,
					})
				}
			}
		}
	}

	return nil
}

// parseStepFunction reads the step and binding directives of a function.
// Functions without a step directive return no steps.
func (g *GoSourceFileParser) parseStepFunction(fnDecl *ast.FuncDecl) ([]stepDeclaration, []binding.Binding, error) {
	if fnDecl.Doc == nil {
		return nil, nil, nil
	}

	var steps []stepDeclaration
	markers := make(map[string][]binding.Binding)
	var order []string

	for _, comment := range fnDecl.Doc.List {
		text := strings.TrimSpace(strings.TrimPrefix(comment.Text, "//"))

		if match := stepDirective.FindStringSubmatch(text); match != nil {
			steps = append(steps, stepDeclaration{kind: stepKinds[match[1]], pattern: match[2]})
			continue
		}

		if match := bindDirective.FindStringSubmatch(text); match != nil {
			param := match[1]
			for _, field := range strings.Fields(match[2]) {
				marker, err := binding.Parse(field)
				if err != nil {
					return nil, nil, fmt.Errorf("parameter %s: %w", param, err)
				}
				if _, ok := markers[param]; !ok {
					order = append(order, param)
				}
				markers[param] = append(markers[param], marker)
			}
		}
	}

	if len(steps) == 0 {
		return nil, nil, nil
	}

	for _, step := range steps {
		if err := g.engine.Compile(step.pattern); err != nil {
			return nil, nil, err
		}
	}

	params := parameterNames(fnDecl)
	bindings := make([]binding.Binding, len(params))
	for _, param := range order {
		index := slices.Index(params, param)
		if index < 0 {
			return nil, nil, fmt.Errorf("%s refers to unknown parameter %q", BindPrefix, param)
		}

		if g.StrictBindings {
			b, err := binding.Single(markers[param]...)
			if err != nil {
				return nil, nil, fmt.Errorf("parameter %s: %w", param, err)
			}
			bindings[index] = b
		} else {
			bindings[index] = binding.Select(markers[param]...)
		}
	}

	return steps, bindings, nil
}

// parameterNames lists one name per parameter; unnamed parameters get "".
func parameterNames(fnDecl *ast.FuncDecl) []string {
	var names []string
	for _, field := range fnDecl.Type.Params.List {
		if len(field.Names) == 0 {
			names = append(names, "")
			continue
		}
		for _, name := range field.Names {
			names = append(names, name.Name)
		}
	}
	return names
}

func IsConfigFunction(fnDecl *ast.FuncDecl, imports []*ast.ImportSpec) bool {
	return returnsColaPointer(fnDecl, imports, "Config")
}

func IsHooksFunction(fnDecl *ast.FuncDecl, imports []*ast.ImportSpec) bool {
	return returnsColaPointer(fnDecl, imports, "Hooks")
}

// returnsColaPointer reports whether the function's single result is a
// pointer to the named type of the cola package.
func returnsColaPointer(fnDecl *ast.FuncDecl, imports []*ast.ImportSpec, typeName string) bool {
	if fnDecl.Type.Results == nil || len(fnDecl.Type.Results.List) != 1 {
		return false
	}

	alias := importName(imports, colaImportPath)
	if alias == "" {
		return false
	}

	return analyzeExpr(fnDecl.Type.Results.List[0].Type) == "*"+alias+"."+typeName
}

// importName returns the name a file refers to an import path by, or "" if
// the file does not import it.
func importName(imports []*ast.ImportSpec, path string) string {
	for _, spec := range imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil || importPath != path {
			continue
		}
		if spec.Name != nil {
			return spec.Name.Name
		}
		return importPath[strings.LastIndex(importPath, "/")+1:]
	}
	return ""
}

func analyzeExpr(expr ast.Expr) string {
	switch expr := expr.(type) {
	case *ast.Ident:
		return expr.Name
	case *ast.SelectorExpr:
		return fmt.Sprintf("%s.%s", analyzeExpr(expr.X), expr.Sel.Name)
	case *ast.StarExpr:
		return "*" + analyzeExpr(expr.X)
	case *ast.ParenExpr:
		return "(" + analyzeExpr(expr.X) + ")"
	case *ast.ArrayType:
		return "[]" + analyzeExpr(expr.Elt)
	case *ast.MapType:
		return "map[" + analyzeExpr(expr.Key) + "]" + analyzeExpr(expr.Value)
	default:
		return "unknown"
	}
}

// getAllDirectories returns dirPath and its subdirectories in lexical order.
// Directories the go tool ignores (hidden, "_" prefixed, testdata, vendor)
// are skipped.
func getAllDirectories(dirPath string) ([]string, error) {
	var directories []string

	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dirPath {
			name := d.Name()
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata" || name == "vendor" {
				return filepath.SkipDir
			}
		}
		directories = append(directories, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not list directories in %s: %w", dirPath, err)
	}

	return directories, nil
}
