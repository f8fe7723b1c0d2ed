package generator

import (
	"io"

	"github.com/cola-bdd/cola/pkg/binding"
	"github.com/dave/jennifer/jen"
)

const (
	colaPackage    = "github.com/cola-bdd/cola/pkg/cola"
	runnerPackage  = "github.com/cola-bdd/cola/pkg/runner"
	bindingPackage = "github.com/cola-bdd/cola/pkg/binding"
)

type (
	FunctionLocator struct {
		FullPackageName string
		FunctionName    string
	}

	StepFunctionLocator struct {
		// Kind is Given, When, Then or empty for steps of any kind.
		Kind     string
		StepName string
		// Bindings holds one entry per function parameter.
		Bindings []binding.Binding
		*FunctionLocator
	}

	Output struct {
		ConfigFunctions    []*FunctionLocator // Functions returning *cola.Config
		HooksFunctions     []*FunctionLocator // Functions returning *cola.Hooks
		StepFunctions      []*StepFunctionLocator
		CurrentPackagePath string // Full import path of the package where the test file is generated
		PackageName        string // Short package name (e.g., "myapp"); if empty, defaults to "main"
		// Dialect the step patterns were checked with. Anything other than
		// re2 is passed on to the runner config.
		Dialect string
	}
)

// Merge appends the functions found in other.
func (o *Output) Merge(other *Output) {
	if other == nil {
		return
	}
	o.ConfigFunctions = append(o.ConfigFunctions, other.ConfigFunctions...)
	o.HooksFunctions = append(o.HooksFunctions, other.HooksFunctions...)
	o.StepFunctions = append(o.StepFunctions, other.StepFunctions...)
}

// isSamePackage returns true when the function is in the same package as the
// generated test file and therefore should be called without an import qualifier.
func (o *Output) isSamePackage(fullPkg string) bool {
	return o.CurrentPackagePath != "" && fullPkg == o.CurrentPackagePath
}

// qualOrLocal returns a jen.Statement that either qualifies the function call with
// its package path (for external packages) or calls it directly (for same-package).
func (o *Output) qualOrLocal(fullPkg, funcName string) *jen.Statement {
	if o.isSamePackage(fullPkg) {
		return jen.Id(funcName)
	}
	return jen.Qual(fullPkg, funcName)
}

// bindingCode renders a binding as a call into the binding package.
func bindingCode(b binding.Binding) jen.Code {
	switch b.Kind() {
	case binding.KindProjection:
		return jen.Qual(bindingPackage, "Projection").Call(jen.Lit(b.Name()))
	case binding.KindGroup:
		return jen.Qual(bindingPackage, "Group").Call(jen.Lit(b.Index()))
	case binding.KindAssigned:
		return jen.Qual(bindingPackage, "Assigned").Call(jen.Lit(b.Name()))
	default:
		return jen.Qual(bindingPackage, "Unbound")
	}
}

// stepArguments are the RegisterStep arguments of a step function. Trailing
// unbound parameters are left out.
func (o *Output) stepArguments(function *StepFunctionLocator) []jen.Code {
	args := []jen.Code{
		jen.Lit(function.Kind),
		jen.Lit(function.StepName),
		o.qualOrLocal(function.FullPackageName, function.FunctionName),
	}

	last := len(function.Bindings)
	for last > 0 && function.Bindings[last-1].Kind() == binding.KindNone {
		last--
	}
	for _, b := range function.Bindings[:last] {
		args = append(args, bindingCode(b))
	}

	return args
}

func (o *Output) Generate(writer io.Writer) error {
	pkgName := o.PackageName
	if pkgName == "" {
		pkgName = "main"
	}
	mainFile := jen.NewFile(pkgName)
	mainFile.HeaderComment("Code generated by cola. DO NOT EDIT.")

	var statements []jen.Code

	// Collect configs: config := cola.MergeConfigs(...)
	configCalls := make([]jen.Code, 0, len(o.ConfigFunctions)+1)
	for _, cf := range o.ConfigFunctions {
		configCalls = append(configCalls, o.qualOrLocal(cf.FullPackageName, cf.FunctionName).Call())
	}
	if o.Dialect != "" && o.Dialect != binding.RE2.String() {
		configCalls = append(configCalls, jen.Op("&").Qual(colaPackage, "Config").Values(jen.Dict{
			jen.Id("Dialect"): jen.Lit(o.Dialect),
		}))
	}
	if len(configCalls) > 0 {
		statements = append(statements,
			jen.Id("config").Op(":=").Qual(colaPackage, "MergeConfigs").Call(configCalls...),
		)
	}

	// Collect hooks: hooks := []*cola.Hooks{...}
	if len(o.HooksFunctions) > 0 {
		hooksCalls := make([]jen.Code, 0, len(o.HooksFunctions))
		for _, hf := range o.HooksFunctions {
			hooksCalls = append(hooksCalls, o.qualOrLocal(hf.FullPackageName, hf.FunctionName).Call())
		}
		statements = append(statements,
			jen.Id("hooks").Op(":=").Index().Op("*").Qual(colaPackage, "Hooks").Values(hooksCalls...),
		)
	}

	runnerChain := jen.Id("err").Op(":=").Qual(runnerPackage, "NewCucumberRunner").Call(jen.Id("t")).Id(".").Line()

	if len(configCalls) > 0 {
		runnerChain.Id("WithConfig").Call(jen.Id("config")).Id(".").Line()
	}

	if len(o.HooksFunctions) > 0 {
		runnerChain.Id("WithHooks").Call(jen.Id("hooks").Op("...")).Id(".").Line()
	}

	for _, function := range o.StepFunctions {
		runnerChain.Id("RegisterStep").Call(o.stepArguments(function)...).Id(".").Line()
	}

	runnerChain.Id("Run").Call()

	statements = append(statements, runnerChain)

	statements = append(statements,
		jen.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Id("t").Dot("Fatal").Call(jen.Id("err")),
		),
	)

	mainFile.Func().Id("TestCola").Params(
		jen.Id("t").Op("*").Qual("testing", "T"),
	).Block(statements...)

	return mainFile.Render(writer)
}
