package cli

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cola-bdd/cola/pkg/binding"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// paramTypes are the parameter types accepted by --param.
var paramTypes = map[string]reflect.Type{
	"string":  reflect.TypeFor[string](),
	"bool":    reflect.TypeFor[bool](),
	"int":     reflect.TypeFor[int](),
	"int8":    reflect.TypeFor[int8](),
	"int16":   reflect.TypeFor[int16](),
	"int32":   reflect.TypeFor[int32](),
	"int64":   reflect.TypeFor[int64](),
	"uint":    reflect.TypeFor[uint](),
	"uint8":   reflect.TypeFor[uint8](),
	"uint16":  reflect.TypeFor[uint16](),
	"uint32":  reflect.TypeFor[uint32](),
	"uint64":  reflect.TypeFor[uint64](),
	"float32": reflect.TypeFor[float32](),
	"float64": reflect.TypeFor[float64](),
	"any":     reflect.TypeFor[any](),
}

// signature is a Method described on the command line.
type signature struct {
	params []binding.Param
}

func (s signature) Name() string {
	return "cola bind"
}

func (s signature) Params() []binding.Param {
	return s.params
}

// bindResult is what cola bind prints.
type bindResult struct {
	Step        string
	Projections []string
	Bindings    []string
	Arguments   []any
}

func newBindCmd(a *app) *cobra.Command {
	var (
		kind        string
		step        string
		pattern     string
		projections []string
		params      []string
		dialect     string
		exact       bool
	)

	cmd := &cobra.Command{
		Use:   "bind",
		Short: "Show how a step binds to a step function's parameters",
		Example: `  cola bind --step "I add 3 apples" --pattern "I add <count> <item>" \
    --param int:assigned:count --param string:assigned:item
  cola bind --step "I add <count> apples" --pattern "I add <count> apples" \
    --projection count=5 --param int:projection:count`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := binding.ParseDialect(dialect)
			if err != nil {
				return err
			}
			options := []binding.Option{binding.WithDialect(d)}
			if exact {
				options = append(options, binding.WithExactTypes())
			}

			values, err := parseProjections(projections)
			if err != nil {
				return err
			}
			method, err := parseSignature(params)
			if err != nil {
				return err
			}

			details, err := binding.NewEngine(options...).Build(kind, step, method, values, pattern)
			if err != nil {
				return err
			}

			result := bindResult{
				Step:        details.Step(),
				Projections: details.Projections(),
				Arguments:   details.Arguments(),
			}
			for _, param := range method.Params() {
				result.Bindings = append(result.Bindings, fmt.Sprintf("%s %s", param.Type, param.Binding))
			}

			a.logger.Debug("step bound", zap.String("step", result.Step), zap.Int("arguments", len(result.Arguments)))
			_, err = pretty.Fprintf(cmd.OutOrStdout(), "%# v\n", result)
			return err
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "Given", "step kind used in the label")
	cmd.Flags().StringVar(&step, "step", "", "step text")
	cmd.Flags().StringVar(&pattern, "pattern", "", "pattern declared on the step function")
	cmd.Flags().StringArrayVar(&projections, "projection", nil, "projection value as name=value, repeatable")
	cmd.Flags().StringArrayVar(&params, "param", nil, "parameter as type[:kind:value], e.g. int:group:1, repeatable")
	cmd.Flags().StringVar(&dialect, "dialect", binding.RE2.String(), "regular expression dialect: re2 or java")
	cmd.Flags().BoolVar(&exact, "exact-types", false, "coerce by declared parameter kind")
	_ = cmd.MarkFlagRequired("step")

	return cmd
}

func parseProjections(projections []string) (map[string]string, error) {
	values := make(map[string]string, len(projections))
	for _, projection := range projections {
		name, value, ok := strings.Cut(projection, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid projection %q, expected name=value", projection)
		}
		values[name] = value
	}
	return values, nil
}

func parseSignature(params []string) (signature, error) {
	var s signature
	for _, param := range params {
		typeName, marker, _ := strings.Cut(param, ":")

		t, ok := paramTypes[typeName]
		if !ok {
			return signature{}, fmt.Errorf("unsupported parameter type %q", typeName)
		}

		b := binding.Unbound
		if marker != "" {
			var err error
			if b, err = binding.Parse(marker); err != nil {
				return signature{}, fmt.Errorf("parameter %q: %w", param, err)
			}
		}

		s.params = append(s.params, binding.Param{Type: t, Binding: b})
	}
	return s, nil
}
