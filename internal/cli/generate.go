package cli

import (
	"path/filepath"

	"github.com/cola-bdd/cola/internal/comment_parser"
	"github.com/cola-bdd/cola/internal/generator"
	"github.com/cola-bdd/cola/pkg/binding"
	"github.com/cola-bdd/cola/pkg/cola"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		code    []string
		output  string
		strict  bool
		dialect string
		config  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate cola_test.go from step function comments",
		Example: `  cola generate
  cola generate --code ./steps,./support --output ./features --strict-bindings
  cola generate --config ./cola.yaml --dialect java`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config
			if path == "" {
				path = filepath.Join(output, cola.DefaultConfigFile)
			}
			settings, err := cola.LoadConfig(path)
			if err != nil {
				return err
			}
			name := dialect
			if !cmd.Flags().Changed("dialect") {
				name = settings.Dialect
			}

			d, err := binding.ParseDialect(name)
			if err != nil {
				return err
			}
			a.logger.Debug("resolved dialect", zap.String("dialect", d.String()), zap.String("config", path))

			parser := comment_parser.NewGoSourceFileParser(strict, binding.WithDialect(d))
			options := generator.Options{
				CodeDirectories: code,
				OutputDirectory: output,
				Dialect:         d.String(),
			}

			return generator.StartGenerator(cmd.Context(), parser, options, cola.NewZapLogger(a.logger))
		},
	}

	cmd.Flags().StringSliceVar(&code, "code", nil, "directories to search for step functions, separated by comma (default: output directory)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "directory to write "+generator.OutputFile+" to (default: working directory)")
	cmd.Flags().BoolVar(&strict, "strict-bindings", false, "fail when a parameter has more than one binding instead of choosing by precedence")
	cmd.Flags().StringVar(&dialect, "dialect", binding.RE2.String(), "regular expression dialect of step patterns: re2 or java; overrides the config file")
	cmd.Flags().StringVar(&config, "config", "", "YAML config file read for defaults (default: "+cola.DefaultConfigFile+" in the output directory)")

	return cmd
}
