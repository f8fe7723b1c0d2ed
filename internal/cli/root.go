// Package cli implements the cola commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds state shared by all commands.
type app struct {
	verbose bool
	logger  *zap.Logger
}

// NewRootCmd creates the root cola command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "cola",
		Short: "cola - bind Gherkin steps to Go functions",
		Long: `cola discovers step functions annotated with @given, @when, @then or @step
comments, generates a cola_test.go that registers them with the runner, and
explains how a single step binds to a function's parameters.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newBindCmd(a))
	root.AddCommand(newVersionCmd(a, version))

	return root
}

func (a *app) initLogger() error {
	config := zap.NewProductionConfig()
	if a.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	return nil
}
