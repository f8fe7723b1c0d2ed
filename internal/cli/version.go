package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newVersionCmd(a *app, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cola version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.logger.Debug("version requested", zap.String("go", runtime.Version()))
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cola %s\n", version)
			return err
		},
	}
}
