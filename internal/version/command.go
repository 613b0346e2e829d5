package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand attaches a `version` subcommand to the root command
// of registry-server or registry-ctl.
func AttachCobraVersionCommand(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: fmt.Sprintf("Print the %s version.", root.Name()),
		Long: fmt.Sprintf(`Print the %s build metadata: ledger registry release, commit hash and build timestamp.

registry-server and registry-ctl are released together, so a control CLI
should report the same version as the server it operates.`, root.Name()),
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), root.Name()+" "+Full())
		},
	})
}
