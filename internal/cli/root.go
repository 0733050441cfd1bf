package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the guestsync CLI.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "guestsync",
		Short:         "Guest record sync, moderation and backup for the wedding site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewImportCommand())
	cmd.AddCommand(NewDiagnoseCommand())
	cmd.AddCommand(NewDedupCommand())
	cmd.AddCommand(NewHashSecretCommand())

	return cmd
}
