package cli

import (
	"github.com/spf13/cobra"

	"stagesync.dev/stagesync/internal/actions"
	"stagesync.dev/stagesync/internal/tui"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create stagesync storage in a directory",
		Long: `Creates the .stagesync directory holding object and ref storage, merge
markers and the default configuration. Running it again changes nothing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := actions.InitOptions{}
			if len(args) == 1 {
				opts.Dir = args[0]
			}

			splog := tui.NewSplog()
			if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
				splog.SetQuiet(true)
			}
			_, err := actions.InitAction(splog, opts)
			return err
		},
	}
	return cmd
}
