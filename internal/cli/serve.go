package cli

import (
	"github.com/spf13/cobra"

	"asiacup/internal/app"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP and websocket service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			application, err := app.NewApplication(cfg, app.Options{})
			if err != nil {
				return WrapExitError(ExitFailure, "failed to initialize application", err)
			}
			if err := application.Run(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "application error", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port, overrides the config")
	return cmd
}
