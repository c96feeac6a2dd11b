package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/ecowarn/internal/app"
	"github.com/turtacn/ecowarn/internal/config"
	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
)

type serveOptions struct {
	port         int
	referenceDir string
	watch        bool
}

// NewServeCmd creates the serve command, which runs the HTTP API in the
// foreground until interrupted.
func NewServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the prediction API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			cfg := *cliCtx.Config
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = opts.port
			}
			if opts.referenceDir != "" {
				cfg.Reference.Source = config.SourceFilesystem
				cfg.Reference.Dir = opts.referenceDir
			}
			if cmd.Flags().Changed("watch") {
				cfg.Reference.Watch = opts.watch
			}

			// The server logs with the configured sink rather than the
			// console logger the other commands share.
			logger, err := app.NewLogger(cfg.Log)
			if err != nil {
				return err
			}

			rt, err := app.NewRuntime(&cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			if cliCtx.ConfigPath != "" {
				config.Watch(cliCtx.ConfigPath, logger, func(*config.Config) {
					logger.Warn("config file changed; restart to apply", logging.String("path", cliCtx.ConfigPath))
				})
			}

			logger.Info("serving", logging.String("addr", cfg.Server.Addr()), logging.String("version", Version))
			return rt.Serve(cmd.Context(), Version)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.port, "port", "p", config.DefaultServerPort, "listen port (overrides config)")
	f.StringVar(&opts.referenceDir, "reference-dir", "", "directory of reference tables (overrides config)")
	f.BoolVar(&opts.watch, "watch", false, "reload models when reference tables change")
	return cmd
}

//Personal.AI order the ending
