package main

import (
	"github.com/spf13/cobra"

	"itemhub/app"
	"itemhub/logging"
	"itemhub/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				host, port, perr := splitAddr(addr)
				if perr != nil {
					return perr
				}
				cfg.Server.Host, cfg.Server.Port = host, port
			}

			logger := app.NewLogger(cfg.Logging, cmd.ErrOrStderr())
			logging.SetLogger(logger)

			ctx := commandContext(cmd)
			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			srv, err := a.HTTPServer()
			if err != nil {
				_ = a.Close()
				return err
			}

			logger.Info(ctx, "itemhub listening", logging.String("addr", cfg.Addr()))
			return server.NewManager(
				server.WithName("itemhub"),
				server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
			).WithLogger(logger.WithFields(logging.String("component", "server"))).
				Register(a.Components(srv)...).
				Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address host:port, overrides server.host/server.port")
	return cmd
}
