package cli

import (
	"github.com/spf13/cobra"
	"github.com/user/paywall-reader/internal/delivery/http/handler"
	"github.com/user/paywall-reader/internal/delivery/http/router"
	"github.com/user/paywall-reader/internal/delivery/http/server"
	"github.com/user/paywall-reader/pkg/config"
	"github.com/user/paywall-reader/pkg/logger"
	"go.uber.org/zap"
)

func newServeCommand(configPath *string, newApp AppFactory) *cobra.Command {
	var port string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}

			format := cfg.Log.Format
			if format == "" {
				format = logger.FormatJSON
			}
			log, err := logger.New(cmd.OutOrStdout(), cfg.Log.Level, format)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			log.Info("Logger initialized", zap.String("level", cfg.Log.Level))

			ctx := cmd.Context()
			app, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			h := handler.NewHandler(app.Reader, log, app.Stores)
			srv := server.New(cfg.Server.Port, router.New(h, log), cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, log)
			return srv.Run(ctx)
		},
	}
	serve.Flags().StringVar(&port, "port", "", "listen port (overrides server.port)")

	return serve
}
