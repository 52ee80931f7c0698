package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/internal/config"
	"github.com/Faultbox/objmesh/internal/logger"
	"github.com/Faultbox/objmesh/internal/server"
)

func serveCmd() *cli.Command {
	var addr string

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the conversion API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (default from config, 127.0.0.1:8080)",
				Destination: &addr,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, log, err := setup(config.Overrides{Addr: addr})
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.NewServer(cfg, log).Register(e)

			log.Info("starting server",
				zap.String("address", cfg.Server.Addr),
				zap.Int("max_body_mb", cfg.Server.MaxBodyMB))
			sc := echo.StartConfig{
				Address: cfg.Server.Addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = cfg.Server.ReadTimeout
					srv.ReadTimeout = cfg.Server.ReadTimeout
					return nil
				},
			}
			if err := sc.Start(ctx, e); err != nil && err != http.ErrServerClosed {
				log.Error("server stopped", zap.Error(err))
				return cli.Exit(err.Error(), exitFailure)
			}
			log.Info("server stopped")
			return nil
		},
	}
}
