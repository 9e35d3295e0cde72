package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"bookshelf/backend/global"
	"bookshelf/backend/initialize"
	"bookshelf/backend/server"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to the YAML config file")
		addr       = flag.String("addr", "", "Listen address, overrides server.host and server.port")
	)
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		global.Logger.Error().Err(err).Msg("bookshelf stopped")
		os.Exit(1)
	}
}

func run(configPath, addr string) error {
	app, err := initialize.Build(configPath)
	if err != nil {
		return err
	}
	defer app.Close()
	log := app.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The server starts even when the first check fails; requests that need
	// the database answer 503 until the health loop reconnects.
	if err := app.DB.Check(ctx); err != nil {
		log.Warn().Err(err).Str("driver", app.Cfg.DB.Driver).Msg("database unavailable at startup")
	}
	go app.DB.Run(ctx)

	srv := server.NewHTTPServer(app.Cfg.Server, addr, app.Router)
	return server.ListenAndServe(ctx, srv, log)
}
