package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/pflag"

	"github.com/erazemk/storefront/internal/web"
)

// syncInterval is how often serve picks up admin logins and logouts made by
// other storefront processes sharing the database.
const syncInterval = 2 * time.Second

func serveCommand(a *app) *Command {
	var addr string
	return &Command{
		Name:    "serve",
		Summary: "Run the local web storefront",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
			fs.StringVarP(&addr, "addr", "a", "", "listen address (default: "+a.cfg.Addr+")")
			return fs
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 0, "storefront serve [flags]"); err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Addr
			}
			return serve(a, addr)
		},
	}
}

func serve(a *app, addr string) error {
	if err := a.open(); err != nil {
		return err
	}

	templates, err := web.LoadTemplates()
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	handler := web.LoggingMiddleware(web.NewRouter(&web.Server{
		Templates: templates,
		API:       a.api,
		Cart:      a.cart,
		Session:   a.session,
		Editor:    a.editor,
		VATRate:   a.vat,
	}))

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      2 * a.cfg.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	go a.local.Watch(a.ctx, syncInterval)

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		<-a.ctx.Done()
		slog.Info("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr, "api", a.cfg.APIURL, "storage", a.cfg.StorageEnabled())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
