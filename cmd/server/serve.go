package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-wiki-store/internal/auth"
	"go-wiki-store/internal/handler"
	"go-wiki-store/internal/middleware"
	"go-wiki-store/internal/service"
	"go-wiki-store/internal/view"

	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the wiki JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
}

func (a *app) serve() error {
	// --- Schema ---
	if err := a.store.CreateAll(context.Background(), false); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	// --- Authorization ---
	a.log.Info("Initializing authorization...")
	enforcer, err := a.enforcer()
	if err != nil {
		return fmt.Errorf("failed to initialize enforcer: %w", err)
	}

	// --- Dependency Injection and Handler Initialization ---
	pageService := service.NewPageService(a.store, a.log)
	userService := service.NewUserService(a.store, auth.NewBcryptHasher(a.cfg.Auth.BcryptCost), a.log)

	router := handler.NewRouter(handler.Handlers{
		Pages: handler.NewPageHandler(pageService, view.New(), a.log),
		Auth:  handler.NewAuthHandler(userService, a.log),
		Seo:   handler.NewSeoHandler(pageService, a.cfg.Server.BaseURL),
	}, middleware.Authenticator(userService, a.log), middleware.Authorizer(enforcer), a.log)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", a.cfg.Server.Port),
		Handler: router,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("could not start HTTP server: %w", err)
	case <-quit:
	}

	a.log.Warn("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.log.Info("Server exiting")
	return nil
}
