package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"devconnect/internal/cache"
	"devconnect/internal/config"
	"devconnect/internal/httpserver"
	"devconnect/internal/markdown"
	"devconnect/internal/security"
	"devconnect/internal/service"
	"devconnect/internal/storage"
	"devconnect/internal/ws"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// newCache prefers Redis when configured and falls back to memory.
func newCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if cfg.RedisURL != "" {
		c, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.AppName+":")
		if err == nil {
			return c
		}
		log.Printf("cache: %v; using in-memory cache", err)
	}
	return cache.NewMemory(4096)
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, repos, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	files, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("upload dir: %w", err)
	}

	mdCache := newCache(ctx, cfg)
	defer mdCache.Close()
	md := markdown.New(mdCache, cfg.MarkdownCacheTTL)

	// Security components
	tokens := security.NewTokenService(cfg.JWTSecret, cfg.SessionTTL())
	hasher := security.NewPasswordHasher(0)
	encryptor, err := security.NewEncryptor([]byte(cfg.EncryptKey), cfg.LegacyKeys)
	if err != nil {
		return fmt.Errorf("encryptor: %w", err)
	}
	flash, err := httpserver.NewFlasher(cfg.FlashKey, cfg.CookieSecure)
	if err != nil {
		return fmt.Errorf("flash: %w", err)
	}

	hub := ws.NewHub()

	articles := service.NewArticleService(repos.articles, repos.users, files, md)
	messages := service.NewMessageService(repos.chats, repos.participants, repos.messages, files, encryptor, hub)
	svc := httpserver.Services{
		Auth:     service.NewAuthService(repos.users, tokens, hasher, files),
		Users:    service.NewUserService(repos.users, articles),
		Articles: articles,
		Chats:    service.NewChatService(repos.chats, repos.participants, repos.users, messages, encryptor, md),
		Messages: messages,
		Catalog:  service.NewCatalogService(repos.products),
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      httpserver.NewRouter(cfg, svc, files, hub, flash),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting %s on %s", cfg.AppName, cfg.HTTPAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
