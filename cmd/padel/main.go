package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Surf-N-Code/padel-booking/internal/bot"
	"github.com/Surf-N-Code/padel-booking/internal/clients/telegram"
	"github.com/Surf-N-Code/padel-booking/internal/config"
	"github.com/Surf-N-Code/padel-booking/internal/middleware"
	"github.com/Surf-N-Code/padel-booking/internal/notify"
	"github.com/Surf-N-Code/padel-booking/internal/routes"
	"github.com/Surf-N-Code/padel-booking/internal/services"
	"github.com/Surf-N-Code/padel-booking/internal/storage/mariadb"
	redisstore "github.com/Surf-N-Code/padel-booking/internal/storage/redis"

	ssogrpc "github.com/Surf-N-Code/padel-booking/internal/clients/sso/grpc"

	"golang.org/x/sync/errgroup"
)

const (
	envLocal = "local"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting padel organizer", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := redisstore.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close redis", slog.String("error", err.Error()))
		}
	}()

	log.Info("redis init", slog.String("address", cfg.Redis.Address))

	db, err := mariadb.New(cfg.Database)
	if err != nil {
		log.Error("failed to create database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Error("migration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("database init")

	ssoClient, err := ssogrpc.New(log, ssogrpc.Options{
		Address:      cfg.Clients.SSO.Address,
		Timeout:      cfg.Clients.SSO.Timeout,
		RetriesCount: cfg.Clients.SSO.RetriesCount,
		Insecure:     cfg.Clients.SSO.Insecure,
		AppID:        cfg.Clients.SSO.AppID,
	})
	if err != nil {
		log.Error("failed to create sso client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := ssoClient.Close(); err != nil {
			log.Error("failed to close sso client", slog.String("error", err.Error()))
		}
	}()

	gameService := services.NewGameService(store, store, notify.NewPublisher(store.Client), log, cfg.Games.NotifyTimeout)
	userService := services.NewUserService(db, log)
	venueService := services.NewVenueService(store, log)

	r := routes.SetupRouter(log, routes.Services{
		Games:  gameService,
		Users:  userService,
		Venues: venueService,
		SSO:    ssoClient,
	}, middleware.NewAuthMiddleware(ssoClient, log), cfg.HTTPServer, cfg.Games.ListHorizon)

	log.Info("routes init")

	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", slog.String("address", cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown error", slog.String("error", err.Error()))
			if err := server.Close(); err != nil {
				log.Error("force shutdown error", slog.String("error", err.Error()))
			}
		}
		return nil
	})

	if cfg.Telegram.Enabled() {
		tg, err := telegram.New(log, cfg.Telegram.Token, cfg.Telegram.Timeout, cfg.Telegram.Debug)
		if err != nil {
			log.Error("failed to create telegram client", slog.String("error", err.Error()))
			os.Exit(1)
		}

		formatter := notify.NewFormatter(cfg.AppURL, cfg.Games.Location())
		worker := notify.NewWorker(store.Client, userService, tg, formatter, log)
		padelBot := bot.New(tg, userService, gameService, formatter, cfg.Games.UpcomingHorizon, log)

		// notifications are best effort, a dead worker must not take the API down
		g.Go(func() error {
			if err := worker.Run(gctx); err != nil {
				log.Error("notification worker stopped", slog.String("error", err.Error()))
			}
			return nil
		})
		g.Go(func() error {
			padelBot.Run(gctx, tg.Updates(gctx))
			return nil
		})

		log.Info("telegram init")
	} else {
		log.Warn("telegram token not set, bot and notifications disabled")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server error", slog.String("error", err.Error()))
	}

	gameService.Wait()

	log.Info("server stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}
	return log
}

// @title Padel Organizer API
// @version 1.0
// @description Schedule padel games and fill four-player rosters
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
