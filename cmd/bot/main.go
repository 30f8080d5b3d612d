package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/flashcards-bot/internal/config"
	"github.com/aliskhannn/flashcards-bot/internal/delivery/telegram"
	"github.com/aliskhannn/flashcards-bot/internal/infra"
	"github.com/aliskhannn/flashcards-bot/internal/logger"
	"github.com/aliskhannn/flashcards-bot/internal/repository"
	"github.com/aliskhannn/flashcards-bot/internal/service"
	"github.com/aliskhannn/flashcards-bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	if err = run(cfg, lg); err != nil {
		lg.Fatal("bot stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	if err := cfg.RequireToken(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		return err
	}
	bot.Debug = cfg.Env != "production"
	lg.Info("authorized on account", zap.String("username", bot.Self.UserName))

	if _, err = bot.Request(tgbotapi.NewSetMyCommands(telegram.Commands()...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	// Initialize repositories and services.
	lessonRepo, err := repository.NewLessonRepository(cfg.LessonsDir)
	if err != nil {
		return err
	}

	stores, closeStores, err := infra.Open(ctx, cfg.Storage, lg)
	if err != nil {
		return err
	}
	defer closeStores()

	lessonService := service.NewLessonService(lessonRepo)
	reviewService := service.NewReviewService(lessonRepo, stores.Reviews, cfg.Review.SaveTimeout, lg)

	reminderService := service.NewReminderService(
		stores.Reminders,
		reviewService,
		lessonRepo,
		cfg.Review.ReminderSchedule,
		lg,
	)

	handler := telegram.NewHandler(
		bot,
		lg,
		lessonService,
		reviewService,
		reminderService,
		storage.NewSessionStorage(),
		storage.NewReminderMessages(),
		cfg.Review.RemindersPerSecond,
	)
	reminderService.SetNotifier(handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return handler.Run(gctx) })
	g.Go(func() error { return reminderService.Start(gctx) })

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	lg.Info("shutdown signal received")
	return nil
}
