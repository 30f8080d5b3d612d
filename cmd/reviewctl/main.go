// Command reviewctl inspects lessons and review progress from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aliskhannn/flashcards-bot/internal/config"
	"github.com/aliskhannn/flashcards-bot/internal/infra"
	"github.com/aliskhannn/flashcards-bot/internal/logger"
	"github.com/aliskhannn/flashcards-bot/internal/repository"
	"github.com/aliskhannn/flashcards-bot/internal/service"
)

// app holds what every subcommand needs.
type app struct {
	lessons    *repository.LessonRepository
	store      infra.ReviewStore
	reminders  infra.ReminderStore
	reviews    *service.ReviewService
	closeStore func()
	logger     *zap.Logger
}

var (
	rootCmd = &cobra.Command{
		Use:           "reviewctl",
		Short:         "Inspect flashcard lessons and review schedules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a = &app{}
)

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		lg, err := logger.New(cfg)
		if err != nil {
			return err
		}

		lessons, err := repository.NewLessonRepository(cfg.LessonsDir)
		if err != nil {
			return err
		}

		stores, closeStore, err := infra.Open(cmd.Context(), cfg.Storage, lg)
		if err != nil {
			return err
		}

		*a = app{
			lessons:    lessons,
			store:      stores.Reviews,
			reminders:  stores.Reminders,
			reviews:    service.NewReviewService(lessons, stores.Reviews, cfg.Review.SaveTimeout, lg),
			closeStore: closeStore,
			logger:     lg,
		}
		return nil
	}

	rootCmd.PersistentPostRun = func(*cobra.Command, []string) {
		if a.closeStore != nil {
			a.closeStore()
		}
		if a.logger != nil {
			_ = a.logger.Sync()
		}
	}

	rootCmd.AddCommand(newLessonsCmd(a), newDueCmd(a), newStatsCmd(a), newProgressCmd(a), newRemindersCmd(a))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
