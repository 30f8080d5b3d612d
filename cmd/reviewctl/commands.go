package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04"

func newLessonsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List lessons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lessons, err := a.lessons.GetAll(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCOURSE\tTITLE\tCARDS")
			for _, l := range lessons {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", l.ID, l.CourseID, l.Title, len(l.Flashcards))
			}
			return w.Flush()
		},
	}
}

func newDueCmd(a *app) *cobra.Command {
	var (
		userID int64
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "due <lesson>",
		Short: "Show the cards a review session would present, in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, data, err := a.reviews.Plan(cmd.Context(), userID, args[0], all)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d cards: %d due, %d new\n", len(plan.Cards), plan.DueCount, plan.NewCount)
			if plan.IsEmpty() {
				return nil
			}

			entries := data.EntriesByItem()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tCARD\tREPS\tEASE\tINTERVAL\tNEXT REVIEW")
			for i, c := range plan.Cards {
				e, ok := entries[c.ID]
				if !ok {
					fmt.Fprintf(w, "%d\t%s\t-\t-\t-\tnew\n", i+1, c.ID)
					continue
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%dd\t%s\n",
					i+1, c.ID, e.Repetitions, e.EaseFactor, e.Interval, e.NextReviewAt.Local().Format(timeLayout))
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "Telegram user id")
	cmd.Flags().BoolVar(&all, "all", false, "include cards that are not due")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "stats <lesson>",
		Short: "Show review statistics of a lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.reviews.GetStats(cmd.Context(), userID, args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "cards\t%d\n", st.Total)
			fmt.Fprintf(w, "due\t%d\n", st.Due)
			fmt.Fprintf(w, "new\t%d\n", st.New)
			fmt.Fprintf(w, "mastered\t%d\n", st.Mastered)
			fmt.Fprintf(w, "reviewed today\t%d\n", st.ReviewedToday)
			fmt.Fprintf(w, "total reviews\t%d\n", st.TotalReviews)
			fmt.Fprintf(w, "streak\t%d days\n", st.StreakDays)
			if st.NextDueAt != nil {
				fmt.Fprintf(w, "next due\t%s (in %s)\n",
					st.NextDueAt.Local().Format(timeLayout), time.Until(*st.NextDueAt).Round(time.Minute))
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "Telegram user id")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newProgressCmd(a *app) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "List lessons a user has review data for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids, err := a.store.ListLessonIDs(cmd.Context(), userID)
			if err != nil {
				return err
			}

			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "Telegram user id")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newRemindersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "List reminder subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			subs, err := a.reminders.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tCHAT\tLESSON\tSUBSCRIBED\tLAST SENT")
			for _, s := range subs {
				last := "never"
				if s.LastSentAt != nil {
					last = s.LastSentAt.Local().Format(timeLayout)
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
					s.UserID, s.ChatID, s.LessonID, s.SubscribedAt.Local().Format(timeLayout), last)
			}
			return w.Flush()
		},
	}
}
