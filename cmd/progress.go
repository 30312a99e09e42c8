package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizrace/internal/game"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/store"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show lesson progress per subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		svc, err := newServices(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := cmd.Context()
		var ids []string
		if subject != "" {
			if _, ok := svc.curriculum.Subject(subject); !ok {
				return fmt.Errorf("unknown subject %q", subject)
			}
			ids = []string{subject}
		} else {
			for _, s := range svc.curriculum.Subjects {
				ids = append(ids, s.ID)
			}
		}

		for i, id := range ids {
			if i > 0 {
				fmt.Println()
			}
			sp := svc.progress.GetSubjectProgress(ctx, id)
			fmt.Printf("%s  %d/%d lessons (%d%%)\n", sp.SubjectName, sp.CompletedLessons, sp.TotalLessons, sp.ProgressPercentage)
			fmt.Println(rule(64))
			fmt.Printf("%-4s  %-28s  %-12s  %5s  %5s  %4s\n", "ID", "Lesson", "Status", "Best", "Avg", "Runs")

			subj, _ := svc.curriculum.Subject(id)
			for _, l := range subj.Lessons {
				lp := svc.progress.GetLessonProgress(ctx, id, l.ID)
				fmt.Printf("%-4d  %-28s  %-12s  %4d%%  %4.0f%%  %4d\n",
					l.ID, truncate(l.Title, 28), statusLabel(lp.Status), lp.HighScore, lp.AverageScore, lp.Attempts)
			}
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the recent games of a lesson",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		lesson, _ := cmd.Flags().GetInt("lesson")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		svc, err := newServices(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		if _, ok := svc.curriculum.Lesson(subject, lesson); !ok {
			return fmt.Errorf("unknown lesson %d in subject %q", lesson, subject)
		}

		games, err := svc.progress.History(cmd.Context(), subject, lesson)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		if len(games) == 0 {
			fmt.Println("No games played yet.")
			return nil
		}

		fmt.Printf("%-19s  %5s  %7s  %6s  %-6s  %s\n", "Played", "Score", "Correct", "Points", "Level", "Time")
		fmt.Println(rule(64))
		for _, g := range games {
			fmt.Printf("%-19s  %4d%%  %3d/%-3d  %6d  %-6s  %s\n",
				g.Timestamp.Local().Format("2006-01-02 15:04:05"),
				g.Score, g.CorrectAnswers, g.QuestionsAnswered, g.Points, g.Difficulty,
				game.FormatElapsed(g.Duration))
		}
		return nil
	},
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List finished games from the event log",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		lesson, _ := cmd.Flags().GetInt("lesson")
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryGameEvents(cmd.Context(), store.QueryOpts{
			Limit:     limit,
			SubjectID: subject,
			LessonID:  lesson,
		})
		if err != nil {
			return fmt.Errorf("query games: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No games recorded.")
			return nil
		}

		fmt.Printf("%-19s  %-8s  %6s  %5s  %7s  %5s  %s\n", "Played", "Lesson", "Score", "Lives", "Correct", "Time", "Done")
		fmt.Println(rule(72))
		for _, e := range events {
			where := "practice"
			if !e.Practice {
				where = fmt.Sprintf("%s/%d", e.SubjectID, e.LessonID)
			}
			done := ""
			if e.LessonCompleted {
				done = "✓"
			}
			fmt.Printf("%-19s  %-8s  %5d%%  %5d  %3d/%-3d  %5s  %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				where, e.Score, e.Lives, e.CorrectAnswers, e.QuestionsAnswered,
				game.FormatElapsed(e.Duration), done)
		}
		return nil
	},
}

func statusLabel(s progression.LessonStatus) string {
	switch s {
	case progression.StatusCompleted:
		return "✓ completed"
	case progression.StatusInProgress:
		return "▶ playable"
	}
	return "locked"
}

func init() {
	progressCmd.Flags().String("subject", "", "Only show this subject")

	historyCmd.Flags().String("subject", "", "Subject ID (required)")
	historyCmd.Flags().Int("lesson", 0, "Lesson ID (required)")
	_ = historyCmd.MarkFlagRequired("subject")
	_ = historyCmd.MarkFlagRequired("lesson")

	gamesCmd.Flags().String("subject", "", "Only games of this subject")
	gamesCmd.Flags().Int("lesson", 0, "Only games of this lesson")
	gamesCmd.Flags().IntP("limit", "n", 20, "Number of games to show")
}
