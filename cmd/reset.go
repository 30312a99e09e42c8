package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset saved progress",
	Long: `Reset saved progress.

  --all                          clear every subject and all game history
  --subject S                    reset one subject to its starting state
  --subject S --lesson L --questions
                                 forget which questions of a lesson were used`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		subject, _ := cmd.Flags().GetString("subject")
		lesson, _ := cmd.Flags().GetInt("lesson")
		questions, _ := cmd.Flags().GetBool("questions")

		switch {
		case all && subject != "":
			return errors.New("--all and --subject are mutually exclusive")
		case !all && subject == "":
			return errors.New("pass --all or --subject")
		case questions && lesson == 0:
			return errors.New("--questions needs --lesson")
		case lesson != 0 && !questions:
			return errors.New("a single lesson can only have its questions reset (add --questions)")
		}

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
		switch {
		case all:
			if err := svc.progress.ClearAll(ctx); err != nil {
				return fmt.Errorf("clear progress: %w", err)
			}
			fmt.Println("All progress cleared.")
		case questions:
			if _, ok := svc.curriculum.Lesson(subject, lesson); !ok {
				return fmt.Errorf("unknown lesson %d in subject %q", lesson, subject)
			}
			if err := svc.progress.ResetUsedQuestions(ctx, subject, lesson); err != nil {
				return fmt.Errorf("reset questions: %w", err)
			}
			fmt.Printf("Used questions of lesson %d reset.\n", lesson)
		default:
			if _, ok := svc.curriculum.Subject(subject); !ok {
				return fmt.Errorf("unknown subject %q", subject)
			}
			if err := svc.progress.ResetSubject(ctx, subject); err != nil {
				return fmt.Errorf("reset subject: %w", err)
			}
			fmt.Printf("%s reset.\n", svc.curriculum.Name(subject))
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("all", false, "Clear all progress")
	resetCmd.Flags().String("subject", "", "Subject ID to reset")
	resetCmd.Flags().Int("lesson", 0, "Lesson ID (with --questions)")
	resetCmd.Flags().Bool("questions", false, "Only reset the lesson's used questions")
}
