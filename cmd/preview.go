package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizrace/internal/llm"
	"github.com/abhisek/quizrace/internal/question"
	"github.com/abhisek/quizrace/internal/questiongen"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview generated questions for a lesson (progress is not touched)",
	Long: `Generate and interactively answer questions for a lesson.

Questions come from the same generation chain the race uses: the configured
LLM provider first, then the offline bank. Useful for checking question
quality and provider setup.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("subject", "", "Subject ID (required)")
	previewCmd.Flags().Int("lesson", 0, "Lesson ID (required)")
	previewCmd.Flags().String("difficulty", "medium", "Difficulty: easy, medium or hard")
	previewCmd.Flags().Int("count", 5, "Number of questions to generate")
	_ = previewCmd.MarkFlagRequired("subject")
	_ = previewCmd.MarkFlagRequired("lesson")
}

func runPreview(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	lessonID, _ := cmd.Flags().GetInt("lesson")
	diffVal, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("count")

	diff, err := question.ParseDifficulty(diffVal)
	if err != nil {
		return err
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

	lesson, ok := svc.curriculum.Lesson(subject, lessonID)
	if !ok {
		return fmt.Errorf("unknown lesson %d in subject %q", lessonID, subject)
	}

	ctx := llm.WithPurpose(cmd.Context(), llm.PurposePreview)
	batch, err := svc.chain.Generate(ctx, questiongen.Request{
		SubjectID:  subject,
		LessonID:   lessonID,
		Category:   svc.curriculum.Category(subject),
		Topic:      lesson.Topic,
		Lesson:     lesson.Title,
		Difficulty: diff,
		Count:      count,
	})
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	fmt.Printf("Lesson: %s (%s, %s)\n", lesson.Title, svc.curriculum.Name(subject), diff)
	fmt.Printf("Got %d questions from %s.\n\n", len(batch.Questions), batch.Source)

	scanner := bufio.NewScanner(os.Stdin)
	var correct, asked int
	for i, q := range batch.Questions {
		fmt.Printf("── Question %d/%d ──\n", i+1, len(batch.Questions))
		fmt.Println(q.Prompt)
		for j, opt := range q.Options {
			fmt.Printf("  %d) %s\n", j+1, opt)
		}

		fmt.Print("\nYour answer (number or text): ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			fmt.Print("(skipped)\n\n")
			continue
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(q.Options) {
			answer = q.Options[n-1]
		}

		asked++
		if q.IsCorrect(answer) {
			correct++
			fmt.Println("\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Printf("\033[31m✗ Wrong.\033[0m Answer: %s\n", q.CorrectAnswer)
		}
		fmt.Println()
	}

	fmt.Printf("── Summary: %d/%d correct ──\n", correct, asked)
	return nil
}
