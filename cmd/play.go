package cmd

import (
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the game, optionally straight into a subject or lesson",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		lesson, _ := cmd.Flags().GetInt("lesson")
		return runApp(cmd, subject, lesson)
	},
}

func init() {
	playCmd.Flags().String("subject", "", "Subject ID to open")
	playCmd.Flags().Int("lesson", 0, "Lesson ID to race (requires --subject)")
	playCmd.MarkFlagsRequiredTogether("lesson", "subject")
}
