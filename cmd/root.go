package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/quizrace/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "quizrace",
	Short: "Adaptive quiz racing game",
	Long:  "QuizRace: race an AI opponent by answering quiz questions. Lessons unlock as you master them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "", 0)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZRACE_DB)")
	rootCmd.PersistentFlags().String("storage", "", "Progress storage backend: sqlite, redis or memory (overrides QUIZRACE_STORAGE)")
	rootCmd.PersistentFlags().String("env-file", "", "Load settings from this .env file instead of ./.env")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies the persistent flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var files []string
	if f, _ := cmd.Flags().GetString("env-file"); f != "" {
		files = append(files, f)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Storage.DBPath = p
	}
	if b, _ := cmd.Flags().GetString("storage"); b != "" {
		cfg.Storage.Backend = b
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
