package main

import (
	"os"

	"github.com/abhisek/quizrace/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
