package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/assessor/internal/app"
	"github.com/spf13/cobra"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Start an interactive assessment in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInterview(cmd)
	},
}

func init() {
	interviewCmd.Flags().String("learner", "", "Learner name to pre-fill")
	interviewCmd.Flags().Bool("no-welcome", false, "Skip the welcome screen")
}

// runInterview starts the TUI. Logs go to a file next to the database so
// they do not draw over the screen.
func runInterview(cmd *cobra.Command) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	logPath := filepath.Join(filepath.Dir(dbPath), "assessor.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	e, err := openEnvLogging(cmd, false, logFile)
	if err != nil {
		return err
	}
	defer e.Close()

	learner, _ := cmd.Flags().GetString("learner")
	if learner == "" {
		learner = os.Getenv("USER")
	}
	skip, _ := cmd.Flags().GetBool("no-welcome")

	return app.Run(app.Options{
		Service:     e.engine,
		LearnerID:   learner,
		SkipWelcome: skip,
	})
}
