package cmd

import (
	"github.com/abhisek/assessor/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "assessor",
	Short: "Adaptive knowledge assessment",
	Long: "assessor interviews a learner on a subject, adapts the questions to their answers, " +
		"and closes with a learner persona and a personalized lesson plan.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInterview(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ASSESSOR_DB env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then ASSESSOR_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
