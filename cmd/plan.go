package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/assessor/internal/lessonplan"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan <session-id>",
	Short: "Generate or show the lesson plan for a finished session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		e, err := openEnv(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Fprintln(os.Stderr, "Preparing lesson plan...")
		res, err := e.engine.LessonPlan(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if format != "text" {
			return encode(os.Stdout, res, format)
		}
		writePlan(res)
		return nil
	},
}

func init() {
	planCmd.Flags().StringP("format", "f", "text", "Output format: text, json or yaml")
}

func writePlan(res *lessonplan.Result) {
	fmt.Print(lessonplan.FormatPlan(res.Plan))

	sep := strings.Repeat("─", 60)
	fmt.Println()
	fmt.Println(sep)
	fmt.Printf("Review: %s after %d attempt(s)\n", res.Evaluation.Grade, res.Attempts)
	fmt.Println(sep)
	if res.Evaluation.Feedback != "" {
		fmt.Println(res.Evaluation.Feedback)
	}
	for _, name := range lessonplan.Criteria {
		m, ok := res.Evaluation.Metrics[name]
		if !ok {
			continue
		}
		fmt.Printf("  %-24s %2d  %s\n", name, m.Score, m.Comment)
	}
}
