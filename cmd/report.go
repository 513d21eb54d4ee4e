package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abhisek/assessor/internal/interview"
	"github.com/abhisek/assessor/internal/persona"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var reportCmd = &cobra.Command{
	Use:   "report [session-id]",
	Short: "Show a session report, or list recent sessions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("invalid format %q (valid: text, json, yaml)", format)
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if len(args) == 0 {
			limit, _ := cmd.Flags().GetInt("limit")
			sessions, err := e.engine.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeSessions(os.Stdout, sessions, format)
		}

		snap, err := e.engine.Snapshot(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeReport(os.Stdout, snap, format)
	},
}

func init() {
	reportCmd.Flags().StringP("format", "f", "text", "Output format: text, json or yaml")
	reportCmd.Flags().IntP("limit", "n", 20, "Number of sessions to list")
}

func encode(w io.Writer, v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	return fmt.Errorf("unsupported format %q", format)
}

func writeSessions(w io.Writer, sessions []interview.Snapshot, format string) error {
	if format != "text" {
		return encode(w, sessions, format)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-24s  %-12s  %-9s  %s\n", "Session", "Subject", "Learner", "Progress", "State")
	fmt.Fprintln(w, strings.Repeat("\u2500", 96))
	for _, s := range sessions {
		state := "in progress"
		progress := fmt.Sprintf("%d/%d", s.ConceptIndex+1, len(s.Curriculum))
		if s.Done {
			state = "done"
			progress = fmt.Sprintf("%d/%d", len(s.Curriculum), len(s.Curriculum))
		}
		fmt.Fprintf(w, "%-36s  %-24s  %-12s  %-9s  %s\n",
			s.SessionID, truncate(s.Subject, 24), truncate(s.LearnerID, 12), progress, state)
	}
	return nil
}

func writeReport(w io.Writer, s *interview.Snapshot, format string) error {
	if format != "text" {
		return encode(w, s, format)
	}
	sep := strings.Repeat("\u2500", 60)

	fmt.Fprintf(w, "Session:   %s\n", s.SessionID)
	fmt.Fprintf(w, "Learner:   %s\n", s.LearnerID)
	fmt.Fprintf(w, "Subject:   %s\n", s.Subject)
	if s.Goal != "" {
		fmt.Fprintf(w, "Goal:      %s\n", s.Goal)
	}
	if s.Level != "" {
		fmt.Fprintf(w, "Level:     %s\n", s.Level)
	}
	fmt.Fprintf(w, "Grounded:  %v\n", s.Grounded)
	fmt.Fprintf(w, "Concepts:  %s\n", strings.Join(s.Curriculum, ", "))
	if s.Done {
		fmt.Fprintf(w, "Status:    done (average %.1f)\n", s.AverageScore)
	} else {
		fmt.Fprintf(w, "Status:    in progress, concept %d of %d, retry %d\n",
			s.ConceptIndex+1, len(s.Curriculum), s.RetryCount)
		fmt.Fprintf(w, "Pending:   [%s] %s\n", s.CurrentConcept, s.CurrentQuestion)
	}

	if len(s.History) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sep)
		fmt.Fprintln(w, "HISTORY")
		fmt.Fprintln(w, sep)
		for _, h := range s.History {
			fmt.Fprintf(w, "%d. [%s] %s\n", h.Turn+1, h.Concept, h.Question)
			fmt.Fprintf(w, "   Answer:   %s\n", h.Answer)
			fmt.Fprintf(w, "   Score:    %d\n", h.Score)
			fmt.Fprintf(w, "   Feedback: %s\n", h.Feedback)
		}
	}

	if s.Persona != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sep)
		fmt.Fprintln(w, "PERSONA")
		fmt.Fprintln(w, sep)
		writePersona(w, s.Persona)
	}
	return nil
}

func writePersona(w io.Writer, p *persona.Summary) {
	fmt.Fprintln(w, p.ProfileSummary)
	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s:\n", title)
		for _, it := range items {
			fmt.Fprintf(w, "  - %s\n", it)
		}
	}
	list("Learning style", p.LearningStyle)
	list("Strengths", p.Strengths)
	list("Gaps", p.Weaknesses)
	list("Misconceptions", p.Misconceptions)
	if p.Engagement != "" {
		fmt.Fprintf(w, "\nEngagement: %s\n", p.Engagement)
	}
	list("Recommendations", p.Recommendations)
	list("Roadmap", p.Roadmap)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
