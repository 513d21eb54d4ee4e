package interview

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/assessor/internal/progression"
	"github.com/abhisek/assessor/internal/question"
	"github.com/abhisek/assessor/internal/scoring"
	"github.com/abhisek/assessor/internal/ui/components"
	"github.com/abhisek/assessor/internal/ui/layout"
	"github.com/abhisek/assessor/internal/ui/theme"
)

var variationLabels = map[question.Variation]string{
	question.DetailedAnswer:  "Detailed answer",
	question.OneWordAnswer:   "One word",
	question.MultipleChoice:  "Multiple choice",
	question.FillInTheBlanks: "Fill in the blank",
}

func variationLabel(v question.Variation) string {
	if l, ok := variationLabels[v]; ok {
		return l
	}
	return string(v)
}

func (s *InterviewScreen) View(width, height int) string {
	switch {
	case s.fatal:
		return renderError(width, height, s.errMsg)
	case s.confirmQuit:
		return renderQuitConfirm(width, height)
	case s.phase == phaseStarting:
		return s.renderWaiting(width, height, "Building your curriculum...")
	case s.phase == phaseFeedback:
		return s.renderFeedback(width, height)
	}
	return s.renderQuestion(width, height)
}

// renderQuestion renders the active question and the answer input.
func (s *InterviewScreen) renderQuestion(width, height int) string {
	var b strings.Builder
	tw := layout.TextWidth(width)

	info := theme.Heading.Render(s.concept) + "  " +
		theme.Hint.Render(variationLabel(s.variation))
	if s.grounded {
		info += "  " + lipgloss.NewStyle().Foreground(theme.Secondary).Render("[from your material]")
	}
	b.WriteString(info)
	b.WriteString("\n")
	done := s.conceptNumber() - 1
	b.WriteString(components.NewProgressBar("", done, len(s.curriculum), tw).View())
	b.WriteString("\n\n")

	b.WriteString(theme.Body.Bold(true).Width(tw).Render(s.question))
	b.WriteString("\n\n")

	if s.phase == phaseScoring {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).
			Render(spinnerFrames[s.spin%len(spinnerFrames)] + " Scoring your answer..."))
	} else {
		b.WriteString(theme.Hint.Render("Answer:"))
		b.WriteString("\n")
		b.WriteString(s.input.View())
	}

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorText.Width(tw).Render(s.errMsg))
	}

	block := lipgloss.NewStyle().Width(tw).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
}

// renderFeedback renders the score and feedback of the last answer.
func (s *InterviewScreen) renderFeedback(width, height int) string {
	r := s.last
	tw := layout.TextWidth(width)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Score: %s / 100  ", theme.Score(r.LastScore)))
	b.WriteString(theme.Hint.Render(scoring.Band(r.LastScore)))
	b.WriteString("\n\n")

	if r.LastFeedback != "" {
		b.WriteString(theme.Body.Width(tw).Render(r.LastFeedback))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
		Render(transitionText(r.Transition, s.concept, r.NextConcept)))
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("Press any key to continue..."))

	block := lipgloss.NewStyle().Width(tw).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
}

func transitionText(t progression.Transition, current, next string) string {
	switch t {
	case progression.TransitionRetry:
		return fmt.Sprintf("Let's look at %s from another angle.", current)
	case progression.TransitionForced:
		return fmt.Sprintf("We'll leave %s for now. Next: %s", current, next)
	case progression.TransitionFinish:
		return "That was the last concept. Your profile is ready."
	}
	return "Next: " + next
}

func (s *InterviewScreen) renderWaiting(width, height int, label string) string {
	text := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(spinnerFrames[s.spin%len(spinnerFrames)] + " " + label)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}

// renderQuitConfirm renders the leave confirmation dialog.
func renderQuitConfirm(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Body.Bold(true).Render("Leave this interview?"))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Answered turns are saved. Resume it from History."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Success).Render("[Y] Yes, leave"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Render("[N] No, keep going"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}

// renderError renders an error message.
func renderError(width, height int, errMsg string) string {
	text := theme.ErrorText.Width(layout.TextWidth(width)).
		Render(errMsg + "\n\nPress any key to go back.")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}
