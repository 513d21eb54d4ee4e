package curriculum

import (
	"fmt"
	"strings"

	"github.com/abhisek/assessor/internal/retrieval"
)

const generalSystemPrompt = `You are an expert curriculum designer for a personalized learning platform. You create a focused, progressive list of concepts tailored to a single learner's subject, goal and proficiency level.`

const groundedSystemPrompt = `You are an expert curriculum designer for a personalized learning platform. You create a focused, progressive list of concepts tailored to a single learner, using only the learning materials you are given.`

const relevanceSystemPrompt = `You judge whether a set of learning-material excerpts can support a learner's stated subject, goal and level. Answer with a single boolean.`

func writeLearner(b *strings.Builder, l Learner) {
	fmt.Fprintf(b, "Subject: %s\n", l.Subject)
	fmt.Fprintf(b, "Goal: %s\n", orNone(l.Goal))
	fmt.Fprintf(b, "Level: %s\n", orNone(l.Level))
}

func buildGeneralMessage(l Learner, cfg Config) string {
	var b strings.Builder
	writeLearner(&b, l)

	fmt.Fprintf(&b, `
Instructions:
Generate %d to %d core concepts that form the initial learning roadmap for this learner. They are used to run an assessment interview and then plan lessons.
1. Personalization: the concepts must match the stated goal and level. A beginner goal starts with fundamentals, not advanced topics.
2. Logical progression: order concepts from the most foundational to the most advanced, each building on the ones before it.
3. Interview-worthy: every concept must be substantial enough to ask a question about.
4. Clarity: give only concise concept titles, no descriptions or numbering.

Edge cases:
- If the goal is very broad, interpret it as a structured path and default to foundations.
- If the level seems inconsistent with the goal, prefer foundations that lead toward the goal.
- If the subject is niche, pick the most fundamental concepts within that niche.
- If no goal is given, cover the core of the subject.`, min(5, cfg.MaxConcepts), cfg.MaxConcepts)

	return b.String()
}

func buildGroundedMessage(l Learner, chunks []retrieval.Chunk, cfg Config) string {
	var b strings.Builder
	writeLearner(&b, l)

	b.WriteString("\nRelevant learning materials:\n")
	for _, c := range chunks {
		fmt.Fprintf(&b, "--- Document Title: %s\n--- Content Snippet:\n%s\n\n", orUnknown(c.Title), truncate(c.Content, cfg.GroundedSnippetChars))
	}

	b.WriteString(`Instructions:
Based only on the learning materials above and the learner's subject, goal and level, generate 2 to 3 core concepts for an assessment interview.
1. Material-grounded: every concept must be supported by the materials. Do not invent concepts they do not cover.
2. Personalization: the concepts must match the stated goal and level.
3. Logical progression: order concepts from foundational to advanced.
4. Clarity: give only concise concept titles, no descriptions or numbering.

Edge cases:
- If the materials are sparse or loosely aligned, pick the most relevant foundational concepts they do cover.
- If the materials cover advanced topics but the learner is a beginner, choose only the beginner-appropriate ones.
- If nothing relevant can be extracted, return an empty list.`)

	return b.String()
}

func buildRelevanceMessage(l Learner, chunks []retrieval.Chunk, cfg Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A learner wants to study %q to achieve the goal %q at a %s level.\n", l.Subject, orNone(l.Goal), orNone(l.Level))
	b.WriteString("Below are excerpts from the available learning documents.\n\n")

	for _, c := range chunks {
		fmt.Fprintf(&b, "Section: %s\n%s\n\n", orUnknown(c.Title), truncate(c.Content, cfg.GateSnippetChars))
	}

	b.WriteString("Determine if these materials are appropriate to support their learning.")
	return b.String()
}

// Query is the retrieval key for a learner.
func Query(l Learner) string {
	return strings.Join(strings.Fields(l.Subject+" "+l.Goal+" "+l.Level), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not specified"
	}
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
