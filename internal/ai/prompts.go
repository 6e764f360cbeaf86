package ai

import (
	"fmt"
	"regexp"
	"strings"
)

var numberingPattern = regexp.MustCompile(`^\s*(?:\d+[\.\)]\s*|[-*•]\s+)`)

// BuildSummaryPrompt constructs the prompt for the free-text summary.
func BuildSummaryPrompt(text string) string {
	return fmt.Sprintf(`Please summarize the following text into a list of short sentences about specific events or people.
The length of the list should be between %d and %d topics.
Write only the list of topics, no other text.
Write without any formatting, just the list of topics.
Text:
 %s

Summary:`, MinTopics, MaxTopics, text)
}

// BuildStructuredSummaryPrompt constructs the prompt for the schema-constrained
// summary. The schema sent alongside it is what actually bounds the output.
func BuildStructuredSummaryPrompt(text string) string {
	return fmt.Sprintf(`Please summarize the following text into a list of short sentences about specific events or people.
The length of the list should be between %d and %d topics.
Write only the list of structured objects in the specified json format, no other text.
The main entity field should contain the name of the main person in the news item.
The news item field should be a standalone sentence describing the news item.
Text:
 %s
`, MinTopics, MaxTopics, text)
}

// BuildFakeNewsPrompt constructs the prompt for a short article that
// contradicts the source text.
func BuildFakeNewsPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("Please generate a fake news article based on the following text.\n")
	sb.WriteString("The article should contradict the information in the text.\n")
	sb.WriteString("The article should be 50 words long.\n")
	sb.WriteString("The article subject should be the first topic in the text.\n")
	sb.WriteString(text)
	sb.WriteString("\n")
	return sb.String()
}

// ParseSummaryLines splits a free-text summary into its topic sentences,
// dropping list numbering and bullets.
func ParseSummaryLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(numberingPattern.ReplaceAllString(line, ""))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
