package ai

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildSummaryPrompt(t *testing.T) {
	p := BuildSummaryPrompt("PAGE TEXT")
	for _, want := range []string{
		"short sentences about specific events or people",
		"between 3 and 5 topics",
		"Write only the list of topics, no other text.",
		"Write without any formatting",
		"PAGE TEXT",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("summary prompt missing %q:\n%s", want, p)
		}
	}
	if !strings.HasSuffix(p, "Summary:") {
		t.Errorf("summary prompt should end with the answer cue:\n%s", p)
	}
}

func TestBuildStructuredSummaryPrompt(t *testing.T) {
	p := BuildStructuredSummaryPrompt("PAGE TEXT")
	for _, want := range []string{
		"between 3 and 5 topics",
		"specified json format, no other text",
		"main person in the news item",
		"standalone sentence",
		"PAGE TEXT",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("structured prompt missing %q:\n%s", want, p)
		}
	}
}

func TestBuildFakeNewsPrompt(t *testing.T) {
	text := "The mayor announced a new park."
	p := BuildFakeNewsPrompt(text)
	for _, want := range []string{
		"fake news article",
		"contradict the information in the text",
		"50 words long",
		"first topic in the text",
		text,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("fake news prompt missing %q:\n%s", want, p)
		}
	}
}

func TestParseSummaryLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain lines", "Alice won.\nBob lost.\n", []string{"Alice won.", "Bob lost."}},
		{"numbered", "1. Alice won.\n2) Bob lost.", []string{"Alice won.", "Bob lost."}},
		{"bullets", "- Alice won.\n* Bob lost.\n• Carol tied.", []string{"Alice won.", "Bob lost.", "Carol tied."}},
		{"blank lines", "\n\nAlice won.\n\n", []string{"Alice won."}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSummaryLines(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSummaryLines(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
