package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Bounds on the number of topics in a structured summary.
const (
	MinTopics = 3
	MaxTopics = 5
)

// TopicsSchema returns the strict schema sent with structured summary requests.
func TopicsSchema() JSONSchema {
	return JSONSchema{
		Name:        "topics",
		Description: "List of news topics extracted from a web page",
		Strict:      true,
		Schema: map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"main_entity": map[string]any{
						"type":        "string",
						"description": "Main person in news item",
					},
					"news_sentence": map[string]any{
						"type":        "string",
						"description": "A sentence describing the news item about the topic",
					},
				},
				"required":             []string{"main_entity", "news_sentence"},
				"additionalProperties": false,
			},
			"minItems": MinTopics,
			"maxItems": MaxTopics,
		},
	}
}

// String returns the raw JSON text.
func (t TopicsJSON) String() string { return string(t) }

// Parse decodes the raw text into topics, enforcing the same shape the schema
// requests: an array of 3 to 5 objects, each with exactly main_entity and
// news_sentence as strings. Markdown code fences around the JSON are ignored.
func (t TopicsJSON) Parse() ([]Topic, error) {
	raw := CleanJSONResponse(string(t))
	fail := func(format string, args ...any) ([]Topic, error) {
		return nil, &MalformedResponseError{Raw: string(t), Reason: fmt.Sprintf(format, args...)}
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return fail("not a JSON array of objects: %v", err)
	}
	if len(items) < MinTopics || len(items) > MaxTopics {
		return fail("got %d topics, want %d to %d", len(items), MinTopics, MaxTopics)
	}

	topics := make([]Topic, 0, len(items))
	for i, item := range items {
		if item == nil {
			return fail("topic %d is null", i)
		}
		if len(item) != 2 {
			return fail("topic %d has %d fields, want main_entity and news_sentence only", i, len(item))
		}
		var topic Topic
		for key, dst := range map[string]*string{"main_entity": &topic.MainEntity, "news_sentence": &topic.NewsSentence} {
			v, ok := item[key]
			if !ok {
				return fail("topic %d is missing %s", i, key)
			}
			if !bytes.HasPrefix(bytes.TrimSpace(v), []byte(`"`)) {
				return fail("topic %d field %s is not a string", i, key)
			}
			if err := json.Unmarshal(v, dst); err != nil {
				return fail("topic %d field %s: %v", i, key, err)
			}
		}
		topics = append(topics, topic)
	}
	return topics, nil
}

// CleanJSONResponse strips markdown code fences from JSON responses.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	if strings.HasSuffix(response, "```") {
		response = strings.TrimSuffix(response, "```")
	}
	return strings.TrimSpace(response)
}
