package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoJSONObject is returned when content contains no '{' ... '}' span.
	ErrNoJSONObject = errors.New("no JSON object found in response")
	// ErrParseFailed is returned when the extracted span is not valid JSON for the target type.
	ErrParseFailed = errors.New("failed to parse response")
)

// ExtractJSON returns the substring of content running from the first '{'
// to the last '}' inclusive. Leading and trailing commentary is discarded;
// anything between the two braces is kept verbatim, so content holding two
// separate objects yields a span that will not decode.
//
// The raw content is embedded in the returned error.
func ExtractJSON(content string) (string, error) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')

	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: %s", ErrNoJSONObject, content)
	}

	return content[start : end+1], nil
}

// Parse recovers a JSON object from free-form model output via ExtractJSON
// and decodes it into T. Failures wrap ErrNoJSONObject or ErrParseFailed
// and carry the raw content.
func Parse[T any](content string) (T, error) {
	var result T

	obj, err := ExtractJSON(content)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(obj), &result); err != nil {
		return result, fmt.Errorf("%w: %w: %s", ErrParseFailed, err, content)
	}

	return result, nil
}
