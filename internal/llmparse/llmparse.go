// Package llmparse isolates the tolerant handling of model output: stripping
// markdown code fences around JSON and normalizing single-token
// classification answers. Nothing else in the module inspects raw model text.
package llmparse

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var codeFenceRe = regexp.MustCompile(`(?si)^` + "```" + `(?:json)?\s*(.*?)\s*` + "```" + `$`)

// ErrEmpty is returned when the model produced no usable text.
var ErrEmpty = errors.New("empty model output")

// StripCodeFence removes a surrounding markdown code fence (optionally tagged
// json) and trims whitespace.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// DecodeJSON decodes a JSON object from model output. Code fences are
// stripped; when the text still does not parse, the outermost {...} span is
// tried.
func DecodeJSON(text string, v any) error {
	s := StripCodeFence(text)
	if s == "" {
		return ErrEmpty
	}
	err := json.Unmarshal([]byte(s), v)
	if err == nil {
		return nil
	}
	start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return err
	}
	return json.Unmarshal([]byte(s[start:end+1]), v)
}

// Label normalizes a classification answer and matches it case-insensitively
// against valid. Surrounding quotes, backticks and trailing punctuation are
// ignored; when the answer spans several tokens the first line is used.
func Label(text string, valid []string) (string, bool) {
	s := StripCodeFence(text)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(strings.TrimSpace(s), "\"'`*.:;!,")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, v := range valid {
		if strings.EqualFold(s, v) {
			return v, true
		}
	}
	return s, false
}
