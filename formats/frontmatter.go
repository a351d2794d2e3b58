package formats

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// frontmatterPattern matches a leading block delimited by "---" lines,
// tolerating surrounding whitespace and CRLF line endings.
var frontmatterPattern = regexp.MustCompile(`(?s)^\s*---\s*\r?\n(.*?)\r?\n\s*---\s*\r?\n`)

// ExtractFrontmatter splits a leading YAML frontmatter block from text.
//
// On success it returns the flattened fields and the remaining body.
// Nested mappings and sequences become their JSON serialization; scalars
// keep their type. A missing block, malformed YAML or a block that is not
// a mapping yields empty metadata and the original text.
func ExtractFrontmatter(text string) (map[string]any, string) {
	loc := frontmatterPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return map[string]any{}, text
	}

	var parsed any
	if err := yaml.Unmarshal([]byte(text[loc[2]:loc[3]]), &parsed); err != nil {
		return map[string]any{}, text
	}

	fields, ok := normalizeYAML(parsed).(map[string]any)
	if !ok {
		return map[string]any{}, text
	}

	meta := make(map[string]any, len(fields))
	for k, v := range fields {
		meta[k] = flattenValue(v)
	}
	return meta, text[loc[1]:]
}

// normalizeYAML converts map[any]any produced for non-string keys into
// map[string]any so nested values can be JSON encoded.
func normalizeYAML(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}

func flattenValue(v any) any {
	switch v := v.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return v
	}
}
