package tools

import (
	"encoding/json"
	"errors"
	"strings"
)

// toolMarker is the literal that distinguishes a tool invocation from
// ordinary JSON the model might quote in prose.
const toolMarker = `"tool":`

var errUnknownTool = errors.New("unknown tool kind")

// Parse inspects a raw model reply and recovers a tool invocation if
// any reasonable rendering of one is present. Model output is
// unreliable: invocations arrive wrapped in code fences, prose, or
// stray whitespace, and formatting drift is the dominant failure mode
// of free-text tool protocols. The extraction strategies below run in
// order with first-success-wins; if none yields a decodable invocation
// the reply is the final answer and Parse reports false.
//
// A reply without the literal marker is never an invocation, no matter
// what braces it carries; the coarse fallback only recovers replies
// where a marked span failed to decode.
func Parse(raw string) (Invocation, bool) {
	if !strings.Contains(raw, toolMarker) {
		return nil, false
	}

	candidate, found := extractBalanced(raw)
	if !found {
		candidate, found = extractFenced(raw)
	}

	if found {
		inv, err := decodeInvocation(candidate)
		if err == nil {
			return inv, true
		}
		if errors.Is(err, errUnknownTool) {
			return nil, false
		}
		// Malformed JSON in the matched span; fall through to the
		// coarsest extraction.
	}

	candidate, found = extractOuterBraces(raw)
	if !found {
		return nil, false
	}

	inv, err := decodeInvocation(candidate)
	if err != nil {
		return nil, false
	}
	return inv, true
}

// extractBalanced collapses newlines and returns the smallest balanced
// {...} span containing the tool marker.
func extractBalanced(raw string) (string, bool) {
	collapsed := strings.ReplaceAll(raw, "\n", " ")

	best := ""
	for start := 0; start < len(collapsed); start++ {
		if collapsed[start] != '{' {
			continue
		}

		depth := 0
		for end := start; end < len(collapsed); end++ {
			switch collapsed[end] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				span := collapsed[start : end+1]
				if strings.Contains(span, toolMarker) && (best == "" || len(span) < len(best)) {
					best = span
				}
				break
			}
		}
	}

	return best, best != ""
}

// extractFenced strips common code-fence markers and accepts the
// remainder when it opens with a brace and carries the marker.
func extractFenced(raw string) (string, bool) {
	stripped := strings.TrimSpace(raw)
	for _, fence := range []string{"```json", "```JSON", "```"} {
		stripped = strings.ReplaceAll(stripped, fence, "")
	}
	stripped = strings.TrimSpace(stripped)

	if strings.HasPrefix(stripped, "{") && strings.Contains(stripped, toolMarker) {
		return stripped, true
	}
	return "", false
}

// extractOuterBraces takes everything from the first { to the last }
// of the raw reply, inclusive.
func extractOuterBraces(raw string) (string, bool) {
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first == -1 || last == -1 || last < first {
		return "", false
	}
	return raw[first : last+1], true
}

// wireInvocation is the JSON shape the model is taught to emit.
type wireInvocation struct {
	Tool       string         `json:"tool"`
	Collection string         `json:"collection"`
	Query      map[string]any `json:"query"`
	Limit      int            `json:"limit"`
}

func decodeInvocation(text string) (Invocation, error) {
	var wire wireInvocation
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return nil, err
	}

	switch wire.Tool {
	case ToolSchemaLookup:
		return SchemaLookup{Collection: wire.Collection}, nil
	case ToolSearch:
		limit := wire.Limit
		if limit <= 0 {
			limit = DefaultSearchLimit
		}
		return SearchQuery{
			Collection: wire.Collection,
			Filter:     wire.Query,
			Limit:      limit,
		}, nil
	default:
		return nil, errUnknownTool
	}
}
