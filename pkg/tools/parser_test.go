package tools

import (
	"testing"
)

func TestParse_BareJSON(t *testing.T) {
	inv, ok := Parse(`{"tool": "search", "collection": "orders", "query": {"order_id": 123}, "limit": 5}`)
	if !ok {
		t.Fatal("expected an invocation")
	}

	search, ok := inv.(SearchQuery)
	if !ok {
		t.Fatalf("expected SearchQuery, got %T", inv)
	}
	if search.Collection != "orders" {
		t.Errorf("collection = %q, want orders", search.Collection)
	}
	if search.Limit != 5 {
		t.Errorf("limit = %d, want 5", search.Limit)
	}
	if search.Filter["order_id"] != float64(123) {
		t.Errorf("filter order_id = %v, want 123", search.Filter["order_id"])
	}
}

// A bare JSON object and the same JSON wrapped in a code fence must
// parse identically.
func TestParse_FormatInvariance(t *testing.T) {
	bare := `{"tool": "schema_lookup", "collection": "employees"}`
	renderings := []string{
		bare,
		"```json\n" + bare + "\n```",
		"```\n" + bare + "\n```",
		"Sure, let me check.\n" + bare,
		"  \n" + bare + "\n  ",
	}

	for _, rendering := range renderings {
		inv, ok := Parse(rendering)
		if !ok {
			t.Errorf("Parse(%q): no invocation", rendering)
			continue
		}
		lookup, ok := inv.(SchemaLookup)
		if !ok {
			t.Errorf("Parse(%q): got %T, want SchemaLookup", rendering, inv)
			continue
		}
		if lookup.Collection != "employees" {
			t.Errorf("Parse(%q): collection = %q", rendering, lookup.Collection)
		}
	}
}

func TestParse_NoMarkerMeansNoInvocation(t *testing.T) {
	replies := []string{
		"The weather is nice.",
		"Braces {like these} are not tools.",
		`{"collection": "orders", "query": {}}`,
		"",
	}

	for _, reply := range replies {
		if inv, ok := Parse(reply); ok {
			t.Errorf("Parse(%q) = %v, want no invocation", reply, inv)
		}
	}
}

// Valid JSON carrying a tool key does not count without the literal
// marker: json permits whitespace before the colon, Parse does not.
func TestParse_MarkerIsLiteral(t *testing.T) {
	replies := []string{
		`{"tool" : "search", "collection": "orders", "query": {}}`,
		"{\"tool\"\t: \"search\", \"collection\": \"orders\", \"query\": {}}",
	}

	for _, reply := range replies {
		if inv, ok := Parse(reply); ok {
			t.Errorf("Parse(%q) = %v, want no invocation", reply, inv)
		}
	}
}

func TestParse_UnknownToolKind(t *testing.T) {
	if _, ok := Parse(`{"tool": "delete_everything", "collection": "orders"}`); ok {
		t.Error("unknown tool kind must report no invocation")
	}
}

func TestParse_NestedBracesInFilter(t *testing.T) {
	raw := `{"tool": "search", "collection": "orders", "query": {"total": {"$gt": 100}}}`

	inv, ok := Parse(raw)
	if !ok {
		t.Fatal("expected an invocation")
	}
	search := inv.(SearchQuery)
	if search.Filter["total"] == nil {
		t.Error("nested filter lost")
	}
}

func TestParse_DefaultLimit(t *testing.T) {
	inv, ok := Parse(`{"tool": "search", "collection": "orders", "query": {}}`)
	if !ok {
		t.Fatal("expected an invocation")
	}
	if got := inv.(SearchQuery).Limit; got != DefaultSearchLimit {
		t.Errorf("limit = %d, want default %d", got, DefaultSearchLimit)
	}
}

// A brace inside a string value defeats the balanced scan (it cannot
// see string boundaries), so the first-{-to-last-} fallback has to
// recover the invocation.
func TestParse_OuterBracesFallback(t *testing.T) {
	raw := `{"tool": "search", "collection": "or}ders", "query": {}}`

	inv, ok := Parse(raw)
	if !ok {
		t.Fatal("expected fallback recovery")
	}
	if got := inv.(SearchQuery).Collection; got != "or}ders" {
		t.Errorf("collection = %q", got)
	}
}

func TestParse_NewlinesInsideObject(t *testing.T) {
	raw := "{\n  \"tool\": \"search\",\n  \"collection\": \"orders\",\n  \"query\": {}\n}"

	inv, ok := Parse(raw)
	if !ok {
		t.Fatal("expected an invocation")
	}
	if inv.(SearchQuery).Collection != "orders" {
		t.Error("collection lost across newlines")
	}
}

func TestExtractStrategies(t *testing.T) {
	t.Run("balanced picks smallest span", func(t *testing.T) {
		raw := `{"outer": true} {"tool": "search", "collection": "a", "query": {}} trailing`
		span, ok := extractBalanced(raw)
		if !ok {
			t.Fatal("expected a span")
		}
		if span != `{"tool": "search", "collection": "a", "query": {}}` {
			t.Errorf("span = %q", span)
		}
	})

	t.Run("fenced requires leading brace", func(t *testing.T) {
		if _, ok := extractFenced("prose first ```json\n{\"tool\": \"x\"}\n```"); ok {
			t.Error("fence strip without leading brace should fail")
		}
	})

	t.Run("outer braces need both delimiters", func(t *testing.T) {
		if _, ok := extractOuterBraces("no braces here"); ok {
			t.Error("expected failure")
		}
		if _, ok := extractOuterBraces("} reversed {"); ok {
			t.Error("expected failure on reversed delimiters")
		}
	})
}
