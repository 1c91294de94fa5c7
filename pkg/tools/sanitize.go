package tools

import (
	"sort"
	"strconv"

	"github.com/parley-ai/parley/pkg/store"
)

// SanitizeFilter separates data-filter fields from control fields the
// model commonly nests inside the filter object. It copies the filter,
// pops sort/projection/limit out of the copy, normalizes them into
// execution options, and clamps the final limit to the cap. Control
// values it cannot interpret are silently dropped; sanitizing never
// fails.
func SanitizeFilter(filter map[string]any, requestedLimit, cap int) (map[string]any, store.FindOptions) {
	clean := make(map[string]any, len(filter))
	for k, v := range filter {
		clean[k] = v
	}

	opts := store.FindOptions{}

	if raw, ok := clean["sort"]; ok {
		delete(clean, "sort")
		opts.Sort = normalizeSort(raw)
	}

	if raw, ok := clean["projection"]; ok {
		delete(clean, "projection")
		if projection, ok := raw.(map[string]any); ok {
			opts.Projection = projection
		}
	}
	if opts.Projection == nil {
		// Hide the internal identifier field unless the model asked
		// for specific fields.
		opts.Projection = map[string]any{"_id": 0}
	}

	limit := requestedLimit
	if raw, ok := clean["limit"]; ok {
		delete(clean, "limit")
		if override, ok := toInt(raw); ok {
			limit = override
		}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if cap > 0 && limit > cap {
		limit = cap
	}
	opts.Limit = limit

	return clean, opts
}

// normalizeSort accepts a bare field name (ascending) or a mapping of
// field to numeric direction. Anything else yields no sort.
func normalizeSort(raw any) []store.SortField {
	switch v := raw.(type) {
	case string:
		return []store.SortField{{Key: v, Ascending: true}}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var fields []store.SortField
		for _, k := range keys {
			dir, ok := toInt(v[k])
			if !ok {
				continue
			}
			fields = append(fields, store.SortField{Key: k, Ascending: dir >= 0})
		}
		return fields
	default:
		return nil
	}
}

// toInt coerces the numeric shapes JSON decoding produces.
func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}
