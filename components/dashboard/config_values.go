package dashboard

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Widget configuration arrives as map[string]any from YAML (ints), JSON
// request bodies (float64 or json.Number) or form posts (strings). The
// readers below coerce those shapes and fall back on anything else.

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func floatOr(value any, fallback float64) float64 {
	if f, ok := numericValue(value); ok {
		return f
	}
	return fallback
}

// intOr truncates fractional input.
func intOr(value any, fallback int) int {
	if f, ok := numericValue(value); ok {
		return int(f)
	}
	return fallback
}

func stringOr(value any, fallback string) string {
	if s, _ := value.(string); s != "" {
		return s
	}
	return fallback
}

func boolOr(value any, fallback bool) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	if s, ok := value.(string); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	return fallback
}

// sliceOr keeps the non-empty strings of a list.
func sliceOr(value any, fallback []string) []string {
	var out []string
	switch list := value.(type) {
	case []string:
		for _, s := range list {
			if s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range list {
			if s := stringOr(item, ""); s != "" {
				out = append(out, s)
			}
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// pointsOr reads a numeric series. nil entries become gaps; unreadable
// entries become zero.
func pointsOr(value any) []Point {
	var raw []any
	switch list := value.(type) {
	case []Point:
		return append([]Point(nil), list...)
	case []float64:
		raw = make([]any, len(list))
		for i, v := range list {
			raw[i] = v
		}
	case []int:
		raw = make([]any, len(list))
		for i, v := range list {
			raw[i] = v
		}
	case []any:
		raw = list
	default:
		return nil
	}
	points := make([]Point, len(raw))
	for i, item := range raw {
		if item == nil {
			points[i] = GapPoint()
		} else {
			points[i] = PointOf(floatOr(item, 0))
		}
	}
	return points
}

func mapsOr(value any) []map[string]any {
	if list, ok := value.([]map[string]any); ok {
		return list
	}
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
