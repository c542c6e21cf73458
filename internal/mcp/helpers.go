package mcpserver

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseJSON parses a JSON string into the target type.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

// parseBag parses an optional JSON object argument such as props or styles.
// An empty string yields a nil map.
func parseBag(args map[string]any, key string) (map[string]any, error) {
	raw, _ := args[key].(string)
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var bag map[string]any
	if err := parseJSON(raw, &bag); err != nil {
		return nil, fmt.Errorf("%s must be a JSON object: %w", key, err)
	}
	return bag, nil
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func getBool(args map[string]any, key string, fallback bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return fallback
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

func boolPtr(v bool) *bool { return &v }
