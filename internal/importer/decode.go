package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"pagebuilder/internal/domain"
)

// ErrEmpty is returned for a content file with no document in it, which is
// what editors briefly leave behind while saving.
var ErrEmpty = errors.New("empty content file")

// PageID returns the page a content file belongs to: its base name without
// extension. ok is false for files the importer does not read.
func PageID(path string) (pageID string, ok bool) {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return "", false
	}
	if strings.HasPrefix(base, ".") {
		return "", false
	}
	pageID = strings.TrimSuffix(base, filepath.Ext(base))
	return pageID, pageID != ""
}

// Decode parses a page content file. The document is either a list of
// elements or a mapping with an "elements" list. Elements without an id get
// a fresh one and elements without "visible" are visible.
func Decode(path string, data []byte) ([]domain.CanvasElement, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, ErrEmpty
	}

	var raw any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	default:
		return nil, fmt.Errorf("unsupported content file %s", filepath.Base(path))
	}
	if raw == nil {
		return nil, ErrEmpty
	}

	items, err := elementList(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: element %d is not a mapping", filepath.Base(path), i)
		}
		if id, _ := m["id"].(string); id == "" {
			m["id"] = uuid.New().String()
		}
		if _, ok := m["visible"]; !ok {
			m["visible"] = true
		}
	}

	// A JSON round trip gives YAML and JSON files the same value types in
	// props and styles.
	buf, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	elements := []domain.CanvasElement{}
	if err := json.Unmarshal(buf, &elements); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	for _, e := range elements {
		if !e.Type.Valid() {
			return nil, fmt.Errorf("%s: element %s has unknown type %q", filepath.Base(path), e.ID, e.Type)
		}
	}
	return elements, nil
}

func elementList(raw any) ([]any, error) {
	switch v := raw.(type) {
	case []any:
		return v, nil
	case map[string]any:
		field, present := v["elements"]
		if !present {
			return nil, errors.New(`missing "elements"`)
		}
		if field == nil {
			return []any{}, nil
		}
		list, ok := field.([]any)
		if !ok {
			return nil, errors.New(`"elements" must be a list`)
		}
		return list, nil
	}
	return nil, fmt.Errorf("unexpected document of type %T", raw)
}
