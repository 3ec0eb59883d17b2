package quire

import (
	"fmt"
	"maps"
	"slices"

	json "github.com/goccy/go-json"
)

// Import builds a document whose snapshot equals v. Keys are written in
// sorted order so the same value always yields the same op log.
func Import(v map[string]any, cfg Config) (*Document, error) {
	d := New(cfg)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.importMap(Root, v); err != nil {
		return nil, err
	}
	return d, nil
}

// ImportJSON is Import for a JSON object.
func ImportJSON(data []byte, cfg Config) (*Document, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level must be an object, got %T", ErrUnsupportedValue, v)
	}
	return Import(m, cfg)
}

// importMap is called with d.mu held.
func (d *Document) importMap(obj ObjID, v map[string]any) error {
	for _, k := range slices.Sorted(maps.Keys(v)) {
		if child, ok := v[k].(map[string]any); ok {
			id, err := d.change(obj, k, ActionMakeMap, nil)
			if err != nil {
				return err
			}
			if err := d.importMap(id, child); err != nil {
				return err
			}
			continue
		}
		val, err := scalar(v[k])
		if err != nil {
			return fmt.Errorf("import %q: %w", k, err)
		}
		if _, err := d.change(obj, k, ActionSet, val); err != nil {
			return err
		}
	}
	return nil
}
