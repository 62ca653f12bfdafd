// Copyright (c) 2025 Justin Cranford
//
//

package util

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
)

// ParseYAML decodes a YAML document into a generic value (map[string]any
// for mappings, []any for sequences, and so on).
func ParseYAML(yamlStr string) (any, error) {
	var obj any

	if err := yaml.Unmarshal([]byte(yamlStr), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return obj, nil
}

// ParseJSON decodes a JSON document into a generic value.
func ParseJSON(jsonStr string) (any, error) {
	var obj any

	if err := json.Unmarshal([]byte(jsonStr), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return obj, nil
}

// EncodeYAML marshals v to a YAML document.
func EncodeYAML(v any) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}

	return string(out), nil
}

// EncodeJSON marshals v to a JSON document.
func EncodeJSON(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}

	return string(out), nil
}

// YAML2JSON re-encodes a YAML document as JSON.
func YAML2JSON(yamlStr string) (string, error) {
	obj, err := ParseYAML(yamlStr)
	if err != nil {
		return "", err
	}

	return EncodeJSON(obj)
}

// JSON2YAML re-encodes a JSON document as YAML.
func JSON2YAML(jsonStr string) (string, error) {
	obj, err := ParseJSON(jsonStr)
	if err != nil {
		return "", err
	}

	return EncodeYAML(obj)
}
