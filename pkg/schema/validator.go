// Package schema validates hook configuration documents against the
// embedded JSON-Schema before they reach the structural validator.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hooksmith/hooksmith/internal/assets"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Result holds the validation result.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single schema violation.
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

var (
	hookSchemaOnce sync.Once
	hookSchema     *gojsonschema.Schema
	hookSchemaErr  error
)

// hookConfigSchema compiles the embedded hook-config schema once and
// caches it for the life of the process.
func hookConfigSchema() (*gojsonschema.Schema, error) {
	hookSchemaOnce.Do(func() {
		raw, ok := assets.GetSchema(assets.HookConfigSchemaPath)
		if !ok {
			hookSchemaErr = fmt.Errorf("embedded schema %s not found", assets.HookConfigSchemaPath)
			return
		}
		jsonBytes, err := yamlToJSON(raw)
		if err != nil {
			hookSchemaErr = fmt.Errorf("converting embedded schema to JSON: %w", err)
			return
		}
		hookSchema, hookSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
	})
	return hookSchema, hookSchemaErr
}

// ValidateHookConfig checks raw document bytes (JSON, or YAML for draft
// documents) against the hook-config schema.
func ValidateHookConfig(data []byte) (*Result, error) {
	sch, err := hookConfigSchema()
	if err != nil {
		return nil, err
	}
	jsonBytes := data
	if !looksLikeJSON(data) {
		if jsonBytes, err = yamlToJSON(data); err != nil {
			return nil, fmt.Errorf("parsing document: %w", err)
		}
	}
	res, err := sch.Validate(gojsonschema.NewBytesLoader(jsonBytes))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	out := &Result{Valid: res.Valid()}
	for _, detail := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Path:    detail.Field(),
			Message: detail.Description(),
		})
	}
	return out, nil
}

// looksLikeJSON sniffs the first non-space byte.
func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// yamlToJSON re-encodes YAML bytes as JSON for gojsonschema, which only
// consumes JSON.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(normalizeYAML(doc))
}

// normalizeYAML rewrites map[interface{}]interface{} trees (as produced
// by some YAML inputs) into map[string]interface{} so they JSON-encode.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(val)
		}
		return out
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case []interface{}:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}
