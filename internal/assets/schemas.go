// Package assets embeds the versioned schemas that ship with the binary.
package assets

import (
	"embed"
)

//go:embed embedded_schemas
var schemaFS embed.FS

// HookConfigSchemaPath is the current hook configuration schema.
const HookConfigSchemaPath = "embedded_schemas/schemas/hooks/v1.0.0/hook-config.yaml"

// SchemaInfo holds schema metadata.
type SchemaInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// GetSchema returns the embedded schema bytes by relative path.
func GetSchema(relPath string) ([]byte, bool) {
	data, err := schemaFS.ReadFile(relPath)
	return data, err == nil
}

// GetSchemaNames returns the available schemas with metadata.
func GetSchemaNames() []SchemaInfo {
	known := map[string]string{
		"hook-config-v1.0.0": HookConfigSchemaPath,
	}
	var infos []SchemaInfo
	for name, path := range known {
		if _, ok := GetSchema(path); ok {
			infos = append(infos, SchemaInfo{Name: name, Path: path})
		}
	}
	return infos
}
