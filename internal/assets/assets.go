package assets

import (
	"embed"
	"io/fs"
)

//go:embed embedded_manifest
var manifestFS embed.FS

//go:embed embedded_templates
var templatesFS embed.FS

//go:embed embedded_addons
var addonsFS embed.FS

//go:embed embedded_legacy
var legacyFS embed.FS

//go:embed embedded_schemas/manifest-v1.json
var manifestSchema []byte

// ManifestPath is the bundled layout manifest inside GetManifestFS.
const ManifestPath = "manifest.json"

// LegacyTablePath is the bundled legacy mapping table inside GetLegacyFS.
const LegacyTablePath = "legacy-map.yaml"

func GetManifestFS() fs.FS {
	if sub, err := fs.Sub(manifestFS, "embedded_manifest"); err == nil {
		return sub
	}
	return manifestFS
}

func GetTemplatesFS() fs.FS {
	if sub, err := fs.Sub(templatesFS, "embedded_templates"); err == nil {
		return sub
	}
	return templatesFS
}

func GetAddonsFS() fs.FS {
	if sub, err := fs.Sub(addonsFS, "embedded_addons"); err == nil {
		return sub
	}
	return addonsFS
}

func GetLegacyFS() fs.FS {
	if sub, err := fs.Sub(legacyFS, "embedded_legacy"); err == nil {
		return sub
	}
	return legacyFS
}

// ManifestSchema returns the JSON Schema the bundled manifest is validated
// against before any operation is planned.
func ManifestSchema() []byte {
	return manifestSchema
}

// TemplateBody reads the template asset for a manifest template id.
// Template ids map to "<id>.md" inside the templates bundle.
func TemplateBody(id string) ([]byte, error) {
	return fs.ReadFile(GetTemplatesFS(), id+".md")
}

// HasTemplate reports whether a template id resolves to a bundled asset.
func HasTemplate(id string) bool {
	f, err := GetTemplatesFS().Open(id + ".md")
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
