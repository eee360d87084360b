package plan

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ResolveVariables builds the flat variable map frozen into CreateFile
// records: project name from whatever package descriptor the target carries,
// the creation date, and the framework version.
func ResolveVariables(root, frameworkVersion string, now time.Time) map[string]string {
	name := projectName(root)
	return map[string]string{
		"PROJECT_NAME":  name,
		"PROJECT_TITLE": titleCase(name),
		"DATE":          now.Format("2006-01-02"),
		"YEAR":          now.Format("2006"),
		"VERSION":       frameworkVersion,
	}
}

// projectName tries package descriptors in order (package.json,
// pyproject.toml, go.mod) and falls back to the directory's base name.
func projectName(root string) string {
	if name := packageJSONName(filepath.Join(root, "package.json")); name != "" {
		return name
	}
	if name := pyprojectName(filepath.Join(root, "pyproject.toml")); name != "" {
		return name
	}
	if name := goModuleName(filepath.Join(root, "go.mod")); name != "" {
		return name
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}

func packageJSONName(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return ""
	}
	// Strip a scope prefix like @org/name.
	name := pkg.Name
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSpace(name)
}

func pyprojectName(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var doc struct {
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
	}
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Project.Name)
}

func goModuleName(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			module := strings.TrimSpace(strings.TrimPrefix(line, "module "))
			if idx := strings.LastIndex(module, "/"); idx >= 0 {
				module = module[idx+1:]
			}
			return module
		}
	}
	return ""
}

// titleCase turns "my-cool-project" into "My Cool Project".
func titleCase(name string) string {
	spaced := strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(name)
	return cases.Title(language.English).String(spaced)
}
