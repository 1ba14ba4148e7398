package seeds

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader handles loading and parsing of a seed searches file
type Loader struct {
	filePath string
}

// NewLoader creates a new seed file loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the seed file location.
func (l *Loader) Path() string {
	return l.filePath
}

// Load reads and parses the seed file
func (l *Loader) Load() (SeedFile, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return SeedFile{}, fmt.Errorf("failed to read seed file: %w", err)
	}

	// Seed files may be shared with dashboards that template values ({{VAR}})
	data = stripTemplateVariables(data)

	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return SeedFile{}, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	return file, nil
}

// stripTemplateVariables replaces template variables with an empty string
// Example: {{SEARCH_VAR_QUERY}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
