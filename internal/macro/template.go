// internal/macro/template.go
package macro

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// render expands {{ .name }} references against vars. Missing variables
// render as the empty string.
func render(tmpl string, vars map[string]string) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("value").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadTemplate, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadTemplate, err)
	}
	return buf.String(), nil
}

// needsVariables reports whether rendering tmpl reads the variable table.
func needsVariables(tmpl string) bool { return strings.Contains(tmpl, "{{") }
