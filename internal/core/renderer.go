package core

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/edvin/clustertemplates/internal/model"
)

const (
	TemplateDefault = "template.yaml"
	TemplateVPC     = "template-vpc.yaml"
)

//go:embed templates/*
var templateFS embed.FS

var deploymentTmpl = template.Must(template.New("deployment").Funcs(template.FuncMap{
	"quote":      quote,
	"shellquote": shellquote,
}).ParseFS(templateFS, "templates/*"))

// quote renders v as a double-quoted scalar that is valid in both YAML
// and JSON.
func quote(v any) string {
	b, err := json.Marshal(fmt.Sprint(v))
	if err != nil {
		return `""`
	}
	return string(b)
}

// shellquote renders v as a single-quoted shell word, so the node's shell
// takes it literally. Control characters are refused since a newline would
// also end the surrounding YAML block.
func shellquote(v any) (string, error) {
	s := fmt.Sprint(v)
	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return "", fmt.Errorf("shell value %q contains control characters", s)
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'", nil
}

// TemplateName returns the template variant for the network topology.
func TemplateName(vpc bool) string {
	if vpc {
		return TemplateVPC
	}
	return TemplateDefault
}

// Render executes the selected deployment template and checks that the
// result is well-formed YAML.
func Render(params model.TemplateParams, vpc bool) ([]byte, error) {
	name := TemplateName(vpc)

	var buf bytes.Buffer
	if err := deploymentTmpl.ExecuteTemplate(&buf, name, params); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		return nil, fmt.Errorf("render %s: output is not valid YAML: %w", name, err)
	}

	return buf.Bytes(), nil
}
