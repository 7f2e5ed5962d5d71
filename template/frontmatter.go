// Package template is the declarative ATL block template engine (spec.md
// §4.4 "Template engine (declarative ATL)", §6 "ATL block template files").
// A Template is frontmatter JSON plus a body of section markers, @if/@else
// conditionals, and placeholder-bearing literal lines; ExpandHeader and
// ExpandMain walk the body against one block instance's Context and produce init/main code
// the same way an imperative blocks.Kind would.
package template

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PortDecl is one frontmatter input/output entry.
type PortDecl struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // "audio" or "control"
}

// ParamDecl is one frontmatter parameter entry.
type ParamDecl struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       string   `json:"type"` // "number", "boolean", "select", "string"
	Default    any      `json:"default"`
	Min        *float64 `json:"min"`
	Max        *float64 `json:"max"`
	Options    []string `json:"options"`
	Conversion string   `json:"conversion"` // "LOGFREQ", "DBLEVEL", "" (identity)
}

// ResourceDecl is one local register/memory declaration.
type ResourceDecl struct {
	ID   string `json:"id"`
	Size int    `json:"size"` // meaningful only for memo entries
}

// Frontmatter is the JSON metadata block between the `---` delimiters
// (spec.md §6 "ATL block template files").
type Frontmatter struct {
	Type        string         `json:"type"`
	Category    string         `json:"category"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Color       string         `json:"color"`
	Width       int            `json:"width"`
	Inputs      []PortDecl     `json:"inputs"`
	Outputs     []PortDecl     `json:"outputs"`
	Parameters  []ParamDecl    `json:"parameters"`
	Registers   []ResourceDecl `json:"registers"`
	Memory      []ResourceDecl `json:"memo"`
}

// Template is one parsed ATL file: frontmatter plus body lines split by
// section.
type Template struct {
	Meta   Frontmatter
	Header []bodyLine
	Main   []bodyLine
}

// Parse splits a raw ATL document into frontmatter and body, then parses
// the body into header/main sections.
func Parse(source string) (*Template, error) {
	fm, body, err := splitFrontmatter(source)
	if err != nil {
		return nil, err
	}
	var meta Frontmatter
	if err := json.Unmarshal([]byte(fm), &meta); err != nil {
		return nil, fmt.Errorf("template: invalid frontmatter JSON: %w", err)
	}
	header, main, err := parseBody(body)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", meta.Type, err)
	}
	return &Template{Meta: meta, Header: header, Main: main}, nil
}

func splitFrontmatter(source string) (fm, body string, err error) {
	const delim = "---"
	s := strings.TrimLeft(source, "\r\n")
	if !strings.HasPrefix(s, delim) {
		return "", "", fmt.Errorf("template: missing opening %q delimiter", delim)
	}
	rest := s[len(delim):]
	idx := strings.Index(rest, delim)
	if idx < 0 {
		return "", "", fmt.Errorf("template: missing closing %q delimiter", delim)
	}
	return strings.TrimSpace(rest[:idx]), rest[idx+len(delim):], nil
}
