package template

import (
	"fmt"
	"strings"
)

type lineKind int

const (
	lineLiteral lineKind = iota
	lineIf
)

// bodyLine is one parsed body element: a literal assembly line (with
// placeholders still unresolved) or an @if/@else/@endif conditional block.
type bodyLine struct {
	kind lineKind
	text string // lineLiteral

	cond      string // lineIf: raw boolean expression text
	thenLines []bodyLine
	elseLines []bodyLine
}

// parseBody splits a template body into its @section header / @section main
// lists, recursively parsing @if/@else/@endif nesting within each.
func parseBody(body string) (header, main []bodyLine, err error) {
	lines := strings.Split(body, "\n")
	pos := 0
	var current *[]bodyLine

	for pos < len(lines) {
		raw := lines[pos]
		trimmed := strings.TrimSpace(raw)

		switch {
		case trimmed == "":
			pos++
		case strings.HasPrefix(trimmed, "#"):
			pos++ // comment directive
		case strings.HasPrefix(trimmed, "@section"):
			section := strings.TrimSpace(strings.TrimPrefix(trimmed, "@section"))
			switch section {
			case "header":
				current = &header
			case "main":
				current = &main
			default:
				return nil, nil, fmt.Errorf("template: unknown section %q", section)
			}
			pos++
		case strings.HasPrefix(trimmed, "@if"):
			if current == nil {
				return nil, nil, fmt.Errorf("template: @if outside any @section")
			}
			var block bodyLine
			block, pos, err = parseIf(lines, pos)
			if err != nil {
				return nil, nil, err
			}
			*current = append(*current, block)
		case trimmed == "@else" || trimmed == "@endif":
			return nil, nil, fmt.Errorf("template: unmatched %q", trimmed)
		default:
			if current == nil {
				return nil, nil, fmt.Errorf("template: content outside any @section: %q", trimmed)
			}
			*current = append(*current, bodyLine{kind: lineLiteral, text: raw})
			pos++
		}
	}
	return header, main, nil
}

// parseIf parses one @if ... [@else ...] @endif block starting at lines[pos]
// (which must be the @if line) and returns the block plus the index just
// past its @endif.
func parseIf(lines []string, pos int) (bodyLine, int, error) {
	header := strings.TrimSpace(lines[pos])
	cond := strings.TrimSpace(strings.TrimPrefix(header, "@if"))
	if cond == "" {
		return bodyLine{}, 0, fmt.Errorf("template: @if with no condition")
	}
	pos++

	block := bodyLine{kind: lineIf, cond: cond}
	dest := &block.thenLines

	for pos < len(lines) {
		trimmed := strings.TrimSpace(lines[pos])
		switch {
		case trimmed == "@else":
			dest = &block.elseLines
			pos++
		case trimmed == "@endif":
			return block, pos + 1, nil
		case strings.HasPrefix(trimmed, "@if"):
			nested, next, err := parseIf(lines, pos)
			if err != nil {
				return bodyLine{}, 0, err
			}
			*dest = append(*dest, nested)
			pos = next
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			pos++
		default:
			*dest = append(*dest, bodyLine{kind: lineLiteral, text: lines[pos]})
			pos++
		}
	}
	return bodyLine{}, 0, fmt.Errorf("template: @if %q missing @endif", cond)
}
