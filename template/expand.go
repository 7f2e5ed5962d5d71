package template

import (
	"fmt"
	"regexp"
	"strings"
)

// Context is the codegen surface a template needs. It's a narrowed,
// string-only view of blocks.Context (whose owner, blocks.TemplateKind,
// adapts one to the other) so template/ never has to import blocks/ —
// spec.md §9's tagged-variant design puts the dependency the other way:
// the wrapper depends on the engine, not the engine on its wrapper.
type Context interface {
	BlockID() string

	GetInputRegister(port string) (string, bool)
	IsOutputConnected(port string) bool
	AllocateRegister(port, aliasHint string) (string, error)
	GetScratchRegister() (string, error)
	GetParameterText(paramID string) string

	PushInitCode(line string)
	PushMainCode(line string)
	PushHeaderComment(line string)
}

var placeholderRe = regexp.MustCompile(`\$\{([a-zA-Z0-9_.]+)\}`)

// sink is where a resolved, non-blank line of a section ultimately goes.
type sink func(line string)

// ExpandHeader runs a template's @section header lines once, emitting them
// as one-time initialization code (the declarative counterpart of an
// imperative Kind's GenInit).
func ExpandHeader(t *Template, ctx Context, localRegs, localMem map[string]string) error {
	ctx.PushHeaderComment(fmt.Sprintf("%s (template %s)", ctx.BlockID(), t.Meta.Type))
	return expandSection(t.Header, ctx, localRegs, localMem, ctx.PushInitCode)
}

// ExpandMain runs a template's @section main lines, emitting them as
// per-sample code (the declarative counterpart of GenMain).
func ExpandMain(t *Template, ctx Context, localRegs, localMem map[string]string) error {
	return expandSection(t.Main, ctx, localRegs, localMem, ctx.PushMainCode)
}

func expandSection(lines []bodyLine, ctx Context, localRegs, localMem map[string]string, emit sink) error {
	for _, l := range lines {
		switch l.kind {
		case lineLiteral:
			resolved, err := resolveLine(l.text, ctx, localRegs, localMem)
			if err != nil {
				return err
			}
			if strings.TrimSpace(resolved) == "" {
				continue
			}
			emit(resolved)
		case lineIf:
			ok, err := Eval(l.cond, &ctxEvaluator{ctx: ctx})
			if err != nil {
				return err
			}
			branch := l.elseLines
			if ok {
				branch = l.thenLines
			}
			if err := expandSection(branch, ctx, localRegs, localMem, emit); err != nil {
				return err
			}
		}
	}
	return nil
}

// ctxEvaluator adapts a template.Context to the Evaluator interface @if
// conditions are checked against.
type ctxEvaluator struct{ ctx Context }

func (e *ctxEvaluator) ParamValue(id string) (string, bool) {
	return e.ctx.GetParameterText(id), true
}

func (e *ctxEvaluator) PinConnected(port string) bool {
	if _, ok := e.ctx.GetInputRegister(port); ok {
		return true
	}
	return e.ctx.IsOutputConnected(port)
}

// resolveLine substitutes every ${...} placeholder in one literal line
// (spec.md §4.4: "${input.PORT}, ${output.PORT}, ${PARAMETER}, ${reg.LOCAL},
// ${mem.LOCAL}... unresolved placeholders are fatal").
func resolveLine(text string, ctx Context, localRegs, localMem map[string]string) (string, error) {
	var firstErr error
	out := placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		name := m[2 : len(m)-1] // strip ${ and }
		v, err := resolvePlaceholder(name, ctx, localRegs, localMem)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func resolvePlaceholder(name string, ctx Context, localRegs, localMem map[string]string) (string, error) {
	switch {
	case strings.HasPrefix(name, "input."):
		port := strings.TrimPrefix(name, "input.")
		if alias, ok := ctx.GetInputRegister(port); ok {
			return alias, nil
		}
		return "", fmt.Errorf("template: unresolved placeholder ${input.%s}: port not connected", port)
	case strings.HasPrefix(name, "output."):
		port := strings.TrimPrefix(name, "output.")
		alias, err := ctx.AllocateRegister(port, fmt.Sprintf("%s_%s", ctx.BlockID(), port))
		if err != nil {
			return "", fmt.Errorf("template: unresolved placeholder ${output.%s}: %w", port, err)
		}
		return alias, nil
	case strings.HasPrefix(name, "reg."):
		local := strings.TrimPrefix(name, "reg.")
		if alias, ok := localRegs[local]; ok {
			return alias, nil
		}
		return "", fmt.Errorf("template: unresolved placeholder ${reg.%s}: no such local register", local)
	case strings.HasPrefix(name, "mem."):
		local := strings.TrimPrefix(name, "mem.")
		if mem, ok := localMem[local]; ok {
			return mem, nil
		}
		return "", fmt.Errorf("template: unresolved placeholder ${mem.%s}: no such local memory", local)
	default:
		return ctx.GetParameterText(name), nil
	}
}
