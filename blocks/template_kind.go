package blocks

import (
	"fmt"
	"strconv"

	"github.com/fv1fab/fv1compile/graph"
	"github.com/fv1fab/fv1compile/template"
)

// TemplateKind adapts one parsed ATL template.Template to the Kind
// interface, so a declarative block is indistinguishable from an
// imperative one anywhere they're registered or invoked (spec.md §9:
// "reframe as a tagged variant... plus a trait/interface").
type TemplateKind struct {
	tmpl *template.Template
}

// NewTemplateKind wraps a parsed template as a registrable Kind.
func NewTemplateKind(t *template.Template) *TemplateKind {
	return &TemplateKind{tmpl: t}
}

func (k *TemplateKind) Type() string     { return k.tmpl.Meta.Type }
func (k *TemplateKind) Category() string { return k.tmpl.Meta.Category }

func (k *TemplateKind) Inputs() []PortSpec  { return convertPorts(k.tmpl.Meta.Inputs) }
func (k *TemplateKind) Outputs() []PortSpec { return convertPorts(k.tmpl.Meta.Outputs) }

func (k *TemplateKind) Params() []ParamSpec {
	out := make([]ParamSpec, 0, len(k.tmpl.Meta.Parameters))
	for _, p := range k.tmpl.Meta.Parameters {
		out = append(out, ParamSpec{
			ID:         p.ID,
			Name:       p.Name,
			DataType:   convertDataType(p.Type),
			Default:    convertDefault(p),
			Min:        p.Min,
			Max:        p.Max,
			Options:    p.Options,
			Conversion: convertConversion(p.Conversion),
		})
	}
	return out
}

func convertPorts(decls []template.PortDecl) []PortSpec {
	out := make([]PortSpec, 0, len(decls))
	for _, p := range decls {
		class := graph.Audio
		if p.Type == "control" {
			class = graph.Control
		}
		out = append(out, PortSpec{ID: p.ID, Name: p.Name, Class: class})
	}
	return out
}

func convertDataType(t string) ParamDataType {
	switch t {
	case "boolean":
		return ParamBoolean
	case "select":
		return ParamSelect
	case "string":
		return ParamString
	default:
		return ParamNumber
	}
}

func convertConversion(c string) Conversion {
	switch c {
	case "LOGFREQ":
		return ConvLogFreq
	case "DBLEVEL":
		return ConvDBLevel
	case "SAMPLESMS":
		return ConvSamplesMS
	default:
		return ConvIdentity
	}
}

func convertDefault(p template.ParamDecl) graph.ParamValue {
	switch v := p.Default.(type) {
	case bool:
		return graph.BoolParam(v)
	case string:
		return graph.StringParam(v)
	case float64:
		return graph.NumberParam(v)
	default:
		return graph.ParamValue{}
	}
}

// GenEqu declares this template's local registers up front (spec.md §6:
// "optional registers and memo arrays declaring local resources").
func (k *TemplateKind) GenEqu(ctx Context) error {
	for _, r := range k.tmpl.Meta.Registers {
		if _, err := ctx.AllocateRegister(r.ID, fmt.Sprintf("%s_%s", ctx.BlockID(), r.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (k *TemplateKind) GenInit(ctx Context) error {
	locals, mems, err := k.resolveLocals(ctx)
	if err != nil {
		return err
	}
	return template.ExpandHeader(k.tmpl, &contextAdapter{ctx: ctx}, locals, mems)
}

func (k *TemplateKind) GenMain(ctx Context) error {
	locals, mems, err := k.resolveLocals(ctx)
	if err != nil {
		return err
	}
	return template.ExpandMain(k.tmpl, &contextAdapter{ctx: ctx}, locals, mems)
}

func (k *TemplateKind) resolveLocals(ctx Context) (regs, mems map[string]string, err error) {
	regs = make(map[string]string, len(k.tmpl.Meta.Registers))
	for _, r := range k.tmpl.Meta.Registers {
		alias, err := ctx.AllocateRegister(r.ID, fmt.Sprintf("%s_%s", ctx.BlockID(), r.ID))
		if err != nil {
			return nil, nil, err
		}
		regs[r.ID] = alias
	}
	mems = make(map[string]string, len(k.tmpl.Meta.Memory))
	for _, m := range k.tmpl.Meta.Memory {
		region, err := ctx.AllocateMemory(m.Size)
		if err != nil {
			return nil, nil, err
		}
		mems[m.ID] = region.Name
	}
	return regs, mems, nil
}

// contextAdapter narrows a blocks.Context to template.Context.
type contextAdapter struct {
	ctx Context
}

func (a *contextAdapter) BlockID() string { return a.ctx.BlockID() }

func (a *contextAdapter) GetInputRegister(port string) (string, bool) {
	return a.ctx.GetInputRegister(port)
}

func (a *contextAdapter) IsOutputConnected(port string) bool {
	return a.ctx.IsOutputConnected(port)
}

func (a *contextAdapter) AllocateRegister(port, aliasHint string) (string, error) {
	return a.ctx.AllocateRegister(port, aliasHint)
}

func (a *contextAdapter) GetScratchRegister() (string, error) {
	return a.ctx.GetScratchRegister()
}

func (a *contextAdapter) GetParameterText(paramID string) string {
	v := a.ctx.GetParameter(paramID)
	if v.Number != nil {
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	}
	if v.Bool != nil {
		return strconv.FormatBool(*v.Bool)
	}
	return v.AsString()
}

func (a *contextAdapter) PushInitCode(line string)      { a.ctx.PushInitCode(line) }
func (a *contextAdapter) PushMainCode(line string)      { a.ctx.PushMainCode(line) }
func (a *contextAdapter) PushHeaderComment(line string) { a.ctx.PushHeaderComment(line) }
