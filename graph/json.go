package graph

import "encoding/json"

// document is the on-disk/over-the-wire shape of a block-diagram source
// (spec.md §6 "Block-diagram source"): "a JSON object with: metadata (name,
// author, description), blocks (array of {id, type, position, parameters}),
// connections (array of {id, from:{blockId, portId}, to:{blockId, portId}}).
// Unknown fields are ignored" — the last clause is exactly what
// encoding/json's default struct-tag decoding already does, so no custom
// field-skipping logic is needed.
type document struct {
	Metadata    Metadata         `json:"metadata"`
	Blocks      []blockDoc       `json:"blocks"`
	Connections []connectionDoc  `json:"connections"`
}

type blockDoc struct {
	ID         string                    `json:"id"`
	Type       string                    `json:"type"`
	Position   Position                  `json:"position"`
	Parameters map[string]paramValueDoc  `json:"parameters"`
}

type portRefDoc struct {
	BlockID string `json:"blockId"`
	PortID  string `json:"portId"`
}

type connectionDoc struct {
	ID   string     `json:"id"`
	From portRefDoc `json:"from"`
	To   portRefDoc `json:"to"`
}

// paramValueDoc decodes a parameter's JSON scalar into whichever ParamValue
// variant it names (spec.md §3 Block: "values are numbers, booleans,
// strings, or enum discriminants" — enum discriminants round-trip as
// strings, same as a select parameter's value).
type paramValueDoc struct {
	ParamValue
}

func (p *paramValueDoc) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		p.ParamValue = NumberParam(n)
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		p.ParamValue = BoolParam(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.ParamValue = StringParam(s)
		return nil
	}
	return &json.UnmarshalTypeError{Value: string(data), Type: nil}
}

func (p paramValueDoc) MarshalJSON() ([]byte, error) {
	switch {
	case p.Number != nil:
		return json.Marshal(*p.Number)
	case p.Bool != nil:
		return json.Marshal(*p.Bool)
	case p.String != nil:
		return json.Marshal(*p.String)
	default:
		return json.Marshal(nil)
	}
}

// UnmarshalJSON decodes a block-diagram source document into a BlockGraph.
func (g *BlockGraph) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	g.Metadata = doc.Metadata
	g.Blocks = make(map[string]*Block, len(doc.Blocks))
	for _, bd := range doc.Blocks {
		params := make(map[string]ParamValue, len(bd.Parameters))
		for k, v := range bd.Parameters {
			params[k] = v.ParamValue
		}
		g.Blocks[bd.ID] = &Block{
			ID:         bd.ID,
			Type:       bd.Type,
			Position:   bd.Position,
			Parameters: params,
		}
	}

	g.Connections = make([]Connection, 0, len(doc.Connections))
	for _, cd := range doc.Connections {
		g.Connections = append(g.Connections, Connection{
			ID:   cd.ID,
			From: PortRef{BlockID: cd.From.BlockID, PortID: cd.From.PortID},
			To:   PortRef{BlockID: cd.To.BlockID, PortID: cd.To.PortID},
		})
	}
	return nil
}

// MarshalJSON encodes a BlockGraph back into the same document shape.
func (g *BlockGraph) MarshalJSON() ([]byte, error) {
	doc := document{
		Metadata:    g.Metadata,
		Blocks:      make([]blockDoc, 0, len(g.Blocks)),
		Connections: make([]connectionDoc, 0, len(g.Connections)),
	}
	for _, b := range g.Blocks {
		params := make(map[string]paramValueDoc, len(b.Parameters))
		for k, v := range b.Parameters {
			params[k] = paramValueDoc{v}
		}
		doc.Blocks = append(doc.Blocks, blockDoc{
			ID: b.ID, Type: b.Type, Position: b.Position, Parameters: params,
		})
	}
	for _, c := range g.Connections {
		doc.Connections = append(doc.Connections, connectionDoc{
			ID:   c.ID,
			From: portRefDoc{BlockID: c.From.BlockID, PortID: c.From.PortID},
			To:   portRefDoc{BlockID: c.To.BlockID, PortID: c.To.PortID},
		})
	}
	return json.Marshal(doc)
}
