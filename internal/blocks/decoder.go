package blocks

import (
	"encoding/json"
	"sort"

	"github.com/nbeney/scratch-tool/internal/project"
)

// ScriptsOf decodes every top-level script of a target into a tree form.
// Scripts come back ordered by ascending top block id, which is the only
// stable order the file format offers. The error is a *MalformedGraphError
// when the block graph contains a reference cycle; there is no other
// failure mode.
func ScriptsOf(t *project.Target) ([]*Script, error) {
	d := &decoder{
		target: t.Name,
		arena:  t.Blocks,
		stack:  make(map[string]bool),
	}
	tops := make([]string, 0, len(t.Blocks))
	for id, b := range t.Blocks {
		if b != nil && b.TopLevel && !b.Shadow {
			tops = append(tops, id)
		}
	}
	sort.Strings(tops)

	scripts := make([]*Script, 0, len(tops))
	for _, id := range tops {
		nodes, err := d.chain(id)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, &Script{
			TopID: id,
			Hat:   opcodes[t.Blocks[id].Opcode].hat,
			Nodes: nodes,
		})
	}
	return scripts, nil
}

// decoder walks one target's block arena. stack holds the ids currently
// being decoded; revisiting one means the graph has a cycle.
type decoder struct {
	target string
	arena  map[string]*project.Block
	stack  map[string]bool
}

// chain follows next references from start, decoding one node per block.
// A next id that is missing from the arena ends the chain; a next id that
// is already in progress is a cycle. Every id stays marked until the whole
// chain, including nested branches, is decoded.
func (d *decoder) chain(start string) ([]*Node, error) {
	var nodes []*Node
	var marked []string
	defer func() {
		for _, id := range marked {
			delete(d.stack, id)
		}
	}()

	for id := start; id != ""; {
		b, ok := d.arena[id]
		if !ok {
			break
		}
		if d.stack[id] {
			return nil, &MalformedGraphError{Target: d.target, BlockID: id}
		}
		d.stack[id] = true
		marked = append(marked, id)
		n, err := d.node(id, b)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
		id = b.Next
	}
	return nodes, nil
}

func (d *decoder) node(id string, b *project.Block) (*Node, error) {
	n := &Node{ID: id, Opcode: b.Opcode}
	info := opcodes[b.Opcode]

	if len(b.Fields) > 0 {
		n.Fields = make(map[string]Field, len(b.Fields))
		for name, arr := range b.Fields {
			var f Field
			if len(arr) > 0 {
				f.Value = formatScalar(arr[0])
			}
			if len(arr) > 1 {
				if s, ok := arr[1].(string); ok {
					f.ID = s
				}
			}
			n.Fields[name] = f
		}
	}

	if b.Mutation != nil {
		n.Mutation = decodeMutation(b.Mutation)
	}
	if b.Opcode == "procedures_definition" && n.Mutation == nil {
		n.Mutation = d.prototypeMutation(b)
	}

	hasBranchInput := false
	for name, raw := range b.Inputs {
		switch {
		case name == "SUBSTACK" || name == "SUBSTACK2":
			hasBranchInput = true
			continue
		case b.Opcode == "procedures_definition" && name == "custom_block":
			// The prototype shadow, already consumed via its mutation.
			continue
		}
		in, err := d.input(raw)
		if err != nil {
			return nil, err
		}
		if n.Inputs == nil {
			n.Inputs = make(map[string]Input, len(b.Inputs))
		}
		n.Inputs[name] = in
	}

	if info.branches == 0 {
		n.BadShape = hasBranchInput
		return n, nil
	}
	n.Branches = make([][]*Node, info.branches)
	for i, slot := range []string{"SUBSTACK", "SUBSTACK2"}[:info.branches] {
		entry := branchEntry(b.Inputs[slot])
		if entry == "" {
			continue
		}
		sub, err := d.chain(entry)
		if err != nil {
			return nil, err
		}
		n.Branches[i] = sub
	}
	return n, nil
}

// input classifies one input slot's loose array into the tagged Input form.
// The array shapes are [1, v] (shadow), [2, v] (bare) and [3, v, shadow]
// (obscured shadow); v is a block id string, a primitive array, or null.
func (d *decoder) input(raw []any) (Input, error) {
	if len(raw) < 2 {
		return Input{}, nil
	}
	switch v := raw[1].(type) {
	case string:
		in, err := d.inputBlock(v)
		if err != nil {
			return Input{}, err
		}
		if in.Kind != InputEmpty {
			return in, nil
		}
	case []any:
		if in, ok := primitiveInput(v); ok {
			return in, nil
		}
	}
	// An obscured slot whose block reference was unusable: surface the
	// shadow's literal value instead of nothing.
	if len(raw) >= 3 {
		if shadow, ok := raw[2].([]any); ok && len(shadow) >= 2 {
			return Input{Kind: InputLiteral, Value: formatScalar(shadow[1])}, nil
		}
	}
	return Input{}, nil
}

// inputBlock resolves a nested block reference: shadow menus collapse to
// their field value, everything else decodes as a single reporter node.
// A dangling id yields an empty input.
func (d *decoder) inputBlock(id string) (Input, error) {
	b, ok := d.arena[id]
	if !ok {
		return Input{}, nil
	}
	if field := opcodes[b.Opcode].menuField; field != "" {
		return menuInput(b, field), nil
	}
	if d.stack[id] {
		return Input{}, &MalformedGraphError{Target: d.target, BlockID: id}
	}
	d.stack[id] = true
	defer delete(d.stack, id)
	n, err := d.node(id, b)
	if err != nil {
		return Input{}, err
	}
	return Input{Kind: InputReporter, Node: n}, nil
}

// Primitive input type tags from the file format. 4 through 10 are literal
// scalars (number, positive number, positive integer, integer, angle,
// color, string); 11 is a broadcast choice; 12 and 13 name a variable or
// list.
const (
	primLiteralMin = 4
	primLiteralMax = 10
	primBroadcast  = 11
	primVarRef     = 12
	primListRef    = 13
)

func primitiveInput(v []any) (Input, bool) {
	if len(v) < 2 {
		return Input{}, false
	}
	code, ok := v[0].(float64)
	if !ok {
		return Input{}, false
	}
	switch t := int(code); {
	case t >= primLiteralMin && t <= primLiteralMax:
		return Input{Kind: InputLiteral, Value: formatScalar(v[1])}, true
	case t == primBroadcast:
		return Input{Kind: InputMenu, Value: formatScalar(v[1])}, true
	case t == primVarRef || t == primListRef:
		return Input{Kind: InputVariable, Value: formatScalar(v[1])}, true
	}
	return Input{}, false
}

func menuInput(b *project.Block, field string) Input {
	in := Input{Kind: InputMenu, Name: field, Value: "?"}
	if arr, ok := b.Fields[field]; ok && len(arr) > 0 {
		in.Value = formatScalar(arr[0])
	}
	return in
}

func branchEntry(raw []any) string {
	if len(raw) < 2 {
		return ""
	}
	id, _ := raw[1].(string)
	return id
}

// decodeMutation parses the JSON-in-a-string argument lists. Parsing is
// best effort: a corrupt list leaves the slice empty and the renderer
// degrades to placeholders.
func decodeMutation(m *project.Mutation) *Mutation {
	out := &Mutation{ProcCode: m.ProcCode}
	if m.ArgumentIDs != "" {
		_ = json.Unmarshal([]byte(m.ArgumentIDs), &out.ArgumentIDs)
	}
	if m.ArgumentNames != "" {
		_ = json.Unmarshal([]byte(m.ArgumentNames), &out.ArgumentNames)
	}
	return out
}

// prototypeMutation fetches the proccode of a custom block definition from
// the prototype shadow the custom_block input points at.
func (d *decoder) prototypeMutation(b *project.Block) *Mutation {
	raw, ok := b.Inputs["custom_block"]
	if !ok || len(raw) < 2 {
		return nil
	}
	id, ok := raw[1].(string)
	if !ok {
		return nil
	}
	proto, ok := d.arena[id]
	if !ok || proto.Mutation == nil {
		return nil
	}
	return decodeMutation(proto.Mutation)
}
