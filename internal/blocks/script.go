// Package blocks turns the flat, id-linked block map of a Scratch target
// into script trees and renders those trees as scratchblocks notation.
//
// The two halves are independent: ScriptsOf builds []*Script from a target's
// block arena, Render walks one Script and emits text lines. A Script copies
// every resolved value out of the arena, so it stays valid after the project
// it came from is gone.
package blocks

import "strconv"

// Script is one decoded script: the statement chain hanging off a single
// top-level block.
type Script struct {
	// TopID is the block id the script starts at.
	TopID string
	// Hat reports whether the top block is a script-starting hat. A
	// detached stack (Hat false) still decodes and renders; the renderer
	// marks it with a comment line.
	Hat bool
	// Nodes is the top-level statement chain in execution order.
	Nodes []*Node
}

// Node is one decoded block. Branches holds the C-block substacks in slot
// order (SUBSTACK, SUBSTACK2); its length is the opcode's declared branch
// arity, with empty chains for unfilled slots.
type Node struct {
	ID       string
	Opcode   string
	Inputs   map[string]Input
	Fields   map[string]Field
	Branches [][]*Node
	Mutation *Mutation

	// BadShape marks a block whose inputs claim branches its opcode does
	// not declare. The renderer falls back to the generic template for it.
	BadShape bool
}

// InputKind discriminates the decoded value of an input slot.
type InputKind int

const (
	// InputEmpty is an absent slot, or one whose block reference dangles.
	InputEmpty InputKind = iota
	// InputLiteral is a plain number, string or color value.
	InputLiteral
	// InputMenu is a dropdown choice, either from a resolved shadow menu
	// block or from a broadcast primitive.
	InputMenu
	// InputVariable is a named variable or list reference. Only the name
	// is kept; values are never inlined.
	InputVariable
	// InputReporter is a nested reporter or boolean expression.
	InputReporter
)

// Input is the decoded value of one input slot: a tagged union over the
// shapes the file format allows.
type Input struct {
	Kind InputKind
	// Name carries the originating field name for menu values (it decides
	// display mapping), empty for broadcast primitives.
	Name string
	// Value holds the literal text, menu choice or variable name.
	Value string
	// Node is set for InputReporter only.
	Node *Node
}

// Field is a resolved dropdown field: the display value plus the optional
// id the file pairs with it (variable ids, broadcast ids).
type Field struct {
	Value string
	ID    string
}

// Mutation is the decoded custom-block metadata: the proccode template and
// its argument lists, already parsed out of their JSON-in-a-string encoding.
type Mutation struct {
	ProcCode      string
	ArgumentIDs   []string
	ArgumentNames []string
}

// formatScalar renders a loosely typed JSON scalar the way the notation
// expects: integral numbers without a decimal point, strings as captured.
func formatScalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
