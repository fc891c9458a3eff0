package blocks

import (
	"regexp"
	"sort"
	"strings"
)

const indentStep = "  "

// maxInlineDepth bounds reporter nesting while rendering. The decoder's
// cycle guard means this should never trigger; it exists so a bug there
// cannot turn into unbounded recursion here.
const maxInlineDepth = 64

var placeholderRE = regexp.MustCompile(`\{[A-Za-z_]+\}`)

// Render emits the scratchblocks notation for one script, one statement
// per line. Branch bodies are indented one step; every branch-bearing
// statement is closed by an explicit end line, with an else line between
// two branches. Scripts that do not start with a hat block get a leading
// comment marker so detached stacks are visible in the output.
func Render(s *Script) []string {
	var lines []string
	if !s.Hat {
		lines = append(lines, "// detached script")
	}
	renderChain(s.Nodes, 0, &lines)
	return lines
}

// RenderText is Render joined by newlines.
func RenderText(s *Script) string {
	return strings.Join(Render(s), "\n")
}

func renderChain(nodes []*Node, depth int, out *[]string) {
	for _, n := range nodes {
		renderStatement(n, depth, out)
	}
}

func renderStatement(n *Node, depth int, out *[]string) {
	indent := strings.Repeat(indentStep, depth)
	*out = append(*out, indent+nodeText(n, 0))
	if len(n.Branches) == 0 {
		return
	}
	renderChain(n.Branches[0], depth+1, out)
	if len(n.Branches) > 1 {
		*out = append(*out, indent+"else")
		renderChain(n.Branches[1], depth+1, out)
	}
	*out = append(*out, indent+"end")
}

// nodeText renders one node without indentation. depth counts inline
// reporter nesting, not statement depth.
func nodeText(n *Node, depth int) string {
	if depth > maxInlineDepth {
		return "(...)"
	}
	info, known := opcodes[n.Opcode]
	if !known || n.BadShape {
		return fallbackText(n, depth)
	}
	switch n.Opcode {
	case "procedures_definition":
		return defineText(n)
	case "procedures_call":
		return callText(n, depth)
	case "data_variable":
		return "(" + n.Fields["VARIABLE"].Value + ")"
	case "data_listcontents":
		return "(" + n.Fields["LIST"].Value + ")"
	}

	text := info.template
	for name, in := range n.Inputs {
		ph := "{" + name + "}"
		if strings.Contains(text, ph) {
			text = strings.ReplaceAll(text, ph, inputText(in, depth))
		}
	}
	for name, f := range n.Fields {
		ph := "{" + name + "}"
		if strings.Contains(text, ph) {
			text = strings.ReplaceAll(text, ph, fieldText(name, f.Value))
		}
	}
	// Slots with nothing to fill them render as a bare question mark.
	return placeholderRE.ReplaceAllString(text, "?")
}

func inputText(in Input, depth int) string {
	switch in.Kind {
	case InputLiteral:
		return "[" + in.Value + "]"
	case InputMenu:
		return menuText(in)
	case InputVariable:
		return "(" + in.Value + ")"
	case InputReporter:
		return reporterText(in.Node, depth+1)
	default:
		return "[?]"
	}
}

// reporterText renders a nested expression inline, bracketed by shape:
// booleans in angle brackets, everything else in parentheses, unless the
// template already supplies its own outer brackets.
func reporterText(n *Node, depth int) string {
	text := nodeText(n, depth)
	if opcodes[n.Opcode].boolean {
		if bracketed(text, '<', '>') {
			return text
		}
		return "<" + text + ">"
	}
	if bracketed(text, '(', ')') || bracketed(text, '<', '>') {
		return text
	}
	return "(" + text + ")"
}

func bracketed(s string, first, last byte) bool {
	return len(s) >= 2 && s[0] == first && s[len(s)-1] == last
}

// menuText renders a dropdown choice. Broadcast primitives arrive with no
// field name and only need their sentinel underscores stripped; resolved
// menu shadows go through the field display mapping. The note picker is
// the one menu whose value reads as a literal, not a choice.
func menuText(in Input) string {
	if in.Name == "" {
		v := in.Value
		if strings.HasPrefix(v, "_") && strings.HasSuffix(v, "_") {
			v = strings.Trim(v, "_")
		}
		return "[" + v + " v]"
	}
	v := fieldDisplayName(in.Name, in.Value)
	if in.Name == "NOTE" {
		return "[" + v + "]"
	}
	return "[" + v + " v]"
}

func fieldText(name, value string) string {
	v := fieldDisplayName(name, value)
	if dropdownFields[name] {
		return "[" + v + " v]"
	}
	return v
}

// fallbackText renders blocks the table does not know (or whose shape
// disagrees with it): the raw opcode plus every field and input value, in
// sorted slot order so output is deterministic.
func fallbackText(n *Node, depth int) string {
	var parts []string
	fields := make([]string, 0, len(n.Fields))
	for name := range n.Fields {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	for _, name := range fields {
		parts = append(parts, name+"="+n.Fields[name].Value)
	}
	inputs := make([]string, 0, len(n.Inputs))
	for name := range n.Inputs {
		inputs = append(inputs, name)
	}
	sort.Strings(inputs)
	for _, name := range inputs {
		parts = append(parts, name+"="+inputText(n.Inputs[name], depth))
	}
	text := "// unknown block: " + n.Opcode
	if len(parts) > 0 {
		text += " {" + strings.Join(parts, ", ") + "}"
	}
	return text
}

// defineText expands a custom block definition header from its prototype
// proccode: each %s placeholder takes the next argument name in reporter
// brackets, each %b in boolean brackets.
func defineText(n *Node) string {
	if n.Mutation == nil || n.Mutation.ProcCode == "" {
		return "define ?"
	}
	text := n.Mutation.ProcCode
	for _, arg := range n.Mutation.ArgumentNames {
		switch {
		case strings.Contains(text, "%s"):
			text = strings.Replace(text, "%s", "("+arg+")", 1)
		case strings.Contains(text, "%b"):
			text = strings.Replace(text, "%b", "<"+arg+">", 1)
		}
	}
	return "define " + text
}

// callText expands a custom block call: caller inputs are keyed by
// argument id and substituted into the proccode in declaration order.
func callText(n *Node, depth int) string {
	if n.Mutation == nil || n.Mutation.ProcCode == "" {
		return "?"
	}
	text := n.Mutation.ProcCode
	for _, argID := range n.Mutation.ArgumentIDs {
		in, ok := n.Inputs[argID]
		if !ok {
			continue
		}
		val := inputText(in, depth)
		switch {
		case strings.Contains(text, "%s"):
			text = strings.Replace(text, "%s", val, 1)
		case strings.Contains(text, "%b"):
			text = strings.Replace(text, "%b", val, 1)
		}
	}
	return text
}
