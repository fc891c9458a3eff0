package blocks

import (
	"errors"
	"testing"

	"github.com/nbeney/scratch-tool/internal/project"
)

func sprite(blocks map[string]*project.Block) *project.Target {
	return &project.Target{Name: "Sprite1", Blocks: blocks}
}

func oneScript(t *testing.T, tgt *project.Target) *Script {
	t.Helper()
	scripts, err := ScriptsOf(tgt)
	if err != nil {
		t.Fatalf("ScriptsOf: %v", err)
	}
	if len(scripts) != 1 {
		t.Fatalf("scripts=%d want 1", len(scripts))
	}
	return scripts[0]
}

func TestScriptsOf_FlagRepeatMove(t *testing.T) {
	tgt := sprite(map[string]*project.Block{
		"a": {Opcode: "event_whenflagclicked", Next: "b", TopLevel: true},
		"b": {Opcode: "control_repeat", Parent: "a", Inputs: map[string][]any{
			"TIMES":    {float64(1), []any{float64(6), "10"}},
			"SUBSTACK": {float64(2), "c"},
		}},
		"c": {Opcode: "motion_movesteps", Parent: "b", Inputs: map[string][]any{
			"STEPS": {float64(1), []any{float64(4), "10"}},
		}},
	})

	s := oneScript(t, tgt)
	if !s.Hat {
		t.Fatalf("expected hat script")
	}
	if len(s.Nodes) != 2 {
		t.Fatalf("nodes=%d want 2", len(s.Nodes))
	}
	repeat := s.Nodes[1]
	if repeat.Opcode != "control_repeat" {
		t.Fatalf("second node opcode=%q", repeat.Opcode)
	}
	if got := repeat.Inputs["TIMES"]; got.Kind != InputLiteral || got.Value != "10" {
		t.Fatalf("TIMES=%+v want literal 10", got)
	}
	if len(repeat.Branches) != 1 || len(repeat.Branches[0]) != 1 {
		t.Fatalf("branches=%+v want one branch with one statement", repeat.Branches)
	}
	move := repeat.Branches[0][0]
	if move.Opcode != "motion_movesteps" {
		t.Fatalf("branch opcode=%q", move.Opcode)
	}
	if got := move.Inputs["STEPS"]; got.Kind != InputLiteral || got.Value != "10" {
		t.Fatalf("STEPS=%+v want literal 10", got)
	}
}

func TestScriptsOf_OrdersTopLevelByBlockID(t *testing.T) {
	tgt := sprite(map[string]*project.Block{
		"z": {Opcode: "event_whenflagclicked", TopLevel: true},
		"a": {Opcode: "event_whenstageclicked", TopLevel: true},
		"m": {Opcode: "control_start_as_clone", TopLevel: true},
	})
	scripts, err := ScriptsOf(tgt)
	if err != nil {
		t.Fatalf("ScriptsOf: %v", err)
	}
	var got []string
	for _, s := range scripts {
		got = append(got, s.TopID)
	}
	want := []string{"a", "m", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order=%v want %v", got, want)
		}
	}
}

func TestScriptsOf_DanglingNextTruncates(t *testing.T) {
	tgt := sprite(map[string]*project.Block{
		"a": {Opcode: "event_whenflagclicked", Next: "b", TopLevel: true},
		"b": {Opcode: "looks_show", Parent: "a", Next: "gone"},
	})
	s := oneScript(t, tgt)
	if len(s.Nodes) != 2 {
		t.Fatalf("nodes=%d want 2 (chain truncated, not failed)", len(s.Nodes))
	}
}

func TestScriptsOf_NextCycleIsMalformed(t *testing.T) {
	tgt := sprite(map[string]*project.Block{
		"a": {Opcode: "event_whenflagclicked", Next: "b", TopLevel: true},
		"b": {Opcode: "looks_show", Parent: "a", Next: "a"},
	})
	_, err := ScriptsOf(tgt)
	var mg *MalformedGraphError
	if !errors.As(err, &mg) {
		t.Fatalf("err=%v want MalformedGraphError", err)
	}
	if mg.BlockID != "a" {
		t.Fatalf("cycle block=%q want a", mg.BlockID)
	}
	if mg.Target != "Sprite1" {
		t.Fatalf("cycle target=%q want Sprite1", mg.Target)
	}
}

func TestScriptsOf_ReporterCycleIsMalformed(t *testing.T) {
	tgt := sprite(map[string]*project.Block{
		"a": {Opcode: "operator_not", TopLevel: true, Inputs: map[string][]any{
			"OPERAND": {float64(2), "b"},
		}},
		"b": {Opcode: "operator_not", Parent: "a", Inputs: map[string][]any{
			"OPERAND": {float64(2), "a"},
		}},
	})
	_, err := ScriptsOf(tgt)
	var mg *MalformedGraphError
	if !errors.As(err, &mg) {
		t.Fatalf("err=%v want MalformedGraphError", err)
	}
}

func TestScriptsOf_SharedReporterIsNotACycle(t *testing.T) {
	// The same reporter id feeding two slots is odd but acyclic; only a
	// repeated id on the in-progress path is malformed.
	tgt := sprite(map[string]*project.Block{
		"a": {Opcode: "operator_add", TopLevel: true, Inputs: map[string][]any{
			"NUM1": {float64(2), "r"},
			"NUM2": {float64(2), "r"},
		}},
		"r": {Opcode: "sensing_answer", Parent: "a"},
	})
	s := oneScript(t, tgt)
	add := s.Nodes[0]
	for _, slot := range []string{"NUM1", "NUM2"} {
		in := add.Inputs[slot]
		if in.Kind != InputReporter || in.Node == nil || in.Node.Opcode != "sensing_answer" {
			t.Fatalf("%s=%+v want answer reporter", slot, in)
		}
	}
}

func TestScriptsOf_MenuShadowResolvesToFieldValue(t *testing.T) {
	tgt := sprite(map[string]*project.Block{
		"a": {Opcode: "looks_switchcostumeto", TopLevel: true, Inputs: map[string][]any{
			"COSTUME": {float64(1), "m"},
		}},
		"m": {Opcode: "looks_costume", Parent: "a", Shadow: true, Fields: map[string][]any{
			"COSTUME": {"costume2", nil},
		}},
	})
	s := oneScript(t, tgt)
	in := s.Nodes[0].Inputs["COSTUME"]
	if in.Kind != InputMenu || in.Name != "COSTUME" || in.Value != "costume2" {
		t.Fatalf("COSTUME=%+v want menu costume2", in)
	}
	if in.Node != nil {
		t.Fatalf("menu input still holds a node")
	}
}

func TestScriptsOf_VariableRefKeepsNameOnly(t *testing.T) {
	tgt := sprite(map[string]*project.Block{
		"a": {Opcode: "motion_movesteps", TopLevel: true, Inputs: map[string][]any{
			"STEPS": {float64(3), []any{float64(12), "score", "varid"}, []any{float64(4), "0"}},
		}},
	})
	s := oneScript(t, tgt)
	in := s.Nodes[0].Inputs["STEPS"]
	if in.Kind != InputVariable || in.Value != "score" {
		t.Fatalf("STEPS=%+v want variable score", in)
	}
}

func TestScriptsOf_ObscuredShadowFallsBackToLiteral(t *testing.T) {
	tgt := sprite(map[string]*project.Block{
		"a": {Opcode: "looks_say", TopLevel: true, Inputs: map[string][]any{
			"MESSAGE": {float64(3), "gone", []any{float64(10), "hello"}},
		}},
	})
	s := oneScript(t, tgt)
	in := s.Nodes[0].Inputs["MESSAGE"]
	if in.Kind != InputLiteral || in.Value != "hello" {
		t.Fatalf("MESSAGE=%+v want literal hello", in)
	}
}

func TestScriptsOf_DetachedStackIsNotAHat(t *testing.T) {
	tgt := sprite(map[string]*project.Block{
		"a": {Opcode: "motion_movesteps", TopLevel: true, Inputs: map[string][]any{
			"STEPS": {float64(1), []any{float64(4), "10"}},
		}},
	})
	s := oneScript(t, tgt)
	if s.Hat {
		t.Fatalf("detached stack classified as hat")
	}
}

func TestScriptsOf_UnknownOpcodePassesThrough(t *testing.T) {
	tgt := sprite(map[string]*project.Block{
		"a": {Opcode: "future_magic", TopLevel: true, Fields: map[string][]any{
			"WAND": {"oak", nil},
		}},
	})
	s := oneScript(t, tgt)
	n := s.Nodes[0]
	if n.Opcode != "future_magic" {
		t.Fatalf("opcode=%q want future_magic preserved", n.Opcode)
	}
	if n.Fields["WAND"].Value != "oak" {
		t.Fatalf("field=%+v want oak", n.Fields["WAND"])
	}
}

func TestScriptsOf_BranchOnPlainStatementIsBadShape(t *testing.T) {
	tgt := sprite(map[string]*project.Block{
		"a": {Opcode: "motion_movesteps", TopLevel: true, Inputs: map[string][]any{
			"STEPS":    {float64(1), []any{float64(4), "10"}},
			"SUBSTACK": {float64(2), "b"},
		}},
		"b": {Opcode: "looks_show", Parent: "a"},
	})
	s := oneScript(t, tgt)
	if !s.Nodes[0].BadShape {
		t.Fatalf("expected BadShape for branch input on a plain statement")
	}
	if len(s.Nodes[0].Branches) != 0 {
		t.Fatalf("branches=%d want 0", len(s.Nodes[0].Branches))
	}
}

func TestScriptsOf_EmptyBranchSlots(t *testing.T) {
	tgt := sprite(map[string]*project.Block{
		"a": {Opcode: "control_if_else", TopLevel: true, Inputs: map[string][]any{
			"CONDITION": {float64(2), nil},
		}},
	})
	s := oneScript(t, tgt)
	n := s.Nodes[0]
	if len(n.Branches) != 2 {
		t.Fatalf("branches=%d want 2", len(n.Branches))
	}
	if len(n.Branches[0]) != 0 || len(n.Branches[1]) != 0 {
		t.Fatalf("branches=%+v want both empty", n.Branches)
	}
	if in := n.Inputs["CONDITION"]; in.Kind != InputEmpty {
		t.Fatalf("CONDITION=%+v want empty", in)
	}
}

func TestScriptsOf_CustomBlockDefinition(t *testing.T) {
	tgt := sprite(map[string]*project.Block{
		"def": {Opcode: "procedures_definition", TopLevel: true, Inputs: map[string][]any{
			"custom_block": {float64(1), "proto"},
		}},
		"proto": {Opcode: "procedures_prototype", Parent: "def", Shadow: true, Mutation: &project.Mutation{
			ProcCode:      "jump %s times %b high",
			ArgumentIDs:   `["i1","i2"]`,
			ArgumentNames: `["count","high"]`,
		}},
	})
	s := oneScript(t, tgt)
	n := s.Nodes[0]
	if !s.Hat {
		t.Fatalf("definition should start a script")
	}
	if n.Mutation == nil || n.Mutation.ProcCode != "jump %s times %b high" {
		t.Fatalf("mutation=%+v want prototype proccode", n.Mutation)
	}
	if len(n.Mutation.ArgumentNames) != 2 || n.Mutation.ArgumentNames[0] != "count" {
		t.Fatalf("argument names=%v", n.Mutation.ArgumentNames)
	}
	if _, ok := n.Inputs["custom_block"]; ok {
		t.Fatalf("prototype shadow leaked into inputs")
	}
}
