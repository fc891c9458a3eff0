package project

import (
	"strings"
	"testing"
)

const sampleProject = `{
  "targets": [
    {
      "isStage": true,
      "name": "Stage",
      "variables": {
        "var1": ["score", 0],
        "var2": ["highscore", "42", true]
      },
      "lists": {
        "list1": ["inventory", ["sword", "shield"]]
      },
      "broadcasts": {"bc1": "Game Over"},
      "blocks": {},
      "comments": {},
      "currentCostume": 0,
      "costumes": [
        {"name": "backdrop1", "dataFormat": "svg", "assetId": "cd21514d0531fdffb22204e0ec5ed84a", "rotationCenterX": 240, "rotationCenterY": 180}
      ],
      "sounds": [
        {"name": "pop", "assetId": "83a9787d4cb6f3b7632b4ddfebf74367", "dataFormat": "wav", "md5ext": "83a9787d4cb6f3b7632b4ddfebf74367.wav", "rate": 48000, "sampleCount": 1123}
      ],
      "volume": 100,
      "layerOrder": 0,
      "tempo": 60,
      "videoTransparency": 50,
      "videoState": "on"
    },
    {
      "isStage": false,
      "name": "Sprite1",
      "variables": {"var3": ["speed", 10]},
      "lists": {},
      "broadcasts": {},
      "blocks": {
        "a": {"opcode": "event_whenflagclicked", "next": "b", "parent": null, "inputs": {}, "fields": {}, "shadow": false, "topLevel": true, "x": 53, "y": 113},
        "b": {"opcode": "looks_say", "next": null, "parent": "a", "inputs": {"MESSAGE": [1, [10, "Hello!"]]}, "fields": {}, "shadow": false, "topLevel": false},
        "det": [12, "speed", "var3", 416, 633]
      },
      "comments": {
        "c1": {"blockId": "a", "x": 400, "y": 100, "width": 200, "height": 100, "minimized": false, "text": "main loop"}
      },
      "currentCostume": 0,
      "costumes": [
        {"name": "costume1", "bitmapResolution": 1, "dataFormat": "svg", "assetId": "b7853f557e4426412e64bb3da6531a99", "md5ext": "b7853f557e4426412e64bb3da6531a99.svg", "rotationCenterX": 48, "rotationCenterY": 50}
      ],
      "sounds": [],
      "volume": 100,
      "layerOrder": 1,
      "visible": true,
      "x": 0,
      "y": 0,
      "size": 100,
      "direction": 90,
      "draggable": false,
      "rotationStyle": "all around"
    }
  ],
  "monitors": [
    {"id": "var1", "mode": "default", "opcode": "data_variable", "params": {"VARIABLE": "score"}, "spriteName": null, "value": 0, "x": 5, "y": 5, "visible": true, "sliderMin": 0, "sliderMax": 100, "isDiscrete": true}
  ],
  "extensions": ["pen"],
  "meta": {"semver": "3.0.0", "vm": "2.3.4", "agent": "Mozilla/5.0"}
}`

func TestDecode_Sample(t *testing.T) {
	p, err := Decode([]byte(sampleProject))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(p.Targets) != 2 {
		t.Fatalf("targets=%d want 2", len(p.Targets))
	}

	stage := p.Stage()
	if stage == nil || stage.Name != "Stage" {
		t.Fatalf("stage=%+v", stage)
	}
	if got := p.Sprites(); len(got) != 1 || got[0].Name != "Sprite1" {
		t.Fatalf("sprites=%+v", got)
	}

	hs := stage.Variables["var2"]
	if hs.Name != "highscore" || hs.Value != "42" || !hs.Cloud {
		t.Fatalf("cloud variable=%+v", hs)
	}
	inv := stage.Lists["list1"]
	if inv.Name != "inventory" || len(inv.Values) != 2 {
		t.Fatalf("list=%+v", inv)
	}
	if stage.Broadcasts["bc1"] != "Game Over" {
		t.Fatalf("broadcasts=%v", stage.Broadcasts)
	}

	// The file omits the backdrop's md5ext; normalization must fill it.
	if got := stage.Costumes[0].MD5Ext; got != "cd21514d0531fdffb22204e0ec5ed84a.svg" {
		t.Fatalf("costume md5ext=%q", got)
	}
	if got := stage.Sounds[0].MD5Ext; got != "83a9787d4cb6f3b7632b4ddfebf74367.wav" {
		t.Fatalf("sound md5ext=%q", got)
	}

	sprite := p.Sprites()[0]
	if got := sprite.Blocks["a"]; got.Opcode != "event_whenflagclicked" || got.Next != "b" || !got.TopLevel {
		t.Fatalf("block a=%+v", got)
	}
	if got := sprite.Blocks["b"]; got.Parent != "a" || got.Next != "" {
		t.Fatalf("block b=%+v", got)
	}
	if got := sprite.Comments["c1"]; got.BlockID != "a" || got.Text != "main loop" {
		t.Fatalf("comment=%+v", got)
	}

	if p.Meta.SemVer != "3.0.0" || p.Meta.VM != "2.3.4" {
		t.Fatalf("meta=%+v", p.Meta)
	}
	if len(p.Extensions) != 1 || p.Extensions[0] != "pen" {
		t.Fatalf("extensions=%v", p.Extensions)
	}
	if len(p.Monitors) != 1 || p.Monitors[0].Opcode != "data_variable" {
		t.Fatalf("monitors=%+v", p.Monitors)
	}
}

func TestDecode_CompactReporterEntry(t *testing.T) {
	p, err := Decode([]byte(sampleProject))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	det := p.Sprites()[0].Blocks["det"]
	if det == nil {
		t.Fatalf("compact entry missing from block map")
	}
	if det.Opcode != "data_variable" || !det.TopLevel {
		t.Fatalf("compact entry=%+v", det)
	}
	if got := det.Fields["VARIABLE"]; len(got) != 2 || got[0] != "speed" || got[1] != "var3" {
		t.Fatalf("compact entry fields=%v", got)
	}
	if det.X != 416 || det.Y != 633 {
		t.Fatalf("compact entry position=(%v,%v)", det.X, det.Y)
	}
}

func TestDecode_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name:    "not json",
			raw:     `{`,
			wantErr: "decode project",
		},
		{
			name:    "no targets",
			raw:     `{"targets": [], "meta": {"semver": "3.0.0"}}`,
			wantErr: "no targets",
		},
		{
			name:    "no stage",
			raw:     `{"targets": [{"isStage": false, "name": "Sprite1"}], "meta": {"semver": "3.0.0"}}`,
			wantErr: "want exactly one stage, got 0",
		},
		{
			name:    "two stages",
			raw:     `{"targets": [{"isStage": true, "name": "Stage"}, {"isStage": true, "name": "Stage2"}], "meta": {"semver": "3.0.0"}}`,
			wantErr: "want exactly one stage, got 2",
		},
		{
			name:    "duplicate names",
			raw:     `{"targets": [{"isStage": true, "name": "Twin"}, {"isStage": false, "name": "Twin"}], "meta": {"semver": "3.0.0"}}`,
			wantErr: `duplicate target name "Twin"`,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Decode([]byte(c.raw))
			if err == nil {
				t.Fatalf("expected error containing %q", c.wantErr)
			}
			if !strings.Contains(err.Error(), c.wantErr) {
				t.Fatalf("err=%v want %q", err, c.wantErr)
			}
		})
	}
}

func TestVariableJSON_CloudMarker(t *testing.T) {
	v := Variable{Name: "highscore", Value: "42", Cloud: true}
	raw, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Variable
	if err := back.UnmarshalJSON(raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Name != v.Name || back.Value != v.Value || !back.Cloud {
		t.Fatalf("round trip=%+v want %+v", back, v)
	}
}

func TestStats(t *testing.T) {
	p := &Project{
		Targets: []*Target{
			{
				IsStage: true,
				Name:    "Stage",
				Variables: map[string]Variable{
					"v1": {Name: "score"},
					"v2": {Name: "high", Cloud: true},
				},
				Broadcasts: map[string]string{"b1": "go", "b2": "stop"},
				Blocks:     map[string]*Block{"s1": {Opcode: "event_whenflagclicked", TopLevel: true}},
				Costumes:   []Costume{{Name: "backdrop1"}},
				Sounds:     []Sound{{Name: "pop"}},
			},
			{
				Name:       "A",
				Variables:  map[string]Variable{"v3": {Name: "local"}},
				Lists:      map[string]List{"l1": {Name: "items"}},
				Broadcasts: map[string]string{"b1": "go"},
				Blocks: map[string]*Block{
					"d": {Opcode: "procedures_definition", TopLevel: true},
					"c": {Opcode: "control_create_clone_of"},
					"x": {Opcode: "motion_movesteps"},
					// Orphaned shadow menus float top-level but are not scripts.
					"m": {Opcode: "control_create_clone_of_menu", TopLevel: true, Shadow: true},
				},
				Costumes: []Costume{{Name: "a1"}, {Name: "a2"}},
			},
			{
				Name:   "B",
				Blocks: map[string]*Block{"y": {Opcode: "control_create_clone_of"}},
			},
		},
		Extensions: []string{"music"},
	}

	got := p.Stats()
	want := Statistics{
		Blocks:          6,
		Scripts:         2,
		Sprites:         2,
		Costumes:        3,
		Sounds:          1,
		Broadcasts:      2,
		CustomBlocks:    1,
		Clones:          2,
		CloudVariables:  1,
		GlobalVariables: 1,
		SpriteVariables: 1,
		Lists:           1,
		Extensions:      []string{"music"},
	}
	if got.Blocks != want.Blocks || got.Scripts != want.Scripts || got.Sprites != want.Sprites {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if got.Costumes != want.Costumes || got.Sounds != want.Sounds || got.Broadcasts != want.Broadcasts {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if got.CustomBlocks != want.CustomBlocks || got.Clones != want.Clones {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if got.CloudVariables != want.CloudVariables || got.GlobalVariables != want.GlobalVariables || got.SpriteVariables != want.SpriteVariables {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if got.Lists != want.Lists || len(got.Extensions) != 1 || got.Extensions[0] != "music" {
		t.Fatalf("got %+v want %+v", got, want)
	}
}
