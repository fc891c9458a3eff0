// Package project holds the typed representation of a Scratch 3 project.json
// and the decode entry point that produces it.
//
// The model mirrors the Scratch file format: a project is an ordered list of
// targets (the stage plus sprites), each carrying its own costumes, sounds,
// variables, lists, broadcasts and a flat block map keyed by block id. Blocks
// reference each other by id only; turning that graph into script trees is
// the blocks package's job, so everything here stays immutable after Decode.
package project

import (
	"encoding/json"
	"fmt"
)

// Project is the root of a decoded project.json.
type Project struct {
	Targets    []*Target `json:"targets"`
	Monitors   []Monitor `json:"monitors"`
	Extensions []string  `json:"extensions"`
	Meta       Meta      `json:"meta"`
}

// Meta identifies the editor/VM that produced the project file.
type Meta struct {
	SemVer   string          `json:"semver"`
	VM       string          `json:"vm"`
	Agent    string          `json:"agent"`
	Platform json.RawMessage `json:"platform,omitempty"`
}

// Target is a sprite or the stage. Stage-only and sprite-only fields are
// carried through unexamined; nothing in the pipeline interprets them.
type Target struct {
	IsStage        bool                `json:"isStage"`
	Name           string              `json:"name"`
	Variables      map[string]Variable `json:"variables"`
	Lists          map[string]List     `json:"lists"`
	Broadcasts     map[string]string   `json:"broadcasts"`
	Blocks         map[string]*Block   `json:"blocks"`
	Comments       map[string]Comment  `json:"comments"`
	CurrentCostume int                 `json:"currentCostume"`
	Costumes       []Costume           `json:"costumes"`
	Sounds         []Sound             `json:"sounds"`
	Volume         float64             `json:"volume"`
	LayerOrder     int                 `json:"layerOrder"`

	// Stage only.
	Tempo                float64 `json:"tempo,omitempty"`
	VideoTransparency    float64 `json:"videoTransparency,omitempty"`
	VideoState           string  `json:"videoState,omitempty"`
	TextToSpeechLanguage *string `json:"textToSpeechLanguage,omitempty"`

	// Sprites only.
	Visible       *bool    `json:"visible,omitempty"`
	X             float64  `json:"x,omitempty"`
	Y             float64  `json:"y,omitempty"`
	Size          *float64 `json:"size,omitempty"`
	Direction     *float64 `json:"direction,omitempty"`
	Draggable     bool     `json:"draggable,omitempty"`
	RotationStyle string   `json:"rotationStyle,omitempty"`
}

// Block is one node of the flat block graph. Links are by id: Next/Parent
// name sibling blocks, and input slots may name nested blocks. Inputs keep
// the file's loose array shape ([1, v] shadow, [2, v] bare, [3, v, shadow]
// obscured); classifying those arrays is deferred to the decoder.
type Block struct {
	Opcode   string           `json:"opcode"`
	Next     string           `json:"next,omitempty"`
	Parent   string           `json:"parent,omitempty"`
	Inputs   map[string][]any `json:"inputs,omitempty"`
	Fields   map[string][]any `json:"fields,omitempty"`
	Shadow   bool             `json:"shadow"`
	TopLevel bool             `json:"topLevel"`
	X        float64          `json:"x,omitempty"`
	Y        float64          `json:"y,omitempty"`
	Mutation *Mutation        `json:"mutation,omitempty"`
}

// Mutation carries custom-block metadata. The argument lists are JSON
// arrays encoded as strings, exactly as the file stores them.
type Mutation struct {
	TagName          string          `json:"tagName,omitempty"`
	Children         json.RawMessage `json:"children,omitempty"`
	ProcCode         string          `json:"proccode,omitempty"`
	ArgumentIDs      string          `json:"argumentids,omitempty"`
	ArgumentNames    string          `json:"argumentnames,omitempty"`
	ArgumentDefaults string          `json:"argumentdefaults,omitempty"`
	Warp             json.RawMessage `json:"warp,omitempty"`
	HasNext          json.RawMessage `json:"hasnext,omitempty"`
}

// Costume is a sprite image or stage backdrop.
type Costume struct {
	Name              string  `json:"name"`
	BitmapResolution  int     `json:"bitmapResolution,omitempty"`
	DataFormat        string  `json:"dataFormat"`
	AssetID           string  `json:"assetId"`
	MD5Ext            string  `json:"md5ext,omitempty"`
	RotationCenterX   float64 `json:"rotationCenterX"`
	RotationCenterY   float64 `json:"rotationCenterY"`
}

// Sound is an audio asset.
type Sound struct {
	Name        string  `json:"name"`
	AssetID     string  `json:"assetId"`
	DataFormat  string  `json:"dataFormat"`
	Format      string  `json:"format,omitempty"`
	Rate        int     `json:"rate,omitempty"`
	SampleCount int     `json:"sampleCount,omitempty"`
	MD5Ext      string  `json:"md5ext,omitempty"`
}

// Monitor is a variable or list readout placed on the stage.
type Monitor struct {
	ID         string          `json:"id"`
	Mode       string          `json:"mode"`
	Opcode     string          `json:"opcode"`
	Params     map[string]any  `json:"params"`
	SpriteName *string         `json:"spriteName"`
	Value      json.RawMessage `json:"value"`
	Width      float64         `json:"width,omitempty"`
	Height     float64         `json:"height,omitempty"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Visible    bool            `json:"visible"`
	SliderMin  float64         `json:"sliderMin,omitempty"`
	SliderMax  float64         `json:"sliderMax,omitempty"`
	IsDiscrete bool            `json:"isDiscrete,omitempty"`
}

// Comment is a free-floating or block-attached note in the editor.
type Comment struct {
	BlockID   string  `json:"blockId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Minimized bool    `json:"minimized"`
	Text      string  `json:"text"`
}

// Variable is stored in the file as ["name", value] with an optional third
// element marking a cloud variable.
type Variable struct {
	Name  string
	Value any
	Cloud bool
}

func (v *Variable) UnmarshalJSON(b []byte) error {
	var arr []any
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	if len(arr) < 2 {
		return fmt.Errorf("variable: want [name, value], got %d elements", len(arr))
	}
	name, ok := arr[0].(string)
	if !ok {
		return fmt.Errorf("variable: name is %T, want string", arr[0])
	}
	v.Name = name
	v.Value = arr[1]
	if len(arr) > 2 {
		cloud, _ := arr[2].(bool)
		v.Cloud = cloud
	}
	return nil
}

func (v Variable) MarshalJSON() ([]byte, error) {
	arr := []any{v.Name, v.Value}
	if v.Cloud {
		arr = append(arr, true)
	}
	return json.Marshal(arr)
}

// List is stored in the file as ["name", [items...]].
type List struct {
	Name   string
	Values []any
}

func (l *List) UnmarshalJSON(b []byte) error {
	var arr []any
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	if len(arr) < 2 {
		return fmt.Errorf("list: want [name, values], got %d elements", len(arr))
	}
	name, ok := arr[0].(string)
	if !ok {
		return fmt.Errorf("list: name is %T, want string", arr[0])
	}
	values, ok := arr[1].([]any)
	if !ok {
		return fmt.Errorf("list: values is %T, want array", arr[1])
	}
	l.Name = name
	l.Values = values
	return nil
}

func (l List) MarshalJSON() ([]byte, error) {
	values := l.Values
	if values == nil {
		values = []any{}
	}
	return json.Marshal([]any{l.Name, values})
}

// Primitive codes used when a variable or list reporter sits directly on the
// canvas: the block map stores it as a bare array instead of a block object.
const (
	primVariable = 12
	primList     = 13
)

// blockEntry accepts both shapes a block-map value can take: a block object,
// or a compact array for a detached variable/list reporter. The array form
// [12, name, id, x, y] is rewritten into an equivalent top-level reporter
// block so the rest of the pipeline sees one shape.
func (b *Block) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var arr []any
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		return b.fromPrimitive(arr)
	}
	type plain Block
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Block(p)
	return nil
}

func (b *Block) fromPrimitive(arr []any) error {
	if len(arr) < 3 {
		return fmt.Errorf("block: primitive entry has %d elements, want at least 3", len(arr))
	}
	code, ok := arr[0].(float64)
	if !ok {
		return fmt.Errorf("block: primitive code is %T, want number", arr[0])
	}
	name, _ := arr[1].(string)
	id, _ := arr[2].(string)
	switch int(code) {
	case primVariable:
		b.Opcode = "data_variable"
		b.Fields = map[string][]any{"VARIABLE": {name, id}}
	case primList:
		b.Opcode = "data_listcontents"
		b.Fields = map[string][]any{"LIST": {name, id}}
	default:
		return fmt.Errorf("block: unsupported primitive code %d", int(code))
	}
	b.TopLevel = true
	if len(arr) > 4 {
		x, _ := arr[3].(float64)
		y, _ := arr[4].(float64)
		b.X, b.Y = x, y
	}
	return nil
}

// Decode parses raw project.json bytes and validates the structural
// invariants the rest of the pipeline relies on: at least one target,
// exactly one stage, and unique target names.
func Decode(raw []byte) (*Project, error) {
	var p Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	if len(p.Targets) == 0 {
		return nil, fmt.Errorf("decode project: no targets")
	}
	stages := 0
	seen := make(map[string]struct{}, len(p.Targets))
	for _, t := range p.Targets {
		if t.IsStage {
			stages++
		}
		if _, dup := seen[t.Name]; dup {
			return nil, fmt.Errorf("decode project: duplicate target name %q", t.Name)
		}
		seen[t.Name] = struct{}{}
	}
	if stages != 1 {
		return nil, fmt.Errorf("decode project: want exactly one stage, got %d", stages)
	}
	p.normalize()
	return &p, nil
}

// normalize fills md5ext fields the file may omit. Asset identity throughout
// the pipeline is the md5ext string, so it must always be populated.
func (p *Project) normalize() {
	for _, t := range p.Targets {
		for i := range t.Costumes {
			c := &t.Costumes[i]
			if c.MD5Ext == "" && c.AssetID != "" && c.DataFormat != "" {
				c.MD5Ext = c.AssetID + "." + c.DataFormat
			}
		}
		for i := range t.Sounds {
			s := &t.Sounds[i]
			if s.MD5Ext == "" && s.AssetID != "" && s.DataFormat != "" {
				s.MD5Ext = s.AssetID + "." + s.DataFormat
			}
		}
	}
}

// Stage returns the stage target. Decode guarantees it exists.
func (p *Project) Stage() *Target {
	for _, t := range p.Targets {
		if t.IsStage {
			return t
		}
	}
	return nil
}

// Sprites returns all non-stage targets in project (layer) order.
func (p *Project) Sprites() []*Target {
	sprites := make([]*Target, 0, len(p.Targets))
	for _, t := range p.Targets {
		if !t.IsStage {
			sprites = append(sprites, t)
		}
	}
	return sprites
}
