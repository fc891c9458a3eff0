// Package docgen renders one self-contained HTML page per project: metadata,
// statistics, and a section per target with costumes, sounds, variables,
// lists, broadcasts and the rendered script notation. Thumbnails and audio
// point at the Scratch CDN, so the page works without local asset files.
package docgen

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nbeney/scratch-tool/internal/blocks"
	"github.com/nbeney/scratch-tool/internal/project"
	"github.com/nbeney/scratch-tool/internal/scratchapi"
)

const assetBaseURL = "https://assets.scratch.mit.edu/internalapi/asset/"

// listPreview caps how many list items the page shows per list.
const listPreview = 10

// Options carry the page context that does not live in the project file.
// Title is the fallback when no metadata is available (local files).
type Options struct {
	ProjectID int64
	Title     string
	Metadata  *scratchapi.ProjectMetadata
}

type pageData struct {
	Title       string
	ProjectID   int64
	Author      string
	RemixParent int64
	SemVer      string
	VM          string
	StatCards   []statCard
	Extensions  []string
	Stage       *targetView
	Sprites     []*targetView
}

type statCard struct {
	Label string
	Value string
}

type targetView struct {
	Name       string
	Anchor     string
	IsStage    bool
	BlockCount int
	Props      []prop
	Costumes   []assetView
	Sounds     []soundView
	Variables  []variableView
	Lists      []listView
	Messages   []string
	Scripts    string
}

type prop struct {
	Label string
	Value string
}

type assetView struct {
	Name string
	URL  string
}

type soundView struct {
	Name   string
	URL    string
	Format string
}

type variableView struct {
	Name  string
	Value string
}

type listView struct {
	Name  string
	Count int
	Items []string
	More  int
}

// Generate renders the documentation page for p.
func Generate(p *project.Project, opts Options) ([]byte, error) {
	data, err := buildPage(p, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render doc: %w", err)
	}
	return buf.Bytes(), nil
}

func buildPage(p *project.Project, opts Options) (*pageData, error) {
	title := opts.Title
	if opts.Metadata != nil && opts.Metadata.Title != "" {
		title = opts.Metadata.Title
	}
	if title == "" {
		title = "Scratch Project"
	}

	data := &pageData{
		Title:      title,
		ProjectID:  opts.ProjectID,
		SemVer:     p.Meta.SemVer,
		VM:         p.Meta.VM,
		Extensions: p.Extensions,
	}
	if m := opts.Metadata; m != nil {
		data.Author = m.Author.Username
		if m.Remix.Parent != nil {
			data.RemixParent = *m.Remix.Parent
		}
	}
	data.StatCards = statCards(p, opts.Metadata)

	stage, err := newTargetView(p.Stage())
	if err != nil {
		return nil, err
	}
	data.Stage = stage
	for _, sprite := range p.Sprites() {
		v, err := newTargetView(sprite)
		if err != nil {
			return nil, err
		}
		data.Sprites = append(data.Sprites, v)
	}
	return data, nil
}

func statCards(p *project.Project, m *scratchapi.ProjectMetadata) []statCard {
	var cards []statCard
	if m != nil {
		cards = append(cards,
			statCard{"Views", strconv.FormatInt(m.Stats.Views, 10)},
			statCard{"Loves", strconv.FormatInt(m.Stats.Loves, 10)},
			statCard{"Favorites", strconv.FormatInt(m.Stats.Favorites, 10)},
			statCard{"Remixes", strconv.FormatInt(m.Stats.Remixes, 10)},
		)
	}
	s := p.Stats()
	return append(cards,
		statCard{"Sprites", strconv.Itoa(s.Sprites)},
		statCard{"Total Blocks", strconv.Itoa(s.Blocks)},
		statCard{"Cloud Variables", strconv.Itoa(s.CloudVariables)},
		statCard{"Global Variables", strconv.Itoa(s.GlobalVariables)},
		statCard{"Sprite Variables", strconv.Itoa(s.SpriteVariables)},
		statCard{"Lists", strconv.Itoa(s.Lists)},
		statCard{"Messages", strconv.Itoa(s.Broadcasts)},
		statCard{"Custom Blocks", strconv.Itoa(s.CustomBlocks)},
		statCard{"Clones", strconv.Itoa(s.Clones)},
	)
}

func newTargetView(t *project.Target) (*targetView, error) {
	v := &targetView{
		Name:       t.Name,
		IsStage:    t.IsStage,
		BlockCount: len(t.Blocks),
	}
	if !t.IsStage {
		v.Anchor = spriteAnchor(t.Name)
	}
	v.Props = targetProps(t)

	for _, c := range t.Costumes {
		if c.MD5Ext == "" {
			continue
		}
		v.Costumes = append(v.Costumes, assetView{Name: c.Name, URL: assetURL(c.MD5Ext)})
	}
	for _, s := range t.Sounds {
		if s.MD5Ext == "" {
			continue
		}
		v.Sounds = append(v.Sounds, soundView{Name: s.Name, URL: assetURL(s.MD5Ext), Format: s.DataFormat})
	}

	for _, vv := range sortedVariables(t.Variables) {
		name := vv.Name
		if t.IsStage && vv.Cloud {
			name = "☁️ " + name
		}
		v.Variables = append(v.Variables, variableView{Name: name, Value: formatValue(vv.Value)})
	}
	for _, l := range sortedLists(t.Lists) {
		lv := listView{Name: l.Name, Count: len(l.Values)}
		for i, item := range l.Values {
			if i == listPreview {
				lv.More = len(l.Values) - listPreview
				break
			}
			lv.Items = append(lv.Items, fmt.Sprintf("%d. %s", i+1, formatValue(item)))
		}
		v.Lists = append(v.Lists, lv)
	}
	v.Messages = sortedBroadcasts(t.Broadcasts)

	scripts, err := scriptsText(t)
	if err != nil {
		return nil, err
	}
	v.Scripts = scripts
	return v, nil
}

// scriptsText renders all of a target's scripts, blank-line separated. A
// malformed block graph spoils only this target: the page notes it in place
// of the scripts and every other target still documents fully.
func scriptsText(t *project.Target) (string, error) {
	scripts, err := blocks.ScriptsOf(t)
	if err != nil {
		var graphErr *blocks.MalformedGraphError
		if errors.As(err, &graphErr) {
			return fmt.Sprintf("// malformed block graph at %s", graphErr.BlockID), nil
		}
		return "", err
	}
	parts := make([]string, 0, len(scripts))
	for _, s := range scripts {
		parts = append(parts, blocks.RenderText(s))
	}
	return strings.Join(parts, "\n\n"), nil
}

func targetProps(t *project.Target) []prop {
	if t.IsStage {
		return []prop{
			{"Costumes", strconv.Itoa(len(t.Costumes))},
			{"Sounds", strconv.Itoa(len(t.Sounds))},
			{"Variables", strconv.Itoa(len(t.Variables))},
			{"Lists", strconv.Itoa(len(t.Lists))},
			{"Blocks", strconv.Itoa(len(t.Blocks))},
		}
	}

	size := 100.0
	if t.Size != nil {
		size = *t.Size
	}
	direction := 90.0
	if t.Direction != nil {
		direction = *t.Direction
	}
	visible := t.Visible == nil || *t.Visible
	rotation := t.RotationStyle
	if rotation == "" {
		rotation = "all around"
	}
	return []prop{
		{"Position", fmt.Sprintf("(%d, %d)", roundInt(t.X), roundInt(t.Y))},
		{"Size", formatValue(size) + "%"},
		{"Direction", fmt.Sprintf("%d°", roundInt(direction))},
		{"Visible", yesNo(visible)},
		{"Rotation Style", rotation},
		{"Draggable", yesNo(t.Draggable)},
	}
}

// spriteAnchor derives a fragment id from a sprite name. Only [a-z0-9-]
// survive so the id= and href= forms of the anchor always match after
// context-specific escaping.
func spriteAnchor(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, name)
	return "sprite-" + mapped
}

func assetURL(md5ext string) string {
	return assetBaseURL + md5ext + "/get/"
}

func sortedVariables(m map[string]project.Variable) []project.Variable {
	out := make([]project.Variable, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedLists(m map[string]project.List) []project.List {
	out := make([]project.List, 0, len(m))
	for _, l := range m {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedBroadcasts(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, name := range m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// formatValue prints a loosely typed JSON scalar for display: integral
// numbers without a decimal point, everything else as captured.
func formatValue(v any) string {
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
		return fmt.Sprint(v)
	}
}

func roundInt(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
