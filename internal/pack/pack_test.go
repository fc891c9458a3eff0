package pack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/nbeney/scratch-tool/internal/project"
)

// testProject shares one costume between the stage and a sprite, so the
// unique asset list is shorter than the costume list.
func testProject() *project.Project {
	return &project.Project{
		Targets: []*project.Target{
			{
				IsStage:  true,
				Name:     "Stage",
				Costumes: []project.Costume{{Name: "backdrop1", AssetID: "abc123", DataFormat: "svg", MD5Ext: "abc123.svg"}},
				Sounds:   []project.Sound{{Name: "pop", AssetID: "def456", DataFormat: "wav", MD5Ext: "def456.wav"}},
			},
			{
				Name: "Sprite1",
				Costumes: []project.Costume{
					{Name: "shared", AssetID: "abc123", DataFormat: "svg", MD5Ext: "abc123.svg"},
					{Name: "own", AssetID: "9a9b", DataFormat: "png", MD5Ext: "9a9b.png"},
				},
			},
		},
	}
}

type fakeFetcher struct {
	mu    sync.Mutex
	data  map[string][]byte
	fails map[string]error
	calls []string
}

func (f *fakeFetcher) Asset(ctx context.Context, md5ext string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, md5ext)
	f.mu.Unlock()
	if err, ok := f.fails[md5ext]; ok {
		return nil, err
	}
	data, ok := f.data[md5ext]
	if !ok {
		return nil, fmt.Errorf("no such asset %s", md5ext)
	}
	return data, nil
}

func TestCollectAssets_DedupAcrossTargets(t *testing.T) {
	refs := CollectAssets(testProject())
	var got []string
	for _, r := range refs {
		got = append(got, r.MD5Ext())
	}
	want := []string{"abc123.svg", "def456.wav", "9a9b.png"}
	if len(got) != len(want) {
		t.Fatalf("assets=%v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("assets=%v want %v", got, want)
		}
	}
}

func TestPackager_RoundTrip(t *testing.T) {
	fetch := &fakeFetcher{data: map[string][]byte{
		"abc123.svg": []byte("<svg/>"),
		"def456.wav": []byte("RIFFwav"),
		"9a9b.png":   []byte("\x89PNG"),
	}}
	p := &Packager{Fetch: fetch, Workers: 4}
	raw := []byte(`{"targets": []}`)

	var buf bytes.Buffer
	if err := p.Pack(context.Background(), raw, testProject(), &buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	gotJSON, names, err := ReadArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if !bytes.Equal(gotJSON, raw) {
		t.Fatalf("project.json=%q want %q", gotJSON, raw)
	}
	want := []string{"project.json", "abc123.svg", "def456.wav", "9a9b.png"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("entries=%v want %v", names, want)
	}
}

func TestPackager_AbortsOnFetchFailure(t *testing.T) {
	errDown := errors.New("cdn down")
	fetch := &fakeFetcher{
		data: map[string][]byte{
			"def456.wav": []byte("RIFFwav"),
			"9a9b.png":   []byte("\x89PNG"),
		},
		fails: map[string]error{"abc123.svg": errDown},
	}
	p := &Packager{Fetch: fetch, Workers: 2}

	var buf bytes.Buffer
	err := p.Pack(context.Background(), []byte(`{}`), testProject(), &buf)
	if err == nil {
		t.Fatalf("expected pack failure")
	}
	var afe *AssetFetchError
	if !errors.As(err, &afe) {
		t.Fatalf("err=%v want AssetFetchError", err)
	}
	if afe.MD5Ext != "abc123.svg" {
		t.Fatalf("failed asset=%q want abc123.svg", afe.MD5Ext)
	}
	if !errors.Is(err, errDown) {
		t.Fatalf("cause not wrapped: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("partial archive written: %d bytes", buf.Len())
	}
}

func TestPackager_Progress(t *testing.T) {
	fetch := &fakeFetcher{data: map[string][]byte{
		"abc123.svg": []byte("a"),
		"def456.wav": []byte("b"),
		"9a9b.png":   []byte("c"),
	}}

	var mu sync.Mutex
	var dones []int
	p := &Packager{
		Fetch:   fetch,
		Workers: 3,
		OnProgress: func(done, total int, md5ext string) {
			mu.Lock()
			defer mu.Unlock()
			if total != 3 {
				t.Errorf("total=%d want 3", total)
			}
			dones = append(dones, done)
		},
	}
	if _, err := p.Entries(context.Background(), []byte(`{}`), testProject()); err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(dones) != 3 {
		t.Fatalf("progress calls=%d want 3", len(dones))
	}
	max := 0
	for _, d := range dones {
		if d > max {
			max = d
		}
	}
	if max != 3 {
		t.Fatalf("final done=%d want 3", max)
	}
}

func TestReadArchive_MissingProjectJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteArchive(&buf, []Entry{{Name: "abc123.svg", Data: []byte("x")}}); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	_, _, err := ReadArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err == nil || !strings.Contains(err.Error(), "no project.json") {
		t.Fatalf("err=%v want missing project.json", err)
	}
}
