// Package progress defines the events emitted while a project is fetched and
// packed, plus an in-process broker that fans them out to WebSocket clients.
package progress

import (
	"errors"
	"sync"

	"github.com/nbeney/scratch-tool/internal/blocks"
	"github.com/nbeney/scratch-tool/internal/pack"
	"github.com/nbeney/scratch-tool/internal/scratchapi"
)

// Pipeline stages, in emit order. StageDone and StageError are terminal.
const (
	StageMetadata = "metadata"
	StageProject  = "project"
	StageAssets   = "assets"
	StageArchive  = "archive"
	StageDone     = "done"
	StageError    = "error"
)

// Error codes carried on StageError events. Stable strings: clients match on
// them, so renames are breaking.
const (
	CodeNotFound   = "E_NOT_FOUND"
	CodePrivate    = "E_PRIVATE"
	CodeAssetFetch = "E_ASSET_FETCH"
	CodeMalformed  = "E_MALFORMED"
	CodeInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	CodeNotFound:   {},
	CodePrivate:    {},
	CodeAssetFetch: {},
	CodeMalformed:  {},
	CodeInternal:   {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// CodeFor maps a fetch/pack pipeline error to its wire code.
func CodeFor(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, scratchapi.ErrProjectNotFound):
		return CodeNotFound
	case errors.Is(err, scratchapi.ErrProjectPrivate):
		return CodePrivate
	}
	var fetchErr *pack.AssetFetchError
	if errors.As(err, &fetchErr) {
		return CodeAssetFetch
	}
	var graphErr *blocks.MalformedGraphError
	if errors.As(err, &graphErr) {
		return CodeMalformed
	}
	return CodeInternal
}

// Event is one progress update for one project. Done/Total count assets
// during StageAssets; Detail carries the current asset name or, on errors,
// a human-readable message alongside Code.
type Event struct {
	ProjectID int64  `json:"project_id"`
	Stage     string `json:"stage"`
	Done      int    `json:"done,omitempty"`
	Total     int    `json:"total,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Code      string `json:"code,omitempty"`
}

// Buffer per subscriber; WebSocket writers that fall further behind lose
// intermediate events, never terminal ones from their own read loop.
const subscriberBuffer = 32

// Broker fans events out to per-project subscribers. Safe for concurrent use.
type Broker struct {
	mu   sync.Mutex
	subs map[int64]map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int64]map[chan Event]struct{})}
}

// Subscribe registers a listener for one project's events and returns the
// channel plus a cancel that unregisters and closes it. Cancel is idempotent.
func (b *Broker) Subscribe(projectID int64) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	set := b.subs[projectID]
	if set == nil {
		set = make(map[chan Event]struct{})
		b.subs[projectID] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			// Close under the lock: Publish sends under the same lock, so no
			// send can race the close.
			if set, ok := b.subs[projectID]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(b.subs, projectID)
				}
			}
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber of its project. Sends never block:
// a subscriber with a full buffer misses the event.
func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[ev.ProjectID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers reports the current listener count across all projects.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, set := range b.subs {
		n += len(set)
	}
	return n
}
