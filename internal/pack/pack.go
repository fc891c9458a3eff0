// Package pack assembles sb3 archives: it collects a project's unique
// assets, downloads them through a Fetcher, and writes the zip container.
// One failed asset download aborts the whole pack; a partial sb3 that loads
// with missing costumes is worse than no file.
package pack

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/klauspost/compress/flate"
	"golang.org/x/sync/errgroup"

	"github.com/nbeney/scratch-tool/internal/project"
)

// Fetcher downloads one asset by its md5ext name. scratchapi.Client
// implements it; the fetch cache wraps it.
type Fetcher interface {
	Asset(ctx context.Context, md5ext string) ([]byte, error)
}

// Entry is one file of an sb3 archive.
type Entry struct {
	Name string
	Data []byte
}

// AssetFetchError reports the asset whose download failed the pack.
type AssetFetchError struct {
	MD5Ext string
	Err    error
}

func (e *AssetFetchError) Error() string {
	return fmt.Sprintf("fetch asset %s: %v", e.MD5Ext, e.Err)
}

func (e *AssetFetchError) Unwrap() error { return e.Err }

// Packager downloads a project's assets and writes sb3 archives.
type Packager struct {
	Fetch   Fetcher
	Workers int // parallel downloads; values below 1 mean serial

	// OnProgress, when set, is called once per downloaded asset. It may be
	// called from multiple goroutines.
	OnProgress func(done, total int, md5ext string)
}

// Entries fetches every unique asset and returns the archive entries:
// project.json first, then assets in collection order. The first failed
// download cancels the remaining fetches and fails the call with an
// AssetFetchError.
func (p *Packager) Entries(ctx context.Context, projectJSON []byte, proj *project.Project) ([]Entry, error) {
	assets := CollectAssets(proj)
	entries := make([]Entry, len(assets)+1)
	entries[0] = Entry{Name: "project.json", Data: projectJSON}

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var done atomic.Int64
	for i, ref := range assets {
		i, ref := i, ref
		g.Go(func() error {
			data, err := p.Fetch.Asset(ctx, ref.MD5Ext())
			if err != nil {
				return &AssetFetchError{MD5Ext: ref.MD5Ext(), Err: err}
			}
			entries[i+1] = Entry{Name: ref.MD5Ext(), Data: data}
			if p.OnProgress != nil {
				p.OnProgress(int(done.Add(1)), len(assets), ref.MD5Ext())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Pack is Entries followed by WriteArchive. Nothing is written to w until
// every asset downloaded.
func (p *Packager) Pack(ctx context.Context, projectJSON []byte, proj *project.Project, w io.Writer) error {
	entries, err := p.Entries(ctx, projectJSON, proj)
	if err != nil {
		return err
	}
	return WriteArchive(w, entries)
}

// WriteArchive writes entries into one zip stream in order.
func WriteArchive(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})
	for _, e := range entries {
		f, err := zw.Create(e.Name)
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", e.Name, err)
		}
		if _, err := f.Write(e.Data); err != nil {
			return fmt.Errorf("zip entry %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

// ReadArchive opens an sb3 and returns the project.json bytes plus every
// entry name in archive order.
func ReadArchive(r io.ReaderAt, size int64) (projectJSON []byte, names []string, err error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, nil, fmt.Errorf("open sb3: %w", err)
	}
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name != "project.json" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("open project.json: %w", err)
		}
		projectJSON, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("read project.json: %w", err)
		}
	}
	if projectJSON == nil {
		return nil, names, fmt.Errorf("sb3 has no project.json entry")
	}
	return projectJSON, names, nil
}
