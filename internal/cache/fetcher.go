package cache

import (
	"context"
	"sync/atomic"
)

// AssetSource fetches one asset by its md5ext name. The Scratch API client
// implements it.
type AssetSource interface {
	Asset(ctx context.Context, md5ext string) ([]byte, error)
}

// Fetcher answers asset reads from the store and falls back to Src on a
// miss, writing the result back. With a nil Store it is a plain passthrough.
type Fetcher struct {
	Store *Store
	Src   AssetSource

	hits   atomic.Int64
	misses atomic.Int64
}

func (f *Fetcher) Asset(ctx context.Context, md5ext string) ([]byte, error) {
	if f.Store != nil {
		if data, err := f.Store.GetAsset(md5ext); err == nil && data != nil {
			f.hits.Add(1)
			return data, nil
		}
		// A broken cache row reads as a miss; the source copy repairs it below.
	}
	f.misses.Add(1)

	data, err := f.Src.Asset(ctx, md5ext)
	if err != nil {
		return nil, err
	}
	if f.Store != nil {
		// Best effort: a failed cache write must not fail the download.
		_ = f.Store.PutAsset(md5ext, data)
	}
	return data, nil
}

// Stats reports how many asset reads the store answered versus how many went
// to the source.
func (f *Fetcher) Stats() (hits, misses int64) {
	return f.hits.Load(), f.misses.Load()
}
