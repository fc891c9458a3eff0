package cache

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("", 0)
	require.Error(t, err)
}

func TestStore_ProjectRoundTrip(t *testing.T) {
	s := openTestStore(t, time.Hour)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	meta := []byte(`{"id":123,"title":"My Game"}`)
	proj := []byte(`{"targets":[]}`)
	require.NoError(t, s.PutProject(123, "My Game", meta, proj))

	got, err := s.GetProject(123)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, int64(123), got.ID)
	require.Equal(t, "My Game", got.Title)
	require.Equal(t, meta, got.Metadata)
	require.Equal(t, proj, got.ProjectJSON)
	require.True(t, got.FetchedAt.Equal(base), "fetched at %v, want %v", got.FetchedAt, base)
}

func TestStore_ProjectMissReturnsNil(t *testing.T) {
	s := openTestStore(t, time.Hour)
	got, err := s.GetProject(404)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestStore_ProjectExpires(t *testing.T) {
	s := openTestStore(t, time.Hour)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.PutProject(7, "Old", []byte(`{}`), []byte(`{}`)))

	s.now = func() time.Time { return base.Add(30 * time.Minute) }
	got, err := s.GetProject(7)
	require.NoError(t, err)
	require.NotNil(t, got, "row inside the TTL should be served")

	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	got, err = s.GetProject(7)
	require.NoError(t, err)
	require.Nil(t, got, "row past the TTL should read as a miss")
}

func TestStore_PutProjectReplaces(t *testing.T) {
	s := openTestStore(t, time.Hour)
	require.NoError(t, s.PutProject(9, "First", []byte(`{"v":1}`), []byte(`{"a":1}`)))
	require.NoError(t, s.PutProject(9, "Second", []byte(`{"v":2}`), []byte(`{"a":2}`)))

	got, err := s.GetProject(9)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Second", got.Title)
	require.Equal(t, []byte(`{"v":2}`), got.Metadata)
	require.Equal(t, []byte(`{"a":2}`), got.ProjectJSON)
}

func TestStore_AssetRoundTrip(t *testing.T) {
	s := openTestStore(t, time.Hour)

	got, err := s.GetAsset("abc123.svg")
	require.NoError(t, err)
	require.Nil(t, got, "unknown asset should miss, not error")

	data := append([]byte{0x00, 0x01, 0xff}, bytes.Repeat([]byte("wav"), 500)...)
	require.NoError(t, s.PutAsset("abc123.svg", data))

	got, err = s.GetAsset("abc123.svg")
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestStore_AssetsNeverExpire(t *testing.T) {
	s := openTestStore(t, time.Hour)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.PutAsset("def456.wav", []byte("RIFF")))

	s.now = func() time.Time { return base.Add(100 * time.Hour) }
	got, err := s.GetAsset("def456.wav")
	require.NoError(t, err)
	require.Equal(t, []byte("RIFF"), got)
}

func TestStore_Prune(t *testing.T) {
	s := openTestStore(t, time.Hour)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base }
	require.NoError(t, s.PutProject(1, "Stale", []byte(`{}`), []byte(`{}`)))
	require.NoError(t, s.PutAsset("abc123.svg", []byte("<svg/>")))

	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	require.NoError(t, s.PutProject(2, "Fresh", []byte(`{}`), []byte(`{}`)))

	n, err := s.Prune()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	got, err := s.GetProject(1)
	require.NoError(t, err)
	require.Nil(t, got)
	got, err = s.GetProject(2)
	require.NoError(t, err)
	require.NotNil(t, got)

	asset, err := s.GetAsset("abc123.svg")
	require.NoError(t, err)
	require.NotNil(t, asset, "prune must leave assets alone")
}

func TestStore_Totals(t *testing.T) {
	s := openTestStore(t, time.Hour)

	tot, err := s.Totals()
	require.NoError(t, err)
	require.Equal(t, Totals{}, tot)

	require.NoError(t, s.PutProject(1, "One", []byte(`{}`), []byte(`{}`)))
	require.NoError(t, s.PutAsset("a.svg", []byte("12345")))
	require.NoError(t, s.PutAsset("b.wav", []byte("1234567")))

	tot, err = s.Totals()
	require.NoError(t, err)
	require.Equal(t, Totals{Projects: 1, Assets: 2, AssetBytes: 12}, tot)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(path, time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.PutProject(5, "Kept", []byte(`{"k":1}`), []byte(`{"t":[]}`)))
	require.NoError(t, s.PutAsset("abc.png", []byte{1, 2, 3}))
	require.NoError(t, s.Close())

	s, err = Open(path, time.Hour)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetProject(5)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Kept", got.Title)

	asset, err := s.GetAsset("abc.png")
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, asset)
}
