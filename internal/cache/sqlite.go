// Package cache keeps fetched Scratch data in a local SQLite file so repeat
// runs skip the network. Project rows go stale after a TTL because shared
// projects keep changing under the same id; assets are content-addressed by
// their md5 hash and never expire.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"
)

// DefaultTTL is how long a cached project row is served before the next run
// goes back to the API for a fresh copy.
const DefaultTTL = 24 * time.Hour

// Store is a single-file cache. It is safe for concurrent use; the database
// is opened with a single connection so SQLite serializes writers itself.
type Store struct {
	db   *sql.DB
	ttl  time.Duration
	enc  *zstd.Encoder
	dec  *zstd.Decoder
	once sync.Once

	// now is swapped in tests to control staleness.
	now func() time.Time
}

// CachedProject is one projects row, decompressed.
type CachedProject struct {
	ID          int64
	Title       string
	Metadata    []byte
	ProjectJSON []byte
	FetchedAt   time.Time
}

// Totals summarizes the cache contents for status output and metrics.
type Totals struct {
	Projects   int64
	Assets     int64
	AssetBytes int64
}

// Open creates or opens the cache database at path. A ttl <= 0 selects
// DefaultTTL.
func Open(path string, ttl time.Duration) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty cache path")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		ttl: ttl,
		enc: enc,
		dec: dec,
		now: time.Now,
	}, nil
}

func initPragmas(db *sql.DB) error {
	// One process, few writers; WAL keeps lookups cheap while a download
	// streams asset rows in.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			metadata_json BLOB NOT NULL,
			project_json BLOB NOT NULL,
			fetched_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_projects_fetched_at ON projects(fetched_at);`,
		`CREATE TABLE IF NOT EXISTS assets (
			md5ext TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			size INTEGER NOT NULL,
			fetched_at INTEGER NOT NULL
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database and the compressor handles. Safe to call twice.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		err = s.db.Close()
		s.enc.Close()
		s.dec.Close()
	})
	return err
}

// GetProject returns the cached row for id, or (nil, nil) when the row is
// absent or older than the TTL.
func (s *Store) GetProject(id int64) (*CachedProject, error) {
	cutoff := s.now().Add(-s.ttl).Unix()
	row := s.db.QueryRow(
		`SELECT title, metadata_json, project_json, fetched_at FROM projects WHERE id = ? AND fetched_at > ?`,
		id, cutoff,
	)

	var (
		title     string
		metaBlob  []byte
		projBlob  []byte
		fetchedAt int64
	)
	if err := row.Scan(&title, &metaBlob, &projBlob, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	meta, err := s.dec.DecodeAll(metaBlob, nil)
	if err != nil {
		return nil, fmt.Errorf("cache row %d: %w", id, err)
	}
	proj, err := s.dec.DecodeAll(projBlob, nil)
	if err != nil {
		return nil, fmt.Errorf("cache row %d: %w", id, err)
	}
	return &CachedProject{
		ID:          id,
		Title:       title,
		Metadata:    meta,
		ProjectJSON: proj,
		FetchedAt:   time.Unix(fetchedAt, 0).UTC(),
	}, nil
}

// PutProject stores (or replaces) the row for id and restarts its TTL.
func (s *Store) PutProject(id int64, title string, metadataJSON, projectJSON []byte) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO projects(id,title,metadata_json,project_json,fetched_at) VALUES(?,?,?,?,?)`,
		id,
		title,
		s.enc.EncodeAll(metadataJSON, nil),
		s.enc.EncodeAll(projectJSON, nil),
		s.now().Unix(),
	)
	return err
}

// GetAsset returns the cached asset bytes, or (nil, nil) when absent.
// Assets never go stale: the md5 in the name pins the content.
func (s *Store) GetAsset(md5ext string) ([]byte, error) {
	row := s.db.QueryRow(`SELECT data FROM assets WHERE md5ext = ?`, md5ext)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	data, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("cache asset %s: %w", md5ext, err)
	}
	return data, nil
}

// PutAsset stores asset bytes under their md5ext name.
func (s *Store) PutAsset(md5ext string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO assets(md5ext,data,size,fetched_at) VALUES(?,?,?,?)`,
		md5ext,
		s.enc.EncodeAll(data, nil),
		len(data),
		s.now().Unix(),
	)
	return err
}

// Prune removes project rows older than the TTL and reports how many went.
// Asset rows stay: they are immutable and shared across projects.
func (s *Store) Prune() (int64, error) {
	cutoff := s.now().Add(-s.ttl).Unix()
	res, err := s.db.Exec(`DELETE FROM projects WHERE fetched_at <= ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Totals counts what the cache holds. Sizes are uncompressed asset bytes.
func (s *Store) Totals() (Totals, error) {
	var t Totals
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&t.Projects); err != nil {
		return t, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(size),0) FROM assets`).Scan(&t.Assets, &t.AssetBytes); err != nil {
		return t, err
	}
	return t, nil
}
