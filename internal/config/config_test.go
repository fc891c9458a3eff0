package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	c := Defaults()
	if c.Server.Addr != ":8080" {
		t.Fatalf("server addr: %q", c.Server.Addr)
	}
	if c.Server.DocCacheSize != 64 {
		t.Fatalf("doc cache size: %d", c.Server.DocCacheSize)
	}
	if c.Cache.TTLHours != 24 || c.Cache.TTL() != 24*time.Hour {
		t.Fatalf("cache ttl: %d hours -> %v", c.Cache.TTLHours, c.Cache.TTL())
	}
	if !strings.HasSuffix(c.Cache.Path, "cache.db") {
		t.Fatalf("cache path: %q", c.Cache.Path)
	}
	if c.Mirror.Enabled {
		t.Fatalf("mirror must be off by default")
	}
	if c.Fetch.AssetWorkers != 4 {
		t.Fatalf("asset workers: %d", c.Fetch.AssetWorkers)
	}
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
server:
  addr: "127.0.0.1:9000"
cache:
  ttl_hours: 1
mirror:
  enabled: true
  bucket: archives
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("addr not overridden: %q", c.Server.Addr)
	}
	if c.Cache.TTL() != time.Hour {
		t.Fatalf("ttl not overridden: %v", c.Cache.TTL())
	}
	if !c.Mirror.Enabled || c.Mirror.Bucket != "archives" {
		t.Fatalf("mirror not overridden: %+v", c.Mirror)
	}
	// Untouched fields keep their defaults.
	if c.Server.DocCacheSize != 64 {
		t.Fatalf("doc cache size lost its default: %d", c.Server.DocCacheSize)
	}
	if c.Fetch.AssetWorkers != 4 {
		t.Fatalf("asset workers lost its default: %d", c.Fetch.AssetWorkers)
	}
	if c.Mirror.Workers != 2 {
		t.Fatalf("mirror workers lost its default: %d", c.Mirror.Workers)
	}
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("want not-exist error, got %v", err)
	}
	if c.Server.Addr != ":8080" {
		t.Fatalf("defaults not returned alongside the error: %q", c.Server.Addr)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [notamap"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("want parse error")
	}
}

func TestApplyEnv_OverlaysMirrorSettings(t *testing.T) {
	t.Setenv("SCRATCHTOOL_MIRROR", "true")
	t.Setenv("SCRATCHTOOL_MIRROR_ENDPOINT", "minio.local:9000")
	t.Setenv("SCRATCHTOOL_MIRROR_BUCKET", "sb3")
	t.Setenv("SCRATCHTOOL_MIRROR_ACCESS_KEY_ID", "ak")
	t.Setenv("SCRATCHTOOL_MIRROR_SECRET_ACCESS_KEY", "sk")
	t.Setenv("SCRATCHTOOL_MIRROR_USE_SSL", "false")
	t.Setenv("SCRATCHTOOL_MIRROR_UPLOAD_WORKERS", "5")
	t.Setenv("SCRATCHTOOL_ADDR", "127.0.0.1:9999")

	c := Defaults()
	c.ApplyEnv()

	if !c.Mirror.Enabled {
		t.Fatalf("mirror not enabled from env")
	}
	if c.Mirror.Endpoint != "minio.local:9000" || c.Mirror.Bucket != "sb3" {
		t.Fatalf("mirror endpoint/bucket: %+v", c.Mirror)
	}
	if c.Mirror.AccessKey != "ak" || c.Mirror.SecretKey != "sk" {
		t.Fatalf("mirror creds: %+v", c.Mirror)
	}
	if c.Mirror.UseSSL {
		t.Fatalf("use_ssl not overridden")
	}
	if c.Mirror.Workers != 5 {
		t.Fatalf("upload workers: %d", c.Mirror.Workers)
	}
	if c.Server.Addr != "127.0.0.1:9999" {
		t.Fatalf("addr: %q", c.Server.Addr)
	}
	// The prefix keeps its default when the variable is unset.
	if c.Mirror.Prefix != "archives" {
		t.Fatalf("prefix lost its default: %q", c.Mirror.Prefix)
	}
}

func TestApplyEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv("SCRATCHTOOL_MIRROR", "not-a-bool")
	t.Setenv("SCRATCHTOOL_MIRROR_UPLOAD_WORKERS", "-3")

	c := Defaults()
	c.ApplyEnv()

	if c.Mirror.Enabled {
		t.Fatalf("bad bool must keep the default")
	}
	if c.Mirror.Workers != 2 {
		t.Fatalf("bad int must keep the default: %d", c.Mirror.Workers)
	}
}
