// Package config carries the file-backed settings shared by the CLI and the
// server. A YAML file overrides Defaults; mirror credentials usually arrive
// through the environment instead (the mains overlay them).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Cache  CacheConfig  `yaml:"cache"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Mirror MirrorConfig `yaml:"mirror"`
}

type ServerConfig struct {
	Addr         string `yaml:"addr"`
	DocCacheSize int    `yaml:"doc_cache_size"`
}

type CacheConfig struct {
	Path     string `yaml:"path"`
	TTLHours int    `yaml:"ttl_hours"`
	Disabled bool   `yaml:"disabled"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

type FetchConfig struct {
	AssetWorkers int `yaml:"asset_workers"`
}

type MirrorConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Endpoint      string `yaml:"endpoint"`
	Region        string `yaml:"region"`
	Bucket        string `yaml:"bucket"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	UseSSL        bool   `yaml:"use_ssl"`
	Prefix        string `yaml:"prefix"`
	Workers       int    `yaml:"workers"`
	QueueCapacity int    `yaml:"queue_capacity"`
}

func Defaults() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080", DocCacheSize: 64},
		Cache:  CacheConfig{Path: defaultCachePath(), TTLHours: 24},
		Fetch:  FetchConfig{AssetWorkers: 4},
		Mirror: MirrorConfig{UseSSL: true, Prefix: "archives", Workers: 2, QueueCapacity: 256},
	}
}

func defaultCachePath() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".scratch-tool", "cache.db")
	}
	return filepath.Join(base, "scratch-tool", "cache.db")
}

// Load reads the YAML file at path over Defaults. Fields the file leaves out
// keep their default values. The read error comes back unwrapped so callers
// can treat a missing optional file as "use defaults".
func Load(path string) (Config, error) {
	c := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
