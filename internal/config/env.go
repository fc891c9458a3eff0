package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overlays SCRATCHTOOL_* environment variables onto the config.
// Set variables win over file values; unset ones leave the config alone.
// Mirror credentials normally arrive this way rather than via the file.
func (c *Config) ApplyEnv() {
	c.Server.Addr = envStr("SCRATCHTOOL_ADDR", c.Server.Addr)

	c.Cache.Path = envStr("SCRATCHTOOL_CACHE_PATH", c.Cache.Path)
	c.Cache.Disabled = envBool("SCRATCHTOOL_NO_CACHE", c.Cache.Disabled)

	c.Mirror.Enabled = envBool("SCRATCHTOOL_MIRROR", c.Mirror.Enabled)
	c.Mirror.Endpoint = envStr("SCRATCHTOOL_MIRROR_ENDPOINT", c.Mirror.Endpoint)
	c.Mirror.Region = envStr("SCRATCHTOOL_MIRROR_REGION", c.Mirror.Region)
	c.Mirror.Bucket = envStr("SCRATCHTOOL_MIRROR_BUCKET", c.Mirror.Bucket)
	c.Mirror.AccessKey = envStr("SCRATCHTOOL_MIRROR_ACCESS_KEY_ID", c.Mirror.AccessKey)
	c.Mirror.SecretKey = envStr("SCRATCHTOOL_MIRROR_SECRET_ACCESS_KEY", c.Mirror.SecretKey)
	c.Mirror.UseSSL = envBool("SCRATCHTOOL_MIRROR_USE_SSL", c.Mirror.UseSSL)
	c.Mirror.Prefix = envStr("SCRATCHTOOL_MIRROR_PREFIX", c.Mirror.Prefix)
	c.Mirror.Workers = envInt("SCRATCHTOOL_MIRROR_UPLOAD_WORKERS", c.Mirror.Workers)
}

func envStr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
