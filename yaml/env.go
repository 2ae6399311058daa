package yaml

import (
	"fmt"
	"strings"

	"github.com/CodeBeast357/downdrag"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes the environment variables that override querier
// settings, e.g. DOWNDRAG_QUERIER_MODE or DOWNDRAG_QUERIER_CACHE_SIZE.
const EnvPrefix = "DOWNDRAG_"

// envKey maps DOWNDRAG_QUERIER_CACHE_SIZE to querier.cache_size.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

// ApplyEnv overrides querier settings of cfg with DOWNDRAG_QUERIER_*
// environment variables.
func ApplyEnv(cfg *downdrag.Config) error {
	k := koanf.New(".")
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}

	q := &cfg.Querier
	const section = KeyQuerier + "."
	if k.Exists(section + "mode") {
		q.Mode = downdrag.QuerierMode(k.String(section + "mode"))
	}
	if k.Exists(section + "syntax") {
		q.Syntax = downdrag.Syntax(k.String(section + "syntax"))
	}
	if k.Exists(section + "cached") {
		q.Cached = k.Bool(section + "cached")
	}
	if k.Exists(section + "cache_size") {
		q.CacheSize = k.Int(section + "cache_size")
	}
	if k.Exists(section + "driver") {
		q.Driver = k.String(section + "driver")
	}
	if k.Exists(section + "argsline") {
		q.Argsline = k.String(section + "argsline")
	}
	if k.Exists(section + "proxy") {
		q.Proxy = k.String(section + "proxy")
	}
	if k.Exists(section + "timeout") {
		q.Timeout = k.Duration(section + "timeout")
	}
	if k.Exists(section + "retries") {
		q.Retries = k.Int(section + "retries")
	}
	if k.Exists(section + "rate") {
		q.Rate = k.Float64(section + "rate")
	}
	return nil
}
