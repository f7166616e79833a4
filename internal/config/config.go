// Package config loads the external configuration surface described in
// spec.md §6: a database DSN, a root output directory, and the ordered,
// unique set of tables to back up. Loading is the only concern here —
// CLI parsing, secrets management, and synthetic data generation stay
// out of scope per spec.md's Non-goals.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/TFMV/sqlvault/internal/xerrors"
)

// Config is the resolved configuration for one backup run.
type Config struct {
	// DatabaseDSN is a go-sql-driver/mysql data source name, e.g.
	// "user:pass@tcp(127.0.0.1:3306)/dbname?parseTime=true".
	DatabaseDSN string
	// RootDir is the pre-existing, writable directory backups are published into.
	RootDir string
	// Tables is the ordered, de-duplicated set of table names to back up.
	// An empty set is a valid, successful no-op (spec.md §6).
	Tables []string
	// ChunkSize bounds the row count of each emitted batch. Zero means
	// "unbounded" (one batch for the whole table); see spec.md §4.4.
	ChunkSize int
}

const (
	envDatabaseDSN = "DATABASE_DSN"
	envRootDir     = "ROOT_DIR"
	envTables      = "TABLES"
	envChunkSize   = "CHUNK_SIZE"

	defaultChunkSize = 1000
)

// Load reads configuration from the process environment, loading a
// ".env" file first if one is present in the working directory (mirrors
// the teacher corpus's dotenvy convention: a malformed .env file is
// fatal, a missing one is not).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, xerrors.Wrap(err, xerrors.CodeConfig, "could not parse .env file")
	}
	return FromEnviron(os.Environ())
}

// FromEnviron builds a Config from a raw "KEY=VALUE" environment slice,
// exposed separately from Load so tests don't need to mutate process
// environment or touch the filesystem.
func FromEnviron(environ []string) (*Config, error) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			env[k] = v
		}
	}

	dsn, err := requireEnv(env, envDatabaseDSN)
	if err != nil {
		return nil, err
	}
	root, err := requireEnv(env, envRootDir)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseDSN: dsn,
		RootDir:     root,
		Tables:      parseTables(env[envTables]),
		ChunkSize:   defaultChunkSize,
	}

	if raw, ok := env[envChunkSize]; ok && raw != "" {
		var n int
		if _, scanErr := fmt.Sscanf(raw, "%d", &n); scanErr != nil || n < 0 {
			return nil, xerrors.Wrapf(scanErr, xerrors.CodeConfig, "%s must be a non-negative integer, got %q", envChunkSize, raw)
		}
		cfg.ChunkSize = n
	}

	if info, statErr := os.Stat(cfg.RootDir); statErr != nil || !info.IsDir() {
		return nil, xerrors.Wrapf(statErr, xerrors.CodeConfig, "%s %q must be a pre-existing, writable directory", envRootDir, cfg.RootDir)
	}

	return cfg, nil
}

func requireEnv(env map[string]string, key string) (string, error) {
	v, ok := env[key]
	if !ok || v == "" {
		return "", xerrors.New(xerrors.CodeConfig, fmt.Sprintf("environment variable %s is required", key))
	}
	return v, nil
}

// parseTables splits a semicolon-separated list, trims whitespace,
// drops empty entries, and de-duplicates while preserving first-seen
// order — matching the ordered-unique-set contract of spec.md §6.
func parseTables(raw string) []string {
	if raw == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ";") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
