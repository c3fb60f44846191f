package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"local_database_dsn":    "/data/local.db",
		"remote_database_dsn":   "postgres://remote",
		"jwt_secret":            "s3cr3t",
		"s3_root_user":          "u",
		"s3_root_password":      "p",
		"s3_bucket":             "b",
		"s3_region":             "r",
		"s3_base_endpoint":      "http://e",
		"s3_public_base_url":    "https://cdn",
		"image_max_dimension":   800,
		"collections_cache_ttl": "1m",
		"backend_check_timeout": 2000000000,
		"captures_dir":          "/data/caps",
	})

	t.Run("loads every field", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}

		cfg := &Config{}
		parseJson(cfg)

		want := &Config{
			LocalDatabaseDSN: "/data/local.db", RemoteDatabaseDSN: "postgres://remote", JWTSecret: "s3cr3t",
			S3RootUser: "u", S3RootPassword: "p", S3Bucket: "b", S3Region: "r", S3BaseEndpoint: "http://e",
			S3PublicBaseURL: "https://cdn", ImageMaxDimension: 800, CollectionsCacheTTL: time.Minute,
			BackendCheckTimeout: 2 * time.Second, CapturesDir: "/data/caps",
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("parseJson mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("absent keys keep previous values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"remote_database_dsn": ""})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		cfg.RemoteDatabaseDSN = "postgres://before"
		parseJson(cfg)

		assert.Empty(t, cfg.RemoteDatabaseDSN, "explicit empty value clears the backend")
		assert.Equal(t, "antiquary.db", cfg.LocalDatabaseDSN)
		assert.Equal(t, 30*time.Second, cfg.CollectionsCacheTTL)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{LocalDatabaseDSN: "keep.db", BackendCheckTimeout: 42 * time.Second}
		parseJson(cfg)

		assert.Equal(t, "keep.db", cfg.LocalDatabaseDSN)
		assert.Equal(t, 42*time.Second, cfg.BackendCheckTimeout)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
