package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kvsd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dir: /data/jobs
max_backups: 3
max_threads: 4
log_level: debug
log_json: true
metrics_addr: ":9090"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Dir:         "/data/jobs",
		MaxBackups:  3,
		MaxThreads:  4,
		LogLevel:    "debug",
		LogJSON:     true,
		MetricsAddr: ":9090",
	}, cfg)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/no/such/file.yaml")
	assert.Error(t, err)
}

func TestMergeOverrideWinsOverBase(t *testing.T) {
	base := Config{Dir: "/base", MaxBackups: 1, MaxThreads: 1, LogLevel: "info"}
	override := Config{MaxThreads: 8}

	merged := Merge(base, override)
	assert.Equal(t, Config{Dir: "/base", MaxBackups: 1, MaxThreads: 8, LogLevel: "info"}, merged)
}

func TestMergeEmptyOverrideKeepsBase(t *testing.T) {
	base := Config{Dir: "/base", MaxBackups: 2}
	merged := Merge(base, Config{})
	assert.Equal(t, base, merged)
}
