package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfigFile(t, `
dir: /var/lib/engine
max_segment_size: 1048576
sync_writes: true
`)

	opts, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/engine", opts.Dir)
	assert.Equal(t, int64(1048576), opts.MaxSegmentSize)
	assert.True(t, opts.SyncWrites)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfigFile(t, `dir: /tmp/engine`)

	opts, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/engine", opts.Dir)
	assert.Equal(t, DefaultOptions.MaxSegmentSize, opts.MaxSegmentSize)
	assert.Equal(t, DefaultOptions.SyncWrites, opts.SyncWrites)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, `dir: [unterminated`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions.Validate())

	assert.Error(t, Options{Dir: "", MaxSegmentSize: 1}.Validate())
	assert.Error(t, Options{Dir: "d", MaxSegmentSize: 0}.Validate())
	assert.Error(t, Options{Dir: "d", MaxSegmentSize: -1}.Validate())
}
