package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unchained-capital/hermit/internal/config"
)

func TestLoadSave_RoundTrip(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "hermit.yaml")

	cfg := config.Defaults()
	cfg.Paths.ShardsFile = "/tmp/custom_shards.bson"
	cfg.Coordinator.SignatureRequired = true
	cfg.Coordinator.PublicKey = "deadbeef"
	cfg.IO.QRCodeSequenceDelay = 500
	cfg.Logging.Level = "debug"

	require.NoError(t, config.Save(cfg, path))

	loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom_shards.bson", loaded.Paths.ShardsFile)
	assert.True(t, loaded.Coordinator.SignatureRequired)
	assert.Equal(t, "deadbeef", loaded.Coordinator.PublicKey)
	assert.Equal(t, 500, loaded.IO.QRCodeSequenceDelay)
	assert.Equal(t, "debug", loaded.Logging.Level)
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	assert.Equal(t, config.DefaultConfigPath, cfg.Paths.ConfigFile)
	assert.Equal(t, "/tmp/shard_words.bson", cfg.Paths.ShardsFile)
	assert.Equal(t, "/var/lib/hermit", cfg.Paths.PluginDir)

	assert.Equal(t, "ascii", cfg.IO.Display)
	assert.Equal(t, "imageio", cfg.IO.Camera)
	assert.Equal(t, 200, cfg.IO.QRCodeSequenceDelay)
	assert.Equal(t, 300, cfg.IO.Width)
	assert.Equal(t, 300, cfg.IO.Height)

	assert.False(t, cfg.Coordinator.SignatureRequired)
	assert.Equal(t, config.AlgorithmECDSASecp256k1SHA256, cfg.Coordinator.Algorithm)
	assert.Equal(t, 600, cfg.Coordinator.RelockTimeout)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.File)
	assert.False(t, cfg.Logging.JSON)
}

func TestDefaults_CommandTemplates(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	assert.Contains(t, cfg.Commands.PersistShards, "{0}")
	assert.Contains(t, cfg.Commands.BackupShards, "gzip")
	assert.Contains(t, cfg.Commands.RestoreBackup, "gunzip")
	assert.Contains(t, cfg.Commands.GetPersistedShards, "cat")
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := config.Load("/nonexistent/hermit.yaml")
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "hermit.yaml")

	err := os.WriteFile(path, []byte("invalid: yaml: content: ["), 0o600)
	require.NoError(t, err)

	_, err = config.Load(path)
	assert.Error(t, err)
}

func TestLoad_PartialFileMergesOntoDefaults(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "hermit.yaml")

	err := os.WriteFile(path, []byte("coordinator:\n  signature_required: true\n"), 0o600)
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Coordinator.SignatureRequired)
	// Unset fields retain Defaults() values.
	assert.Equal(t, "/tmp/shard_words.bson", cfg.Paths.ShardsFile)
	assert.Equal(t, "ascii", cfg.IO.Display)
}

func TestSave_CreatesDirectory(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "subdir", "hermit.yaml")

	cfg := config.Defaults()
	err := config.Save(cfg, path)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPath_Default(t *testing.T) {
	t.Setenv(config.EnvConfig, "")
	assert.Equal(t, config.DefaultConfigPath, config.Path())
}

func TestPath_EnvOverride(t *testing.T) {
	t.Setenv(config.EnvConfig, "/custom/hermit.yaml")
	assert.Equal(t, "/custom/hermit.yaml", config.Path())
}

func TestConfig_Accessors(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Logging.Level = "debug"
	cfg.Logging.File = "/var/log/hermit.log"
	cfg.Paths.ShardsFile = "/tmp/shards.bson"

	assert.Equal(t, "debug", cfg.GetLoggingLevel())
	assert.Equal(t, "/var/log/hermit.log", cfg.GetLoggingFile())
	assert.Equal(t, "/tmp/shards.bson", cfg.GetShardsFile())
}
