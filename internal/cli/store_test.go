package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unchained-capital/hermit/internal/shardstore"
	"github.com/unchained-capital/hermit/internal/slip39"
)

func newTestAppWithRunner(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	shardsFile := filepath.Join(dir, "shards.json")
	store := shardstore.New(shardsFile)
	require.NoError(t, store.Load())

	runner := shardstore.NewCommandRunner(
		shardsFile,
		"cp {0} {0}.persisted",
		"cp {0} {0}.bak",
		"cp {0}.bak {0}",
		"cat {0}.persisted",
	)

	return &App{
		Shards: store,
		Runner: runner,
		Out:    &bytes.Buffer{},
		ErrOut: &bytes.Buffer{},
	}
}

func testShard(t *testing.T) slip39.Shard {
	t.Helper()
	secret := make([]byte, 16)
	family, err := slip39.GenerateShards(secret, 1, []slip39.GroupSpec{{MemberThreshold: 1, MemberCount: 1}}, "", false, 0)
	require.NoError(t, err)
	shard, err := slip39.ParseShard(family.Groups[0][0])
	require.NoError(t, err)
	return shard
}

func findCmd(t *testing.T, cmds []*cobra.Command, use string) *cobra.Command {
	t.Helper()
	for _, c := range cmds {
		if c.Use == use {
			return c
		}
	}
	t.Fatalf("no command with Use=%q", use)
	return nil
}

func TestBuildStoreCmds_ReturnsFiveTopLevelSiblings(t *testing.T) {
	app := newTestAppWithRunner(t)
	cmds := buildStoreCmds(app)
	require.Len(t, cmds, 5)

	uses := make([]string, 0, len(cmds))
	for _, c := range cmds {
		uses = append(uses, c.Use)
		assert.Empty(t, c.Commands(), "store commands must be top-level siblings, not a subtree")
	}
	assert.ElementsMatch(t, []string{"write", "persist", "backup", "restore", "reload"}, uses)
}

func TestStoreWriteCmd(t *testing.T) {
	app := newTestAppWithRunner(t)
	require.NoError(t, app.Shards.Add("a", testShard(t)))

	writeCmd := findCmd(t, buildStoreCmds(app), "write")
	writeCmd.SetOut(&bytes.Buffer{})
	require.NoError(t, writeCmd.Execute())
}

func TestStorePersistBackupRestoreCmds(t *testing.T) {
	app := newTestAppWithRunner(t)
	require.NoError(t, app.Shards.Add("a", testShard(t)))

	cmds := buildStoreCmds(app)

	persistCmd := findCmd(t, cmds, "persist")
	persistCmd.SetOut(&bytes.Buffer{})
	require.NoError(t, persistCmd.Execute())

	backupCmd := findCmd(t, cmds, "backup")
	backupCmd.SetOut(&bytes.Buffer{})
	require.NoError(t, backupCmd.Execute())

	restoreCmd := findCmd(t, cmds, "restore")
	restoreCmd.SetOut(&bytes.Buffer{})
	require.NoError(t, restoreCmd.Execute())

	_, err := app.Shards.Get("a")
	require.NoError(t, err)
}

func TestStoreReloadCmd_KeepsSavedShards(t *testing.T) {
	app := newTestAppWithRunner(t)
	require.NoError(t, app.Shards.Add("a", testShard(t)))

	reloadCmd := findCmd(t, buildStoreCmds(app), "reload")
	reloadCmd.SetOut(&bytes.Buffer{})
	require.NoError(t, reloadCmd.Execute())

	_, err := app.Shards.Get("a")
	require.NoError(t, err)
}
