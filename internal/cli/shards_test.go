package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unchained-capital/hermit/internal/shardstore"
	"github.com/unchained-capital/hermit/internal/slip39"
	"github.com/unchained-capital/hermit/internal/wallet"
)

func TestGroupSpecFlags_Parse(t *testing.T) {
	tests := []struct {
		name    string
		groups  string
		want    []slip39.GroupSpec
		wantErr bool
	}{
		{
			name:   "single group",
			groups: "2:3",
			want:   []slip39.GroupSpec{{MemberThreshold: 2, MemberCount: 3}},
		},
		{
			name:   "multiple groups",
			groups: "1:1,2:3, 3:5",
			want: []slip39.GroupSpec{
				{MemberThreshold: 1, MemberCount: 1},
				{MemberThreshold: 2, MemberCount: 3},
				{MemberThreshold: 3, MemberCount: 5},
			},
		},
		{
			name:    "missing colon",
			groups:  "23",
			wantErr: true,
		},
		{
			name:    "non-numeric member count",
			groups:  "2:x",
			wantErr: true,
		},
		{
			name:    "non-numeric member threshold",
			groups:  "x:3",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := &groupSpecFlags{groups: tt.groups}
			got, err := flags.parse()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	store := shardstore.New(filepath.Join(dir, "shards.json"))
	require.NoError(t, store.Load())

	return &App{
		Shards: store,
		Out:    &bytes.Buffer{},
		ErrOut: &bytes.Buffer{},
	}
}

func TestPersistFamily_NamesShardsByGroupAndMember(t *testing.T) {
	app := newTestApp(t)

	secret := make([]byte, 16)
	family, err := slip39.GenerateShards(secret, 1, []slip39.GroupSpec{{MemberThreshold: 2, MemberCount: 3}}, "", false, 0)
	require.NoError(t, err)

	require.NoError(t, persistFamily(app, "prefix", family))

	names := app.Shards.Names()
	require.Len(t, names, 3)
	shard, err := app.Shards.Get("prefix-g1-m1")
	require.NoError(t, err)
	assert.Equal(t, uint8(0), shard.GroupIndex)
}

func TestBuildFamilyFromPhraseCmd_RoundTripsThroughMnemonicToEntropy(t *testing.T) {
	app := newTestApp(t)
	withStubPasswordPrompt(t, nil)
	cmd := buildFamilyFromPhraseCmd(app)
	cmd.SetOut(&bytes.Buffer{})

	phrase, err := wallet.GenerateMnemonic(12)
	require.NoError(t, err)
	entropyBytes, err := wallet.MnemonicToEntropy(phrase)
	require.NoError(t, err)

	require.NoError(t, cmd.Flags().Set("groups", "1:1"))
	require.NoError(t, cmd.Flags().Set("threshold", "1"))
	cmd.SetArgs(strings.Split(phrase, " "))
	require.NoError(t, cmd.Execute())

	names := app.Shards.Names()
	require.Len(t, names, 1)
	shard, err := app.Shards.Get(names[0])
	require.NoError(t, err)

	mnemonic, err := shard.Mnemonic()
	require.NoError(t, err)

	recombined, err := slip39.CombineMnemonics([]string{mnemonic}, "")
	require.NoError(t, err)
	assert.Equal(t, entropyBytes, recombined)
}

func TestCopyRenameDeleteShardCmd(t *testing.T) {
	app := newTestApp(t)
	secret := make([]byte, 16)
	family, err := slip39.GenerateShards(secret, 1, []slip39.GroupSpec{{MemberThreshold: 1, MemberCount: 1}}, "", false, 0)
	require.NoError(t, err)
	require.NoError(t, persistFamily(app, "f", family))

	copyCmd := buildCopyShardCmd(app)
	copyCmd.SetArgs([]string{"f-g1-m1", "f-copy"})
	require.NoError(t, copyCmd.Execute())
	_, err = app.Shards.Get("f-copy")
	require.NoError(t, err)

	renameCmd := buildRenameShardCmd(app)
	renameCmd.SetArgs([]string{"f-copy", "f-renamed"})
	require.NoError(t, renameCmd.Execute())
	_, err = app.Shards.Get("f-renamed")
	require.NoError(t, err)
	_, err = app.Shards.Get("f-copy")
	require.Error(t, err)

	deleteCmd := buildDeleteShardCmd(app)
	deleteCmd.SetArgs([]string{"f-renamed"})
	require.NoError(t, deleteCmd.Execute())
	_, err = app.Shards.Get("f-renamed")
	require.Error(t, err)
}

func TestExportShardAsPhraseCmd(t *testing.T) {
	app := newTestApp(t)
	secret := make([]byte, 16)
	family, err := slip39.GenerateShards(secret, 1, []slip39.GroupSpec{{MemberThreshold: 1, MemberCount: 1}}, "", false, 0)
	require.NoError(t, err)
	require.NoError(t, persistFamily(app, "f", family))

	buf := &bytes.Buffer{}
	cmd := buildExportShardAsPhraseCmd(app)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"f-g1-m1"})
	require.NoError(t, cmd.Execute())
	assert.NotEmpty(t, buf.String())
}

func TestImportShardFromPhraseCmd(t *testing.T) {
	app := newTestApp(t)
	secret := make([]byte, 16)
	family, err := slip39.GenerateShards(secret, 1, []slip39.GroupSpec{{MemberThreshold: 1, MemberCount: 1}}, "", false, 0)
	require.NoError(t, err)

	mnemonic := family.Groups[0][0]

	cmd := buildImportShardFromPhraseCmd(app)
	in := bytes.NewBufferString(mnemonic + "\n")
	cmd.SetIn(in)
	cmd.SetArgs([]string{"imported"})
	require.NoError(t, cmd.Execute())

	_, err = app.Shards.Get("imported")
	require.NoError(t, err)
}

func TestListShardsCmd_TextAndJSON(t *testing.T) {
	app := newTestApp(t)
	secret := make([]byte, 16)
	family, err := slip39.GenerateShards(secret, 1, []slip39.GroupSpec{{MemberThreshold: 1, MemberCount: 1}}, "", false, 0)
	require.NoError(t, err)
	require.NoError(t, persistFamily(app, "f", family))

	jsonOut := &bytes.Buffer{}
	jsonCmd := buildListShardsCmd(app)
	jsonCmd.SetOut(jsonOut)
	require.NoError(t, jsonCmd.Execute())
	assert.Contains(t, jsonOut.String(), "f-g1-m1")

	textOut := &bytes.Buffer{}
	textCmd := buildListShardsCmd(app)
	textCmd.SetOut(textOut)
	require.NoError(t, textCmd.Flags().Set("format", "text"))
	require.NoError(t, textCmd.Execute())
	assert.Contains(t, textOut.String(), "f-g1-m1")
	assert.Contains(t, textOut.String(), "NAME")
}
