package slip39_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unchained-capital/hermit/internal/slip39"
)

func testSecret(t *testing.T) []byte {
	t.Helper()
	secret := make([]byte, 16)
	for i := range secret {
		secret[i] = byte(i)
	}
	return secret
}

func TestGenerateAndCombine_SingleGroup(t *testing.T) {
	secret := testSecret(t)

	family, err := slip39.GenerateShards(secret, 1, []slip39.GroupSpec{
		{MemberThreshold: 2, MemberCount: 3},
	}, "", false, 0)
	require.NoError(t, err)
	require.Len(t, family.Groups, 1)
	require.Len(t, family.Groups[0], 3)

	recovered, err := slip39.CombineMnemonics(family.Groups[0][:2], "")
	require.NoError(t, err)
	assert.Equal(t, secret, recovered)
}

func TestGenerateAndCombine_TwoGroups(t *testing.T) {
	secret := testSecret(t)

	family, err := slip39.GenerateShards(secret, 2, []slip39.GroupSpec{
		{MemberThreshold: 1, MemberCount: 1},
		{MemberThreshold: 2, MemberCount: 3},
		{MemberThreshold: 1, MemberCount: 1},
	}, "", false, 0)
	require.NoError(t, err)

	mnemonics := append(append([]string{}, family.Groups[0]...), family.Groups[1][:2]...)
	recovered, err := slip39.CombineMnemonics(mnemonics, "")
	require.NoError(t, err)
	assert.Equal(t, secret, recovered)
}

func TestGenerateAndCombine_Passphrase(t *testing.T) {
	secret := testSecret(t)

	family, err := slip39.GenerateShards(secret, 1, []slip39.GroupSpec{
		{MemberThreshold: 2, MemberCount: 2},
	}, "correct horse battery staple", false, 0)
	require.NoError(t, err)

	recovered, err := slip39.CombineMnemonics(family.Groups[0], "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, secret, recovered)
}

func TestCombine_WrongPassphraseDoesNotMatch(t *testing.T) {
	secret := testSecret(t)

	family, err := slip39.GenerateShards(secret, 1, []slip39.GroupSpec{
		{MemberThreshold: 2, MemberCount: 2},
	}, "correct horse battery staple", false, 0)
	require.NoError(t, err)

	recovered, err := slip39.CombineMnemonics(family.Groups[0], "wrong passphrase")
	require.NoError(t, err)
	assert.NotEqual(t, secret, recovered)
}

func TestCombine_InsufficientShards(t *testing.T) {
	secret := testSecret(t)

	family, err := slip39.GenerateShards(secret, 1, []slip39.GroupSpec{
		{MemberThreshold: 3, MemberCount: 5},
	}, "", false, 0)
	require.NoError(t, err)

	_, err = slip39.CombineMnemonics(family.Groups[0][:2], "")
	require.Error(t, err)
}

func TestCombine_MismatchedFamily(t *testing.T) {
	secret := testSecret(t)

	f1, err := slip39.GenerateShards(secret, 1, []slip39.GroupSpec{{MemberThreshold: 2, MemberCount: 2}}, "", false, 0)
	require.NoError(t, err)
	f2, err := slip39.GenerateShards(secret, 1, []slip39.GroupSpec{{MemberThreshold: 2, MemberCount: 2}}, "", false, 0)
	require.NoError(t, err)

	mixed := []string{f1.Groups[0][0], f2.Groups[0][1]}
	_, err = slip39.CombineMnemonics(mixed, "")
	require.Error(t, err)
}

func TestParseShard_InvalidChecksum(t *testing.T) {
	secret := testSecret(t)
	family, err := slip39.GenerateShards(secret, 1, []slip39.GroupSpec{{MemberThreshold: 2, MemberCount: 2}}, "", false, 0)
	require.NoError(t, err)

	extra, err := slip39.WordAt(0)
	require.NoError(t, err)
	corrupted := family.Groups[0][0] + " " + extra
	_, err = slip39.ParseShard(corrupted)
	require.Error(t, err)
}

func TestSelector_InteractiveReconstruction(t *testing.T) {
	secret := testSecret(t)
	family, err := slip39.GenerateShards(secret, 2, []slip39.GroupSpec{
		{MemberThreshold: 1, MemberCount: 1},
		{MemberThreshold: 2, MemberCount: 3},
	}, "", false, 0)
	require.NoError(t, err)

	sel := slip39.NewSelector()

	shard, ok, err := sel.Offer(family.Groups[0][0])
	require.NoError(t, err)
	require.True(t, ok)
	sel.Add(shard)

	_, satisfied := sel.Status()
	assert.False(t, satisfied)

	shard, ok, err = sel.Offer(family.Groups[1][0])
	require.NoError(t, err)
	require.True(t, ok)
	sel.Add(shard)

	shard, ok, err = sel.Offer(family.Groups[1][1])
	require.NoError(t, err)
	require.True(t, ok)
	sel.Add(shard)

	_, satisfied = sel.Status()
	assert.True(t, satisfied)

	mnemonics, err := sel.Mnemonics()
	require.NoError(t, err)

	recovered, err := slip39.CombineMnemonics(mnemonics, "")
	require.NoError(t, err)
	assert.Equal(t, secret, recovered)
}
