package wallet

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

func TestGenerateMnemonic_WordCounts(t *testing.T) {
	for count := range wordCountBits {
		t.Run(itoa(count), func(t *testing.T) {
			mnemonic, err := GenerateMnemonic(count)
			require.NoError(t, err)
			assert.Len(t, strings.Fields(mnemonic), count)
			assert.NoError(t, ValidateMnemonic(mnemonic))
		})
	}
}

func TestGenerateMnemonic_InvalidWordCount(t *testing.T) {
	_, err := GenerateMnemonic(13)
	assert.ErrorIs(t, err, hermiterr.ErrInvalidMnemonic)
}

func TestValidateMnemonic_Empty(t *testing.T) {
	assert.ErrorIs(t, ValidateMnemonic(""), hermiterr.ErrInvalidMnemonic)
}

func TestValidateMnemonic_WrongWordCount(t *testing.T) {
	err := ValidateMnemonic("abandon abandon abandon")
	assert.ErrorIs(t, err, hermiterr.ErrInvalidMnemonic)
}

func TestValidateMnemonic_BadChecksum(t *testing.T) {
	// Valid words, 12 of them, but not a valid BIP-39 checksum.
	bad := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon"
	assert.ErrorIs(t, ValidateMnemonic(bad), hermiterr.ErrInvalidMnemonic)
}

func TestValidateMnemonic_Valid(t *testing.T) {
	valid := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	assert.NoError(t, ValidateMnemonic(valid))
}

func TestNormalizeMnemonicInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"uppercase", "ABANDON ABILITY", "abandon ability"},
		{"numbered list", "1. abandon 2) ability 3: zoo", "abandon ability zoo"},
		{"bullets", "- abandon\n* ability\n• zoo", "abandon ability zoo"},
		{"commas", "abandon, ability, zoo", "abandon ability zoo"},
		{"extra whitespace", "  abandon   ability  ", "abandon ability"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeMnemonicInput(tc.in))
		})
	}
}

func TestMnemonicEntropyRoundTrip(t *testing.T) {
	for count, bits := range wordCountBits {
		t.Run(itoa(count), func(t *testing.T) {
			mnemonic, err := GenerateMnemonic(count)
			require.NoError(t, err)

			entropy, err := MnemonicToEntropy(mnemonic)
			require.NoError(t, err)
			assert.Len(t, entropy, bits/8)

			back, err := EntropyToMnemonic(entropy)
			require.NoError(t, err)
			assert.Equal(t, mnemonic, back)
		})
	}
}

func TestMnemonicToEntropy_Invalid(t *testing.T) {
	_, err := MnemonicToEntropy("not a valid mnemonic at all nope nope nope")
	assert.ErrorIs(t, err, hermiterr.ErrInvalidMnemonic)
}

func TestMnemonicToSeed_KnownVector(t *testing.T) {
	// Trezor BIP-39 test vector: all-zero entropy, empty passphrase.
	mnemonic := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	want := "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e"

	seed, err := MnemonicToSeed(mnemonic, "")
	require.NoError(t, err)
	assert.Equal(t, want, hex.EncodeToString(seed))
}

func TestMnemonicToSeed_PassphraseChangesSeed(t *testing.T) {
	mnemonic := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

	plain, err := MnemonicToSeed(mnemonic, "")
	require.NoError(t, err)
	withPass, err := MnemonicToSeed(mnemonic, "TREZOR")
	require.NoError(t, err)

	assert.NotEqual(t, plain, withPass)
}

func TestMnemonicToSeed_InvalidMnemonic(t *testing.T) {
	_, err := MnemonicToSeed("not valid", "")
	assert.ErrorIs(t, err, hermiterr.ErrInvalidMnemonic)
}

func TestGetWordList(t *testing.T) {
	words := GetWordList()
	assert.Len(t, words, 2048)
}

func TestIsValidWord(t *testing.T) {
	assert.True(t, IsValidWord("abandon"))
	assert.True(t, IsValidWord("ABANDON"))
	assert.False(t, IsValidWord("notaword"))
}

func TestSuggestWord(t *testing.T) {
	assert.Equal(t, "abandon", SuggestWord("abandon"))
	assert.Equal(t, "abandon", SuggestWord("abandom"))
	assert.Equal(t, "", SuggestWord("zzzzzzzzzzzzzzz"))
}

func TestDetectTypos(t *testing.T) {
	mnemonic := "abandom ability zoo"
	typos := DetectTypos(mnemonic)
	require.Len(t, typos, 1)
	assert.Equal(t, 0, typos[0].Index)
	assert.Equal(t, "abandom", typos[0].Word)
	assert.Equal(t, "abandon", typos[0].Suggestion)
}

func TestDetectTypos_NoTypos(t *testing.T) {
	assert.Empty(t, DetectTypos("abandon ability zoo"))
}

func TestDetectTypos_Empty(t *testing.T) {
	assert.Nil(t, DetectTypos(""))
}

func TestFormatTypoSuggestions(t *testing.T) {
	typos := DetectTypos("abandom ability zoo")
	out := FormatTypoSuggestions(typos)
	assert.Contains(t, out, "abandom")
	assert.Contains(t, out, "abandon")
}

func TestFormatTypoSuggestions_Empty(t *testing.T) {
	assert.Equal(t, "", FormatTypoSuggestions(nil))
}
