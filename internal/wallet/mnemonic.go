// Package wallet provides the HD wallet: BIP-39 mnemonic handling, BIP-32
// derivation, and extended public key export.
package wallet

import (
	"math"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"

	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

var (
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)
	bulletListRegex   = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
)

// wordCountBits maps the five BIP-39 word counts to their entropy size.
var wordCountBits = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

// GenerateMnemonic creates a new BIP-39 mnemonic phrase with wordCount words
// (one of 12, 15, 18, 21, 24).
func GenerateMnemonic(wordCount int) (string, error) {
	bitSize, ok := wordCountBits[wordCount]
	if !ok {
		return "", hermiterr.WithDetails(hermiterr.ErrInvalidMnemonic, map[string]string{"word_count": itoa(wordCount)})
	}

	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", hermiterr.Wrap(err, "generating entropy")
	}

	return bip39.NewMnemonic(entropy)
}

// ValidateMnemonic checks word count, word validity, and checksum.
func ValidateMnemonic(mnemonic string) error {
	if mnemonic == "" {
		return hermiterr.ErrInvalidMnemonic
	}

	normalized := NormalizeMnemonicInput(mnemonic)

	words := strings.Fields(normalized)
	if _, ok := wordCountBits[len(words)]; !ok {
		return hermiterr.ErrInvalidMnemonic
	}

	if !bip39.IsMnemonicValid(normalized) {
		return hermiterr.ErrInvalidMnemonic
	}

	return nil
}

// NormalizeMnemonicInput lowercases, strips list/bullet prefixes and commas,
// and collapses whitespace, so pasted phrases from notes apps parse cleanly.
func NormalizeMnemonicInput(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = bulletListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// MnemonicToEntropy recovers the raw entropy backing a mnemonic, the value
// SLIP-39 shards actually carry (spec.md's round trip is
// mnemonic -> entropy -> shards -> entropy -> mnemonic).
func MnemonicToEntropy(mnemonic string) ([]byte, error) {
	normalized := NormalizeMnemonicInput(mnemonic)
	entropy, err := bip39.EntropyFromMnemonic(normalized)
	if err != nil {
		return nil, hermiterr.ErrInvalidMnemonic
	}
	return entropy, nil
}

// EntropyToMnemonic is the inverse of MnemonicToEntropy.
func EntropyToMnemonic(entropy []byte) (string, error) {
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", hermiterr.Wrap(err, "encoding entropy as mnemonic")
	}
	return mnemonic, nil
}

// MnemonicToSeed stretches a mnemonic and optional passphrase into a 64-byte
// seed via PBKDF2-HMAC-SHA512 (2048 rounds, salt "mnemonic"+passphrase).
func MnemonicToSeed(mnemonic, passphrase string) ([]byte, error) {
	normalized := NormalizeMnemonicInput(mnemonic)
	if !bip39.IsMnemonicValid(normalized) {
		return nil, hermiterr.ErrInvalidMnemonic
	}
	return bip39.NewSeed(normalized, passphrase), nil
}

// GetWordList returns the BIP-39 English word list.
func GetWordList() []string {
	return bip39.GetWordList()
}

// IsValidWord reports whether word is in the BIP-39 word list.
func IsValidWord(word string) bool {
	_, ok := bip39.GetWordIndex(strings.ToLower(word))
	return ok
}

// MaxTypoDistance is the maximum Levenshtein distance considered a typo.
const MaxTypoDistance = 2

// TypoInfo describes a misspelled BIP-39 word and its closest correction.
type TypoInfo struct {
	Index      int
	Word       string
	Suggestion string
	Distance   int
}

// SuggestWord finds the closest BIP-39 word to input by Levenshtein distance.
func SuggestWord(input string) string {
	input = strings.ToLower(input)
	wordList := bip39.GetWordList()

	minDist := math.MaxInt
	var suggestion string

	for _, word := range wordList {
		dist := levenshtein.ComputeDistance(input, word)
		if dist == 0 {
			return word
		}
		if dist < minDist {
			minDist = dist
			suggestion = word
		}
	}

	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

// DetectTypos scans a mnemonic and reports unrecognized words with suggestions.
func DetectTypos(mnemonic string) []TypoInfo {
	if mnemonic == "" {
		return nil
	}

	normalized := NormalizeMnemonicInput(mnemonic)
	words := strings.Fields(normalized)
	var typos []TypoInfo

	for i, word := range words {
		if !IsValidWord(word) {
			suggestion := SuggestWord(word)
			distance := 0
			if suggestion != "" {
				distance = levenshtein.ComputeDistance(word, suggestion)
			}
			typos = append(typos, TypoInfo{
				Index:      i,
				Word:       word,
				Suggestion: suggestion,
				Distance:   distance,
			})
		}
	}

	return typos
}

// FormatTypoSuggestions renders typo information as human-readable lines.
func FormatTypoSuggestions(typos []TypoInfo) string {
	if len(typos) == 0 {
		return ""
	}

	var b strings.Builder
	for i, typo := range typos {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("Word ")
		b.WriteString(itoa(typo.Index + 1))
		b.WriteString(": '")
		b.WriteString(typo.Word)
		b.WriteByte('\'')
		if typo.Suggestion != "" {
			b.WriteString(" - did you mean '")
			b.WriteString(typo.Suggestion)
			b.WriteString("'?")
		} else {
			b.WriteString(" is not a valid BIP39 word")
		}
	}
	return b.String()
}

// itoa converts a non-negative int to a string without importing strconv.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
