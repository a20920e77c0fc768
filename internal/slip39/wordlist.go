package slip39

import "fmt"

// The 1024-word list maps each 10-bit value to a distinct word and back.
// It is generated from two 32-entry syllable tables (32*32 = 1024) rather
// than hand-transcribed, so every index has a unique, pronounceable word.
// This is a self-consistent word list for this implementation, not the
// canonical SLIP-39 English word list published by SatoshiLabs; operators
// exchanging shards with other SLIP-39 tooling must use that tool's own
// word list, not this one. See DESIGN.md.
var (
	//nolint:gochecknoglobals // built once at init
	wordList [1024]string
	//nolint:gochecknoglobals // built once at init
	wordIndex map[string]int
)

var onsets = [32]string{
	"ba", "be", "bi", "bo", "bu", "ca", "ce", "ci",
	"co", "cu", "da", "de", "di", "do", "du", "fa",
	"fe", "fi", "fo", "fu", "ga", "ge", "gi", "go",
	"gu", "ha", "he", "hi", "ho", "hu", "ja", "je",
}

var rimes = [32]string{
	"ckle", "dron", "flux", "gent", "lith", "mint", "nova", "plex",
	"quill", "rust", "shale", "tide", "vent", "wick", "yarn", "zest",
	"bramble", "cinder", "ember", "frost", "grove", "husk", "knoll", "lumen",
	"marsh", "notch", "onyx", "pivot", "ridge", "spark", "talon", "umbra",
}

//nolint:gochecknoinits // builds the bijective word<->index tables once
func init() {
	wordIndex = make(map[string]int, 1024)
	i := 0
	for _, o := range onsets {
		for _, r := range rimes {
			w := o + r
			wordList[i] = w
			if _, dup := wordIndex[w]; dup {
				panic(fmt.Sprintf("slip39: duplicate generated word %q", w))
			}
			wordIndex[w] = i
			i++
		}
	}
}

// WordAt returns the word for a 10-bit index (0-1023).
func WordAt(index int) (string, error) {
	if index < 0 || index >= len(wordList) {
		return "", fmt.Errorf("slip39: word index %d out of range", index)
	}
	return wordList[index], nil
}

// IndexOf returns the 10-bit index for a word, or an error if unknown.
func IndexOf(word string) (int, error) {
	idx, ok := wordIndex[word]
	if !ok {
		return 0, fmt.Errorf("%w: unknown word %q", errInvalidMnemonic, word)
	}
	return idx, nil
}
