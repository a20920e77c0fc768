package slip39

import (
	"math/big"
	"strings"
)

// Shard is the decoded form of a single SLIP-39 mnemonic: one member share
// within one group of a two-level group/member quorum.
type Shard struct {
	Identifier      uint16
	Extendable      bool
	IterationExp    uint8
	GroupIndex      uint8
	GroupThreshold  uint8
	GroupCount      uint8
	MemberIndex     uint8
	MemberThreshold uint8
	Value           []byte
}

const headerBits = 15 + 1 + 4 + 4 + 4 + 4 + 4 + 4 // 40 bits, 4 words

var headerWidths = []int{15, 1, 4, 4, 4, 4, 4, 4}

func (s Shard) customization() string {
	if s.Extendable {
		return customizationShamirExtendable
	}
	return customizationShamir
}

// Mnemonic encodes the shard as a sequence of wordlist words.
func (s Shard) Mnemonic() (string, error) {
	valueBits := len(s.Value) * 8
	valueWordBits := ((valueBits + 9) / 10) * 10

	fields := []bitField{
		{15, uint64(s.Identifier)},
		{1, boolBit(s.Extendable)},
		{4, uint64(s.IterationExp)},
		{4, uint64(s.GroupIndex)},
		{4, uint64(s.GroupThreshold - 1)},
		{4, uint64(s.GroupCount - 1)},
		{4, uint64(s.MemberIndex)},
		{4, uint64(s.MemberThreshold - 1)},
	}

	dataWords := packWords(fields, valueWordBits, new(big.Int).SetBytes(s.Value))
	checksum := rs1024CreateChecksum(s.customization(), dataWords)
	allWords := append(append([]int{}, dataWords...), checksum[0], checksum[1], checksum[2])

	words := make([]string, len(allWords))
	for i, w := range allWords {
		word, err := WordAt(w)
		if err != nil {
			return "", err
		}
		words[i] = word
	}
	return strings.Join(words, " "), nil
}

// ParseShard decodes a mnemonic produced by Mnemonic back into a Shard.
func ParseShard(mnemonic string) (Shard, error) {
	fields := strings.Fields(mnemonic)
	if len(fields) < 4+3 {
		return Shard{}, errInvalidMnemonic
	}

	words := make([]int, len(fields))
	for i, w := range fields {
		idx, err := IndexOf(w)
		if err != nil {
			return Shard{}, err
		}
		words[i] = idx
	}

	dataWords := words[:len(words)-3]
	checksum := words[len(words)-3:]
	full := append(append([]int{}, dataWords...), checksum...)

	var s Shard
	if !rs1024VerifyChecksum(customizationShamir, full) {
		if !rs1024VerifyChecksum(customizationShamirExtendable, full) {
			return Shard{}, errInvalidMnemonic
		}
	}

	valueWordBits := len(dataWords)*10 - headerBits
	acc := wordsToInt(dataWords)

	values, value := unpackHeaderAndValue(acc, headerWidths, valueWordBits)

	s.Identifier = uint16(values[0])
	s.Extendable = values[1] == 1
	s.IterationExp = uint8(values[2])
	s.GroupIndex = uint8(values[3])
	s.GroupThreshold = uint8(values[4]) + 1
	s.GroupCount = uint8(values[5]) + 1
	s.MemberIndex = uint8(values[6])
	s.MemberThreshold = uint8(values[7]) + 1

	valueBytes := valueWordBits / 8
	s.Value = leftPad(value.Bytes(), valueBytes)

	return s, nil
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func leftPad(b []byte, n int) []byte {
	if len(b) >= n {
		return b[len(b)-n:]
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}
