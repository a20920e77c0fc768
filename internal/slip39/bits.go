package slip39

import "math/big"

// bitField is a fixed-width header field (identifier, flags, indices,
// thresholds) that always fits in a uint64.
type bitField struct {
	width int
	value uint64
}

// packWords packs header fields (most-significant first) followed by a
// big-integer value field of valueBits width, then splits the result into
// 10-bit words.
func packWords(fields []bitField, valueBits int, value *big.Int) []int {
	acc := new(big.Int)
	totalBits := valueBits
	for _, f := range fields {
		acc.Lsh(acc, uint(f.width))
		acc.Or(acc, new(big.Int).SetUint64(f.value))
		totalBits += f.width
	}
	acc.Lsh(acc, uint(valueBits))
	acc.Or(acc, value)

	return intToWords(acc, totalBits)
}

func intToWords(acc *big.Int, totalBits int) []int {
	wordCount := totalBits / 10
	words := make([]int, wordCount)
	mask := big.NewInt(1023)
	tmp := new(big.Int).Set(acc)
	for i := wordCount - 1; i >= 0; i-- {
		w := new(big.Int).And(tmp, mask)
		words[i] = int(w.Int64())
		tmp.Rsh(tmp, 10)
	}
	return words
}

func wordsToInt(words []int) *big.Int {
	acc := new(big.Int)
	for _, w := range words {
		acc.Lsh(acc, 10)
		acc.Or(acc, big.NewInt(int64(w)))
	}
	return acc
}

// unpackHeaderAndValue splits the packed integer into fixed-width header
// fields (most-significant first) and a trailing big-integer value field of
// valueBits width.
func unpackHeaderAndValue(acc *big.Int, widths []int, valueBits int) ([]uint64, *big.Int) {
	values := make([]uint64, len(widths))

	value := new(big.Int).And(acc, bitMask(valueBits))
	rest := new(big.Int).Rsh(acc, uint(valueBits))

	shift := 0
	for i := len(widths) - 1; i >= 0; i-- {
		w := widths[i]
		v := new(big.Int).Rsh(rest, uint(shift))
		v.And(v, bitMask(w))
		values[i] = v.Uint64()
		shift += w
	}
	return values, value
}

func bitMask(bits int) *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
}
