package wallet

// ZeroBytes overwrites data with zeros in place. Callers use this to scrub
// passphrases and derived private keys from memory once finished with them.
func ZeroBytes(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
