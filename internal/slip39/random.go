package slip39

import "github.com/unchained-capital/hermit/internal/seccrypto"

func randomBytes(n int) ([]byte, error) {
	return seccrypto.RandomBytes(n)
}
