package slip39

// splitSecret divides secret into shareCount shares such that any threshold
// of them reconstruct it via Lagrange interpolation at x=0. A degree
// (threshold-1) polynomial is built per secret byte, with the secret byte
// itself as the constant term; threshold==1 degenerates to a degree-0
// polynomial, so every share carries the secret's bytes directly. Shares are
// keyed 1..shareCount (index 0 is reserved for the secret itself in
// interpolation and is never issued).
func splitSecret(threshold, shareCount int, secret []byte) (map[byte][]byte, error) {
	if threshold < 1 || shareCount < threshold || shareCount > 16 {
		return nil, errInsufficientShards
	}

	coeffs := make([][]byte, len(secret))
	for i := range secret {
		row := make([]byte, threshold-1)
		if threshold > 1 {
			random, err := randomBytes(threshold - 1)
			if err != nil {
				return nil, err
			}
			copy(row, random)
		}
		coeffs[i] = row
	}

	shares := make(map[byte][]byte, shareCount)
	for x := 1; x <= shareCount; x++ {
		value := make([]byte, len(secret))
		xByte := byte(x)
		for i, secretByte := range secret {
			val := secretByte
			xPow := xByte
			for j := 0; j < threshold-1; j++ {
				val = gfAdd(val, gfMul(coeffs[i][j], xPow))
				if j < threshold-2 {
					xPow = gfMul(xPow, xByte)
				}
			}
			value[i] = val
		}
		shares[xByte] = value
	}

	return shares, nil
}

// recoverSecret reconstructs the secret from at least `threshold` shares
// via Lagrange interpolation at x=0.
func recoverSecret(threshold int, shares map[byte][]byte) ([]byte, error) {
	if len(shares) < threshold {
		return nil, errInsufficientShards
	}

	xs := make([]byte, 0, len(shares))
	for x := range shares {
		xs = append(xs, x)
		if len(xs) == threshold {
			break
		}
	}

	weights := make([]byte, len(xs))
	for i, xi := range xs {
		weight := byte(1)
		for j, xj := range xs {
			if i == j {
				continue
			}
			weight = gfMul(weight, gfDiv(xj, gfSub(xj, xi)))
		}
		weights[i] = weight
	}

	secretLen := len(shares[xs[0]])
	secret := make([]byte, secretLen)
	for i := 0; i < secretLen; i++ {
		var val byte
		for j, x := range xs {
			val = gfAdd(val, gfMul(shares[x][i], weights[j]))
		}
		secret[i] = val
	}

	return secret, nil
}
