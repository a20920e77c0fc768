package slip39

// PackShare serializes a Shard into the packed on-disk form the shard
// store persists: 2-byte identifier, 1-byte iteration exponent, a
// bit-packed (group-idx, group-threshold, total-groups, member-idx,
// member-threshold) field padded out to a byte boundary, then the raw
// secret bytes. This is distinct from Mnemonic's 10-bit word packing: the
// store keeps byte-aligned fields rather than word-aligned ones, since it
// is read and written as opaque bytes, never typed by a human.
func PackShare(s Shard) []byte {
	header := packedHeaderField(s)

	out := make([]byte, 0, 2+1+len(header)+len(s.Value))
	out = append(out, byte(s.Identifier>>8), byte(s.Identifier))
	out = append(out, s.IterationExp)
	out = append(out, header...)
	out = append(out, s.Value...)
	return out
}

// UnpackShare reverses PackShare. Extendable is not part of the packed
// format and is always false on the returned Shard; callers that need the
// extendable variant must track it out of band.
func UnpackShare(data []byte) (Shard, error) {
	if len(data) < 2+1+3 {
		return Shard{}, errInvalidMnemonic
	}

	s := Shard{
		Identifier:   uint16(data[0])<<8 | uint16(data[1]),
		IterationExp: data[2],
	}

	const headerLen = 3 // 20 bits padded to 24
	if len(data) < 3+headerLen {
		return Shard{}, errInvalidMnemonic
	}
	header := data[3 : 3+headerLen]
	packed := uint64(header[0])<<16 | uint64(header[1])<<8 | uint64(header[2])

	s.GroupIndex = uint8((packed >> 16) & 0xf)
	s.GroupThreshold = uint8((packed>>12)&0xf) + 1
	s.GroupCount = uint8((packed>>8)&0xf) + 1
	s.MemberIndex = uint8((packed >> 4) & 0xf)
	s.MemberThreshold = uint8(packed&0xf) + 1

	s.Value = append([]byte{}, data[3+headerLen:]...)
	return s, nil
}

// packedHeaderField packs the five 4-bit indices/thresholds into a
// byte-aligned big-endian field (20 bits padded to 24).
func packedHeaderField(s Shard) []byte {
	packed := uint64(s.GroupIndex&0xf)<<16 |
		uint64((s.GroupThreshold-1)&0xf)<<12 |
		uint64((s.GroupCount-1)&0xf)<<8 |
		uint64(s.MemberIndex&0xf)<<4 |
		uint64((s.MemberThreshold-1)&0xf)

	return []byte{byte(packed >> 16), byte(packed >> 8), byte(packed)}
}
