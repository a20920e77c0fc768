package slip39

import (
	"encoding/binary"
)

// GroupSpec describes one group's member quorum: MemberThreshold of
// MemberCount member shares are needed to recover that group's share.
type GroupSpec struct {
	MemberThreshold int
	MemberCount     int
}

// Family is a freshly generated SLIP-39 shard family: GroupThreshold of the
// groups (each satisfying its own member quorum) are needed to recover the
// master secret.
type Family struct {
	Identifier     uint16
	Extendable     bool
	IterationExp   uint8
	GroupThreshold int
	Groups         [][]string // mnemonics, one slice of member shares per group
}

// GenerateShards splits secret into a family of SLIP-39 mnemonics.
// An empty passphrase is the documented "no encryption" sentinel.
func GenerateShards(secret []byte, groupThreshold int, groups []GroupSpec, passphrase string, extendable bool, iterationExponent uint8) (*Family, error) {
	if groupThreshold < 1 || groupThreshold > len(groups) || len(groups) > 16 {
		return nil, errInsufficientShards
	}
	if len(secret) != 16 && len(secret) != 32 {
		return nil, errInvalidMnemonic
	}

	idBytes, err := randomBytes(2)
	if err != nil {
		return nil, err
	}
	identifier := binary.BigEndian.Uint16(idBytes) & 0x7FFF

	encrypted, err := encryptMasterSecret(secret, passphrase, iterationExponent, identifier, extendable)
	if err != nil {
		return nil, err
	}

	groupShares, err := splitSecret(groupThreshold, len(groups), encrypted)
	if err != nil {
		return nil, err
	}

	family := &Family{
		Identifier:     identifier,
		Extendable:     extendable,
		IterationExp:   iterationExponent,
		GroupThreshold: groupThreshold,
		Groups:         make([][]string, len(groups)),
	}

	for gi, spec := range groups {
		groupShareValue := groupShares[byte(gi+1)]
		memberShares, err := splitSecret(spec.MemberThreshold, spec.MemberCount, groupShareValue)
		if err != nil {
			return nil, err
		}

		mnemonics := make([]string, 0, spec.MemberCount)
		for mi := 1; mi <= spec.MemberCount; mi++ {
			shard := Shard{
				Identifier:      identifier,
				Extendable:      extendable,
				IterationExp:    iterationExponent,
				GroupIndex:      uint8(gi),
				GroupThreshold:  uint8(groupThreshold),
				GroupCount:      uint8(len(groups)),
				MemberIndex:     uint8(mi - 1),
				MemberThreshold: uint8(spec.MemberThreshold),
				Value:           memberShares[byte(mi)],
			}
			mnemonic, err := shard.Mnemonic()
			if err != nil {
				return nil, err
			}
			mnemonics = append(mnemonics, mnemonic)
		}
		family.Groups[gi] = mnemonics
	}

	return family, nil
}

// CombineMnemonics reconstructs the master secret from a set of SLIP-39
// mnemonics spanning enough groups and members. All shards must share the
// same identifier, extendable flag, iteration exponent, and group
// threshold/count or ErrMismatchedFamily is returned.
func CombineMnemonics(mnemonics []string, passphrase string) ([]byte, error) {
	shards := make([]Shard, 0, len(mnemonics))
	for _, m := range mnemonics {
		s, err := ParseShard(m)
		if err != nil {
			return nil, err
		}
		shards = append(shards, s)
	}
	if len(shards) == 0 {
		return nil, errInsufficientShards
	}

	first := shards[0]
	byGroup := make(map[uint8]map[byte][]byte)
	for _, s := range shards {
		if s.Identifier != first.Identifier || s.Extendable != first.Extendable ||
			s.IterationExp != first.IterationExp || s.GroupThreshold != first.GroupThreshold ||
			s.GroupCount != first.GroupCount {
			return nil, errMismatchedFamily
		}
		if byGroup[s.GroupIndex] == nil {
			byGroup[s.GroupIndex] = make(map[byte][]byte)
		}
		byGroup[s.GroupIndex][byte(s.MemberIndex+1)] = s.Value
	}

	groupMemberThresholds := make(map[uint8]uint8)
	for _, s := range shards {
		groupMemberThresholds[s.GroupIndex] = s.MemberThreshold
	}

	groupShares := make(map[byte][]byte)
	for gi, members := range byGroup {
		threshold := int(groupMemberThresholds[gi])
		groupValue, err := recoverSecret(threshold, members)
		if err != nil {
			continue
		}
		groupShares[byte(gi+1)] = groupValue
	}

	encrypted, err := recoverSecret(int(first.GroupThreshold), groupShares)
	if err != nil {
		return nil, err
	}

	return decryptMasterSecret(encrypted, passphrase, first.IterationExp, first.Identifier, first.Extendable)
}
