package slip39

// Selector drives the interactive shard-selection protocol used during
// unlock: shards are offered and added one at a time until enough groups
// are filled, rather than requiring every shard up front.
type Selector struct {
	familyID     *uint16
	extendable   bool
	groupCount   uint8
	threshold    uint8
	selected     []Shard
	groupMembers map[uint8]map[byte]Shard
	groupQuorum  map[uint8]uint8
}

// NewSelector starts an empty selection with no family fixed yet.
func NewSelector() *Selector {
	return &Selector{
		groupMembers: make(map[uint8]map[byte]Shard),
		groupQuorum:  make(map[uint8]uint8),
	}
}

// Offer reports whether the given mnemonic may currently be added: it must
// decode, match the family fixed by the first accepted shard (if any), not
// already be selected, and belong to a group not yet satisfied.
func (s *Selector) Offer(mnemonic string) (Shard, bool, error) {
	shard, err := ParseShard(mnemonic)
	if err != nil {
		return Shard{}, false, err
	}

	if s.familyID != nil {
		if shard.Identifier != *s.familyID || shard.Extendable != s.extendable ||
			shard.GroupCount != s.groupCount || shard.GroupThreshold != s.threshold {
			return shard, false, nil
		}
	}

	if members, ok := s.groupMembers[shard.GroupIndex]; ok {
		if _, already := members[byte(shard.MemberIndex+1)]; already {
			return shard, false, nil
		}
		if uint8(len(members)) >= s.groupQuorum[shard.GroupIndex] && s.groupQuorum[shard.GroupIndex] > 0 {
			return shard, false, nil
		}
	}

	return shard, true, nil
}

// Add accepts a shard already confirmed offerable by Offer.
func (s *Selector) Add(shard Shard) {
	if s.familyID == nil {
		id := shard.Identifier
		s.familyID = &id
		s.extendable = shard.Extendable
		s.groupCount = shard.GroupCount
		s.threshold = shard.GroupThreshold
	}

	if s.groupMembers[shard.GroupIndex] == nil {
		s.groupMembers[shard.GroupIndex] = make(map[byte]Shard)
	}
	s.groupMembers[shard.GroupIndex][byte(shard.MemberIndex+1)] = shard
	s.groupQuorum[shard.GroupIndex] = shard.MemberThreshold

	s.selected = append(s.selected, shard)
}

// Status reports how many groups are currently filled and whether the
// overall group threshold is satisfied.
func (s *Selector) Status() (filledGroups int, satisfied bool) {
	for gi, members := range s.groupMembers {
		if uint8(len(members)) >= s.groupQuorum[gi] {
			filledGroups++
		}
	}
	return filledGroups, s.familyID != nil && filledGroups >= int(s.threshold)
}

// Mnemonics returns the currently selected mnemonics, re-encoded.
func (s *Selector) Mnemonics() ([]string, error) {
	out := make([]string, 0, len(s.selected))
	for _, sh := range s.selected {
		m, err := sh.Mnemonic()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
