package world

// bucket holds the occupants of one spatial hash cell.
// members keeps insertion order; slot maps an object ID to its index in
// members so removal is a swap with the last element.
type bucket struct {
	key     BucketKey
	members []Occupant
	slot    map[uint32]int
}

func newBucket(key BucketKey) *bucket {
	return &bucket{
		key:  key,
		slot: make(map[uint32]int, 4),
	}
}

func (b *bucket) add(o Occupant) {
	id := o.ObjectID()
	if _, ok := b.slot[id]; ok {
		return
	}
	b.slot[id] = len(b.members)
	b.members = append(b.members, o)
}

func (b *bucket) remove(id uint32) bool {
	i, ok := b.slot[id]
	if !ok {
		return false
	}
	last := len(b.members) - 1
	if i != last {
		moved := b.members[last]
		b.members[i] = moved
		b.slot[moved.ObjectID()] = i
	}
	b.members[last] = nil
	b.members = b.members[:last]
	delete(b.slot, id)
	return true
}

func (b *bucket) len() int {
	return len(b.members)
}
