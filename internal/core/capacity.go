package core

// DefaultRoomCapacity is the maximum number of participants a room admits.
const DefaultRoomCapacity = 100

// CapacityPolicy decides whether a room of a given size accepts one more participant.
type CapacityPolicy struct {
	max int
}

// NewCapacityPolicy returns a policy capped at max participants. Non-positive values fall back
// to DefaultRoomCapacity.
func NewCapacityPolicy(max int) CapacityPolicy {
	if max <= 0 {
		max = DefaultRoomCapacity
	}
	return CapacityPolicy{max: max}
}

// Max returns the configured capacity.
func (p CapacityPolicy) Max() int {
	if p.max <= 0 {
		return DefaultRoomCapacity
	}
	return p.max
}

// Admits reports whether a room currently holding size participants accepts another one.
// size is always the count before insertion.
func (p CapacityPolicy) Admits(size int) bool {
	return size < p.Max()
}
