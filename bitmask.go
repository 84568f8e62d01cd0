package riotwave

import (
	"math/bits"
)

// Bitmask is a 256-bit set of component IDs.
type Bitmask [4]uint64

// Set sets the bit for id.
func (m *Bitmask) Set(id ComponentID) {
	m[id/64] |= 1 << (id % 64)
}

// Clear clears the bit for id.
func (m *Bitmask) Clear(id ComponentID) {
	m[id/64] &^= 1 << (id % 64)
}

// Has reports whether the bit for id is set.
func (m *Bitmask) Has(id ComponentID) bool {
	return m[id/64]&(1<<(id%64)) != 0
}

// ContainsAll reports whether every bit of other is set in m.
// Used for required components.
func (m *Bitmask) ContainsAll(other Bitmask) bool {
	for i := range m {
		if m[i]&other[i] != other[i] {
			return false
		}
	}
	return true
}

// ContainsAny reports whether m and other share a bit.
// Used for excluded components.
func (m *Bitmask) ContainsAny(other Bitmask) bool {
	for i := range m {
		if m[i]&other[i] != 0 {
			return true
		}
	}
	return false
}

// IsZero reports whether no bits are set.
func (m *Bitmask) IsZero() bool {
	return m[0]|m[1]|m[2]|m[3] == 0
}

// Count returns the number of bits set.
func (m *Bitmask) Count() int {
	n := 0
	for _, w := range m {
		n += bits.OnesCount64(w)
	}
	return n
}
